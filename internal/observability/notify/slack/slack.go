package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/target/mmk-sso/internal/observability/notify"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// UserURLPrefix, when set, turns the user id into a link to the admin console.
	UserURLPrefix string
}

// Client delivers user events to a Slack incoming webhook.
type Client struct {
	channel       string
	username      string
	userURLPrefix string
	poster        notify.Poster
}

// NewClient builds a Slack webhook client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		channel:       strings.TrimSpace(cfg.Channel),
		username:      fallbackString(strings.TrimSpace(cfg.Username), "mmk-sso"),
		userURLPrefix: strings.TrimSpace(cfg.UserURLPrefix),
		poster: notify.Poster{
			Name:       "slack webhook",
			URL:        webhookURL,
			RetryLimit: max(cfg.RetryLimit, 0),
			Client:     hc,
		},
	}, nil
}

// SendUserEvent posts a formatted message to Slack.
func (c *Client) SendUserEvent(ctx context.Context, event notify.UserEvent) error {
	body, err := json.Marshal(c.formatMessage(event))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}
	return c.poster.Post(ctx, body)
}

func (c *Client) formatMessage(event notify.UserEvent) map[string]any {
	timestamp := event.OccurredAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	text := strings.Builder{}
	text.WriteString(headline(event.Event))
	text.WriteByte('\n')
	appendSlackField(&text, "User", c.formatUserValue(event.UserID, event.Email))
	appendSlackField(&text, "Name", escapeSlackText(strings.TrimSpace(event.FirstName+" "+event.LastName)))
	appendSlackField(&text, "Provider", event.Provider)
	appendSlackField(&text, "Roles", strings.Join(event.Roles, ", "))
	text.WriteString("• Timestamp: ")
	text.WriteString(timestamp.UTC().Format(time.RFC3339))

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

func headline(event string) string {
	switch event {
	case notify.EventUserProvisioned:
		return "*New admin user provisioned*"
	case notify.EventUserSignedIn:
		return "*Admin sign-in*"
	default:
		return "*" + escapeSlackText(event) + "*"
	}
}

func (c *Client) formatUserValue(userID, email string) string {
	id := escapeSlackText(strings.TrimSpace(userID))
	mail := escapeSlackText(strings.TrimSpace(email))
	if id == "" && mail == "" {
		return ""
	}

	label := fallbackString(mail, id)
	link := ""
	if id != "" {
		link = c.buildUserLink(strings.TrimSpace(userID))
	}

	switch {
	case link != "":
		return fmt.Sprintf("<%s|%s>", link, label)
	case mail != "" && id != "":
		return fmt.Sprintf("%s (%s)", mail, id)
	default:
		return label
	}
}

func (c *Client) buildUserLink(userID string) string {
	if c.userURLPrefix == "" {
		return ""
	}
	u, err := url.Parse(c.userURLPrefix)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	link, err := url.JoinPath(u.String(), userID)
	if err != nil {
		return ""
	}
	return link
}

func escapeSlackText(value string) string {
	if value == "" {
		return ""
	}
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(value)
}

func fallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func appendSlackField(text *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	text.WriteString("• ")
	text.WriteString(label)
	text.WriteString(": ")
	text.WriteString(value)
	text.WriteByte('\n')
}
