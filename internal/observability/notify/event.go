package notify

import (
	"context"
	"time"
)

// Event names carried in UserEvent.Event.
const (
	EventUserProvisioned = "user.provisioned"
	EventUserSignedIn    = "user.signed_in"
)

// UserEvent captures the canonical data we emit when an admin user is created or signs in.
type UserEvent struct {
	Event      string            `json:"event"`
	Provider   string            `json:"provider"`
	UserID     string            `json:"user_id"`
	Email      string            `json:"email"`
	FirstName  string            `json:"first_name,omitempty"`
	LastName   string            `json:"last_name,omitempty"`
	Roles      []string          `json:"roles,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Sink describes a destination capable of consuming user events.
type Sink interface {
	SendUserEvent(ctx context.Context, event UserEvent) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, event UserEvent) error

// SendUserEvent implements the Sink interface.
func (f SinkFunc) SendUserEvent(ctx context.Context, event UserEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}
