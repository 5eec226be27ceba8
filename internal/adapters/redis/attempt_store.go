// Package redis provides Redis-based adapters for the sign-in flow.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	"github.com/target/mmk-sso/internal/ports"
)

const (
	// DefaultAttemptPrefix namespaces attempt keys: {prefix}{sessionID}:{provider}.
	DefaultAttemptPrefix = "sso:attempt:"
	// DefaultAttemptTTL matches the browser session cookie lifetime.
	DefaultAttemptTTL = 10 * time.Minute
)

// ErrInvalidKey is returned when an attempt key lacks a session or provider.
var ErrInvalidKey = errors.New("attempt key requires session ID and provider")

// AttemptStore keeps authorization attempts in Redis. Take uses GETDEL so an
// attempt can be redeemed once even when several replicas serve callbacks.
type AttemptStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// AttemptStoreOptions configures AttemptStore.
type AttemptStoreOptions struct {
	Prefix string        // Optional, defaults to DefaultAttemptPrefix
	TTL    time.Duration // Optional, defaults to DefaultAttemptTTL
}

// NewAttemptStore creates a new Redis-based attempt store.
func NewAttemptStore(client redis.UniversalClient, opts AttemptStoreOptions) *AttemptStore {
	if opts.Prefix == "" {
		opts.Prefix = DefaultAttemptPrefix
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultAttemptTTL
	}
	return &AttemptStore{
		client: client,
		prefix: opts.Prefix,
		ttl:    opts.TTL,
	}
}

var _ ports.AttemptStore = (*AttemptStore)(nil)

func (s *AttemptStore) key(k ports.AttemptKey) (string, error) {
	if k.SessionID == "" || k.Provider == "" {
		return "", ErrInvalidKey
	}
	return s.prefix + k.SessionID + ":" + string(k.Provider), nil
}

// Save stores attempt under key, replacing any earlier attempt for the same session and provider.
func (s *AttemptStore) Save(ctx context.Context, key ports.AttemptKey, attempt domainauth.AuthAttempt) error {
	redisKey, err := s.key(key)
	if err != nil {
		return err
	}
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	if setErr := s.client.Set(ctx, redisKey, data, s.ttl).Err(); setErr != nil {
		return fmt.Errorf("redis set: %w", setErr)
	}
	return nil
}

// Take atomically reads and deletes the attempt.
func (s *AttemptStore) Take(ctx context.Context, key ports.AttemptKey) (domainauth.AuthAttempt, bool, error) {
	redisKey, err := s.key(key)
	if err != nil {
		return domainauth.AuthAttempt{}, false, nil
	}
	data, err := s.client.GetDel(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.AuthAttempt{}, false, nil
		}
		return domainauth.AuthAttempt{}, false, fmt.Errorf("redis getdel: %w", err)
	}
	var attempt domainauth.AuthAttempt
	if unmarshalErr := json.Unmarshal(data, &attempt); unmarshalErr != nil {
		return domainauth.AuthAttempt{}, false, fmt.Errorf("unmarshal attempt: %w", unmarshalErr)
	}
	return attempt, true, nil
}
