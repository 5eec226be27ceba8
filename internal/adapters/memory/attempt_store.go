// Package memory provides in-process adapters for single-replica deployments and development.
package memory

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	"github.com/target/mmk-sso/internal/ports"
)

// DefaultAttemptTTL matches the browser session cookie lifetime.
const DefaultAttemptTTL = 10 * time.Minute

// AttemptStore keeps authorization attempts in process memory with expiry.
type AttemptStore struct {
	mu sync.Mutex // serializes Take so an attempt is redeemed once
	c  *gocache.Cache
}

// NewAttemptStore creates an in-memory attempt store whose entries expire after ttl.
func NewAttemptStore(ttl time.Duration) *AttemptStore {
	if ttl <= 0 {
		ttl = DefaultAttemptTTL
	}
	return &AttemptStore{c: gocache.New(ttl, time.Minute)}
}

var _ ports.AttemptStore = (*AttemptStore)(nil)

func cacheKey(k ports.AttemptKey) string {
	return k.SessionID + ":" + string(k.Provider)
}

func (s *AttemptStore) Save(_ context.Context, key ports.AttemptKey, attempt domainauth.AuthAttempt) error {
	s.c.SetDefault(cacheKey(key), attempt)
	return nil
}

func (s *AttemptStore) Take(_ context.Context, key ports.AttemptKey) (domainauth.AuthAttempt, bool, error) {
	k := cacheKey(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.c.Get(k)
	if !ok {
		return domainauth.AuthAttempt{}, false, nil
	}
	s.c.Delete(k)
	attempt, ok := v.(domainauth.AuthAttempt)
	return attempt, ok, nil
}

// Len reports the number of live attempts.
func (s *AttemptStore) Len() int { return s.c.ItemCount() }
