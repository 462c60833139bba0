// internal/session/session.go
// Explicitly injected session holder. Every API call reads the token from here instead
// of a process-wide singleton.

package session

import (
	"context"
	"sync"
	"time"

	"github.com/sacavia/sacavia-go/internal/common/logger"
	"github.com/sacavia/sacavia-go/internal/common/utils"
	"go.uber.org/zap"
)

// DefaultTTL applies to opaque tokens that carry no expiry.
const DefaultTTL = 30 * 24 * time.Hour

// Session holds the current bearer/cookie token and the claims decoded from it.
type Session struct {
	mu     sync.RWMutex
	token  string
	claims *utils.JWTClaims

	store Store
	key   string
	log   *zap.SugaredLogger
	now   func() time.Time
}

// New creates a session persisted under key in store. store may be nil for a purely
// in-process session.
func New(store Store, key string, log *zap.SugaredLogger) *Session {
	return &Session{
		store: store,
		key:   key,
		log:   logger.OrNop(log),
		now:   time.Now,
	}
}

// Restore loads a previously saved token from the store. A missing token is not an error.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	token, err := s.store.Load(ctx, s.key)
	if err != nil {
		return err
	}
	s.set(token)
	return nil
}

// Token returns the current token, or "" when there is none or it has expired.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims != nil && s.claims.Expired(s.now()) {
		return ""
	}
	return s.token
}

// SetToken replaces the token in memory and persists it.
func (s *Session) SetToken(ctx context.Context, token string) error {
	s.set(token)
	if s.store == nil {
		return nil
	}
	return s.store.Save(ctx, s.key, token, s.ttl())
}

// Clear removes the token from memory and from the store (logout).
func (s *Session) Clear(ctx context.Context) error {
	s.set("")
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, s.key)
}

// Invalidate drops a token the server rejected with 401. Store cleanup is best effort.
func (s *Session) Invalidate() {
	s.set("")
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Delete(ctx, s.key); err != nil {
		s.log.Warnw("failed to delete invalidated session", "key", s.key, "error", err)
	}
}

// UserID is the authenticated user's id from the token claims, "" for opaque tokens.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return ""
	}
	return s.claims.UserID
}

// Authenticated reports whether a usable token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) set(token string) {
	var claims *utils.JWTClaims
	if token != "" {
		// opaque tokens are fine; only JWTs give us a user id and expiry
		if c, err := utils.ParseUnverified(token); err == nil {
			claims = c
		}
	}

	s.mu.Lock()
	s.token = token
	s.claims = claims
	s.mu.Unlock()
}

func (s *Session) ttl() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil || s.claims.ExpiresAt == 0 {
		return DefaultTTL
	}
	ttl := time.Until(time.Unix(s.claims.ExpiresAt, 0))
	if ttl <= 0 {
		return time.Second
	}
	return ttl
}
