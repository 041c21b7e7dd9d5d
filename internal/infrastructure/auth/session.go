package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marketplace/storefront/internal/domain/cart"
)

// TokenStorageKey is the storage slot key holding the auth token
const TokenStorageKey = "token"

// TokenObserver is told about every token change; an empty token means signed out
type TokenObserver interface {
	OnTokenChange(ctx context.Context, token string)
}

// TokenObserverFunc adapts a function to TokenObserver
type TokenObserverFunc func(ctx context.Context, token string)

// OnTokenChange calls f
func (f TokenObserverFunc) OnTokenChange(ctx context.Context, token string) {
	f(ctx, token)
}

// Session holds the current auth token. The token is read from storage once
// when the session opens and written through on every change.
type Session struct {
	storage cart.Storage
	logger  *zap.Logger

	mu        sync.RWMutex
	token     string
	claims    *Claims
	observers []TokenObserver
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithSessionLogger sets the session logger
func WithSessionLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// OpenSession loads the stored token. A storage read failure is logged and
// treated as signed out.
func OpenSession(ctx context.Context, storage cart.Storage, opts ...SessionOption) *Session {
	s := &Session{
		storage: storage,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	token, ok, err := storage.Get(ctx, TokenStorageKey)
	if err != nil {
		s.logger.Warn("failed to read stored token, starting signed out", zap.Error(err))
		return s
	}
	if ok {
		s.setLocked(token)
	}
	return s
}

// Token returns the current token, empty when signed out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a token is present
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Claims returns the unverified claims of a JWT token; false for opaque tokens
func (s *Session) Claims() (*Claims, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return nil, false
	}
	c := *s.claims
	return &c, true
}

// Subject returns the user id from the token claims, if any
func (s *Session) Subject() string {
	if c, ok := s.Claims(); ok {
		return c.SubjectID()
	}
	return ""
}

// ExpiresAt returns the token expiry from its claims, zero if unknown
func (s *Session) ExpiresAt() time.Time {
	if c, ok := s.Claims(); ok {
		return c.GetExpiresAtTime()
	}
	return time.Time{}
}

// CacheKey returns a per-user key for cached remote data, empty when signed out.
// JWT tokens key on the subject; opaque tokens on a hash prefix of the token.
func (s *Session) CacheKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return ""
	}
	if s.claims != nil {
		if sub := s.claims.SubjectID(); sub != "" {
			return "user:" + sub
		}
	}
	sum := sha256.Sum256([]byte(s.token))
	return "token:" + hex.EncodeToString(sum[:8])
}

// Subscribe registers an observer for token changes
func (s *Session) Subscribe(observer TokenObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// SetToken stores a new token and notifies observers.
// Setting the current token again is a no-op.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.ClearToken(ctx)
	}
	if s.Token() == token {
		return nil
	}
	if err := s.storage.Set(ctx, TokenStorageKey, token); err != nil {
		return fmt.Errorf("auth: persist token: %w", err)
	}

	s.mu.Lock()
	s.setLocked(token)
	s.mu.Unlock()

	s.notify(ctx, token)
	return nil
}

// ClearToken signs out: removes the stored token and notifies observers
func (s *Session) ClearToken(ctx context.Context) error {
	if err := s.storage.Remove(ctx, TokenStorageKey); err != nil {
		return fmt.Errorf("auth: remove token: %w", err)
	}

	s.mu.Lock()
	changed := s.token != ""
	s.setLocked("")
	s.mu.Unlock()

	if changed {
		s.notify(ctx, "")
	}
	return nil
}

// setLocked updates token and parsed claims; caller holds mu or owns s exclusively
func (s *Session) setLocked(token string) {
	s.token = token
	s.claims = nil
	if token == "" {
		return
	}
	if claims, err := ParseUnverified(token); err == nil {
		s.claims = claims
	}
}

func (s *Session) notify(ctx context.Context, token string) {
	s.mu.RLock()
	observers := append([]TokenObserver(nil), s.observers...)
	s.mu.RUnlock()

	for _, o := range observers {
		o.OnTokenChange(ctx, token)
	}
}

var _ cart.TokenSource = (*Session)(nil)
