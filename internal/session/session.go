package session

import (
	"context"
	"errors"
	"slices"
	"time"
)

// ErrNotFound is returned by a Store when no live session has the given ID.
var ErrNotFound = errors.New("session: not found")

// Session is the per-client state correlated by the session cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"` // nil while anonymous
	Cart      []int64   `json:"cart,omitempty"`    // product IDs in insertion order, repeats allowed
	Flashes   []string  `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAuthenticated reports whether a user is logged in on this session.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil
}

// SetUser records the authenticated identity.
func (s *Session) SetUser(id int64) {
	s.UserID = &id
}

// ClearUser drops the identity and leaves the cart alone.
func (s *Session) ClearUser() {
	s.UserID = nil
}

// AddFlash queues a one-shot message for the next rendered page.
func (s *Session) AddFlash(msg string) {
	s.Flashes = append(s.Flashes, msg)
}

// PopFlashes returns the queued messages and clears them.
func (s *Session) PopFlashes() []string {
	f := s.Flashes
	s.Flashes = nil
	return f
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Clone returns a deep copy, so stores never share slices with callers.
func (s *Session) Clone() *Session {
	c := *s
	if s.UserID != nil {
		id := *s.UserID
		c.UserID = &id
	}
	c.Cart = slices.Clone(s.Cart)
	c.Flashes = slices.Clone(s.Flashes)
	return &c
}

// Store persists sessions between requests.
type Store interface {
	// Get returns the session or ErrNotFound if it is missing or expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Save creates or replaces the session until its ExpiresAt.
	Save(ctx context.Context, s *Session) error

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}
