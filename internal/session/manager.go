package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

type contextKey struct{}

// FromContext returns the session attached by Manager.Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// Manager ties a Store to the HTTP request cycle.
type Manager struct {
	store  Store
	ttl    time.Duration
	cookie CookieOptions
	log    logr.Logger
	now    func() time.Time
}

// NewManager returns a Manager issuing sessions that live ttl past the last request.
func NewManager(store Store, ttl time.Duration, cookie CookieOptions, logger logr.Logger) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		cookie: cookie,
		log:    logger,
		now:    time.Now,
	}
}

// New creates an unsaved session with a fresh ID.
func (m *Manager) New() (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	now := m.now()
	return &Session{
		ID:        id.String(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}, nil
}

// Load returns the session named by the request cookie, or a new one when the
// cookie is absent, unknown or expired.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		s, err := m.store.Get(r.Context(), cookie.Value)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		m.log.V(4).Info("session cookie did not resolve, starting new session")
	}
	return m.New()
}

// Rotate moves s to a fresh ID, keeping its contents, and deletes the old record.
// Call it when the privilege level changes, e.g. on login.
func (m *Manager) Rotate(w http.ResponseWriter, r *http.Request, s *Session) error {
	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}
	if err := m.store.Delete(r.Context(), s.ID); err != nil {
		return err
	}
	s.ID = id.String()
	SetCookie(w, r, s.ID, s.ExpiresAt, m.cookie)
	return nil
}

// Middleware loads the session before next runs and saves it afterwards.
// The cookie is written up front so it reaches the client with any response.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Load(r)
		if err != nil {
			m.log.Error(err, "failed to load session", "path", r.URL.Path)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		s.ExpiresAt = m.now().Add(m.ttl)
		SetCookie(w, r, s.ID, s.ExpiresAt, m.cookie)

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))

		// The request context may already be cancelled if the client went away.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
		defer cancel()
		if err := m.store.Save(ctx, s); err != nil {
			m.log.Error(err, "failed to save session", "path", r.URL.Path)
		}
	})
}
