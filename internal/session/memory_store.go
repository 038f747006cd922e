package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// MemoryStore keeps sessions in process memory. Expired entries are removed
// lazily on Get and periodically by a cleanup worker.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	log      logr.Logger
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewMemoryStore returns a MemoryStore. If cleanupInterval is positive a
// background worker purges expired sessions until Close is called.
func NewMemoryStore(logger logr.Logger, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*Session),
		log:      logger,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	if cleanupInterval > 0 {
		s.startCleanupWorker(cleanupInterval)
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	return sess.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// CleanupExpired removes every expired session and returns how many were dropped.
func (s *MemoryStore) CleanupExpired(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops the cleanup worker. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	return nil
}

func (s *MemoryStore) startCleanupWorker(interval time.Duration) {
	s.log.V(1).Info("starting session cleanup worker", "interval", interval.String())
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval/2)
				removed, err := s.CleanupExpired(ctx)
				cancel()
				if err != nil {
					s.log.Error(err, "failed to cleanup sessions")
					continue
				}
				if removed > 0 {
					s.log.V(1).Info("removed expired sessions", "count", removed, "remaining", s.Len())
				}
			case <-s.stopCh:
				s.log.V(1).Info("stopping session cleanup worker")
				return
			}
		}
	}()
}
