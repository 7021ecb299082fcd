package waitlist

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/akeren/logfox/internal/log"
	"github.com/akeren/logfox/pkg/constants"
	"github.com/google/uuid"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=waitlist

var (
	ErrSessionNotFound  = errors.New("dialog session not found")
	ErrTooManySessions  = errors.New("too many live dialog sessions")
	ErrRepositoryClosed = errors.New("dialog session repository is closed")
)

type SessionRepository interface {
	// Create registers a new closed session with an empty draft.
	Create(ctx context.Context) (*Session, error)
	// Find returns a live session by ID and marks it as recently used.
	Find(ctx context.Context, id string) (*Session, error)
	// Delete closes and forgets a session.
	Delete(ctx context.Context, id string) error
	// Count returns the number of live sessions.
	Count() int
	// Close stops the sweeper and every pending auto-reset.
	Close() error
}

type RepositoryConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
	MaxSessions   int
	Session       SessionOptions
	Logger        *log.Logger
}

// memorySessionRepository keeps sessions in process memory only; a restart or
// a page reload starts from nothing.
type memorySessionRepository struct {
	cfg RepositoryConfig

	mu       sync.RWMutex
	sessions map[string]*Session

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemorySessionRepository starts a background sweeper when SweepInterval is positive.
func NewMemorySessionRepository(cfg RepositoryConfig) SessionRepository {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = constants.DefaultSessionIdleTTL()
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = constants.DefaultMaxSessions
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewLoggerWithJSONOutput()
	}

	r := &memorySessionRepository{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}

	if cfg.SweepInterval > 0 {
		r.wg.Add(1)
		go r.sweepLoop()
	}

	return r
}

func (r *memorySessionRepository) Create(ctx context.Context) (*Session, error) {
	if err := r.usable(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Close may have finished draining between usable and the lock.
	if r.isClosed() {
		return nil, ErrRepositoryClosed
	}
	if len(r.sessions) >= r.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	session := NewSession(uuid.New().String(), r.cfg.Session)
	r.sessions[session.ID()] = session

	return session, nil
}

func (r *memorySessionRepository) Find(ctx context.Context, id string) (*Session, error) {
	if err := r.usable(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	session.Touch()
	return session, nil
}

func (r *memorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	session.Close()
	return nil
}

func (r *memorySessionRepository) usable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.isClosed() {
		return ErrRepositoryClosed
	}
	return nil
}

func (r *memorySessionRepository) isClosed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func (r *memorySessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *memorySessionRepository) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()

		r.mu.Lock()
		for id, session := range r.sessions {
			session.Close()
			delete(r.sessions, id)
		}
		r.mu.Unlock()
	})
	return nil
}

// evictIdle closes sessions not used since now-IdleTTL and returns how many went.
func (r *memorySessionRepository) evictIdle(now time.Time) int {
	cutoff := now.Add(-r.cfg.IdleTTL)

	var stale []*Session

	r.mu.Lock()
	for id, session := range r.sessions {
		if session.LastSeen().Before(cutoff) {
			stale = append(stale, session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, session := range stale {
		session.Close()
	}

	return len(stale)
}

func (r *memorySessionRepository) sweepLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case now := <-ticker.C:
			if evicted := r.evictIdle(now); evicted > 0 {
				r.cfg.Logger.Debug("Evicted idle dialog sessions", "count", evicted, "remaining", r.Count())
			}
		}
	}
}
