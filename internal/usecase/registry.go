package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/comarapa/catalog-desk/internal/domain"
)

// SessionRegistry holds the live import sessions by id and evicts the
// ones nobody has touched within the idle TTL
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idleTTL  time.Duration
	log      *zap.SugaredLogger
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionRegistry creates a registry and starts its sweep goroutine
func NewSessionRegistry(idleTTL time.Duration, log *zap.SugaredLogger) *SessionRegistry {
	r := &SessionRegistry{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		log:      log,
		stop:     make(chan struct{}),
	}
	go r.sweepIdle()
	return r
}

// Create registers a fresh session and returns its id
func (r *SessionRegistry) Create() (string, *Session) {
	id := uuid.NewString()
	sess := NewSession()

	r.mu.Lock()
	r.sessions[id] = sess
	r.mu.Unlock()

	r.log.Infow("import session created", "session_id", id)
	return id, sess
}

// Get returns the session for an id
func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session
func (r *SessionRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the sweep goroutine
func (r *SessionRegistry) Close() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}

func (r *SessionRegistry) sweepIdle() {
	interval := r.idleTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-r.idleTTL)
			r.mu.Lock()
			for id, sess := range r.sessions {
				if sess.LastTouched().Before(cutoff) {
					delete(r.sessions, id)
					r.log.Infow("idle import session evicted", "session_id", id)
				}
			}
			r.mu.Unlock()
		}
	}
}
