package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
)

// MemorySessionRepository implements SessionRepository in memory (NOT FOR PRODUCTION).
type MemorySessionRepository struct {
	sessions      map[string]models.Session // ClientID -> Session
	mutex         sync.RWMutex
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

// NewMemorySessionRepository creates a new in-memory session repository.
// cleanupInterval defines how often expired sessions are automatically removed.
func NewMemorySessionRepository(cleanupInterval time.Duration) *MemorySessionRepository {
	r := &MemorySessionRepository{
		sessions:      make(map[string]models.Session),
		cleanupTicker: time.NewTicker(cleanupInterval),
		stopCleanup:   make(chan struct{}),
	}
	go r.startCleanup()
	return r
}

var _ repository.SessionRepository = (*MemorySessionRepository)(nil)

// startCleanup runs the periodic cleanup in a background goroutine.
func (r *MemorySessionRepository) startCleanup() {
	for {
		select {
		case <-r.cleanupTicker.C:
			r.cleanupExpiredSessions()
		case <-r.stopCleanup:
			r.cleanupTicker.Stop()
			return
		}
	}
}

func (r *MemorySessionRepository) cleanupExpiredSessions() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	for clientID, session := range r.sessions {
		if now.After(session.Expiry) {
			delete(r.sessions, clientID)
		}
	}
}

// StopCleanup stops the background cleanup task.
func (r *MemorySessionRepository) StopCleanup() {
	r.stopOnce.Do(func() { close(r.stopCleanup) })
}

func (r *MemorySessionRepository) StoreSession(ctx context.Context, session *models.Session) error {
	if session == nil || session.SessionID == "" || session.ClientID == "" {
		return errors.New("invalid session data: SessionID and ClientID must be set")
	}
	if session.UID == "" {
		return errors.New("invalid session data: UID must be set")
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.sessions[session.ClientID] = *session
	return nil
}

func (r *MemorySessionRepository) GetSession(ctx context.Context, clientID string) (*models.Session, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	session, exists := r.sessions[clientID]
	if !exists || session.IsExpired() {
		return nil, repository.ErrSessionNotFound
	}
	return &session, nil
}

func (r *MemorySessionRepository) DeleteSession(ctx context.Context, clientID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.sessions, clientID)
	return nil
}
