package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
)

// MemoryStateRepository implements StateRepository in memory (NOT FOR PRODUCTION)
type MemoryStateRepository struct {
	states        map[string]models.AuthState
	mutex         sync.Mutex
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

// NewMemoryStateRepository creates a new in-memory state repository.
// cleanupInterval defines how often states of abandoned popups are removed.
func NewMemoryStateRepository(cleanupInterval time.Duration) *MemoryStateRepository {
	r := &MemoryStateRepository{
		states:        make(map[string]models.AuthState),
		cleanupTicker: time.NewTicker(cleanupInterval),
		stopCleanup:   make(chan struct{}),
	}
	go r.startCleanup()
	return r
}

var _ repository.StateRepository = (*MemoryStateRepository)(nil)

func (r *MemoryStateRepository) startCleanup() {
	for {
		select {
		case <-r.cleanupTicker.C:
			r.cleanupExpiredStates()
		case <-r.stopCleanup:
			r.cleanupTicker.Stop()
			return
		}
	}
}

func (r *MemoryStateRepository) cleanupExpiredStates() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	for key, st := range r.states {
		if now.After(st.Expiry) {
			delete(r.states, key)
		}
	}
}

// StopCleanup stops the background cleanup task.
func (r *MemoryStateRepository) StopCleanup() {
	r.stopOnce.Do(func() { close(r.stopCleanup) })
}

func (r *MemoryStateRepository) StoreAuthState(ctx context.Context, state *models.AuthState) error {
	if state == nil || state.State == "" {
		return errors.New("invalid auth state: state must be set")
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.states[state.State] = *state
	return nil
}

func (r *MemoryStateRepository) ConsumeAuthState(ctx context.Context, state, clientID string) (*models.AuthState, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	st, exists := r.states[state]
	if !exists || st.ClientID != clientID {
		return nil, repository.ErrStateNotFound
	}
	delete(r.states, state)
	if st.IsExpired() {
		return nil, repository.ErrStateNotFound
	}
	return &st, nil
}
