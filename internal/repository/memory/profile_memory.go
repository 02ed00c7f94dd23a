package memory

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
)

// MemoryProfileRepository implements ProfileRepository in memory (NOT FOR PRODUCTION)
type MemoryProfileRepository struct {
	profiles map[string]models.ProfileRecord
	mutex    sync.RWMutex
	now      func() time.Time
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{
		profiles: make(map[string]models.ProfileRecord),
		now:      time.Now,
	}
}

var _ repository.ProfileRepository = (*MemoryProfileRepository)(nil)

func (r *MemoryProfileRepository) EnsureProfile(ctx context.Context, identity *models.Identity, additionalData map[string]any) (repository.ProfileHandle, error) {
	if identity == nil || identity.UID == "" {
		return nil, errors.New("identity with a UID is required")
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.profiles[identity.UID]; !exists {
		r.profiles[identity.UID] = *models.NewProfileRecord(identity, additionalData, r.now())
	}
	return &memoryProfileHandle{repo: r, id: identity.UID}, nil
}

type memoryProfileHandle struct {
	repo *MemoryProfileRepository
	id   string
}

func (h *memoryProfileHandle) ID() string {
	return h.id
}

func (h *memoryProfileHandle) Fetch(ctx context.Context) (*models.ProfileRecord, error) {
	h.repo.mutex.RLock()
	defer h.repo.mutex.RUnlock()

	rec, exists := h.repo.profiles[h.id]
	if !exists {
		return nil, repository.ErrProfileNotFound
	}
	rec.Extra = maps.Clone(rec.Extra)
	return &rec, nil
}
