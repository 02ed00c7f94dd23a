package repository

import (
	"context"
	"errors"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
)

// ErrProfileNotFound is returned when a profile document has not been created.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository is the storefront's user profile document store.
type ProfileRepository interface {
	// EnsureProfile creates the profile document for identity if it does not exist yet,
	// seeding it with additionalData. An existing document is never modified.
	// The returned handle reads the document back.
	EnsureProfile(ctx context.Context, identity *models.Identity, additionalData map[string]any) (ProfileHandle, error)
}

// ProfileHandle is a reference to one profile document.
type ProfileHandle interface {
	ID() string
	Fetch(ctx context.Context) (*models.ProfileRecord, error)
}
