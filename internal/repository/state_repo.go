package repository

import (
	"context"
	"fmt"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
)

// StateRepository handles the temporary state of federated popup sign-ins.
type StateRepository interface {
	StoreAuthState(ctx context.Context, state *models.AuthState) error
	// ConsumeAuthState returns and deletes the state in one step so it can't be replayed.
	// It should return ErrStateNotFound if the state is unknown or expired, or if it
	// belongs to a client other than clientID, in which case it is left in place.
	ConsumeAuthState(ctx context.Context, state, clientID string) (*models.AuthState, error)
}

var ErrStateNotFound = fmt.Errorf("auth state not found or expired")
