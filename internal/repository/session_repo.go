package repository

import (
	"context"
	"errors"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
)

// ErrSessionNotFound is returned when a client has no session or it has expired.
var ErrSessionNotFound = errors.New("session not found or expired")

// SessionRepository keeps the current session of each client.
type SessionRepository interface {
	// StoreSession saves the session as the client's current one, replacing any previous session.
	StoreSession(ctx context.Context, session *models.Session) error
	// GetSession retrieves the client's current session.
	// It should return ErrSessionNotFound if the session doesn't exist or is expired.
	GetSession(ctx context.Context, clientID string) (*models.Session, error)
	// DeleteSession removes the client's session, effectively signing it out.
	// Deleting a missing session is not an error.
	DeleteSession(ctx context.Context, clientID string) error
}
