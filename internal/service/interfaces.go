package service

import (
	"context"
	"errors"
	"time"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyInUse  = errors.New("email address is already in use")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrInvalidEmail       = errors.New("email address is badly formatted")
	ErrPopupClosed        = errors.New("popup closed before sign-in completed")
	ErrInvalidState       = errors.New("invalid or expired sign-in state")
	ErrUnknownProvider    = errors.New("unknown sign-in provider")
)

// JWTGenerator issues and checks session tokens.
type JWTGenerator interface {
	GenerateToken(uid, clientID string) (string, time.Time, error)
	ValidateToken(token string) (*models.SessionClaims, error)
}

// FederatedProvider is an OAuth2/OIDC identity provider reached through a popup.
type FederatedProvider interface {
	Name() string
	// AuthCodeURL returns the URL the popup is opened on.
	AuthCodeURL(state, verifier string) string
	// Exchange trades the authorization code for the verified user.
	Exchange(ctx context.Context, code, verifier string) (*models.OAuthUser, error)
}
