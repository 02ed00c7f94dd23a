package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/authflow"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/config"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
)

// ProviderPassword marks accounts that sign in with email and password.
const ProviderPassword = "password"

const minPasswordLength = 6

// AuthService is the identity provider behind the storefront. It owns the
// accounts, the per-client sessions and pending popup sign-ins.
type AuthService struct {
	accounts  repository.AccountRepository
	sessions  repository.SessionRepository
	states    repository.StateRepository
	tokens    JWTGenerator
	providers *ProviderRegistry
	cfg       config.SessionConfig
	now       func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	accounts repository.AccountRepository,
	sessions repository.SessionRepository,
	states repository.StateRepository,
	tokens JWTGenerator,
	providers *ProviderRegistry,
	cfg config.SessionConfig,
) *AuthService {
	return &AuthService{
		accounts:  accounts,
		sessions:  sessions,
		states:    states,
		tokens:    tokens,
		providers: providers,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ForClient returns the provider as seen by one client device.
func (s *AuthService) ForClient(clientID string) *ClientAuth {
	return &ClientAuth{svc: s, clientID: clientID}
}

// BeginPopup records a pending popup sign-in for clientID and returns the
// URL the popup should open.
func (s *AuthService) BeginPopup(ctx context.Context, clientID, providerName string) (string, error) {
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return "", err
	}

	state := &models.AuthState{
		State:        uuid.NewString(),
		ClientID:     clientID,
		Provider:     provider.Name(),
		CodeVerifier: oauth2.GenerateVerifier(),
		Expiry:       s.now().UTC().Add(s.cfg.AuthStateExpiry),
	}
	if err := s.states.StoreAuthState(ctx, state); err != nil {
		log.Error().Err(err).Str("clientId", clientID).Str("provider", provider.Name()).Msg("Failed to store popup sign-in state")
		return "", fmt.Errorf("failed to store auth state: %w", err)
	}

	log.Debug().Str("clientId", clientID).Str("provider", provider.Name()).Msg("Popup sign-in started")
	return provider.AuthCodeURL(state.State, state.CodeVerifier), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return ErrInvalidEmail
	}
	return nil
}

func (s *AuthService) createPasswordAccount(ctx context.Context, email, password string) (*models.Account, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Provider:     ProviderPassword,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			return nil, ErrEmailAlreadyInUse
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	log.Info().Str("uid", account.UID).Msg("Password account created")
	return account, nil
}

func (s *AuthService) verifyPassword(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.accounts.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// findOrCreateFederated returns the account linked to user, creating it on
// first sign-in.
func (s *AuthService) findOrCreateFederated(ctx context.Context, user *models.OAuthUser) (*models.Account, error) {
	account, err := s.accounts.GetAccountByProviderSubject(ctx, user.Provider, user.Subject)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	account = &models.Account{
		UID:             uuid.NewString(),
		Email:           normalizeEmail(user.Email),
		DisplayName:     user.DisplayName,
		Provider:        user.Provider,
		ProviderSubject: user.Subject,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			// Lost a race with a concurrent first sign-in.
			return s.accounts.GetAccountByProviderSubject(ctx, user.Provider, user.Subject)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	log.Info().Str("uid", account.UID).Str("provider", user.Provider).Msg("Federated account created")
	return account, nil
}

func (s *AuthService) startSession(ctx context.Context, clientID string, account *models.Account) error {
	token, expiry, err := s.tokens.GenerateToken(account.UID, clientID)
	if err != nil {
		return fmt.Errorf("failed to generate session token: %w", err)
	}
	session := &models.Session{
		SessionID:   token,
		ClientID:    clientID,
		UID:         account.UID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Provider:    account.Provider,
		CreatedAt:   s.now().UTC(),
		Expiry:      expiry.UTC(),
	}
	if err := s.sessions.StoreSession(ctx, session); err != nil {
		log.Error().Err(err).Str("clientId", clientID).Str("uid", account.UID).Msg("Failed to store session")
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// ClientAuth is the identity provider bound to one client. It remembers the
// client's current user between requests through the session store.
type ClientAuth struct {
	svc      *AuthService
	clientID string
}

var _ authflow.AuthProvider = (*ClientAuth)(nil)

func (c *ClientAuth) ClientID() string {
	return c.clientID
}

func (c *ClientAuth) SignInWithPopup(ctx context.Context, popup models.PopupResult) (*models.Identity, error) {
	state, err := c.svc.states.ConsumeAuthState(ctx, popup.State, c.clientID)
	if err != nil {
		if errors.Is(err, repository.ErrStateNotFound) {
			log.Info().Str("clientId", c.clientID).Msg("Popup state is unknown, expired or not this client's")
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("failed to read auth state: %w", err)
	}
	if popup.Provider != "" && !strings.EqualFold(popup.Provider, state.Provider) {
		log.Warn().Str("clientId", c.clientID).Str("provider", popup.Provider).Str("stateProvider", state.Provider).Msg("Popup state belongs to another provider")
		return nil, ErrInvalidState
	}
	if popup.Error != "" {
		log.Info().Str("clientId", c.clientID).Str("error", popup.Error).Str("description", popup.ErrorDescription).Msg("Popup sign-in was not completed")
		return nil, fmt.Errorf("%w: %s", ErrPopupClosed, popup.Error)
	}
	if popup.Code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", ErrPopupClosed)
	}

	provider, err := c.svc.providers.Get(state.Provider)
	if err != nil {
		return nil, err
	}
	user, err := provider.Exchange(ctx, popup.Code, state.CodeVerifier)
	if err != nil {
		return nil, fmt.Errorf("failed to complete %s sign-in: %w", provider.Name(), err)
	}
	user.Provider = provider.Name()

	account, err := c.svc.findOrCreateFederated(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := c.svc.startSession(ctx, c.clientID, account); err != nil {
		return nil, err
	}
	return account.Identity(), nil
}

func (c *ClientAuth) SignInWithEmailAndPassword(ctx context.Context, email, password string) (*models.Identity, error) {
	account, err := c.svc.verifyPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := c.svc.startSession(ctx, c.clientID, account); err != nil {
		return nil, err
	}
	return account.Identity(), nil
}

// CreateUserWithEmailAndPassword creates the account and signs the client in
// as it.
func (c *ClientAuth) CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*models.Identity, error) {
	account, err := c.svc.createPasswordAccount(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := c.svc.startSession(ctx, c.clientID, account); err != nil {
		return nil, err
	}
	return account.Identity(), nil
}

func (c *ClientAuth) SignOut(ctx context.Context) error {
	if err := c.svc.sessions.DeleteSession(ctx, c.clientID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		log.Error().Err(err).Str("clientId", c.clientID).Msg("Failed to delete session")
		return fmt.Errorf("failed to sign out: %w", err)
	}
	log.Debug().Str("clientId", c.clientID).Msg("Session deleted")
	return nil
}

func (c *ClientAuth) CurrentSession(ctx context.Context) (*models.Identity, error) {
	session, err := c.session(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	return session.Identity(), nil
}

// SessionToken returns the client's signed session token, or "" when signed out.
func (c *ClientAuth) SessionToken(ctx context.Context) (string, error) {
	session, err := c.session(ctx)
	if err != nil || session == nil {
		return "", err
	}
	return session.SessionID, nil
}

func (c *ClientAuth) session(ctx context.Context) (*models.Session, error) {
	session, err := c.svc.sessions.GetSession(ctx, c.clientID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	claims, err := c.svc.tokens.ValidateToken(session.SessionID)
	if err != nil || claims.ClientID != c.clientID || claims.Subject != session.UID {
		log.Info().Err(err).Str("clientId", c.clientID).Msg("Discarding invalid session")
		_ = c.svc.sessions.DeleteSession(ctx, c.clientID)
		return nil, nil
	}
	return session, nil
}
