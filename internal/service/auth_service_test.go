package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/config"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/mocks"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository/memory"
)

type authTestEnv struct {
	svc      *AuthService
	accounts *memory.MemoryAccountRepository
	sessions *memory.MemorySessionRepository
	states   *memory.MemoryStateRepository
	google   *mocks.MockFederatedProvider
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()
	google := new(mocks.MockFederatedProvider)
	google.On("Name").Return("google")

	env := &authTestEnv{
		accounts: memory.NewMemoryAccountRepository(),
		sessions: memory.NewMemorySessionRepository(time.Minute),
		states:   memory.NewMemoryStateRepository(time.Minute),
		google:   google,
	}
	t.Cleanup(env.sessions.StopCleanup)
	t.Cleanup(env.states.StopCleanup)

	env.svc = NewAuthService(
		env.accounts,
		env.sessions,
		env.states,
		NewJWTService(testSecret, time.Hour),
		NewProviderRegistry(google),
		config.SessionConfig{TokenDuration: time.Hour, AuthStateExpiry: 5 * time.Minute},
	)
	return env
}

// beginPopup starts a popup sign-in and returns the state it was given.
func (env *authTestEnv) beginPopup(t *testing.T, clientID string) string {
	t.Helper()
	var state string
	env.google.On("AuthCodeURL", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { state = args.String(0) }).
		Return("https://accounts.example.com/auth").Once()

	authURL, err := env.svc.BeginPopup(context.Background(), clientID, "google")
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example.com/auth", authURL)
	require.NotEmpty(t, state)
	return state
}

func TestClientAuth_CreateUserWithEmailAndPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesAccountAndSignsIn", func(t *testing.T) {
		env := newAuthTestEnv(t)
		auth := env.svc.ForClient("client-1")

		identity, err := auth.CreateUserWithEmailAndPassword(ctx, " Ann@X.com ", "pw1234")
		require.NoError(t, err)
		assert.NotEmpty(t, identity.UID)
		assert.Equal(t, "ann@x.com", identity.Email)
		assert.Equal(t, ProviderPassword, identity.Provider)

		account, err := env.accounts.GetAccountByEmail(ctx, "ann@x.com")
		require.NoError(t, err)
		assert.NotEqual(t, "pw1234", account.PasswordHash, "password must be stored hashed")

		current, err := auth.CurrentSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, identity, current)
	})

	t.Run("RejectsInvalidInput", func(t *testing.T) {
		env := newAuthTestEnv(t)
		auth := env.svc.ForClient("client-1")

		_, err := auth.CreateUserWithEmailAndPassword(ctx, "not-an-email", "pw1234")
		assert.ErrorIs(t, err, ErrInvalidEmail)

		_, err = auth.CreateUserWithEmailAndPassword(ctx, "Ann <ann@x.com>", "pw1234")
		assert.ErrorIs(t, err, ErrInvalidEmail)

		_, err = auth.CreateUserWithEmailAndPassword(ctx, "ann@x.com", "pw")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		env := newAuthTestEnv(t)
		_, err := env.svc.ForClient("client-1").CreateUserWithEmailAndPassword(ctx, "ann@x.com", "pw1234")
		require.NoError(t, err)

		_, err = env.svc.ForClient("client-2").CreateUserWithEmailAndPassword(ctx, "ANN@x.com", "other-pw")
		assert.ErrorIs(t, err, ErrEmailAlreadyInUse)
	})

	t.Run("AccountStoreFailure", func(t *testing.T) {
		accounts := new(mocks.MockAccountRepository)
		storeErr := errors.New("disk full")
		accounts.On("CreateAccount", mock.Anything, mock.AnythingOfType("*models.Account")).Return(storeErr).Once()
		svc := NewAuthService(accounts, new(mocks.MockSessionRepository), new(mocks.MockStateRepository),
			NewJWTService(testSecret, time.Hour), NewProviderRegistry(), config.SessionConfig{})

		_, err := svc.ForClient("client-1").CreateUserWithEmailAndPassword(ctx, "ann@x.com", "pw1234")
		assert.ErrorIs(t, err, storeErr)
		accounts.AssertExpectations(t)
	})
}

func TestClientAuth_SignInWithEmailAndPassword(t *testing.T) {
	ctx := context.Background()
	env := newAuthTestEnv(t)
	created, err := env.svc.ForClient("signup-client").CreateUserWithEmailAndPassword(ctx, "ann@x.com", "pw1234")
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		auth := env.svc.ForClient("client-1")
		identity, err := auth.SignInWithEmailAndPassword(ctx, "Ann@x.com", "pw1234")
		require.NoError(t, err)
		assert.Equal(t, created.UID, identity.UID)

		token, err := auth.SessionToken(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := env.svc.ForClient("client-2").SignInWithEmailAndPassword(ctx, "ann@x.com", "wrong-pw")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		_, err := env.svc.ForClient("client-2").SignInWithEmailAndPassword(ctx, "bob@x.com", "pw1234")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		current, err := env.svc.ForClient("client-2").CurrentSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, current)
	})
}

func TestClientAuth_Sessions(t *testing.T) {
	ctx := context.Background()

	t.Run("SessionsArePerClient", func(t *testing.T) {
		env := newAuthTestEnv(t)
		_, err := env.svc.ForClient("client-1").CreateUserWithEmailAndPassword(ctx, "ann@x.com", "pw1234")
		require.NoError(t, err)

		other, err := env.svc.ForClient("client-2").CurrentSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, other)
	})

	t.Run("SignOut", func(t *testing.T) {
		env := newAuthTestEnv(t)
		auth := env.svc.ForClient("client-1")
		_, err := auth.CreateUserWithEmailAndPassword(ctx, "ann@x.com", "pw1234")
		require.NoError(t, err)

		require.NoError(t, auth.SignOut(ctx))
		current, err := auth.CurrentSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, current)

		assert.NoError(t, auth.SignOut(ctx), "signing out twice is not an error")
	})

	t.Run("SignOutFailure", func(t *testing.T) {
		sessions := new(mocks.MockSessionRepository)
		sessions.On("DeleteSession", mock.Anything, "client-1").Return(errors.New("redis down")).Once()
		svc := NewAuthService(new(mocks.MockAccountRepository), sessions, new(mocks.MockStateRepository),
			NewJWTService(testSecret, time.Hour), NewProviderRegistry(), config.SessionConfig{})

		err := svc.ForClient("client-1").SignOut(ctx)
		assert.ErrorContains(t, err, "redis down")
	})

	t.Run("TamperedTokenIsNoSession", func(t *testing.T) {
		env := newAuthTestEnv(t)
		require.NoError(t, env.sessions.StoreSession(ctx, &models.Session{
			SessionID: "forged",
			ClientID:  "client-1",
			UID:       "uid-1",
			Expiry:    time.Now().Add(time.Hour),
		}))

		current, err := env.svc.ForClient("client-1").CurrentSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, current)

		_, err = env.sessions.GetSession(ctx, "client-1")
		assert.ErrorIs(t, err, repository.ErrSessionNotFound, "invalid session should be removed")
	})

	t.Run("StoreFailure", func(t *testing.T) {
		sessions := new(mocks.MockSessionRepository)
		sessions.On("GetSession", mock.Anything, "client-1").Return(nil, errors.New("redis down")).Once()
		svc := NewAuthService(new(mocks.MockAccountRepository), sessions, new(mocks.MockStateRepository),
			NewJWTService(testSecret, time.Hour), NewProviderRegistry(), config.SessionConfig{})

		_, err := svc.ForClient("client-1").CurrentSession(ctx)
		assert.Error(t, err)
	})
}

func TestAuthService_BeginPopup(t *testing.T) {
	ctx := context.Background()

	t.Run("StoresState", func(t *testing.T) {
		env := newAuthTestEnv(t)
		state := env.beginPopup(t, "client-1")

		stored, err := env.states.ConsumeAuthState(ctx, state, "client-1")
		require.NoError(t, err)
		assert.Equal(t, "client-1", stored.ClientID)
		assert.Equal(t, "google", stored.Provider)
		assert.NotEmpty(t, stored.CodeVerifier)
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), stored.Expiry, 5*time.Second)
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		env := newAuthTestEnv(t)
		_, err := env.svc.BeginPopup(ctx, "client-1", "facebook")
		assert.ErrorIs(t, err, ErrUnknownProvider)
	})

	t.Run("StateStoreFailure", func(t *testing.T) {
		states := new(mocks.MockStateRepository)
		states.On("StoreAuthState", mock.Anything, mock.AnythingOfType("*models.AuthState")).Return(errors.New("redis down")).Once()
		google := new(mocks.MockFederatedProvider)
		google.On("Name").Return("google")
		svc := NewAuthService(new(mocks.MockAccountRepository), new(mocks.MockSessionRepository), states,
			NewJWTService(testSecret, time.Hour), NewProviderRegistry(google), config.SessionConfig{AuthStateExpiry: time.Minute})

		_, err := svc.BeginPopup(ctx, "client-1", "google")
		assert.ErrorContains(t, err, "redis down")
		google.AssertNotCalled(t, "AuthCodeURL", mock.Anything, mock.Anything)
	})
}

func TestClientAuth_SignInWithPopup(t *testing.T) {
	ctx := context.Background()
	googleUser := &models.OAuthUser{Subject: "google-sub-1", Email: "gina@x.com", DisplayName: "Gina"}

	t.Run("CreatesFederatedAccountOnce", func(t *testing.T) {
		env := newAuthTestEnv(t)
		auth := env.svc.ForClient("client-1")

		state := env.beginPopup(t, "client-1")
		env.google.On("Exchange", mock.Anything, "code-1", mock.Anything).Return(&models.OAuthUser{Subject: googleUser.Subject, Email: googleUser.Email, DisplayName: googleUser.DisplayName}, nil).Once()
		first, err := auth.SignInWithPopup(ctx, models.PopupResult{Provider: "google", State: state, Code: "code-1"})
		require.NoError(t, err)
		assert.Equal(t, "Gina", first.DisplayName)
		assert.Equal(t, "google", first.Provider)

		state = env.beginPopup(t, "client-1")
		env.google.On("Exchange", mock.Anything, "code-2", mock.Anything).Return(&models.OAuthUser{Subject: googleUser.Subject, Email: googleUser.Email, DisplayName: "Renamed"}, nil).Once()
		second, err := auth.SignInWithPopup(ctx, models.PopupResult{Provider: "google", State: state, Code: "code-2"})
		require.NoError(t, err)
		assert.Equal(t, first.UID, second.UID)

		current, err := auth.CurrentSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.UID, current.UID)
		env.google.AssertExpectations(t)
	})

	t.Run("PassesVerifierToExchange", func(t *testing.T) {
		env := newAuthTestEnv(t)
		state := env.beginPopup(t, "client-1")
		stored, err := env.states.ConsumeAuthState(ctx, state, "client-1")
		require.NoError(t, err)
		require.NoError(t, env.states.StoreAuthState(ctx, stored))

		env.google.On("Exchange", mock.Anything, "code-1", stored.CodeVerifier).Return(&models.OAuthUser{Subject: "s"}, nil).Once()
		_, err = env.svc.ForClient("client-1").SignInWithPopup(ctx, models.PopupResult{State: state, Code: "code-1"})
		require.NoError(t, err)
		env.google.AssertExpectations(t)
	})

	t.Run("PopupClosed", func(t *testing.T) {
		env := newAuthTestEnv(t)
		state := env.beginPopup(t, "client-1")

		_, err := env.svc.ForClient("client-1").SignInWithPopup(ctx, models.PopupResult{Provider: "google", State: state, Error: "access_denied"})
		assert.ErrorIs(t, err, ErrPopupClosed)
		env.google.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StateIsSingleUse", func(t *testing.T) {
		env := newAuthTestEnv(t)
		state := env.beginPopup(t, "client-1")
		env.google.On("Exchange", mock.Anything, "code-1", mock.Anything).Return(&models.OAuthUser{Subject: "s"}, nil).Once()
		auth := env.svc.ForClient("client-1")

		_, err := auth.SignInWithPopup(ctx, models.PopupResult{State: state, Code: "code-1"})
		require.NoError(t, err)
		_, err = auth.SignInWithPopup(ctx, models.PopupResult{State: state, Code: "code-1"})
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("StateOfAnotherClient", func(t *testing.T) {
		env := newAuthTestEnv(t)
		state := env.beginPopup(t, "client-1")

		_, err := env.svc.ForClient("client-2").SignInWithPopup(ctx, models.PopupResult{State: state, Code: "code-1"})
		assert.ErrorIs(t, err, ErrInvalidState)

		env.google.On("Exchange", mock.Anything, "code-1", mock.Anything).Return(&models.OAuthUser{Subject: "s"}, nil).Once()
		identity, err := env.svc.ForClient("client-1").SignInWithPopup(ctx, models.PopupResult{State: state, Code: "code-1"})
		require.NoError(t, err, "the owner's pending popup must survive a foreign callback")
		assert.NotEmpty(t, identity.UID)
	})

	t.Run("ExchangeFailure", func(t *testing.T) {
		env := newAuthTestEnv(t)
		state := env.beginPopup(t, "client-1")
		exchangeErr := errors.New("invalid_grant")
		env.google.On("Exchange", mock.Anything, "code-1", mock.Anything).Return(nil, exchangeErr).Once()

		_, err := env.svc.ForClient("client-1").SignInWithPopup(ctx, models.PopupResult{State: state, Code: "code-1"})
		assert.ErrorIs(t, err, exchangeErr)

		current, err := env.svc.ForClient("client-1").CurrentSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, current)
	})
}

func TestProviderRegistry(t *testing.T) {
	google := new(mocks.MockFederatedProvider)
	google.On("Name").Return("google")
	r := NewProviderRegistry(google)

	p, err := r.Get("GOOGLE")
	require.NoError(t, err)
	assert.Same(t, google, p)

	_, err = r.Get("github")
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Equal(t, []string{"google"}, r.Names())
}

func TestValidateEmail(t *testing.T) {
	for _, email := range []string{"a@x.com", "first.last@shop.example"} {
		assert.NoError(t, validateEmail(email), email)
	}
	for _, email := range []string{"", "a", "a@", "<a@x.com>", "A <a@x.com>", "a b@x.com"} {
		assert.ErrorIs(t, validateEmail(email), ErrInvalidEmail, email)
	}
}
