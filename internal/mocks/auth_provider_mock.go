package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockAuthProvider is a mock implementation of the authflow.AuthProvider interface.
type MockAuthProvider struct {
	mock.Mock
}

func (m *MockAuthProvider) SignInWithPopup(ctx context.Context, popup models.PopupResult) (*models.Identity, error) {
	args := m.Called(ctx, popup)
	identity, _ := args.Get(0).(*models.Identity)
	return identity, args.Error(1)
}

func (m *MockAuthProvider) SignInWithEmailAndPassword(ctx context.Context, email, password string) (*models.Identity, error) {
	args := m.Called(ctx, email, password)
	identity, _ := args.Get(0).(*models.Identity)
	return identity, args.Error(1)
}

func (m *MockAuthProvider) CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*models.Identity, error) {
	args := m.Called(ctx, email, password)
	identity, _ := args.Get(0).(*models.Identity)
	return identity, args.Error(1)
}

func (m *MockAuthProvider) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAuthProvider) CurrentSession(ctx context.Context) (*models.Identity, error) {
	args := m.Called(ctx)
	identity, _ := args.Get(0).(*models.Identity) // nil means no session
	return identity, args.Error(1)
}
