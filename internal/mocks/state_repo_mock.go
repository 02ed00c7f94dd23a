package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) StoreAuthState(ctx context.Context, state *models.AuthState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateRepository) ConsumeAuthState(ctx context.Context, state, clientID string) (*models.AuthState, error) {
	args := m.Called(ctx, state, clientID)
	authState, _ := args.Get(0).(*models.AuthState) // Handle nil case if needed
	return authState, args.Error(1)
}
