package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockFederatedProvider is a mock implementation of the service.FederatedProvider interface.
type MockFederatedProvider struct {
	mock.Mock
}

func (m *MockFederatedProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockFederatedProvider) AuthCodeURL(state, verifier string) string {
	args := m.Called(state, verifier)
	return args.String(0)
}

func (m *MockFederatedProvider) Exchange(ctx context.Context, code, verifier string) (*models.OAuthUser, error) {
	args := m.Called(ctx, code, verifier)
	user, _ := args.Get(0).(*models.OAuthUser)
	return user, args.Error(1)
}
