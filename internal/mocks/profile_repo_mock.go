package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockProfileRepository is a mock implementation of the ProfileRepository interface.
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) EnsureProfile(ctx context.Context, identity *models.Identity, additionalData map[string]any) (repository.ProfileHandle, error) {
	args := m.Called(ctx, identity, additionalData)
	handle, _ := args.Get(0).(repository.ProfileHandle)
	return handle, args.Error(1)
}

// MockProfileHandle is a mock implementation of the ProfileHandle interface.
type MockProfileHandle struct {
	mock.Mock
}

func (m *MockProfileHandle) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockProfileHandle) Fetch(ctx context.Context) (*models.ProfileRecord, error) {
	args := m.Called(ctx)
	record, _ := args.Get(0).(*models.ProfileRecord)
	return record, args.Error(1)
}
