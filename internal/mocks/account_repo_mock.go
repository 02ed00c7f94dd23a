package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of the AccountRepository interface.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}

func (m *MockAccountRepository) GetAccountByProviderSubject(ctx context.Context, provider, subject string) (*models.Account, error) {
	args := m.Called(ctx, provider, subject)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}

func (m *MockAccountRepository) GetAccountByUID(ctx context.Context, uid string) (*models.Account, error) {
	args := m.Called(ctx, uid)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}
