package repository

import (
	"context"
	"fmt"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
)

// AccountRepository stores the identity provider's accounts.
type AccountRepository interface {
	// CreateAccount stores a new account.
	// It should return ErrAccountExists if the email (or provider subject) is already taken.
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccountByEmail returns ErrAccountNotFound if no password account uses email.
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetAccountByProviderSubject looks up a federated account by provider and subject.
	// It should return ErrAccountNotFound if the account does not exist.
	GetAccountByProviderSubject(ctx context.Context, provider, subject string) (*models.Account, error)

	GetAccountByUID(ctx context.Context, uid string) (*models.Account, error)
}

// Common errors
var ErrAccountNotFound = fmt.Errorf("account not found")
var ErrAccountExists = fmt.Errorf("account already exists")
