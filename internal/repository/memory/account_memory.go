package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
)

// MemoryAccountRepository implements AccountRepository in memory (NOT FOR PRODUCTION)
type MemoryAccountRepository struct {
	accounts  map[string]models.Account // UID -> Account
	byEmail   map[string]string         // lower(email) -> UID, password accounts only
	bySubject map[string]string         // provider:subject -> UID
	mutex     sync.RWMutex
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		accounts:  make(map[string]models.Account),
		byEmail:   make(map[string]string),
		bySubject: make(map[string]string),
	}
}

var _ repository.AccountRepository = (*MemoryAccountRepository)(nil)

func subjectKey(provider, subject string) string {
	return provider + ":" + subject
}

func (r *MemoryAccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if account == nil || account.UID == "" {
		return errors.New("invalid account data: UID must be set")
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.accounts[account.UID]; exists {
		return repository.ErrAccountExists
	}
	if account.ProviderSubject != "" {
		key := subjectKey(account.Provider, account.ProviderSubject)
		if _, exists := r.bySubject[key]; exists {
			return repository.ErrAccountExists
		}
		r.bySubject[key] = account.UID
	} else {
		key := strings.ToLower(account.Email)
		if _, exists := r.byEmail[key]; exists {
			return repository.ErrAccountExists
		}
		r.byEmail[key] = account.UID
	}
	r.accounts[account.UID] = *account
	return nil
}

func (r *MemoryAccountRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	uid, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	account := r.accounts[uid]
	return &account, nil
}

func (r *MemoryAccountRepository) GetAccountByProviderSubject(ctx context.Context, provider, subject string) (*models.Account, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	uid, ok := r.bySubject[subjectKey(provider, subject)]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	account := r.accounts[uid]
	return &account, nil
}

func (r *MemoryAccountRepository) GetAccountByUID(ctx context.Context, uid string) (*models.Account, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	account, ok := r.accounts[uid]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return &account, nil
}
