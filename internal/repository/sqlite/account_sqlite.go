package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
)

const accountColumns = `uid, email, display_name, password_hash, provider, provider_subject, created_at`

// SQLiteAccountRepository implements AccountRepository on sqlite.
type SQLiteAccountRepository struct {
	db *sqlx.DB
}

func NewSQLiteAccountRepository(db *sqlx.DB) *SQLiteAccountRepository {
	return &SQLiteAccountRepository{db: db}
}

var _ repository.AccountRepository = (*SQLiteAccountRepository)(nil)

func (r *SQLiteAccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if account == nil || account.UID == "" {
		return errors.New("invalid account data: UID must be set")
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (:uid, :email, :display_name, :password_hash, :provider, :provider_subject, :created_at)`,
		account)
	if isUniqueViolation(err) {
		return repository.ErrAccountExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (r *SQLiteAccountRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts
		WHERE email = ? COLLATE NOCASE AND provider_subject = ''`, email)
}

func (r *SQLiteAccountRepository) GetAccountByProviderSubject(ctx context.Context, provider, subject string) (*models.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts
		WHERE provider = ? AND provider_subject = ?`, provider, subject)
}

func (r *SQLiteAccountRepository) GetAccountByUID(ctx context.Context, uid string) (*models.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE uid = ?`, uid)
}

func (r *SQLiteAccountRepository) get(ctx context.Context, query string, args ...any) (*models.Account, error) {
	var account models.Account
	err := r.db.GetContext(ctx, &account, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed for account: %w", err)
	}
	return &account, nil
}
