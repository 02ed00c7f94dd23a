package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
)

// SQLiteProfileRepository implements ProfileRepository on sqlite.
type SQLiteProfileRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLiteProfileRepository(db *sqlx.DB) *SQLiteProfileRepository {
	return &SQLiteProfileRepository{db: db, now: time.Now}
}

var _ repository.ProfileRepository = (*SQLiteProfileRepository)(nil)

type profileRow struct {
	ID          string    `db:"id"`
	DisplayName string    `db:"display_name"`
	Email       string    `db:"email"`
	CreatedAt   time.Time `db:"created_at"`
	Extra       string    `db:"extra"`
}

// EnsureProfile relies on INSERT OR IGNORE so an existing row is left untouched.
func (r *SQLiteProfileRepository) EnsureProfile(ctx context.Context, identity *models.Identity, additionalData map[string]any) (repository.ProfileHandle, error) {
	if identity == nil || identity.UID == "" {
		return nil, errors.New("identity with a UID is required")
	}
	rec := models.NewProfileRecord(identity, additionalData, r.now())

	extra := []byte("{}")
	if len(rec.Extra) > 0 {
		var err error
		if extra, err = json.Marshal(rec.Extra); err != nil {
			return nil, fmt.Errorf("failed to marshal profile extras: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO profiles (id, display_name, email, created_at, extra)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.DisplayName, rec.Email, rec.CreatedAt, string(extra))
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}
	return &sqliteProfileHandle{db: r.db, id: identity.UID}, nil
}

type sqliteProfileHandle struct {
	db *sqlx.DB
	id string
}

func (h *sqliteProfileHandle) ID() string {
	return h.id
}

func (h *sqliteProfileHandle) Fetch(ctx context.Context) (*models.ProfileRecord, error) {
	var row profileRow
	err := h.db.GetContext(ctx, &row, `
		SELECT id, display_name, email, created_at, extra FROM profiles WHERE id = ?`, h.id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed for profile: %w", err)
	}

	rec := &models.ProfileRecord{
		ID:          row.ID,
		DisplayName: row.DisplayName,
		Email:       row.Email,
		CreatedAt:   row.CreatedAt.UTC(),
	}
	if row.Extra != "" && row.Extra != "{}" {
		if err := json.Unmarshal([]byte(row.Extra), &rec.Extra); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile extras: %w", err)
		}
	}
	return rec, nil
}
