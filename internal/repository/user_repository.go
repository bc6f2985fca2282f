package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

// UserRepo provides persistence for organizer staff accounts.
type UserRepo struct{ db *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a user under a tenant and returns its ID.  The
// password is hashed with bcrypt using the given cost before it ever
// reaches the database.
func (r *UserRepo) Create(ctx context.Context, tenantID uint64, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	q := queryer(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`INSERT INTO users (tenant_id, email, password_hash, role) VALUES (?, ?, ?, ?)`,
		tenantID, email, hash, role)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	q := queryer(ctx, r.db)
	var u model.User
	var deletedAt sql.NullTime
	err := q.QueryRowContext(ctx,
		`SELECT id, tenant_id, email, password_hash, role, is_active, created_at, updated_at, deleted_at
		 FROM users WHERE email = ? AND deleted_at IS NULL LIMIT 1`, email).
		Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
			&u.CreatedAt, &u.UpdatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return &u, nil
}
