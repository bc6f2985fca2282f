package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// TenantRepo provides persistence for organizer accounts.
type TenantRepo struct {
	db *sql.DB
}

// NewTenantRepo returns a new TenantRepo bound to the given database.
func NewTenantRepo(db *sql.DB) *TenantRepo { return &TenantRepo{db: db} }

const tenantColumns = `id, name, slug, created_at, updated_at, deleted_at`

func scanTenant(row interface{ Scan(...any) error }) (*model.Tenant, error) {
	var t model.Tenant
	var deletedAt sql.NullTime
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		ts := deletedAt.Time
		t.DeletedAt = &ts
	}
	return &t, nil
}

// Create inserts a tenant.  Slugs are normalized to lower case and
// must be unique; a duplicate is reported as ErrSlugExists.
func (r *TenantRepo) Create(ctx context.Context, t *model.Tenant) error {
	t.Slug = strings.ToLower(strings.TrimSpace(t.Slug))
	q := queryer(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`INSERT INTO tenants (name, slug) VALUES (?, ?)`, t.Name, t.Slug)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrSlugExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	created, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

// GetByID returns a tenant by ID, excluding soft-deleted rows.
func (r *TenantRepo) GetByID(ctx context.Context, id uint64) (*model.Tenant, error) {
	q := queryer(ctx, r.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = ? AND deleted_at IS NULL`, id)
	t, err := scanTenant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTenantNotFound
	}
	return t, err
}

// GetBySlug returns a tenant by its URL slug.
func (r *TenantRepo) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	q := queryer(ctx, r.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE slug = ? AND deleted_at IS NULL`, slug)
	t, err := scanTenant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTenantNotFound
	}
	return t, err
}
