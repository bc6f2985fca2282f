package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// CustomerRepo provides persistence for ticket buyers.  Customers are
// deduplicated per tenant by normalized email and created lazily
// during checkout.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerColumns = `id, tenant_id, email, name, phone, created_at, updated_at, deleted_at`

func scanCustomer(row interface{ Scan(...any) error }) (*model.Customer, error) {
	var c model.Customer
	var deletedAt sql.NullTime
	err := row.Scan(&c.ID, &c.TenantID, &c.Email, &c.Name, &c.Phone,
		&c.CreatedAt, &c.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		c.DeletedAt = &t
	}
	return &c, nil
}

// GetByID returns a customer by ID, excluding soft-deleted rows.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	q := queryer(ctx, r.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ? AND deleted_at IS NULL`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	return c, err
}

// FindOrCreate looks a customer up by tenant and normalized email and
// inserts one when missing.  A duplicate-entry race with a concurrent
// checkout is resolved by re-reading the winner's row.
func (r *CustomerRepo) FindOrCreate(ctx context.Context, tenantID uint64, email, name, phone string) (*model.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	q := queryer(ctx, r.db)
	get := func() (*model.Customer, error) {
		row := q.QueryRowContext(ctx,
			`SELECT `+customerColumns+` FROM customers WHERE tenant_id = ? AND email = ? AND deleted_at IS NULL`,
			tenantID, email)
		return scanCustomer(row)
	}
	c, err := get()
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO customers (tenant_id, email, name, phone) VALUES (?, ?, ?, ?)`,
		tenantID, email, name, phone); err != nil {
		if isDuplicateEntry(err) {
			return get()
		}
		return nil, err
	}
	return get()
}
