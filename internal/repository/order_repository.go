package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// OrderRepo provides persistence for orders.  Status transitions run
// through UpdateStatus under the coordinator's transaction; the
// denormalized contact columns are written once at creation and never
// updated afterwards.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, tenant_id, customer_id, reference, customer_email, customer_name, customer_phone,
	total_amount, status, created_at, updated_at, deleted_at`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	var customerID sql.NullInt64
	var deletedAt sql.NullTime
	err := row.Scan(&o.ID, &o.TenantID, &customerID, &o.Reference,
		&o.CustomerEmail, &o.CustomerName, &o.CustomerPhone,
		&o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	// customer_id is nullable at the database level; business logic
	// always sets it, so zero only ever appears on legacy rows.
	if customerID.Valid {
		o.CustomerID = uint64(customerID.Int64)
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		o.DeletedAt = &t
	}
	return &o, nil
}

// Create inserts an order row and populates the generated ID and
// timestamps on the passed model.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	q := queryer(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`INSERT INTO orders (tenant_id, customer_id, reference, customer_email, customer_name, customer_phone, total_amount, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.TenantID, o.CustomerID, o.Reference, o.CustomerEmail, o.CustomerName, o.CustomerPhone,
		o.TotalAmount, o.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	created, err := r.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}
	*o = *created
	return nil
}

// GetByID returns an order by ID, excluding soft-deleted rows.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	q := queryer(ctx, r.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ? AND deleted_at IS NULL`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// GetByIDForUpdate loads an order with a row lock.  It must run inside
// a unit of work; the lock serializes concurrent status transitions on
// the same order for the duration of the transaction.
func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Order, error) {
	q := queryer(ctx, r.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ? AND deleted_at IS NULL FOR UPDATE`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// GetByReference returns an order by its customer-facing reference.
func (r *OrderRepo) GetByReference(ctx context.Context, reference string) (*model.Order, error) {
	q := queryer(ctx, r.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE reference = ? AND deleted_at IS NULL`, reference)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// UpdateStatus sets the order status.  State checks belong to the
// coordinator, which holds the row lock when it calls this.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) error {
	q := queryer(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL`,
		status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ListByTenant returns the most recent orders for a tenant, newest
// first, capped at limit.
func (r *OrderRepo) ListByTenant(ctx context.Context, tenantID uint64, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := queryer(ctx, r.db)
	rows, err := q.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE tenant_id = ? AND deleted_at IS NULL ORDER BY id DESC LIMIT ?`,
		tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}
