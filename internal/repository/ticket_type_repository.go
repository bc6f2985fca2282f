package repository // repository for ticket type persistence and the inventory ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// TicketTypeRepo encapsulates database operations for ticket_types,
// including the inventory ledger.  The available counter is mutated
// exclusively through Reserve and Release; Update deliberately cannot
// touch capacity or available so the 0 <= available <= capacity
// invariant can only be enforced in one place.
type TicketTypeRepo struct {
	db *sql.DB
}

// NewTicketTypeRepo constructs a TicketTypeRepo given a DB handle.
func NewTicketTypeRepo(db *sql.DB) *TicketTypeRepo {
	return &TicketTypeRepo{db: db}
}

const ticketTypeColumns = `id, event_id, name, price, capacity, available, created_at, updated_at, deleted_at`

// scanTicketType reads one ticket_types row.  deleted_at is nullable
// and mapped onto the shared audit value object.
func scanTicketType(row interface{ Scan(...any) error }) (*model.TicketType, error) {
	var tt model.TicketType
	var deletedAt sql.NullTime
	err := row.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.Capacity, &tt.Available,
		&tt.CreatedAt, &tt.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		tt.DeletedAt = &t
	}
	return &tt, nil
}

// Create inserts a ticket type with available initialized to capacity
// and populates the generated ID and timestamps on the passed model.
func (r *TicketTypeRepo) Create(ctx context.Context, tt *model.TicketType) error {
	q := queryer(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`INSERT INTO ticket_types (event_id, name, price, capacity, available) VALUES (?, ?, ?, ?, ?)`,
		tt.EventID, tt.Name, tt.Price, tt.Capacity, tt.Capacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tt.ID = uint64(id)
	created, err := r.GetByID(ctx, tt.ID)
	if err != nil {
		return err
	}
	*tt = *created
	return nil
}

// GetByID returns a ticket type by ID, excluding soft-deleted rows.
func (r *TicketTypeRepo) GetByID(ctx context.Context, id uint64) (*model.TicketType, error) {
	q := queryer(ctx, r.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+ticketTypeColumns+` FROM ticket_types WHERE id = ? AND deleted_at IS NULL`, id)
	tt, err := scanTicketType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketTypeNotFound
	}
	return tt, err
}

// GetByIDIncludingDeleted returns a ticket type regardless of its
// soft-delete marker.  Used for audit views of historical orders.
func (r *TicketTypeRepo) GetByIDIncludingDeleted(ctx context.Context, id uint64) (*model.TicketType, error) {
	q := queryer(ctx, r.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+ticketTypeColumns+` FROM ticket_types WHERE id = ?`, id)
	tt, err := scanTicketType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketTypeNotFound
	}
	return tt, err
}

// ListByEvent returns all active ticket types for an event ordered by
// creation.
func (r *TicketTypeRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.TicketType, error) {
	q := queryer(ctx, r.db)
	rows, err := q.QueryContext(ctx,
		`SELECT `+ticketTypeColumns+` FROM ticket_types WHERE event_id = ? AND deleted_at IS NULL ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := make([]model.TicketType, 0)
	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *tt)
	}
	return types, rows.Err()
}

// Update changes the name and price of a ticket type.  Capacity is
// fixed at creation and available belongs to the ledger, so neither
// can be overwritten here.
func (r *TicketTypeRepo) Update(ctx context.Context, id uint64, name string, price decimal.Decimal) error {
	q := queryer(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`UPDATE ticket_types SET name = ?, price = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL`,
		name, price, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketTypeNotFound
	}
	return nil
}

// SoftDelete marks a ticket type deleted.  The row stays in storage
// so existing tickets keep a valid reference.
func (r *TicketTypeRepo) SoftDelete(ctx context.Context, id uint64) error {
	q := queryer(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`UPDATE ticket_types SET deleted_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketTypeNotFound
	}
	return nil
}

// Reserve atomically decrements the available counter by count.  The
// check and the decrement are a single conditional UPDATE so two
// concurrent purchasers of the last unit can never both succeed; there
// is no read-then-write window at the application layer.  On success
// the updated record is returned.  When the guard fails the counter is
// left untouched and the error distinguishes a missing ticket type
// from insufficient stock.
func (r *TicketTypeRepo) Reserve(ctx context.Context, id uint64, count int) (*model.TicketType, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	q := queryer(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`UPDATE ticket_types SET available = available - ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND available >= ? AND deleted_at IS NULL`,
		count, id, count)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		tt, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &InsufficientStockError{
			TicketTypeID: id,
			Name:         tt.Name,
			Requested:    count,
			Available:    tt.Available,
		}
	}
	return r.GetByID(ctx, id)
}

// Release atomically returns count units to the pool, clamped at
// capacity with LEAST so a spurious double-release from a bug cannot
// push availability above capacity.  It succeeds whenever the ticket
// type exists, soft-deleted or not, since cancellations may outlive
// the catalog entry.
func (r *TicketTypeRepo) Release(ctx context.Context, id uint64, count int) error {
	if count <= 0 {
		return ErrInvalidCount
	}
	q := queryer(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`UPDATE ticket_types SET available = LEAST(available + ?, capacity), updated_at = UTC_TIMESTAMP()
		 WHERE id = ?`,
		count, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketTypeNotFound
	}
	return nil
}
