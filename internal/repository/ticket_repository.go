package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// TicketRepo provides persistence for individual tickets.  Tickets are
// only ever inserted by the order coordinator alongside a matching
// ledger decrement, so every row here is backed by reserved capacity.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `id, order_id, ticket_type_id, qr_code, status, scanned_at, created_at, updated_at, deleted_at`

func scanTicket(row interface{ Scan(...any) error }) (*model.Ticket, error) {
	var t model.Ticket
	var scannedAt, deletedAt sql.NullTime
	err := row.Scan(&t.ID, &t.OrderID, &t.TicketTypeID, &t.QRCode, &t.Status,
		&scannedAt, &t.CreatedAt, &t.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if scannedAt.Valid {
		ts := scannedAt.Time
		t.ScannedAt = &ts
	}
	if deletedAt.Valid {
		ts := deletedAt.Time
		t.DeletedAt = &ts
	}
	return &t, nil
}

// CreateBulk inserts multiple tickets in one statement.  Each ticket
// must carry OrderID, TicketTypeID, QRCode and Status.  A unique
// constraint violation on qr_code is reported as ErrDuplicateQRCode so
// the coordinator can regenerate codes and retry.  Passing an empty
// slice has no effect and returns nil.
func (r *TicketRepo) CreateBulk(ctx context.Context, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	query := `INSERT INTO tickets (order_id, ticket_type_id, qr_code, status) VALUES `
	args := make([]any, 0, len(tickets)*4)
	for i, t := range tickets {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, t.OrderID, t.TicketTypeID, t.QRCode, t.Status)
	}
	q := queryer(ctx, r.db)
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateQRCode
		}
		return err
	}
	return nil
}

// ListByOrder returns all tickets belonging to an order ordered by ID.
func (r *TicketRepo) ListByOrder(ctx context.Context, orderID uint64) ([]model.Ticket, error) {
	q := queryer(ctx, r.db)
	rows, err := q.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE order_id = ? AND deleted_at IS NULL ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// CancelByOrder transitions every not-yet-cancelled ticket of an order
// to cancelled and returns how many rows changed.
func (r *TicketRepo) CancelByOrder(ctx context.Context, orderID uint64) (int64, error) {
	q := queryer(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`UPDATE tickets SET status = ?, updated_at = UTC_TIMESTAMP()
		 WHERE order_id = ? AND status <> ? AND deleted_at IS NULL`,
		model.TicketStatusCancelled, orderID, model.TicketStatusCancelled)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkUsedByCode performs the single-use scan transition.  The status
// guard and the update are one conditional statement, so a ticket can
// move active→used exactly once and scanned_at is written exactly
// once.  It reports whether a row changed; callers use GetByCode to
// distinguish an unknown code from a terminal state.
func (r *TicketRepo) MarkUsedByCode(ctx context.Context, qrCode string) (bool, error) {
	q := queryer(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`UPDATE tickets SET status = ?, scanned_at = UTC_TIMESTAMP(), updated_at = UTC_TIMESTAMP()
		 WHERE qr_code = ? AND status = ? AND deleted_at IS NULL`,
		model.TicketStatusUsed, qrCode, model.TicketStatusActive)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetByCode returns a ticket by its qr code.
func (r *TicketRepo) GetByCode(ctx context.Context, qrCode string) (*model.Ticket, error) {
	q := queryer(ctx, r.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE qr_code = ? AND deleted_at IS NULL`, qrCode)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	return t, err
}
