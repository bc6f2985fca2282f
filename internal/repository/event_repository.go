package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// EventRepo provides persistence for events.  Tenant ownership is
// enforced here for mutating operations: callers pass the acting
// tenant ID and receive ErrForbidden on a mismatch, matching the
// behavior handlers translate into HTTP 403.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, tenant_id, name, venue, starts_at, status, created_at, updated_at, deleted_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var deletedAt sql.NullTime
	err := row.Scan(&e.ID, &e.TenantID, &e.Name, &e.Venue, &e.StartsAt, &e.Status,
		&e.CreatedAt, &e.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		e.DeletedAt = &t
	}
	return &e, nil
}

// Create inserts an event in draft status and populates the generated
// ID and timestamps on the passed model.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	if e.Status == "" {
		e.Status = model.EventStatusDraft
	}
	q := queryer(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`INSERT INTO events (tenant_id, name, venue, starts_at, status) VALUES (?, ?, ?, ?, ?)`,
		e.TenantID, e.Name, e.Venue, e.StartsAt.UTC(), e.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	created, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *created
	return nil
}

// GetByID returns an event by ID, excluding soft-deleted rows.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	q := queryer(ctx, r.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ? AND deleted_at IS NULL`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return e, err
}

// GetPublishedByID returns an event only when it is published.  Used
// by the public browse and checkout surfaces.
func (r *EventRepo) GetPublishedByID(ctx context.Context, id uint64) (*model.Event, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status != model.EventStatusPublished {
		return nil, ErrEventNotFound
	}
	return e, nil
}

// ListByTenant returns all active events owned by a tenant, newest
// first.
func (r *EventRepo) ListByTenant(ctx context.Context, tenantID uint64) ([]model.Event, error) {
	q := queryer(ctx, r.db)
	rows, err := q.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE tenant_id = ? AND deleted_at IS NULL ORDER BY id DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// ListPublished returns published events across all tenants for the
// public browse endpoint, soonest first.
func (r *EventRepo) ListPublished(ctx context.Context) ([]model.Event, error) {
	q := queryer(ctx, r.db)
	rows, err := q.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE status = ? AND deleted_at IS NULL ORDER BY starts_at`,
		model.EventStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// UpdateForTenant updates the mutable event fields after verifying
// ownership.  It returns ErrForbidden when the event belongs to a
// different tenant.
func (r *EventRepo) UpdateForTenant(ctx context.Context, tenantID, id uint64, name, venue string, startsAt time.Time, status string) error {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.TenantID != tenantID {
		return ErrForbidden
	}
	q := queryer(ctx, r.db)
	_, err = q.ExecContext(ctx,
		`UPDATE events SET name = ?, venue = ?, starts_at = ?, status = ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND deleted_at IS NULL`,
		name, venue, startsAt.UTC(), status, id)
	return err
}

// SoftDeleteForTenant marks an event deleted after verifying
// ownership.  Ticket types under the event remain readable through
// the including-deleted accessors for audit purposes.
func (r *EventRepo) SoftDeleteForTenant(ctx context.Context, tenantID, id uint64) error {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.TenantID != tenantID {
		return ErrForbidden
	}
	q := queryer(ctx, r.db)
	_, err = q.ExecContext(ctx,
		`UPDATE events SET deleted_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL`, id)
	return err
}
