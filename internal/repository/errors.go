// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// order service and handlers to distinguish between different failure
// scenarios with errors.Is/errors.As instead of string matching.
package repository

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource owned by a different tenant. Handlers should
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because
// of conflicting state. Handlers should translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")

// Not-found sentinels, one per aggregate. Repositories translate
// sql.ErrNoRows into these so callers never depend on database/sql.
var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrUserNotFound       = errors.New("user not found")
)

// ErrInvalidCount is returned by the ledger when a reserve or release
// is attempted with a non-positive count. No store mutation happens.
var ErrInvalidCount = errors.New("count must be positive")

// ErrDuplicateQRCode wraps a unique constraint violation on
// tickets.qr_code. Collisions are astronomically unlikely but the
// coordinator regenerates codes and retries a bounded number of times
// before surfacing the error.
var ErrDuplicateQRCode = errors.New("duplicate qr code")

// ErrEmailExists is returned when registering a user or tenant slug
// that already exists.
var ErrEmailExists = errors.New("email already exists")

// ErrSlugExists is returned when a tenant slug is already taken.
var ErrSlugExists = errors.New("slug already exists")

// InsufficientStockError is the capacity error produced by the ledger
// when a reserve asks for more units than remain. It identifies the
// offending ticket type so callers can surface "sold out" per item.
type InsufficientStockError struct {
	TicketTypeID uint64 // offending ticket type
	Name         string // ticket type name at the time of the attempt
	Requested    int    // units asked for
	Available    int    // units that were actually left
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for ticket type %d (%s): requested %d, available %d",
		e.TicketTypeID, e.Name, e.Requested, e.Available)
}
