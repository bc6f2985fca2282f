package model

import "github.com/shopspring/decimal"

// TicketType is a priced category of admission for an event with its
// own finite capacity pool.  Availability starts equal to capacity and
// is mutated exclusively through the ledger's reserve and release
// operations; general update paths never touch the counters.
//
// Invariant: 0 <= Available <= Capacity at all times.
//
// Fields:
//  ID        – primary key identifier.
//  EventID   – event this category belongs to.
//  Name      – category label (e.g. "General", "VIP").
//  Price     – unit price; exact decimal, never a float.
//  Capacity  – total units that may ever be issued; fixed at creation.
//  Available – units still reservable.
type TicketType struct {
	ID        uint64          // ticket_types.id
	EventID   uint64          // ticket_types.event_id
	Name      string          // ticket_types.name
	Price     decimal.Decimal // ticket_types.price (DECIMAL(10,2))
	Capacity  int             // ticket_types.capacity
	Available int             // ticket_types.available
	Audit
}

// SoldOut reports whether no units remain in the pool.  Browse-time
// availability may be stale by the time checkout runs; the ledger's
// conditional update is the authority.
func (t *TicketType) SoldOut() bool {
	return t.Available <= 0
}
