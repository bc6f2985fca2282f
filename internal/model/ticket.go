package model

import "time"

// TicketStatus enumerates the lifecycle states of an individual
// ticket.  A ticket moves active→used exactly once on its first valid
// scan; used and cancelled are terminal for scanning purposes.
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusRefunded  TicketStatus = "refunded"
)

// Ticket is a single unit of admission.  Tickets are created only as
// a byproduct of a successful reservation, never standalone, so the
// count of non-cancelled tickets per ticket type can never exceed the
// type's capacity.
//
// Fields:
//  ID           – primary key identifier.
//  OrderID      – order the ticket was purchased under.
//  TicketTypeID – category the ticket was issued from.
//  QRCode       – globally unique opaque validation token (10–255
//                 chars); the only cross-cutting contract scanning
//                 integrations depend on.
//  Status       – current lifecycle state.
//  ScannedAt    – set exactly once on the first valid scan.
type Ticket struct {
	ID           uint64       // tickets.id
	OrderID      uint64       // tickets.order_id
	TicketTypeID uint64       // tickets.ticket_type_id
	QRCode       string       // tickets.qr_code (unique)
	Status       TicketStatus // tickets.status
	ScannedAt    *time.Time   // tickets.scanned_at (nullable)
	Audit
}

// CanScan reports whether a scan attempt may transition the ticket to
// used.
func (t *Ticket) CanScan() bool {
	return t.Status == TicketStatusActive
}
