// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderCreatedEvent is published after a purchase commits.  It carries
// enough information for downstream consumers (notification senders,
// analytics) to act without querying the primary database.  Amounts
// travel as decimal strings to avoid float drift in consumers.
type OrderCreatedEvent struct {
	OrderID       uint64 `json:"order_id"`
	Reference     string `json:"reference"`
	TenantID      uint64 `json:"tenant_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
	TotalAmount   string `json:"total_amount"`
	TicketCount   int    `json:"ticket_count"`
	CreatedAt     string `json:"created_at"`
}

// OrderCancelledEvent is published after a cancellation commits, once
// the tickets are cancelled and the ledger capacity is released.
type OrderCancelledEvent struct {
	OrderID         uint64 `json:"order_id"`
	Reference       string `json:"reference"`
	TenantID        uint64 `json:"tenant_id"`
	CustomerEmail   string `json:"customer_email"`
	TicketsReleased int    `json:"tickets_released"`
	CancelledAt     string `json:"cancelled_at"`
}
