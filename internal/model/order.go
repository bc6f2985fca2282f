package model

import "github.com/shopspring/decimal"

// OrderStatus enumerates the lifecycle states of an order.  Orders are
// created pending, move forward through confirmed and paid via
// explicit operations, and leave the happy path only through the
// cancellation workflow which also releases ledger capacity.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// Order groups the tickets bought in a single purchase.  The contact
// fields are copied from the customer at order time and are therefore
// independent of later customer edits.
//
// Fields:
//  ID            – primary key identifier.
//  TenantID      – tenant the order belongs to.
//  CustomerID    – buyer; required by business logic even though the
//                  column is nullable.
//  Reference     – customer-facing opaque reference (UUID string).
//  CustomerEmail – contact email captured at order time.
//  CustomerName  – contact name captured at order time.
//  CustomerPhone – contact phone captured at order time.
//  TotalAmount   – exact decimal sum of price*quantity over all items.
//  Status        – current lifecycle state.
type Order struct {
	ID            uint64          // orders.id
	TenantID      uint64          // orders.tenant_id
	CustomerID    uint64          // orders.customer_id
	Reference     string          // orders.reference (unique)
	CustomerEmail string          // orders.customer_email
	CustomerName  string          // orders.customer_name
	CustomerPhone string          // orders.customer_phone
	TotalAmount   decimal.Decimal // orders.total_amount (DECIMAL(12,2))
	Status        OrderStatus     // orders.status
	Audit
}

// CanCancel reports whether the cancellation workflow may run.  Paid
// orders leave only via the refund path and cancelled orders reject a
// second cancellation rather than double-releasing stock.
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// CanConfirm reports whether the order may transition to confirmed.
func (o *Order) CanConfirm() bool {
	return o.Status == OrderStatusPending
}

// CanPay reports whether the order may transition to paid.
func (o *Order) CanPay() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}
