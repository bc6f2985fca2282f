// Package service hosts the order transaction coordinator.  It turns a
// purchase request into a consistent set of order and ticket rows plus
// matching ledger decrements, or changes nothing at all; cancellation
// reverses the same set as one unit.
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/monitoring"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

// Validation and state-conflict errors surfaced by the coordinator.
// They are returned before (validation) or inside (state) the unit of
// work; in both cases no partial mutation survives.
var (
	ErrNoLineItems          = errors.New("order must contain at least one line item")
	ErrInvalidQuantity      = errors.New("line item quantity must be positive")
	ErrMissingCustomerEmail = errors.New("customer email is required")
	ErrMissingQRCode        = errors.New("qr code is required")
	ErrTicketTypeNotInEvent = errors.New("ticket type does not belong to the event")
	ErrOrderNotCancellable  = errors.New("order cannot be cancelled in its current state")
	ErrOrderNotConfirmable  = errors.New("order cannot be confirmed in its current state")
	ErrOrderNotPayable      = errors.New("order cannot be paid in its current state")
	ErrTicketNotScannable   = errors.New("ticket cannot be scanned in its current state")
)

// maxQRCodeAttempts bounds how often a ticket batch is regenerated
// after a qr_code unique constraint violation before the integrity
// error is surfaced to the caller.
const maxQRCodeAttempts = 3

// UnitOfWork runs a function so that every store call inside it joins
// one transaction which commits or rolls back as a whole.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Ledger is the inventory side of the coordinator: atomic conditional
// reserve and clamped release on a ticket type's available counter.
type Ledger interface {
	Reserve(ctx context.Context, ticketTypeID uint64, count int) (*model.TicketType, error)
	Release(ctx context.Context, ticketTypeID uint64, count int) error
}

// OrderStore persists order rows and their status transitions.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	GetByIDForUpdate(ctx context.Context, id uint64) (*model.Order, error)
	UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) error
}

// TicketStore persists ticket rows.
type TicketStore interface {
	CreateBulk(ctx context.Context, tickets []model.Ticket) error
	ListByOrder(ctx context.Context, orderID uint64) ([]model.Ticket, error)
	CancelByOrder(ctx context.Context, orderID uint64) (int64, error)
	MarkUsedByCode(ctx context.Context, qrCode string) (bool, error)
	GetByCode(ctx context.Context, qrCode string) (*model.Ticket, error)
}

// CustomerStore resolves the buyer attached to an order.
type CustomerStore interface {
	FindOrCreate(ctx context.Context, tenantID uint64, email, name, phone string) (*model.Customer, error)
}

// Notifier publishes order lifecycle events after a commit.  A nil
// notifier disables publishing; failures are logged and ignored since
// the transaction has already committed.
type Notifier interface {
	OrderCreated(ctx context.Context, ev queue.OrderCreatedEvent) error
	OrderCancelled(ctx context.Context, ev queue.OrderCancelledEvent) error
}

// OrderService coordinates purchases, cancellations, status
// transitions and entry scans across the ledger and the stores.
type OrderService struct {
	uow       UnitOfWork
	ledger    Ledger
	orders    OrderStore
	tickets   TicketStore
	customers CustomerStore
	notifier  Notifier
}

// NewOrderService constructs an OrderService.  All dependencies except
// the notifier must be non-nil.
func NewOrderService(uow UnitOfWork, ledger Ledger, orders OrderStore, tickets TicketStore, customers CustomerStore, notifier Notifier) *OrderService {
	if uow == nil || ledger == nil || orders == nil || tickets == nil || customers == nil {
		panic("nil dependency passed to NewOrderService")
	}
	return &OrderService{
		uow:       uow,
		ledger:    ledger,
		orders:    orders,
		tickets:   tickets,
		customers: customers,
		notifier:  notifier,
	}
}

// LineItem is one requested position of a purchase.
type LineItem struct {
	TicketTypeID uint64
	Quantity     int
}

// CustomerInfo carries the buyer contact captured at checkout.  The
// fields are denormalized onto the order so later customer edits do
// not rewrite purchase history.
type CustomerInfo struct {
	Email string
	Name  string
	Phone string
}

// CreateOrderInput is the full purchase request.  EventID scopes the
// checkout: every ticket type must belong to it.
type CreateOrderInput struct {
	TenantID uint64
	EventID  uint64
	Customer CustomerInfo
	Items    []LineItem
}

// CreateOrderResult returns the created order together with its
// materialized tickets.
type CreateOrderResult struct {
	Order   *model.Order
	Tickets []model.Ticket
}

// CreateOrder executes the purchase workflow.  Duplicate ticket-type
// line items are merged by summing their quantities before any
// reservation happens, so a request is equivalent to its consolidated
// form.  Inside one unit of work each line item is reserved through
// the ledger's conditional update (there is no trusted upfront
// availability check), the exact decimal total is computed, the
// pending order row is written with the denormalized contact, and one
// active ticket per unit is inserted with a fresh unique code.  Any
// failure at any step rolls back every prior write and decrement of
// this attempt.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoLineItems
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	if strings.TrimSpace(in.Customer.Email) == "" {
		return nil, ErrMissingCustomerEmail
	}
	merged := mergeLineItems(in.Items)

	var (
		order   *model.Order
		tickets []model.Ticket
	)
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		type reservation struct {
			ticketType *model.TicketType
			quantity   int
		}
		total := decimal.Zero
		reservations := make([]reservation, 0, len(merged))
		for _, item := range merged {
			tt, err := s.ledger.Reserve(ctx, item.TicketTypeID, item.Quantity)
			if err != nil {
				return err
			}
			if in.EventID != 0 && tt.EventID != in.EventID {
				return ErrTicketTypeNotInEvent
			}
			total = total.Add(tt.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			reservations = append(reservations, reservation{ticketType: tt, quantity: item.Quantity})
		}

		customer, err := s.customers.FindOrCreate(ctx, in.TenantID,
			in.Customer.Email, in.Customer.Name, in.Customer.Phone)
		if err != nil {
			return err
		}

		order = &model.Order{
			TenantID:      in.TenantID,
			CustomerID:    customer.ID,
			Reference:     uuid.NewString(),
			CustomerEmail: customer.Email,
			CustomerName:  in.Customer.Name,
			CustomerPhone: in.Customer.Phone,
			TotalAmount:   total,
			Status:        model.OrderStatusPending,
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}

		for attempt := 0; attempt < maxQRCodeAttempts; attempt++ {
			batch := make([]model.Ticket, 0)
			for _, res := range reservations {
				for i := 0; i < res.quantity; i++ {
					code, err := utils.GenerateTicketCode()
					if err != nil {
						return err
					}
					batch = append(batch, model.Ticket{
						OrderID:      order.ID,
						TicketTypeID: res.ticketType.ID,
						QRCode:       code,
						Status:       model.TicketStatusActive,
					})
				}
			}
			err := s.tickets.CreateBulk(ctx, batch)
			if err == nil {
				tickets, err = s.tickets.ListByOrder(ctx, order.ID)
				return err
			}
			if !errors.Is(err, repository.ErrDuplicateQRCode) {
				return err
			}
			log.Printf("order-service: qr code collision on attempt %d, regenerating", attempt+1)
		}
		return repository.ErrDuplicateQRCode
	})
	if err != nil {
		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			monitoring.TrackCapacityRejection()
		}
		monitoring.TrackOrderOperation("create", "error")
		return nil, err
	}

	monitoring.TrackOrderOperation("create", "ok")
	monitoring.TrackReserved(len(tickets))
	if s.notifier != nil {
		ev := queue.OrderCreatedEvent{
			OrderID:       order.ID,
			Reference:     order.Reference,
			TenantID:      order.TenantID,
			CustomerEmail: order.CustomerEmail,
			CustomerName:  order.CustomerName,
			TotalAmount:   order.TotalAmount.StringFixed(2),
			TicketCount:   len(tickets),
			CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.notifier.OrderCreated(ctx, ev); err != nil {
			log.Printf("order-service: publish order created failed: %v", err)
		}
	}
	return &CreateOrderResult{Order: order, Tickets: tickets}, nil
}

// CancelOrder reverses a purchase as one atomic unit: it locks the
// order row, rejects anything but pending or confirmed (cancelled
// rejects again instead of double-releasing), groups the order's
// tickets by ticket type, releases the matching counts through the
// clamped ledger update, marks all tickets cancelled and finally the
// order itself.  A failure at any step leaves every counter and row
// untouched.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint64) (*model.Order, error) {
	var (
		order    *model.Order
		released int
	)
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.CanCancel() {
			return ErrOrderNotCancellable
		}
		tickets, err := s.tickets.ListByOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		counts := make(map[uint64]int)
		for _, t := range tickets {
			// Cancelled and refunded tickets already gave their
			// capacity back; releasing them again would rely on the
			// clamp instead of correctness.
			if t.Status == model.TicketStatusCancelled || t.Status == model.TicketStatusRefunded {
				continue
			}
			counts[t.TicketTypeID]++
			released++
		}
		for ticketTypeID, n := range counts {
			if err := s.ledger.Release(ctx, ticketTypeID, n); err != nil {
				return err
			}
		}
		if _, err := s.tickets.CancelByOrder(ctx, o.ID); err != nil {
			return err
		}
		if err := s.orders.UpdateStatus(ctx, o.ID, model.OrderStatusCancelled); err != nil {
			return err
		}
		o.Status = model.OrderStatusCancelled
		order = o
		return nil
	})
	if err != nil {
		monitoring.TrackOrderOperation("cancel", "error")
		return nil, err
	}

	monitoring.TrackOrderOperation("cancel", "ok")
	monitoring.TrackReleased(released)
	if s.notifier != nil {
		ev := queue.OrderCancelledEvent{
			OrderID:         order.ID,
			Reference:       order.Reference,
			TenantID:        order.TenantID,
			CustomerEmail:   order.CustomerEmail,
			TicketsReleased: released,
			CancelledAt:     time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.notifier.OrderCancelled(ctx, ev); err != nil {
			log.Printf("order-service: publish order cancelled failed: %v", err)
		}
	}
	return order, nil
}

// ConfirmOrder moves a pending order to confirmed under a row lock.
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID uint64) (*model.Order, error) {
	return s.transition(ctx, "confirm", orderID, model.OrderStatusConfirmed, func(o *model.Order) error {
		if !o.CanConfirm() {
			return ErrOrderNotConfirmable
		}
		return nil
	})
}

// PayOrder moves a pending or confirmed order to paid under a row
// lock.  Payment processing itself happens outside this service; this
// records the outcome.
func (s *OrderService) PayOrder(ctx context.Context, orderID uint64) (*model.Order, error) {
	return s.transition(ctx, "pay", orderID, model.OrderStatusPaid, func(o *model.Order) error {
		if !o.CanPay() {
			return ErrOrderNotPayable
		}
		return nil
	})
}

// transition implements the shared lock-check-update shape of the
// simple status changes.
func (s *OrderService) transition(ctx context.Context, op string, orderID uint64, to model.OrderStatus, check func(*model.Order) error) (*model.Order, error) {
	var order *model.Order
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := check(o); err != nil {
			return err
		}
		if err := s.orders.UpdateStatus(ctx, o.ID, to); err != nil {
			return err
		}
		o.Status = to
		order = o
		return nil
	})
	if err != nil {
		monitoring.TrackOrderOperation(op, "error")
		return nil, err
	}
	monitoring.TrackOrderOperation(op, "ok")
	return order, nil
}

// ScanTicketByCode performs the single-use entry scan.  The
// active→used transition and the scanned_at stamp are one conditional
// update in the store; when no row changes the loaded ticket tells a
// missing code apart from a terminal state, and scanned_at keeps its
// original value.
func (s *OrderService) ScanTicketByCode(ctx context.Context, qrCode string) (*model.Ticket, error) {
	if strings.TrimSpace(qrCode) == "" {
		return nil, ErrMissingQRCode
	}
	var ticket *model.Ticket
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		changed, err := s.tickets.MarkUsedByCode(ctx, qrCode)
		if err != nil {
			return err
		}
		t, err := s.tickets.GetByCode(ctx, qrCode)
		if err != nil {
			return err
		}
		if !changed {
			return ErrTicketNotScannable
		}
		ticket = t
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTicketNotFound):
			monitoring.TrackScan("not_found")
		case errors.Is(err, ErrTicketNotScannable):
			monitoring.TrackScan("rejected")
		}
		return nil, err
	}
	monitoring.TrackScan("used")
	return ticket, nil
}

// mergeLineItems consolidates duplicate ticket-type positions by
// summing their quantities, preserving first-seen order.  Duplicates
// in a request are therefore equivalent to one combined line item.
func mergeLineItems(items []LineItem) []LineItem {
	merged := make([]LineItem, 0, len(items))
	index := make(map[uint64]int, len(items))
	for _, item := range items {
		if i, ok := index[item.TicketTypeID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.TicketTypeID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
