package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// fakeBackend is an in-memory stand-in for the repositories.  One
// mutex serializes units of work the way the database serializes
// conditional updates, and the unit of work snapshots the whole state
// so a failed workflow restores every counter and row.
type fakeBackend struct {
	mu          sync.Mutex
	ticketTypes map[uint64]*model.TicketType
	orders      map[uint64]*model.Order
	tickets     []model.Ticket
	customers   map[string]*model.Customer
	nextID      uint64

	failCreateBulk    []error // consumed front to back on CreateBulk calls
	failOrderInsert   error
	failCancelTickets error
}

func newFakeBackend(types ...*model.TicketType) *fakeBackend {
	b := &fakeBackend{
		ticketTypes: make(map[uint64]*model.TicketType),
		orders:      make(map[uint64]*model.Order),
		customers:   make(map[string]*model.Customer),
		nextID:      1000,
	}
	for _, tt := range types {
		cp := *tt
		b.ticketTypes[tt.ID] = &cp
	}
	return b
}

func (b *fakeBackend) id() uint64 {
	b.nextID++
	return b.nextID
}

type snapshot struct {
	ticketTypes map[uint64]*model.TicketType
	orders      map[uint64]*model.Order
	tickets     []model.Ticket
	customers   map[string]*model.Customer
	nextID      uint64
}

func (b *fakeBackend) snapshot() snapshot {
	s := snapshot{
		ticketTypes: make(map[uint64]*model.TicketType, len(b.ticketTypes)),
		orders:      make(map[uint64]*model.Order, len(b.orders)),
		tickets:     append([]model.Ticket(nil), b.tickets...),
		customers:   make(map[string]*model.Customer, len(b.customers)),
		nextID:      b.nextID,
	}
	for id, tt := range b.ticketTypes {
		cp := *tt
		s.ticketTypes[id] = &cp
	}
	for id, o := range b.orders {
		cp := *o
		s.orders[id] = &cp
	}
	for email, c := range b.customers {
		cp := *c
		s.customers[email] = &cp
	}
	return s
}

func (b *fakeBackend) restore(s snapshot) {
	b.ticketTypes = s.ticketTypes
	b.orders = s.orders
	b.tickets = s.tickets
	b.customers = s.customers
	b.nextID = s.nextID
}

// fakeUoW runs fn under the backend lock and rolls the state back on
// error, mirroring the transactional unit of work.
type fakeUoW struct{ b *fakeBackend }

func (u *fakeUoW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	u.b.mu.Lock()
	defer u.b.mu.Unlock()
	snap := u.b.snapshot()
	if err := fn(ctx); err != nil {
		u.b.restore(snap)
		return err
	}
	return nil
}

// ----- Ledger -----

func (b *fakeBackend) Reserve(ctx context.Context, id uint64, count int) (*model.TicketType, error) {
	tt, ok := b.ticketTypes[id]
	if !ok || tt.IsDeleted() {
		return nil, repository.ErrTicketTypeNotFound
	}
	if tt.Available < count {
		return nil, &repository.InsufficientStockError{
			TicketTypeID: id,
			Name:         tt.Name,
			Requested:    count,
			Available:    tt.Available,
		}
	}
	tt.Available -= count
	cp := *tt
	return &cp, nil
}

func (b *fakeBackend) Release(ctx context.Context, id uint64, count int) error {
	tt, ok := b.ticketTypes[id]
	if !ok {
		return repository.ErrTicketTypeNotFound
	}
	tt.Available += count
	if tt.Available > tt.Capacity {
		tt.Available = tt.Capacity
	}
	return nil
}

// ----- OrderStore -----

func (b *fakeBackend) Create(ctx context.Context, o *model.Order) error {
	if b.failOrderInsert != nil {
		return b.failOrderInsert
	}
	o.ID = b.id()
	cp := *o
	b.orders[o.ID] = &cp
	return nil
}

func (b *fakeBackend) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Order, error) {
	o, ok := b.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (b *fakeBackend) UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) error {
	o, ok := b.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

// ----- TicketStore -----

func (b *fakeBackend) CreateBulk(ctx context.Context, tickets []model.Ticket) error {
	if len(b.failCreateBulk) > 0 {
		err := b.failCreateBulk[0]
		b.failCreateBulk = b.failCreateBulk[1:]
		if err != nil {
			return err
		}
	}
	for _, t := range tickets {
		t.ID = b.id()
		b.tickets = append(b.tickets, t)
	}
	return nil
}

func (b *fakeBackend) ListByOrder(ctx context.Context, orderID uint64) ([]model.Ticket, error) {
	out := make([]model.Ticket, 0)
	for _, t := range b.tickets {
		if t.OrderID == orderID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (b *fakeBackend) CancelByOrder(ctx context.Context, orderID uint64) (int64, error) {
	if b.failCancelTickets != nil {
		return 0, b.failCancelTickets
	}
	var n int64
	for i := range b.tickets {
		if b.tickets[i].OrderID == orderID && b.tickets[i].Status != model.TicketStatusCancelled {
			b.tickets[i].Status = model.TicketStatusCancelled
			n++
		}
	}
	return n, nil
}

func (b *fakeBackend) MarkUsedByCode(ctx context.Context, qrCode string) (bool, error) {
	for i := range b.tickets {
		if b.tickets[i].QRCode == qrCode && b.tickets[i].Status == model.TicketStatusActive {
			now := time.Now().UTC()
			b.tickets[i].Status = model.TicketStatusUsed
			b.tickets[i].ScannedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (b *fakeBackend) GetByCode(ctx context.Context, qrCode string) (*model.Ticket, error) {
	for i := range b.tickets {
		if b.tickets[i].QRCode == qrCode {
			cp := b.tickets[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrTicketNotFound
}

// ----- CustomerStore -----

func (b *fakeBackend) FindOrCreate(ctx context.Context, tenantID uint64, email, name, phone string) (*model.Customer, error) {
	if c, ok := b.customers[email]; ok {
		cp := *c
		return &cp, nil
	}
	c := &model.Customer{ID: b.id(), TenantID: tenantID, Email: email, Name: name, Phone: phone}
	b.customers[email] = c
	cp := *c
	return &cp, nil
}

// ----- Notifier -----

type fakeNotifier struct {
	mu        sync.Mutex
	created   []queue.OrderCreatedEvent
	cancelled []queue.OrderCancelledEvent
}

func (n *fakeNotifier) OrderCreated(ctx context.Context, ev queue.OrderCreatedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, ev)
	return nil
}

func (n *fakeNotifier) OrderCancelled(ctx context.Context, ev queue.OrderCancelledEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, ev)
	return nil
}

func price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newSvc(b *fakeBackend, n Notifier) *OrderService {
	return NewOrderService(&fakeUoW{b: b}, b, b, b, b, n)
}

func generalAndVIP() (*model.TicketType, *model.TicketType) {
	general := &model.TicketType{ID: 1, EventID: 10, Name: "General", Price: price("19.99"), Capacity: 100, Available: 100}
	vip := &model.TicketType{ID: 2, EventID: 10, Name: "VIP", Price: price("5.00"), Capacity: 20, Available: 20}
	return general, vip
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	buyer := CustomerInfo{Email: "jo@example.com", Name: "Jo Doe", Phone: "555-0100"}

	t.Run("computes exact decimal total", func(t *testing.T) {
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		svc := newSvc(b, nil)

		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items: []LineItem{
				{TicketTypeID: 1, Quantity: 2},
				{TicketTypeID: 2, Quantity: 1},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "44.98", res.Order.TotalAmount.StringFixed(2))
		assert.Equal(t, model.OrderStatusPending, res.Order.Status)
		assert.NotEmpty(t, res.Order.Reference)
		assert.Len(t, res.Tickets, 3)
		assert.Equal(t, 98, b.ticketTypes[1].Available)
		assert.Equal(t, 19, b.ticketTypes[2].Available)
	})

	t.Run("issues one active ticket per unit with unique codes", func(t *testing.T) {
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		svc := newSvc(b, nil)

		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items:    []LineItem{{TicketTypeID: 1, Quantity: 4}},
		})
		require.NoError(t, err)
		require.Len(t, res.Tickets, 4)
		seen := make(map[string]bool)
		for _, tk := range res.Tickets {
			assert.Equal(t, model.TicketStatusActive, tk.Status)
			assert.Equal(t, res.Order.ID, tk.OrderID)
			assert.False(t, seen[tk.QRCode], "duplicate qr code %s", tk.QRCode)
			seen[tk.QRCode] = true
		}
	})

	t.Run("merges duplicate line items", func(t *testing.T) {
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		svc := newSvc(b, nil)

		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items: []LineItem{
				{TicketTypeID: 1, Quantity: 1},
				{TicketTypeID: 1, Quantity: 2},
			},
		})
		require.NoError(t, err)
		assert.Len(t, res.Tickets, 3)
		assert.Equal(t, "59.97", res.Order.TotalAmount.StringFixed(2))
		assert.Equal(t, 97, b.ticketTypes[1].Available)
	})

	t.Run("rejects insufficient stock with detail and no writes", func(t *testing.T) {
		general, vip := generalAndVIP()
		general.Available = 2
		b := newFakeBackend(general, vip)
		svc := newSvc(b, nil)

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items:    []LineItem{{TicketTypeID: 1, Quantity: 3}},
		})
		var stockErr *repository.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, uint64(1), stockErr.TicketTypeID)
		assert.Equal(t, 3, stockErr.Requested)
		assert.Equal(t, 2, stockErr.Available)
		assert.Empty(t, b.orders)
		assert.Empty(t, b.tickets)
		assert.Equal(t, 2, b.ticketTypes[1].Available)
	})

	t.Run("rolls back earlier reservations when a later item fails", func(t *testing.T) {
		general, vip := generalAndVIP()
		vip.Available = 0
		b := newFakeBackend(general, vip)
		svc := newSvc(b, nil)

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items: []LineItem{
				{TicketTypeID: 1, Quantity: 5},
				{TicketTypeID: 2, Quantity: 1},
			},
		})
		var stockErr *repository.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, uint64(2), stockErr.TicketTypeID)
		// The decrement on the first item must not survive the rollback.
		assert.Equal(t, 100, b.ticketTypes[1].Available)
		assert.Empty(t, b.orders)
	})

	t.Run("rolls back reservation when the order insert fails", func(t *testing.T) {
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		b.failOrderInsert = errors.New("insert failed")
		svc := newSvc(b, nil)

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items:    []LineItem{{TicketTypeID: 1, Quantity: 2}},
		})
		require.Error(t, err)
		assert.Equal(t, 100, b.ticketTypes[1].Available)
		assert.Empty(t, b.tickets)
	})

	t.Run("regenerates ticket batch on qr collision", func(t *testing.T) {
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		b.failCreateBulk = []error{repository.ErrDuplicateQRCode}
		svc := newSvc(b, nil)

		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items:    []LineItem{{TicketTypeID: 1, Quantity: 2}},
		})
		require.NoError(t, err)
		assert.Len(t, res.Tickets, 2)
	})

	t.Run("gives up after repeated qr collisions without partial writes", func(t *testing.T) {
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		b.failCreateBulk = []error{
			repository.ErrDuplicateQRCode,
			repository.ErrDuplicateQRCode,
			repository.ErrDuplicateQRCode,
		}
		svc := newSvc(b, nil)

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items:    []LineItem{{TicketTypeID: 1, Quantity: 1}},
		})
		require.ErrorIs(t, err, repository.ErrDuplicateQRCode)
		assert.Equal(t, 100, b.ticketTypes[1].Available)
		assert.Empty(t, b.orders)
	})

	t.Run("rejects ticket type from another event", func(t *testing.T) {
		general, vip := generalAndVIP()
		vip.EventID = 99
		b := newFakeBackend(general, vip)
		svc := newSvc(b, nil)

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items: []LineItem{
				{TicketTypeID: 1, Quantity: 1},
				{TicketTypeID: 2, Quantity: 1},
			},
		})
		require.ErrorIs(t, err, ErrTicketTypeNotInEvent)
		assert.Equal(t, 100, b.ticketTypes[1].Available)
	})

	t.Run("validates input before touching the ledger", func(t *testing.T) {
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		svc := newSvc(b, nil)
		ctx := context.Background()

		_, err := svc.CreateOrder(ctx, CreateOrderInput{TenantID: 7, EventID: 10, Customer: buyer})
		assert.ErrorIs(t, err, ErrNoLineItems)

		_, err = svc.CreateOrder(ctx, CreateOrderInput{
			TenantID: 7, EventID: 10, Customer: buyer,
			Items: []LineItem{{TicketTypeID: 1, Quantity: 0}},
		})
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = svc.CreateOrder(ctx, CreateOrderInput{
			TenantID: 7, EventID: 10,
			Customer: CustomerInfo{Email: "   "},
			Items:    []LineItem{{TicketTypeID: 1, Quantity: 1}},
		})
		assert.ErrorIs(t, err, ErrMissingCustomerEmail)

		assert.Equal(t, 100, b.ticketTypes[1].Available)
	})

	t.Run("publishes a created event after commit", func(t *testing.T) {
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		notifier := &fakeNotifier{}
		svc := newSvc(b, notifier)

		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items:    []LineItem{{TicketTypeID: 1, Quantity: 2}},
		})
		require.NoError(t, err)
		require.Len(t, notifier.created, 1)
		ev := notifier.created[0]
		assert.Equal(t, res.Order.Reference, ev.Reference)
		assert.Equal(t, "39.98", ev.TotalAmount)
		assert.Equal(t, 2, ev.TicketCount)
	})
}

func TestCreateOrderConcurrentBuyersNeverOversell(t *testing.T) {
	t.Parallel()

	last := &model.TicketType{ID: 1, EventID: 10, Name: "Last Seat", Price: price("50.00"), Capacity: 1, Available: 1}
	b := newFakeBackend(last)
	svc := newSvc(b, nil)

	const buyers = 16
	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
				TenantID: 7,
				EventID:  10,
				Customer: CustomerInfo{Email: fmt.Sprintf("buyer%d@example.com", i)},
				Items:    []LineItem{{TicketTypeID: 1, Quantity: 1}},
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *repository.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		rejected++
	}
	assert.Equal(t, 1, succeeded, "exactly one buyer may win the last unit")
	assert.Equal(t, buyers-1, rejected)
	assert.Equal(t, 0, b.ticketTypes[1].Available)
	assert.Len(t, b.tickets, 1)
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()

	buyer := CustomerInfo{Email: "jo@example.com", Name: "Jo Doe"}

	purchase := func(t *testing.T, b *fakeBackend, svc *OrderService, qty int) *CreateOrderResult {
		t.Helper()
		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items:    []LineItem{{TicketTypeID: 1, Quantity: qty}},
		})
		require.NoError(t, err)
		return res
	}

	t.Run("releases capacity and cancels tickets", func(t *testing.T) {
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		notifier := &fakeNotifier{}
		svc := newSvc(b, notifier)

		res := purchase(t, b, svc, 3)
		require.Equal(t, 97, b.ticketTypes[1].Available)

		cancelled, err := svc.CancelOrder(context.Background(), res.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
		assert.Equal(t, 100, b.ticketTypes[1].Available)
		for _, tk := range b.tickets {
			assert.Equal(t, model.TicketStatusCancelled, tk.Status)
		}
		require.Len(t, notifier.cancelled, 1)
		assert.Equal(t, 3, notifier.cancelled[0].TicketsReleased)
	})

	t.Run("failure after releasing restores every counter", func(t *testing.T) {
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		svc := newSvc(b, nil)

		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items: []LineItem{
				{TicketTypeID: 1, Quantity: 2},
				{TicketTypeID: 2, Quantity: 1},
			},
		})
		require.NoError(t, err)
		require.Equal(t, 98, b.ticketTypes[1].Available)
		require.Equal(t, 19, b.ticketTypes[2].Available)

		// Ticket cancellation fails after both releases already ran
		// inside the unit of work; the rollback must take the
		// releases back with it.
		b.failCancelTickets = errors.New("lock wait timeout")
		_, err = svc.CancelOrder(context.Background(), res.Order.ID)
		require.Error(t, err)

		assert.Equal(t, 98, b.ticketTypes[1].Available)
		assert.Equal(t, 19, b.ticketTypes[2].Available)
		for _, tk := range b.tickets {
			assert.Equal(t, model.TicketStatusActive, tk.Status)
		}
		assert.Equal(t, model.OrderStatusPending, b.orders[res.Order.ID].Status)
	})

	t.Run("rejects a second cancellation instead of double releasing", func(t *testing.T) {
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		svc := newSvc(b, nil)

		res := purchase(t, b, svc, 2)
		_, err := svc.CancelOrder(context.Background(), res.Order.ID)
		require.NoError(t, err)
		require.Equal(t, 100, b.ticketTypes[1].Available)

		_, err = svc.CancelOrder(context.Background(), res.Order.ID)
		require.ErrorIs(t, err, ErrOrderNotCancellable)
		assert.Equal(t, 100, b.ticketTypes[1].Available)
	})

	t.Run("rejects cancelling a paid order", func(t *testing.T) {
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		svc := newSvc(b, nil)

		res := purchase(t, b, svc, 1)
		_, err := svc.PayOrder(context.Background(), res.Order.ID)
		require.NoError(t, err)

		_, err = svc.CancelOrder(context.Background(), res.Order.ID)
		require.ErrorIs(t, err, ErrOrderNotCancellable)
		assert.Equal(t, 99, b.ticketTypes[1].Available)
	})

	t.Run("unknown order", func(t *testing.T) {
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		svc := newSvc(b, nil)

		_, err := svc.CancelOrder(context.Background(), 424242)
		assert.ErrorIs(t, err, repository.ErrOrderNotFound)
	})
}

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	buyer := CustomerInfo{Email: "jo@example.com"}

	setup := func(t *testing.T) (*fakeBackend, *OrderService, *CreateOrderResult) {
		t.Helper()
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		svc := newSvc(b, nil)
		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items:    []LineItem{{TicketTypeID: 1, Quantity: 1}},
		})
		require.NoError(t, err)
		return b, svc, res
	}

	t.Run("pending to confirmed to paid", func(t *testing.T) {
		_, svc, res := setup(t)
		ctx := context.Background()

		confirmed, err := svc.ConfirmOrder(ctx, res.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusConfirmed, confirmed.Status)

		paid, err := svc.PayOrder(ctx, res.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusPaid, paid.Status)
	})

	t.Run("confirm is not repeatable", func(t *testing.T) {
		_, svc, res := setup(t)
		ctx := context.Background()

		_, err := svc.ConfirmOrder(ctx, res.Order.ID)
		require.NoError(t, err)
		_, err = svc.ConfirmOrder(ctx, res.Order.ID)
		assert.ErrorIs(t, err, ErrOrderNotConfirmable)
	})

	t.Run("paid orders reject further payment", func(t *testing.T) {
		_, svc, res := setup(t)
		ctx := context.Background()

		_, err := svc.PayOrder(ctx, res.Order.ID)
		require.NoError(t, err)
		_, err = svc.PayOrder(ctx, res.Order.ID)
		assert.ErrorIs(t, err, ErrOrderNotPayable)
	})
}

func TestScanTicketByCode(t *testing.T) {
	t.Parallel()

	buyer := CustomerInfo{Email: "jo@example.com"}

	setup := func(t *testing.T) (*fakeBackend, *OrderService, model.Ticket) {
		t.Helper()
		general, vip := generalAndVIP()
		b := newFakeBackend(general, vip)
		svc := newSvc(b, nil)
		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			TenantID: 7,
			EventID:  10,
			Customer: buyer,
			Items:    []LineItem{{TicketTypeID: 1, Quantity: 1}},
		})
		require.NoError(t, err)
		return b, svc, res.Tickets[0]
	}

	t.Run("first scan marks the ticket used once", func(t *testing.T) {
		_, svc, ticket := setup(t)

		scanned, err := svc.ScanTicketByCode(context.Background(), ticket.QRCode)
		require.NoError(t, err)
		assert.Equal(t, model.TicketStatusUsed, scanned.Status)
		require.NotNil(t, scanned.ScannedAt)
	})

	t.Run("second scan is rejected and keeps the original stamp", func(t *testing.T) {
		b, svc, ticket := setup(t)
		ctx := context.Background()

		first, err := svc.ScanTicketByCode(ctx, ticket.QRCode)
		require.NoError(t, err)

		_, err = svc.ScanTicketByCode(ctx, ticket.QRCode)
		require.ErrorIs(t, err, ErrTicketNotScannable)

		stored, err := b.GetByCode(ctx, ticket.QRCode)
		require.NoError(t, err)
		assert.Equal(t, first.ScannedAt, stored.ScannedAt)
	})

	t.Run("cancelled tickets cannot be scanned", func(t *testing.T) {
		b, svc, ticket := setup(t)
		ctx := context.Background()

		_, err := svc.CancelOrder(ctx, ticket.OrderID)
		require.NoError(t, err)

		_, err = svc.ScanTicketByCode(ctx, ticket.QRCode)
		assert.ErrorIs(t, err, ErrTicketNotScannable)
		assert.Equal(t, 100, b.ticketTypes[1].Available)
	})

	t.Run("unknown and empty codes", func(t *testing.T) {
		_, svc, _ := setup(t)
		ctx := context.Background()

		_, err := svc.ScanTicketByCode(ctx, "NO-SUCH-CODE")
		assert.ErrorIs(t, err, repository.ErrTicketNotFound)

		_, err = svc.ScanTicketByCode(ctx, "  ")
		assert.ErrorIs(t, err, ErrMissingQRCode)
	})
}

func TestMergeLineItems(t *testing.T) {
	t.Parallel()

	merged := mergeLineItems([]LineItem{
		{TicketTypeID: 1, Quantity: 1},
		{TicketTypeID: 2, Quantity: 2},
		{TicketTypeID: 1, Quantity: 3},
	})
	require.Len(t, merged, 2)
	assert.Equal(t, LineItem{TicketTypeID: 1, Quantity: 4}, merged[0])
	assert.Equal(t, LineItem{TicketTypeID: 2, Quantity: 2}, merged[1])
}
