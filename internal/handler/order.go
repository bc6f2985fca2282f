package handler // handler package contains checkout and order administration handlers

import (
    "errors"   // errors unwraps typed repository failures
    "net/http" // http provides status code constants
    "strconv"  // strconv parses the limit query parameter
    "strings"  // strings offers trimming utilities

    "github.com/labstack/echo/v4" // echo is the web framework used for handlers

    "github.com/iliyamo/event-ticketing/internal/model"      // model holds domain entities
    "github.com/iliyamo/event-ticketing/internal/repository" // repository holds database access
    "github.com/iliyamo/event-ticketing/internal/service"    // service runs the order workflows
)

// CheckoutHandler serves the public purchase and self-service
// cancellation endpoints.  Buyers are not authenticated; purchases are
// scoped by the published event in the URL and cancellations by the
// order reference plus the buyer's email.
type CheckoutHandler struct {
	Events  *repository.EventRepo
	Orders  *repository.OrderRepo
	Tickets *repository.TicketRepo
	Svc     *service.OrderService
}

// NewCheckoutHandler constructs a CheckoutHandler and panics if any dependency is nil
func NewCheckoutHandler(events *repository.EventRepo, orders *repository.OrderRepo, tickets *repository.TicketRepo, svc *service.OrderService) *CheckoutHandler {
	if events == nil || orders == nil || tickets == nil || svc == nil {
		panic("nil dependency passed to NewCheckoutHandler")
	}
	return &CheckoutHandler{Events: events, Orders: orders, Tickets: tickets, Svc: svc}
}

// ----- DTOs -----

type lineItemReq struct {
	TicketTypeID uint64 `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
}

type checkoutReq struct {
	Customer struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"customer"`
	Items []lineItemReq `json:"items"`
}

type ticketPart struct {
	ID           uint64 `json:"id"`
	TicketTypeID uint64 `json:"ticket_type_id"`
	QRCode       string `json:"qr_code"`
	Status       string `json:"status"`
}

type orderResp struct {
	ID            uint64       `json:"id"`
	Reference     string       `json:"reference"`
	Status        string       `json:"status"`
	CustomerEmail string       `json:"customer_email"`
	CustomerName  string       `json:"customer_name"`
	TotalAmount   string       `json:"total_amount"`
	Tickets       []ticketPart `json:"tickets,omitempty"`
}

func toOrderResp(o *model.Order, tickets []model.Ticket) orderResp {
	resp := orderResp{
		ID:            o.ID,
		Reference:     o.Reference,
		Status:        string(o.Status),
		CustomerEmail: o.CustomerEmail,
		CustomerName:  o.CustomerName,
		TotalAmount:   o.TotalAmount.StringFixed(2),
	}
	for _, t := range tickets {
		resp.Tickets = append(resp.Tickets, ticketPart{
			ID:           t.ID,
			TicketTypeID: t.TicketTypeID,
			QRCode:       t.QRCode,
			Status:       string(t.Status),
		})
	}
	return resp
}

// Checkout handles POST /v1/events/:id/orders.  The event must be
// published; the purchase itself is all-or-nothing inside the order
// service.  Insufficient stock maps to 409 with the per-type detail so
// clients can show what actually ran out.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body checkoutReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ev, err := h.Events.GetPublishedByID(c.Request().Context(), eventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	items := make([]service.LineItem, 0, len(body.Items))
	for _, it := range body.Items {
		items = append(items, service.LineItem{TicketTypeID: it.TicketTypeID, Quantity: it.Quantity})
	}
	res, err := h.Svc.CreateOrder(c.Request().Context(), service.CreateOrderInput{
		TenantID: ev.TenantID,
		EventID:  ev.ID,
		Customer: service.CustomerInfo{
			Email: body.Customer.Email,
			Name:  body.Customer.Name,
			Phone: body.Customer.Phone,
		},
		Items: items,
	})
	if err != nil {
		return writeOrderError(c, err)
	}
	return c.JSON(http.StatusCreated, toOrderResp(res.Order, res.Tickets))
}

// GetByReference handles GET /v1/orders/:reference?email= and lets a
// buyer look up their own order.  The email must match the contact
// captured at purchase time.
func (h *CheckoutHandler) GetByReference(c echo.Context) error {
	o := h.orderByReference(c)
	if o == nil {
		return nil
	}
	tickets, err := h.Tickets.ListByOrder(c.Request().Context(), o.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toOrderResp(o, tickets))
}

// CancelByReference handles POST /v1/orders/:reference/cancel for
// buyer self-service.  The cancellation runs through the same atomic
// workflow the organizer uses.
func (h *CheckoutHandler) CancelByReference(c echo.Context) error {
	o := h.orderByReference(c)
	if o == nil {
		return nil
	}
	cancelled, err := h.Svc.CancelOrder(c.Request().Context(), o.ID)
	if err != nil {
		return writeOrderError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResp(cancelled, nil))
}

// orderByReference resolves the order from the path and verifies the
// caller knows the purchase email.  It writes the error response itself
// and returns nil when the caller should stop.
func (h *CheckoutHandler) orderByReference(c echo.Context) *model.Order {
	reference := strings.TrimSpace(c.Param("reference"))
	email := strings.ToLower(strings.TrimSpace(c.QueryParam("email")))
	if email == "" {
		var body struct {
			Email string `json:"email"`
		}
		if err := c.Bind(&body); err == nil {
			email = strings.ToLower(strings.TrimSpace(body.Email))
		}
	}
	if reference == "" || email == "" {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "reference and email required"})
		return nil
	}
	o, err := h.Orders.GetByReference(c.Request().Context(), reference)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		return nil
	}
	if !strings.EqualFold(o.CustomerEmail, email) {
		// Same response as a missing order so references cannot be probed.
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		return nil
	}
	return o
}

// ----- organizer order administration -----

// ListOrders handles GET /v1/orders for the authenticated tenant.
func (h *OrganizerHandler) ListOrders(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	items, err := h.Orders.ListByTenant(c.Request().Context(), tenantID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetOrder handles GET /v1/orders/:id and returns an order with its
// tickets after a tenant check.
func (h *OrganizerHandler) GetOrder(c echo.Context) error {
	o := h.ownOrder(c)
	if o == nil {
		return nil
	}
	tickets, err := h.Tickets.ListByOrder(c.Request().Context(), o.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"order": o, "tickets": tickets})
}

// CancelOrder handles POST /v1/orders/:id/cancel.
func (h *OrganizerHandler) CancelOrder(c echo.Context) error {
	o := h.ownOrder(c)
	if o == nil {
		return nil
	}
	cancelled, err := h.Svc.CancelOrder(c.Request().Context(), o.ID)
	if err != nil {
		return writeOrderError(c, err)
	}
	return c.JSON(http.StatusOK, cancelled)
}

// ConfirmOrder handles POST /v1/orders/:id/confirm.
func (h *OrganizerHandler) ConfirmOrder(c echo.Context) error {
	o := h.ownOrder(c)
	if o == nil {
		return nil
	}
	confirmed, err := h.Svc.ConfirmOrder(c.Request().Context(), o.ID)
	if err != nil {
		return writeOrderError(c, err)
	}
	return c.JSON(http.StatusOK, confirmed)
}

// PayOrder handles POST /v1/orders/:id/pay and records a completed
// payment.
func (h *OrganizerHandler) PayOrder(c echo.Context) error {
	o := h.ownOrder(c)
	if o == nil {
		return nil
	}
	paid, err := h.Svc.PayOrder(c.Request().Context(), o.ID)
	if err != nil {
		return writeOrderError(c, err)
	}
	return c.JSON(http.StatusOK, paid)
}

// ownOrder loads the order from the path and verifies it belongs to
// the authenticated tenant.  It writes the error response itself and
// returns nil when the caller should stop.
func (h *OrganizerHandler) ownOrder(c echo.Context) *model.Order {
	tenantID, err := getTenantID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return nil
	}
	id, err := pathID(c, "id")
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return nil
	}
	o, err := h.Orders.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		return nil
	}
	if o.TenantID != tenantID {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		return nil
	}
	return o
}

// writeOrderError maps order workflow failures onto HTTP responses.
// Stock shortage carries the per-type detail; state conflicts map to
// 409 and validation to 400.
func writeOrderError(c echo.Context, err error) error {
	var stockErr *repository.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":          "insufficient stock",
			"ticket_type_id": stockErr.TicketTypeID,
			"name":           stockErr.Name,
			"requested":      stockErr.Requested,
			"available":      stockErr.Available,
		})
	}
	switch {
	case errors.Is(err, service.ErrNoLineItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrMissingCustomerEmail),
		errors.Is(err, service.ErrTicketTypeNotInEvent):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNotCancellable),
		errors.Is(err, service.ErrOrderNotConfirmable),
		errors.Is(err, service.ErrOrderNotPayable):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrTicketTypeNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
	case errors.Is(err, repository.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation failed"})
}
