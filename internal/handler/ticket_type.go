package handler // handler package contains organizer ticket type handlers

import (
    "net/http" // http provides status code constants
    "strings"  // strings offers trimming utilities

    "github.com/labstack/echo/v4"  // echo is the web framework used for handlers
    "github.com/shopspring/decimal" // decimal parses prices without float drift

    "github.com/iliyamo/event-ticketing/internal/model"      // model holds domain entities
    "github.com/iliyamo/event-ticketing/internal/repository" // repository holds database access
)

// ownEvent loads an event and verifies it belongs to the tenant.  It
// writes the error response itself and returns nil when the caller
// should stop.
func (h *OrganizerHandler) ownEvent(c echo.Context, tenantID, eventID uint64) *model.Event {
	ev, err := h.Events.GetByID(c.Request().Context(), eventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		return nil
	}
	if ev.TenantID != tenantID {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		return nil
	}
	return ev
}

// CreateTicketType handles POST /v1/events/:id/ticket-types.  Capacity
// is fixed here for the lifetime of the ticket type and availability
// starts equal to it; both change afterwards only through purchases
// and cancellations.
func (h *OrganizerHandler) CreateTicketType(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name     string `json:"name"`
		Price    string `json:"price"` // decimal string, e.g. "19.99"
		Capacity int    `json:"capacity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	price, err := decimal.NewFromString(body.Price)
	if err != nil || price.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be a non-negative decimal"})
	}
	if body.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}

	if h.ownEvent(c, tenantID, eventID) == nil {
		return nil
	}
	tt := &model.TicketType{
		EventID:  eventID,
		Name:     body.Name,
		Price:    price,
		Capacity: body.Capacity,
	}
	if err := h.TicketTypes.Create(c.Request().Context(), tt); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create ticket type"})
	}
	return c.JSON(http.StatusCreated, tt)
}

// ListTicketTypes handles GET /v1/events/:id/ticket-types.
func (h *OrganizerHandler) ListTicketTypes(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if h.ownEvent(c, tenantID, eventID) == nil {
		return nil
	}
	items, err := h.TicketTypes.ListByEvent(c.Request().Context(), eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ownTicketType loads a ticket type and verifies the chain ticket type
// -> event -> tenant.  It writes the error response itself and returns
// nil when the caller should stop.
func (h *OrganizerHandler) ownTicketType(c echo.Context, tenantID, id uint64) *model.TicketType {
	tt, err := h.TicketTypes.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrTicketTypeNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		return nil
	}
	if h.ownEvent(c, tenantID, tt.EventID) == nil {
		return nil
	}
	return tt
}

// UpdateTicketType handles PUT /v1/ticket-types/:id.  Only name and
// price are mutable; capacity and availability are off limits.
func (h *OrganizerHandler) UpdateTicketType(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name  string `json:"name"`
		Price string `json:"price"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	price, err := decimal.NewFromString(body.Price)
	if err != nil || price.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be a non-negative decimal"})
	}

	if h.ownTicketType(c, tenantID, id) == nil {
		return nil
	}
	if err := h.TicketTypes.Update(c.Request().Context(), id, body.Name, price); err != nil {
		if err == repository.ErrTicketTypeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.TicketTypes.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteTicketType handles DELETE /v1/ticket-types/:id and soft-deletes
// the category.  Issued tickets keep their reference; further sales
// stop because the ledger's reserve excludes deleted rows.
func (h *OrganizerHandler) DeleteTicketType(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if h.ownTicketType(c, tenantID, id) == nil {
		return nil
	}
	if err := h.TicketTypes.SoftDelete(c.Request().Context(), id); err != nil {
		if err == repository.ErrTicketTypeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
