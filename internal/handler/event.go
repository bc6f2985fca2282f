package handler // handler package contains organizer event handlers

import (
    "net/http" // http provides status code constants
    "strings"  // strings offers trimming utilities
    "time"     // time parses the starts_at field

    "github.com/labstack/echo/v4" // echo is the web framework used for handlers

    "github.com/iliyamo/event-ticketing/internal/model"      // model holds domain entities
    "github.com/iliyamo/event-ticketing/internal/repository" // repository holds database access
)

// eventReq is the JSON payload shared by create and update.
type eventReq struct {
	Name     string `json:"name"`
	Venue    string `json:"venue"`
	StartsAt string `json:"starts_at"` // RFC3339
	Status   string `json:"status"`   // draft | published | ended
}

func (r *eventReq) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Venue = strings.TrimSpace(r.Venue)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func validEventStatus(s string) bool {
	return s == model.EventStatusDraft || s == model.EventStatusPublished || s == model.EventStatusEnded
}

// CreateEvent handles POST /v1/events and creates a new draft event for
// the authenticated tenant.
func (h *OrganizerHandler) CreateEvent(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body eventReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.normalize()
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	startsAt, err := time.Parse(time.RFC3339, body.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	if body.Status != "" && !validEventStatus(body.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ev := &model.Event{
		TenantID: tenantID,
		Name:     body.Name,
		Venue:    body.Venue,
		StartsAt: startsAt,
		Status:   body.Status, // empty defaults to draft in the repository
	}
	if err := h.Events.Create(c.Request().Context(), ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create event"})
	}
	return c.JSON(http.StatusCreated, ev)
}

// ListEvents handles GET /v1/events and returns all events owned by the
// authenticated tenant.
func (h *OrganizerHandler) ListEvents(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Events.ListByTenant(c.Request().Context(), tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetEvent handles GET /v1/events/:id and returns a single event owned
// by the authenticated tenant, including its ticket types.
func (h *OrganizerHandler) GetEvent(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ev, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if ev.TenantID != tenantID {
		// Do not reveal that the event exists under another tenant.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	types, err := h.TicketTypes.ListByEvent(c.Request().Context(), ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event": ev, "ticket_types": types})
}

// UpdateEvent handles PUT /v1/events/:id and updates name, venue,
// start time and status after the repository verifies ownership.
func (h *OrganizerHandler) UpdateEvent(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body eventReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.normalize()
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	startsAt, err := time.Parse(time.RFC3339, body.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	if !validEventStatus(body.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	err = h.Events.UpdateForTenant(c.Request().Context(), tenantID, id, body.Name, body.Venue, startsAt, body.Status)
	switch err {
	case nil:
	case repository.ErrEventNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteEvent handles DELETE /v1/events/:id and soft-deletes the event.
// Existing orders and tickets keep their references.
func (h *OrganizerHandler) DeleteEvent(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	err = h.Events.SoftDeleteForTenant(c.Request().Context(), tenantID, id)
	switch err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repository.ErrEventNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
}
