package handler // handler package contains the entry scan handler

import (
    "errors"   // errors unwraps workflow failures
    "net/http" // http provides status code constants
    "strings"  // strings offers trimming utilities

    "github.com/labstack/echo/v4" // echo is the web framework used for handlers

    "github.com/iliyamo/event-ticketing/internal/repository" // repository holds database access
    "github.com/iliyamo/event-ticketing/internal/service"    // service runs the scan workflow
)

// ScanTicket handles POST /v1/tickets/scan for door staff.  The code
// is looked up first so the tenant check runs before anything is
// mutated; the service then performs the single-use transition.  A
// second scan of the same code returns 409 together with the ticket's
// current state and the original scan timestamp.
func (h *OrganizerHandler) ScanTicket(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		QRCode string `json:"qr_code"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.QRCode = strings.TrimSpace(body.QRCode)
	if body.QRCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_code is required"})
	}

	ctx := c.Request().Context()
	existing, err := h.Tickets.GetByCode(ctx, body.QRCode)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	order, err := h.Orders.GetByID(ctx, existing.OrderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if order.TenantID != tenantID {
		// Same response as an unknown code so tickets of other tenants
		// cannot be probed.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	}

	ticket, err := h.Svc.ScanTicketByCode(ctx, body.QRCode)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotScannable) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":      "ticket already used or cancelled",
				"status":     existing.Status,
				"scanned_at": existing.ScannedAt,
			})
		}
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scan failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ticket_id":  ticket.ID,
		"status":     ticket.Status,
		"scanned_at": ticket.ScannedAt,
	})
}
