package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  The PublicHandler returns sanitized data for published
// events only; no JWT or role middleware is applied.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	// Expose the list of published events
	e.GET("/v1/public/events", p.ListPublicEvents)
	// Event detail with ticket types and advisory availability
	e.GET("/v1/public/events/:id", p.GetPublicEvent)
}

// RegisterCheckout registers the public purchase and self-service order
// endpoints.  Buyers do not authenticate: checkout is scoped by the
// published event and order access by reference plus purchase email.
func RegisterCheckout(e *echo.Echo, h *handler.CheckoutHandler) {
	// Purchase tickets for a published event
	e.POST("/v1/events/:id/orders", h.Checkout)
	// Look up an order by reference (?email= must match)
	e.GET("/v1/orders/ref/:reference", h.GetByReference)
	// Cancel an order by reference; releases capacity atomically
	e.POST("/v1/orders/ref/:reference/cancel", h.CancelByReference)
}
