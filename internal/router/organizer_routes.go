package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/middleware"
)

// RegisterOrganizer registers organizer-scoped endpoints under /v1.
// Every route requires a valid access token; catalog mutations are
// restricted to OWNER while order administration and door scanning are
// open to STAFF as well.
func RegisterOrganizer(e *echo.Echo, o *handler.OrganizerHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("OWNER", "STAFF"))

	// Event catalog.  Reads are shared; writes need OWNER.
	g.GET("/events", o.ListEvents)
	g.GET("/events/:id", o.GetEvent)
	g.POST("/events", o.CreateEvent, middleware.RequireRole("OWNER"))
	g.PUT("/events/:id", o.UpdateEvent, middleware.RequireRole("OWNER"))
	g.DELETE("/events/:id", o.DeleteEvent, middleware.RequireRole("OWNER"))

	// Ticket type catalog under an event.
	g.GET("/events/:id/ticket-types", o.ListTicketTypes)
	g.POST("/events/:id/ticket-types", o.CreateTicketType, middleware.RequireRole("OWNER"))
	g.PUT("/ticket-types/:id", o.UpdateTicketType, middleware.RequireRole("OWNER"))
	g.DELETE("/ticket-types/:id", o.DeleteTicketType, middleware.RequireRole("OWNER"))

	// Order administration.
	g.GET("/orders", o.ListOrders)
	g.GET("/orders/:id", o.GetOrder)
	g.POST("/orders/:id/cancel", o.CancelOrder)
	g.POST("/orders/:id/confirm", o.ConfirmOrder)
	g.POST("/orders/:id/pay", o.PayOrder)

	// Entry scanning at the door.
	g.POST("/tickets/scan", o.ScanTicket)
}
