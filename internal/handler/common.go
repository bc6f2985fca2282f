package handler // handler defines http handlers

import (
    "errors"  // errors provides sentinel values used in the context helpers
    "strconv" // strconv converts strings to numeric types

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/event-ticketing/internal/repository" // repository holds data access layer
    "github.com/iliyamo/event-ticketing/internal/service"    // service holds the order coordinator
)

// OrganizerHandler bundles dependencies for the authenticated organizer
// surface: catalog management plus order administration.
type OrganizerHandler struct {
    Events      *repository.EventRepo      // EventRepo provides event persistence
    TicketTypes *repository.TicketTypeRepo // TicketTypeRepo provides ticket type persistence and the ledger
    Orders      *repository.OrderRepo      // OrderRepo provides order reads
    Tickets     *repository.TicketRepo     // TicketRepo provides ticket reads
    Svc         *service.OrderService      // Svc runs the order workflows
}

// NewOrganizerHandler constructs a new OrganizerHandler and panics if any dependency is nil
func NewOrganizerHandler(events *repository.EventRepo, ticketTypes *repository.TicketTypeRepo, orders *repository.OrderRepo, tickets *repository.TicketRepo, svc *service.OrderService) *OrganizerHandler {
    if events == nil || ticketTypes == nil || orders == nil || tickets == nil || svc == nil {
        panic("nil dependency passed to NewOrganizerHandler")
    }
    return &OrganizerHandler{
        Events:      events,
        TicketTypes: ticketTypes,
        Orders:      orders,
        Tickets:     tickets,
        Svc:         svc,
    }
}

// ctxUint extracts a numeric context value stored by the JWT middleware
// and converts it to uint64.  JWT numeric claims decode as float64.
func ctxUint(c echo.Context, key string) (uint64, error) {
    v := c.Get(key)
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid " + key + " in context")
}

// getTenantID extracts the tenant_id claim placed by the JWT middleware.
// Every organizer endpoint scopes its queries by this value; a request
// without it never reaches a repository.
func getTenantID(c echo.Context) (uint64, error) {
    return ctxUint(c, "tenant_id")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    return strconv.ParseUint(c.Param(name), 10, 64)
}
