// This file defines handlers for the public browsing API. These routes allow
// unauthenticated buyers to discover published events and check ticket
// availability before checkout. Availability shown here is advisory: the
// ledger's conditional update at purchase time is the authority, so a short
// Redis cache in front of the detail endpoint is acceptable staleness.

package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/event-ticketing/internal/repository"
)

// availabilityCacheTTL bounds how stale the public availability view
// may be.  Checkout never reads this cache.
const availabilityCacheTTL = 5 * time.Second

// PublicHandler aggregates repositories needed for unauthenticated browsing.
// It produces sanitized responses suitable for public consumption.  Cache
// may be nil, in which case every request hits the database.
type PublicHandler struct {
    Events      *repository.EventRepo      // provides access to published events
    TicketTypes *repository.TicketTypeRepo // provides access to ticket type data
    Cache       *redis.Client              // optional short-TTL availability cache
}

// PublicEvent represents an event exposed via the public API. It contains
// only safe fields.
type PublicEvent struct {
    ID       uint64    `json:"id"`
    Name     string    `json:"name"`
    Venue    string    `json:"venue"`
    StartsAt time.Time `json:"starts_at"`
}

// PublicTicketType represents a purchasable category in the event
// detail response.  Available is a point-in-time snapshot.
type PublicTicketType struct {
    ID        uint64 `json:"id"`
    Name      string `json:"name"`
    Price     string `json:"price"`
    Available int    `json:"available"`
    SoldOut   bool   `json:"sold_out"`
}

// PublicEventDetail is the full detail response for one event.
type PublicEventDetail struct {
    Event       PublicEvent        `json:"event"`
    TicketTypes []PublicTicketType `json:"ticket_types"`
}

// ListPublicEvents returns all published events, soonest first.
// Response JSON contains an "items" array of PublicEvent.
func (h *PublicHandler) ListPublicEvents(c echo.Context) error {
    ctx := c.Request().Context()
    events, err := h.Events.ListPublished(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]PublicEvent, 0, len(events))
    for _, ev := range events {
        out = append(out, PublicEvent{ID: ev.ID, Name: ev.Name, Venue: ev.Venue, StartsAt: ev.StartsAt})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublicEvent returns one published event with its ticket types and
// current availability. The response is cached briefly; cache failures
// fall through to the database.
func (h *PublicHandler) GetPublicEvent(c echo.Context) error {
    ctx := c.Request().Context()
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    cacheKey := "public:event:" + c.Param("id")
    if h.Cache != nil {
        if raw, err := h.Cache.Get(ctx, cacheKey).Bytes(); err == nil {
            var detail PublicEventDetail
            if json.Unmarshal(raw, &detail) == nil {
                return c.JSON(http.StatusOK, detail)
            }
        }
    }

    ev, err := h.Events.GetPublishedByID(ctx, id)
    if err != nil {
        if err == repository.ErrEventNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    types, err := h.TicketTypes.ListByEvent(ctx, ev.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    detail := PublicEventDetail{
        Event:       PublicEvent{ID: ev.ID, Name: ev.Name, Venue: ev.Venue, StartsAt: ev.StartsAt},
        TicketTypes: make([]PublicTicketType, 0, len(types)),
    }
    for _, tt := range types {
        detail.TicketTypes = append(detail.TicketTypes, PublicTicketType{
            ID:        tt.ID,
            Name:      tt.Name,
            Price:     tt.Price.StringFixed(2),
            Available: tt.Available,
            SoldOut:   tt.SoldOut(),
        })
    }

    if h.Cache != nil {
        if raw, err := json.Marshal(detail); err == nil {
            // best effort; a write failure only costs a cache miss
            _ = h.Cache.Set(context.WithoutCancel(ctx), cacheKey, raw, availabilityCacheTTL).Err()
        }
    }
    return c.JSON(http.StatusOK, detail)
}
