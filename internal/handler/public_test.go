package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPublicEventServedFromCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	// Repositories stay nil: a cache hit must answer without touching
	// the database at all.
	h := &PublicHandler{Cache: rdb}

	cached := PublicEventDetail{
		Event: PublicEvent{ID: 5, Name: "Summer Jam", Venue: "Main Hall", StartsAt: time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)},
		TicketTypes: []PublicTicketType{
			{ID: 1, Name: "General", Price: "19.99", Available: 42},
			{ID: 2, Name: "VIP", Price: "89.00", Available: 0, SoldOut: true},
		},
	}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)
	mock.ExpectGet("public:event:5").SetVal(string(raw))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/public/events/5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/public/events/:id")
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, h.GetPublicEvent(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got PublicEventDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, cached.Event.Name, got.Event.Name)
	require.Len(t, got.TicketTypes, 2)
	assert.True(t, got.TicketTypes[1].SoldOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPublicEventInvalidID(t *testing.T) {
	t.Parallel()

	h := &PublicHandler{}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/public/events/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/public/events/:id")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.GetPublicEvent(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
