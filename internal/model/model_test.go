package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStateChecks(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status     OrderStatus
		canCancel  bool
		canConfirm bool
		canPay     bool
	}{
		{OrderStatusPending, true, true, true},
		{OrderStatusConfirmed, true, false, true},
		{OrderStatusPaid, false, false, false},
		{OrderStatusCancelled, false, false, false},
		{OrderStatusRefunded, false, false, false},
	}
	for _, tc := range cases {
		o := Order{Status: tc.status}
		assert.Equal(t, tc.canCancel, o.CanCancel(), "CanCancel for %s", tc.status)
		assert.Equal(t, tc.canConfirm, o.CanConfirm(), "CanConfirm for %s", tc.status)
		assert.Equal(t, tc.canPay, o.CanPay(), "CanPay for %s", tc.status)
	}
}

func TestTicketCanScan(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Ticket{Status: TicketStatusActive}).CanScan())
	assert.False(t, (&Ticket{Status: TicketStatusUsed}).CanScan())
	assert.False(t, (&Ticket{Status: TicketStatusCancelled}).CanScan())
	assert.False(t, (&Ticket{Status: TicketStatusRefunded}).CanScan())
}

func TestTicketTypeSoldOut(t *testing.T) {
	t.Parallel()

	tt := TicketType{Name: "General", Price: decimal.RequireFromString("19.99"), Capacity: 10, Available: 1}
	assert.False(t, tt.SoldOut())
	tt.Available = 0
	assert.True(t, tt.SoldOut())
}

func TestAuditSoftDelete(t *testing.T) {
	t.Parallel()

	var a Audit
	assert.False(t, a.IsDeleted())

	now := time.Now().UTC()
	a.MarkDeleted(now)
	assert.True(t, a.IsDeleted())
	assert.Equal(t, now, *a.DeletedAt)
}
