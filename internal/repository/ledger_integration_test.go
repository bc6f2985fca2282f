package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// testDB opens the database named by TEST_DATABASE_DSN, or skips.  The
// DSN must include parseTime=true and clientFoundRows=true and point at
// a database with migrations/schema.sql applied, e.g.
// root@tcp(localhost:3306)/tickets_test?parseTime=true&clientFoundRows=true
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping database integration test")
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Ping())
	return db
}

// seedTicketType creates a throwaway tenant, event and ticket type and
// removes them again when the test finishes.
func seedTicketType(t *testing.T, db *sql.DB, capacity int) *model.TicketType {
	t.Helper()
	ctx := context.Background()

	tenant := &model.Tenant{Name: "it-tenant", Slug: fmt.Sprintf("it-%d", time.Now().UnixNano())}
	require.NoError(t, NewTenantRepo(db).Create(ctx, tenant))

	event := &model.Event{TenantID: tenant.ID, Name: "it-event", StartsAt: time.Now().Add(24 * time.Hour)}
	require.NoError(t, NewEventRepo(db).Create(ctx, event))

	tt := &model.TicketType{EventID: event.ID, Name: "it-general", Price: decimal.RequireFromString("10.00"), Capacity: capacity}
	require.NoError(t, NewTicketTypeRepo(db).Create(ctx, tt))

	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM ticket_types WHERE id = ?`, tt.ID)
		_, _ = db.Exec(`DELETE FROM events WHERE id = ?`, event.ID)
		_, _ = db.Exec(`DELETE FROM tenants WHERE id = ?`, tenant.ID)
	})
	return tt
}

func TestLedgerReserveAndRelease(t *testing.T) {
	db := testDB(t)
	repo := NewTicketTypeRepo(db)
	ctx := context.Background()

	tt := seedTicketType(t, db, 3)
	assert.Equal(t, 3, tt.Available, "available must start at capacity")

	updated, err := repo.Reserve(ctx, tt.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Available)

	_, err = repo.Reserve(ctx, tt.ID, 2)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	require.NoError(t, repo.Release(ctx, tt.ID, 2))
	after, err := repo.GetByID(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Available)

	// Releasing into a full pool clamps at capacity and must still
	// report success; this is what clientFoundRows is for.
	require.NoError(t, repo.Release(ctx, tt.ID, 5))
	after, err = repo.GetByID(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Available)
}

func TestLedgerConcurrentReserveLastUnit(t *testing.T) {
	db := testDB(t)
	repo := NewTicketTypeRepo(db)
	ctx := context.Background()

	tt := seedTicketType(t, db, 1)

	const buyers = 8
	var wg sync.WaitGroup
	errs := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Reserve(ctx, tt.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
			continue
		}
		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		lost++
	}
	assert.Equal(t, 1, won, "the conditional update may let exactly one reservation through")
	assert.Equal(t, buyers-1, lost)

	final, err := repo.GetByID(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, final.Available)
}
