package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
)

func TestUserGetByEmail(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)

	t.Run("unknown email maps to the sentinel", func(t *testing.T) {
		_, err := users.GetByEmail(ctx, "nobody@nowhere.test")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("lookup normalizes the email", func(t *testing.T) {
		tenant := &model.Tenant{Name: "it-tenant", Slug: fmt.Sprintf("it-user-%d", time.Now().UnixNano())}
		require.NoError(t, NewTenantRepo(db).Create(ctx, tenant))

		email := fmt.Sprintf("it-%d@staff.test", time.Now().UnixNano())
		id, err := users.Create(ctx, tenant.ID, email, "s3cret", "STAFF", 4)
		require.NoError(t, err)

		t.Cleanup(func() {
			_, _ = db.Exec(`DELETE FROM users WHERE id = ?`, id)
			_, _ = db.Exec(`DELETE FROM tenants WHERE id = ?`, tenant.ID)
		})

		u, err := users.GetByEmail(ctx, "  "+strings.ToUpper(email)+"  ")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, email, u.Email)
	})
}
