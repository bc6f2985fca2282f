package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/utils"
)

const testSecret = "test-secret"

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := JWTAuth(testSecret)(next)(c)
	require.NoError(t, err)
	return rec, c
}

func TestJWTAuthInjectsClaims(t *testing.T) {
	t.Parallel()

	tok, err := utils.NewAccessToken(testSecret, 42, 7, "OWNER", 15)
	require.NoError(t, err)

	rec, c := runJWT(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(42), c.Get("user_id"))
	assert.Equal(t, float64(7), c.Get("tenant_id"))
	assert.Equal(t, "OWNER", c.Get("role"))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	t.Parallel()

	rec, _ := runJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := utils.NewAccessToken("other-secret", 42, 7, "OWNER", 15)
	require.NoError(t, err)

	rec, _ := runJWT(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	run := func(role any, allowed ...string) int {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
		_ = RequireRole(allowed...)(next)(c)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("OWNER", "OWNER", "STAFF"))
	assert.Equal(t, http.StatusOK, run("STAFF", "OWNER", "STAFF"))
	assert.Equal(t, http.StatusForbidden, run("STAFF", "OWNER"))
	assert.Equal(t, http.StatusForbidden, run(nil, "OWNER"))
}
