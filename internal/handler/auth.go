package handler

import (
    "context"  // provides context with cancellation for DB calls
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/event-ticketing/internal/config"     // app configuration
    "github.com/iliyamo/event-ticketing/internal/model"      // domain entities
    "github.com/iliyamo/event-ticketing/internal/repository" // DB repositories
    "github.com/iliyamo/event-ticketing/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for auth endpoints.  Registration
// creates a tenant together with its first OWNER user, so the handler
// carries the unit of work in addition to the repositories.
type AuthHandler struct {
	Cfg     config.Config
	UoW     *repository.UnitOfWork
	Tenants *repository.TenantRepo
	Users   *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, uow *repository.UnitOfWork, t *repository.TenantRepo, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, UoW: uow, Tenants: t, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	TenantName string `json:"tenant_name"`
	TenantSlug string `json:"tenant_slug"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	TenantID uint64 `json:"tenant_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
type tenantPart struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
type authResp struct {
	Tenant tenantPart `json:"tenant"`
	User   userPart   `json:"user"`
	Access tokenPart  `json:"access"`
}

// Register: create a tenant and its first OWNER user in one unit of
// work, then return an access token immediately.  Either both rows
// exist afterwards or neither does.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.TenantName = strings.TrimSpace(req.TenantName)
	req.TenantSlug = strings.ToLower(strings.TrimSpace(req.TenantSlug))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if req.TenantName == "" || req.TenantSlug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_name/tenant_slug required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tenant := &model.Tenant{Name: req.TenantName, Slug: req.TenantSlug}
	var uid uint64
	err := h.UoW.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.Tenants.Create(ctx, tenant); err != nil {
			return err
		}
		id, err := h.Users.Create(ctx, tenant.ID, req.Email, req.Password, "OWNER", h.Cfg.BcryptCost)
		if err != nil {
			return err
		}
		uid = id
		return nil
	})
	if err != nil {
		switch err {
		case repository.ErrSlugExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "tenant slug already exists"})
		case repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, tenant.ID, "OWNER", h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	return c.JSON(http.StatusCreated, authResp{
		Tenant: tenantPart{ID: tenant.ID, Name: tenant.Name, Slug: tenant.Slug},
		User:   userPart{ID: uid, TenantID: tenant.ID, Email: req.Email, Role: "OWNER"},
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Login: verify credentials and return a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account disabled"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.TenantID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":   userPart{ID: u.ID, TenantID: u.TenantID, Email: u.Email, Role: u.Role},
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":   c.Get("user_id"),
		"tenant_id": c.Get("tenant_id"),
		"role":      c.Get("role"),
	})
}
