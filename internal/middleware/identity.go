package middleware

// identity.go defines helper functions shared across middleware files. Currently
// it provides a userID extraction function that reads the identity claims
// JWTAuth stored in the Echo context. When no token has been validated for the
// request, "guest" is returned.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userID extracts a user identifier from the context. It returns "guest"
// when no user is authenticated or the claim is missing. JWT numeric claims
// decode as float64, so both string and float64 forms are handled.
func userID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        return strconv.FormatUint(uint64(v), 10)
    }
    return "guest"
}
