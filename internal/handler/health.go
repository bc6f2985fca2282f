package handler // declare the package name; contains HTTP handlers

import (
    "net/http"          // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health backs the /healthz endpoint polled by load balancers and
// monitoring systems to verify that the ticketing service is running.
// It returns a plain text "ok" message with an HTTP 200 status code
// and touches neither the database nor Redis.
func Health(c echo.Context) error { // Health handler signature accepts an echo context and returns an error
    return c.String(http.StatusOK, "ok") // write "ok" with a 200 OK status; String writes plain text
}
