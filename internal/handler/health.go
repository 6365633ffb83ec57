package handler // declare the package name; contains HTTP handlers

import (
	"database/sql" // connectivity probe runs a real query
	"errors"       // sql.ErrNoRows is a healthy outcome
	"log"          // probe failures are logged with detail
	"net/http"     // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Healthz is a simple liveness endpoint used by load balancers and
// monitoring systems to verify that the process is running.  It
// returns a plain text "ok" message with an HTTP 200 status code.
func Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// HealthHandler answers the database connectivity probe.
type HealthHandler struct {
	DB *sql.DB
}

// NewHealthHandler constructs a HealthHandler bound to the database.
func NewHealthHandler(db *sql.DB) *HealthHandler { return &HealthHandler{DB: db} }

// Health handles GET /health.  It runs a trivial query against the
// activities table to confirm connectivity; an empty table is still
// healthy.  Failures answer 503.
func (h *HealthHandler) Health(c echo.Context) error {
	var id int64
	err := h.DB.QueryRowContext(c.Request().Context(),
		`SELECT id FROM activities LIMIT 1`).Scan(&id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Printf("health check failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "Database connection failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "healthy", "database": "connected"})
}
