package router // package router defines how HTTP routes are registered for the API

import (
	"net/http" // status code for the root redirect

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/school-activities/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not touch the database on
// the provided Echo instance.  Currently it exposes only a process
// liveness check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Healthz handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Healthz)
}

// RegisterActivities registers the activity listing and the enrollment
// transition endpoints.  The optional limiter middleware (Redis token
// bucket) is applied to the two mutating routes; pass nil to skip it.
func RegisterActivities(e *echo.Echo, a *handler.ActivityHandler, limiter echo.MiddlewareFunc) {
	// Listing is read-only and unauthenticated so students can browse
	// activities before signing up.
	e.GET("/activities", a.GetActivities)
	mw := []echo.MiddlewareFunc{}
	if limiter != nil {
		mw = append(mw, limiter)
	}
	// Both transitions take the activity name as a path parameter and the
	// student email as a query parameter; this shape is a fixed contract
	// with the frontend.
	e.POST("/activities/:name/signup", a.Signup, mw...)
	e.DELETE("/activities/:name/unregister", a.Unregister, mw...)
}

// RegisterAdmin registers the operator endpoints: the storage backup
// trigger and the database connectivity probe.
func RegisterAdmin(e *echo.Echo, admin *handler.AdminHandler, health *handler.HealthHandler) {
	e.GET("/admin/backup", admin.Backup)
	e.GET("/health", health.Health)
}

// RegisterStatic serves the frontend assets from the given directory
// under /static and redirects the root path to the index page.
func RegisterStatic(e *echo.Echo, dir string) {
	e.Static("/static", dir)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/static/index.html")
	})
}
