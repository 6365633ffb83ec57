package handler

import (
	"errors"        // for errors.Is comparisons
	"log"           // internal error details are logged, not echoed
	"net/http"      // HTTP status codes

	"github.com/iliyamo/school-activities/internal/repository" // storage boundary
	"github.com/iliyamo/school-activities/internal/service"    // enrollment transitions
	"github.com/labstack/echo/v4"                              // Echo web framework
)

// ActivityHandler exposes the activity listing and the signup and
// unregister transitions over HTTP.  The handler itself stays thin:
// every state transition runs inside the enrollment service, which
// owns the transaction.
type ActivityHandler struct {
	Activities  *repository.ActivityRepo
	Enrollments *service.EnrollmentService
}

// NewActivityHandler constructs an ActivityHandler with the provided
// dependencies.  All dependencies must be non-nil.
func NewActivityHandler(activities *repository.ActivityRepo, enrollments *service.EnrollmentService) *ActivityHandler {
	if activities == nil || enrollments == nil {
		panic("nil dependency passed to NewActivityHandler")
	}
	return &ActivityHandler{Activities: activities, Enrollments: enrollments}
}

// activityView is the per-activity shape returned by GetActivities.
// The map keyed by activity name and these field names are a fixed
// contract with the frontend.
type activityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
	AvailableSpots  int      `json:"available_spots"`
	IsFull          bool     `json:"is_full"`
}

// GetActivities handles GET /activities.  It returns every activity
// with its participant emails and the derived spot counts, keyed by
// activity name.
func (h *ActivityHandler) GetActivities(c echo.Context) error {
	activities, err := h.Activities.List(c.Request().Context())
	if err != nil {
		log.Printf("database error in GetActivities: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error retrieving activities from database"})
	}
	out := make(map[string]activityView, len(activities))
	for i := range activities {
		a := &activities[i]
		emails := make([]string, 0, len(a.Participants))
		for _, p := range a.Participants {
			emails = append(emails, p.Email)
		}
		out[a.Name] = activityView{
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    emails,
			AvailableSpots:  a.AvailableSpots(),
			IsFull:          a.IsFull(),
		}
	}
	return c.JSON(http.StatusOK, out)
}

// Signup handles POST /activities/:name/signup?email=...  On success
// it returns a confirmation message; otherwise the error is mapped to
// 404 (unknown activity), 400 (full, duplicate, bad email) or 500.
func (h *ActivityHandler) Signup(c echo.Context) error {
	name := c.Param("name")
	email := c.QueryParam("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}
	if err := h.Enrollments.Signup(c.Request().Context(), name, email); err != nil {
		return enrollmentError(c, err, "Error processing signup request")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Signed up " + email + " for " + name})
}

// Unregister handles DELETE /activities/:name/unregister?email=...
func (h *ActivityHandler) Unregister(c echo.Context) error {
	name := c.Param("name")
	email := c.QueryParam("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}
	if err := h.Enrollments.Unregister(c.Request().Context(), name, email); err != nil {
		return enrollmentError(c, err, "Error processing unregister request")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Unregistered " + email + " from " + name})
}

// enrollmentError maps service and repository errors onto the HTTP
// contract.  Storage errors are logged with full detail but answered
// with a generic message.
func enrollmentError(c echo.Context, err error, generic string) error {
	var ce *repository.ConstraintError
	switch {
	case errors.Is(err, repository.ErrActivityNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Activity not found"})
	case errors.Is(err, service.ErrActivityFull):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Activity is full"})
	case errors.Is(err, service.ErrAlreadyEnrolled):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Student is already signed up"})
	case errors.Is(err, service.ErrNotEnrolled):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Student is not signed up for this activity"})
	case errors.Is(err, repository.ErrInvalidEmail):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid email format"})
	case errors.As(err, &ce), errors.Is(err, repository.ErrEmailExists):
		log.Printf("integrity error in enrollment: %v", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Data integrity error - possibly invalid email format"})
	default:
		log.Printf("database error in enrollment: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": generic})
	}
}
