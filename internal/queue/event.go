// Package queue defines message payloads exchanged over the message broker.
package queue

// Actions carried by EnrollmentChangedEvent.
const (
	ActionSignup     = "signup"
	ActionUnregister = "unregister"
)

// EnrollmentChangedEvent is published whenever a signup or unregister
// commits.  It carries enough information for downstream consumers to
// log or notify without querying the primary database.
type EnrollmentChangedEvent struct {
	Action       string `json:"action"`
	ActivityID   int64  `json:"activity_id"`
	ActivityName string `json:"activity_name"`
	UserID       int64  `json:"user_id"`
	Email        string `json:"email"`
	SpotsLeft    int    `json:"spots_left"`
	OccurredAt   string `json:"occurred_at"`
}
