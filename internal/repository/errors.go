// Package repository implements the storage boundary for users,
// activities and the enrollment relation on top of database/sql.  The
// error values defined here let higher layers such as handlers
// distinguish failure scenarios without inspecting driver-specific
// error strings themselves.  Lookup misses surface as ...NotFound
// sentinels, while rule violations detected either here or by the
// database surface as a ConstraintError naming the rule that failed.
package repository

import (
	"errors"
	"strings"
)

// ErrActivityNotFound is returned when no activity with the requested
// name exists.  Handlers should translate this into an HTTP 404.
var ErrActivityNotFound = errors.New("activity not found")

// ErrUserNotFound is returned when no user with the requested email
// exists.
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidEmail is returned when an email does not match the
// local@domain.tld shape required at the storage boundary.
var ErrInvalidEmail = errors.New("invalid email format")

// ErrEmailExists is returned when inserting a user whose email is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrActivityExists is returned when inserting an activity whose name
// is already taken.
var ErrActivityExists = errors.New("activity name already exists")

// ConstraintError reports a storage-level rule violation.  Rule names
// match the schema constraint names (valid_role, valid_email_format,
// positive_max_participants, min_name_length, min_description_length)
// so callers can tell which rule failed.
type ConstraintError struct {
	Rule string
}

func (e *ConstraintError) Error() string {
	return "constraint violation: " + e.Rule
}

// Constraint rule names shared between the repository checks and the
// schema CHECK constraints.
const (
	RuleValidRole            = "valid_role"
	RuleValidEmailFormat     = "valid_email_format"
	RulePositiveCapacity     = "positive_max_participants"
	RuleMinNameLength        = "min_name_length"
	RuleMinDescriptionLength = "min_description_length"
)

// isUniqueViolation reports whether err is a driver-level uniqueness
// error.  MySQL reports error 1062 while SQLite reports a message
// containing "UNIQUE constraint failed".
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint failed")
}

// constraintViolation maps a driver-level CHECK constraint error to a
// ConstraintError carrying the rule name, or returns nil when err is
// unrelated to a CHECK constraint.
func constraintViolation(err error) *ConstraintError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	if !strings.Contains(lower, "check constraint") && !strings.Contains(lower, "3819") {
		return nil
	}
	for _, rule := range []string{
		RuleValidRole,
		RuleValidEmailFormat,
		RulePositiveCapacity,
		RuleMinNameLength,
		RuleMinDescriptionLength,
	} {
		if strings.Contains(msg, rule) {
			return &ConstraintError{Rule: rule}
		}
	}
	return &ConstraintError{Rule: "unknown"}
}
