// Package service implements the enrollment state transitions and the
// seed/migration procedure on top of the repository layer.  Services
// own the transaction for each logical operation: every operation
// begins a tx, performs its checks against a snapshot read inside that
// tx, and commits or rolls back as a whole.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/school-activities/internal/model"
	"github.com/iliyamo/school-activities/internal/queue"
	"github.com/iliyamo/school-activities/internal/repository"
)

// ErrActivityFull is returned by Signup when the activity already has
// max_participants enrolled.
var ErrActivityFull = errors.New("activity is full")

// ErrAlreadyEnrolled is returned by Signup when the user is already a
// participant of the activity.
var ErrAlreadyEnrolled = errors.New("student is already signed up")

// ErrNotEnrolled is returned by Unregister when the user does not
// exist or is not a participant of the activity.
var ErrNotEnrolled = errors.New("student is not signed up for this activity")

// EnrollmentService validates and applies signup/unregister
// transitions.  All dependencies are injected so the service can run
// against an ephemeral store in tests.
//
// The capacity check is read-modify-write against the participant set
// fetched at the start of the operation.  Two signups racing at the
// capacity boundary can both observe "not full"; this is accepted for
// classroom-scale load and with the default SQLite storage writes
// serialize anyway.
type EnrollmentService struct {
	DB         *sql.DB
	Users      *repository.UserRepo
	Activities *repository.ActivityRepo
	// PublishEvents enables best-effort enrollment event publishing.
	// Publish failures are logged and never fail the operation.
	PublishEvents bool
}

// NewEnrollmentService constructs an EnrollmentService bound to the
// given database and repositories.
func NewEnrollmentService(db *sql.DB, users *repository.UserRepo, activities *repository.ActivityRepo) *EnrollmentService {
	if db == nil || users == nil || activities == nil {
		panic("nil dependency passed to NewEnrollmentService")
	}
	return &EnrollmentService{DB: db, Users: users, Activities: activities}
}

// Signup enrolls the user identified by email into the named activity.
// Checks run in order: the activity must exist (ErrActivityNotFound),
// must not be full (ErrActivityFull), the user is resolved or created
// by email (ErrInvalidEmail on a malformed address), and must not
// already be a participant (ErrAlreadyEnrolled).  A created user row
// and the enrollment commit atomically: either both persist or
// neither does.
func (s *EnrollmentService) Signup(ctx context.Context, activityName, email string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	activity, err := s.Activities.GetByNameTx(ctx, tx, activityName)
	if err != nil {
		return err
	}
	if activity.IsFull() {
		return ErrActivityFull
	}

	user, _, err := s.resolveOrCreateUser(ctx, tx, email)
	if err != nil {
		return err
	}
	for _, p := range activity.Participants {
		if p.ID == user.ID {
			return ErrAlreadyEnrolled
		}
	}

	if err := s.Activities.AddParticipantTx(ctx, tx, activity.ID, user.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	log.Printf("user %s signed up for %s", user.Email, activity.Name)
	s.publish(ctx, queue.ActionSignup, activity, user, len(activity.Participants)+1)
	return nil
}

// Unregister removes the user's enrollment from the named activity.
// The activity must exist (ErrActivityNotFound); a missing user, a
// malformed email and a user who is not a participant all surface as
// ErrNotEnrolled, since none of them can name a current participant.
func (s *EnrollmentService) Unregister(ctx context.Context, activityName, email string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	activity, err := s.Activities.GetByNameTx(ctx, tx, activityName)
	if err != nil {
		return err
	}
	user, err := s.Users.GetByEmailTx(ctx, tx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, repository.ErrInvalidEmail) {
			return ErrNotEnrolled
		}
		return err
	}
	enrolled := false
	for _, p := range activity.Participants {
		if p.ID == user.ID {
			enrolled = true
			break
		}
	}
	if !enrolled {
		return ErrNotEnrolled
	}

	if _, err := s.Activities.RemoveParticipantTx(ctx, tx, activity.ID, user.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	log.Printf("user %s unregistered from %s", user.Email, activity.Name)
	s.publish(ctx, queue.ActionUnregister, activity, user, len(activity.Participants)-1)
	return nil
}

// resolveOrCreateUser looks the user up by email and creates a student
// record when none exists.  The second return value reports whether a
// row was created, so entity creation is never hidden inside a lookup.
// Creation only sets the email; normalization and shape validation
// happen in the repository.
func (s *EnrollmentService) resolveOrCreateUser(ctx context.Context, tx *sql.Tx, email string) (*model.User, bool, error) {
	user, err := s.Users.GetByEmailTx(ctx, tx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, err
	}
	user, err = s.Users.CreateTx(ctx, tx, email, model.RoleStudent)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// publish emits an enrollment event after a successful commit.  Any
// broker error is logged and otherwise ignored.
func (s *EnrollmentService) publish(ctx context.Context, action string, activity *model.Activity, user *model.User, enrolled int) {
	if !s.PublishEvents {
		return
	}
	ev := queue.EnrollmentChangedEvent{
		Action:       action,
		ActivityID:   activity.ID,
		ActivityName: activity.Name,
		UserID:       user.ID,
		Email:        user.Email,
		SpotsLeft:    activity.MaxParticipants - enrolled,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := PublishEnrollmentChanged(ctx, ev); err != nil {
		log.Printf("enrollment event publish failed: %v", err)
	}
}
