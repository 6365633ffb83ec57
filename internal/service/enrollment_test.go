package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/school-activities/internal/database"
	"github.com/iliyamo/school-activities/internal/model"
	"github.com/iliyamo/school-activities/internal/repository"
	"github.com/iliyamo/school-activities/internal/testutil"
)

// newSeededService opens a fresh in-memory store, bootstraps the
// canonical roster and returns a service bound to it.
func newSeededService(t *testing.T, name string) *EnrollmentService {
	t.Helper()
	db := testutil.OpenInMemoryDB(t, name)
	seeder := NewSeeder(db, database.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, seeder.Bootstrap(context.Background()))
	return NewEnrollmentService(db, repository.NewUserRepo(db), repository.NewActivityRepo(db))
}

func participants(t *testing.T, svc *EnrollmentService, activity string) []model.User {
	t.Helper()
	tx, err := svc.DB.Begin()
	require.NoError(t, err)
	defer tx.Rollback()
	a, err := svc.Activities.GetByNameTx(context.Background(), tx, activity)
	require.NoError(t, err)
	return a.Participants
}

func TestSignup(t *testing.T) {
	svc := newSeededService(t, "enroll_signup")
	ctx := context.Background()

	require.Len(t, participants(t, svc, "Chess Club"), 2)
	require.NoError(t, svc.Signup(ctx, "Chess Club", "newstudent@mergington.edu"))

	got := participants(t, svc, "Chess Club")
	require.Len(t, got, 3)
	require.Equal(t, "newstudent@mergington.edu", got[2].Email)

	// a user record is created on the fly with the student role
	u, err := svc.Users.GetByEmail(ctx, "newstudent@mergington.edu")
	require.NoError(t, err)
	require.Equal(t, model.RoleStudent, u.Role)
}

func TestSignupNormalizesEmail(t *testing.T) {
	svc := newSeededService(t, "enroll_signup_norm")
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "Art Club", "  Chloe@Mergington.EDU "))
	got := participants(t, svc, "Art Club")
	require.Equal(t, "chloe@mergington.edu", got[len(got)-1].Email)
}

func TestSignupAlreadyEnrolled(t *testing.T) {
	svc := newSeededService(t, "enroll_dup")
	ctx := context.Background()

	err := svc.Signup(ctx, "Chess Club", "michael@mergington.edu")
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.Len(t, participants(t, svc, "Chess Club"), 2)
}

func TestSignupActivityFull(t *testing.T) {
	svc := newSeededService(t, "enroll_full")
	ctx := context.Background()

	// Math Club starts at 2/10; fill the remaining spots.
	for i := 0; i < 8; i++ {
		email := string(rune('a'+i)) + "filler@mergington.edu"
		require.NoError(t, svc.Signup(ctx, "Math Club", email))
	}
	err := svc.Signup(ctx, "Math Club", "late@mergington.edu")
	require.ErrorIs(t, err, ErrActivityFull)
	require.Len(t, participants(t, svc, "Math Club"), 10)

	// the rejected signup must not leave a stray user row behind
	_, err = svc.Users.GetByEmail(ctx, "late@mergington.edu")
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestSignupUnknownActivity(t *testing.T) {
	svc := newSeededService(t, "enroll_unknown_activity")

	err := svc.Signup(context.Background(), "Knitting Circle", "someone@mergington.edu")
	require.ErrorIs(t, err, repository.ErrActivityNotFound)
}

func TestSignupInvalidEmail(t *testing.T) {
	svc := newSeededService(t, "enroll_bad_email")
	ctx := context.Background()

	err := svc.Signup(ctx, "Chess Club", "not-an-email")
	require.ErrorIs(t, err, repository.ErrInvalidEmail)
	require.Len(t, participants(t, svc, "Chess Club"), 2)

	// nothing from the rolled-back transaction persists
	users, err := svc.Users.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 18, users)
}

func TestUnregister(t *testing.T) {
	svc := newSeededService(t, "enroll_unregister")
	ctx := context.Background()

	require.NoError(t, svc.Unregister(ctx, "Chess Club", "michael@mergington.edu"))
	got := participants(t, svc, "Chess Club")
	require.Len(t, got, 1)
	require.Equal(t, "daniel@mergington.edu", got[0].Email)

	// the spot is free again
	require.NoError(t, svc.Signup(ctx, "Chess Club", "michael@mergington.edu"))
	require.Len(t, participants(t, svc, "Chess Club"), 2)
}

func TestUnregisterNotEnrolled(t *testing.T) {
	svc := newSeededService(t, "enroll_unregister_miss")
	ctx := context.Background()

	// known user, wrong activity
	err := svc.Unregister(ctx, "Art Club", "michael@mergington.edu")
	require.ErrorIs(t, err, ErrNotEnrolled)

	// unknown user looks the same from the outside
	err = svc.Unregister(ctx, "Art Club", "stranger@mergington.edu")
	require.ErrorIs(t, err, ErrNotEnrolled)

	// so does a malformed email, which cannot name a participant
	err = svc.Unregister(ctx, "Art Club", "not-an-email")
	require.ErrorIs(t, err, ErrNotEnrolled)

	err = svc.Unregister(ctx, "Knitting Circle", "michael@mergington.edu")
	require.ErrorIs(t, err, repository.ErrActivityNotFound)
}
