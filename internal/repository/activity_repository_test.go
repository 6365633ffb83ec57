package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/school-activities/internal/model"
	"github.com/iliyamo/school-activities/internal/testutil"
)

func insertActivity(t *testing.T, db *sql.DB, repo *ActivityRepo, name string, max int) *model.Activity {
	t.Helper()
	a := &model.Activity{
		Name:            name,
		Description:     "A description long enough to pass validation",
		Schedule:        "Fridays, 3:30 PM - 5:00 PM",
		MaxParticipants: max,
	}
	withTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, repo.InsertTx(context.Background(), tx, a))
	})
	return a
}

func insertUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	repo := NewUserRepo(db)
	var u *model.User
	withTx(t, db, func(tx *sql.Tx) {
		var err error
		u, err = repo.CreateTx(context.Background(), tx, email, "")
		require.NoError(t, err)
	})
	return u
}

func TestActivityRepo_InsertValidation(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "activityrepo_validate")
	repo := NewActivityRepo(db)
	ctx := context.Background()

	cases := []struct {
		name     string
		activity model.Activity
		rule     string
	}{
		{"short name", model.Activity{Name: " ab ", Description: "long enough description", Schedule: "x", MaxParticipants: 5}, RuleMinNameLength},
		{"short description", model.Activity{Name: "Chess Club", Description: "too short", Schedule: "x", MaxParticipants: 5}, RuleMinDescriptionLength},
		{"zero capacity", model.Activity{Name: "Chess Club", Description: "long enough description", Schedule: "x", MaxParticipants: 0}, RulePositiveCapacity},
		{"negative capacity", model.Activity{Name: "Chess Club", Description: "long enough description", Schedule: "x", MaxParticipants: -3}, RulePositiveCapacity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx, err := db.Begin()
			require.NoError(t, err)
			defer tx.Rollback()
			err = repo.InsertTx(ctx, tx, &tc.activity)
			var ce *ConstraintError
			require.ErrorAs(t, err, &ce)
			require.Equal(t, tc.rule, ce.Rule)
		})
	}
}

func TestActivityRepo_InsertTrimsNameAndSetsDefaults(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "activityrepo_insert")
	repo := NewActivityRepo(db)

	a := insertActivity(t, db, repo, "  Chess Club  ", 12)
	require.Equal(t, "Chess Club", a.Name)
	require.NotZero(t, a.ID)
	require.NotNil(t, a.CreatedAt)
	require.Nil(t, a.CreatedBy)
}

func TestActivityRepo_DuplicateName(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "activityrepo_dup")
	repo := NewActivityRepo(db)
	ctx := context.Background()

	insertActivity(t, db, repo, "Chess Club", 12)

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()
	err = repo.InsertTx(ctx, tx, &model.Activity{
		Name:            "Chess Club",
		Description:     "another long enough description",
		Schedule:        "x",
		MaxParticipants: 5,
	})
	require.ErrorIs(t, err, ErrActivityExists)
}

func TestActivityRepo_GetByNameLoadsParticipants(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "activityrepo_get")
	repo := NewActivityRepo(db)
	ctx := context.Background()

	a := insertActivity(t, db, repo, "Chess Club", 12)
	u1 := insertUser(t, db, "michael@mergington.edu")
	u2 := insertUser(t, db, "daniel@mergington.edu")

	withTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, repo.AddParticipantTx(ctx, tx, a.ID, u1.ID))
		require.NoError(t, repo.AddParticipantTx(ctx, tx, a.ID, u2.ID))
	})

	withTx(t, db, func(tx *sql.Tx) {
		got, err := repo.GetByNameTx(ctx, tx, "Chess Club")
		require.NoError(t, err)
		require.Len(t, got.Participants, 2)
		require.Equal(t, "michael@mergington.edu", got.Participants[0].Email)
		require.Equal(t, 10, got.AvailableSpots())
		require.False(t, got.IsFull())
	})

	withTx(t, db, func(tx *sql.Tx) {
		_, err := repo.GetByNameTx(ctx, tx, "Knitting Circle")
		require.ErrorIs(t, err, ErrActivityNotFound)
	})
}

func TestActivityRepo_AddRemoveIsParticipant(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "activityrepo_relation")
	repo := NewActivityRepo(db)
	ctx := context.Background()

	a := insertActivity(t, db, repo, "Math Club", 10)
	u := insertUser(t, db, "james@mergington.edu")

	withTx(t, db, func(tx *sql.Tx) {
		enrolled, err := repo.IsParticipantTx(ctx, tx, a.ID, u.ID)
		require.NoError(t, err)
		require.False(t, enrolled)

		require.NoError(t, repo.AddParticipantTx(ctx, tx, a.ID, u.ID))

		enrolled, err = repo.IsParticipantTx(ctx, tx, a.ID, u.ID)
		require.NoError(t, err)
		require.True(t, enrolled)
	})

	// a second insert of the same pair violates the composite key
	tx, err := db.Begin()
	require.NoError(t, err)
	err = repo.AddParticipantTx(ctx, tx, a.ID, u.ID)
	var ce *ConstraintError
	require.ErrorAs(t, err, &ce)
	require.NoError(t, tx.Rollback())

	withTx(t, db, func(tx *sql.Tx) {
		removed, err := repo.RemoveParticipantTx(ctx, tx, a.ID, u.ID)
		require.NoError(t, err)
		require.True(t, removed)

		removed, err = repo.RemoveParticipantTx(ctx, tx, a.ID, u.ID)
		require.NoError(t, err)
		require.False(t, removed)
	})
}

func TestActivityRepo_ListLoadsAllParticipants(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "activityrepo_list")
	repo := NewActivityRepo(db)
	ctx := context.Background()

	chess := insertActivity(t, db, repo, "Chess Club", 12)
	art := insertActivity(t, db, repo, "Art Club", 15)
	u := insertUser(t, db, "amelia@mergington.edu")

	withTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, repo.AddParticipantTx(ctx, tx, art.ID, u.ID))
	})

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, chess.Name, list[0].Name)
	require.Empty(t, list[0].Participants)
	require.Len(t, list[1].Participants, 1)
	require.Equal(t, "amelia@mergington.edu", list[1].Participants[0].Email)
}

func TestActivityRepo_CascadeDeleteRemovesEnrollments(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "activityrepo_cascade")
	repo := NewActivityRepo(db)
	ctx := context.Background()

	a := insertActivity(t, db, repo, "Debate Team", 12)
	u := insertUser(t, db, "charlotte@mergington.edu")
	withTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, repo.AddParticipantTx(ctx, tx, a.ID, u.ID))
	})

	_, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, u.ID)
	require.NoError(t, err)

	n, err := repo.CountEnrollments(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestActivityRepo_BackfillCreatedAt(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "activityrepo_heal")
	repo := NewActivityRepo(db)
	ctx := context.Background()

	insertActivity(t, db, repo, "Gym Class", 30)
	insertActivity(t, db, repo, "Soccer Team", 22)

	// all rows carry a timestamp, so the pass is a no-op
	n, err := repo.BackfillCreatedAt(ctx, time.Now())
	require.NoError(t, err)
	require.Zero(t, n)

	// simulate legacy drift
	_, err = db.ExecContext(ctx, `UPDATE activities SET created_at = NULL WHERE name = ?`, "Gym Class")
	require.NoError(t, err)

	n, err = repo.BackfillCreatedAt(ctx, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	for _, a := range list {
		require.NotNil(t, a.CreatedAt, "activity %s", a.Name)
	}
}
