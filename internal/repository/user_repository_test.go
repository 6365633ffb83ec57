package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/school-activities/internal/model"
	"github.com/iliyamo/school-activities/internal/testutil"
)

func withTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()
	tx, err := db.Begin()
	require.NoError(t, err)
	fn(tx)
	require.NoError(t, tx.Commit())
}

func TestUserRepo_CreateNormalizesEmail(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "userrepo_create")
	repo := NewUserRepo(db)
	ctx := context.Background()

	var created *model.User
	withTx(t, db, func(tx *sql.Tx) {
		u, err := repo.CreateTx(ctx, tx, "  Alice@Mergington.EDU ", "")
		require.NoError(t, err)
		created = u
	})
	require.NotZero(t, created.ID)
	require.Equal(t, "alice@mergington.edu", created.Email)
	require.Equal(t, model.RoleStudent, created.Role)
	require.False(t, created.CreatedAt.IsZero())

	// lookup is case-insensitive because both sides normalize
	got, err := repo.GetByEmail(ctx, "ALICE@mergington.edu")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestUserRepo_InvalidEmailRejected(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "userrepo_invalid")
	repo := NewUserRepo(db)
	ctx := context.Background()

	for _, email := range []string{"", "plain", "no-at.example.com", "a@b", "two@@x.com"} {
		tx, err := db.Begin()
		require.NoError(t, err)
		_, err = repo.CreateTx(ctx, tx, email, "")
		require.ErrorIs(t, err, ErrInvalidEmail, "email %q", email)
		require.NoError(t, tx.Rollback())
	}

	_, err := repo.GetByEmail(ctx, "not-an-email")
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "userrepo_dup")
	repo := NewUserRepo(db)
	ctx := context.Background()

	withTx(t, db, func(tx *sql.Tx) {
		_, err := repo.CreateTx(ctx, tx, "bob@mergington.edu", "")
		require.NoError(t, err)
	})

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = repo.CreateTx(ctx, tx, "BOB@mergington.edu", "")
	require.ErrorIs(t, err, ErrEmailExists)
	require.NoError(t, tx.Rollback())
}

func TestUserRepo_InvalidRole(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "userrepo_role")
	repo := NewUserRepo(db)
	ctx := context.Background()

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = repo.CreateTx(ctx, tx, "carol@mergington.edu", "principal")
	var ce *ConstraintError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, RuleValidRole, ce.Rule)
	require.NoError(t, tx.Rollback())
}

func TestUserRepo_GetByEmailNotFound(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "userrepo_missing")
	repo := NewUserRepo(db)

	_, err := repo.GetByEmail(context.Background(), "ghost@mergington.edu")
	require.True(t, errors.Is(err, ErrUserNotFound))
}

func TestUserRepo_Count(t *testing.T) {
	db := testutil.OpenInMemoryDB(t, "userrepo_count")
	repo := NewUserRepo(db)
	ctx := context.Background()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	withTx(t, db, func(tx *sql.Tx) {
		for _, email := range []string{"a@x.edu", "b@x.edu", "c@x.edu"} {
			_, err := repo.CreateTx(ctx, tx, email, "")
			require.NoError(t, err)
		}
	})

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}
