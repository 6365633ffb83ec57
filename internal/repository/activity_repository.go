package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/school-activities/internal/model"
)

// ActivityRepo provides storage access for activities and the
// activity_participants relation.  Activities are always loaded
// together with their current participant set so that derived values
// (available spots, fullness) can be computed from a consistent
// snapshot.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

const activityColumns = `id, name, description, schedule, max_participants, created_at, created_by`

func scanActivity(scan func(dest ...any) error) (*model.Activity, error) {
	var a model.Activity
	var createdAt sql.NullTime
	var createdBy sql.NullInt64
	err := scan(&a.ID, &a.Name, &a.Description, &a.Schedule, &a.MaxParticipants, &createdAt, &createdBy)
	if err != nil {
		return nil, err
	}
	if createdAt.Valid {
		t := createdAt.Time
		a.CreatedAt = &t
	}
	if createdBy.Valid {
		id := createdBy.Int64
		a.CreatedBy = &id
	}
	return &a, nil
}

// GetByNameTx fetches a single activity by its unique name, with the
// participant set loaded, within an existing transaction.  Returns
// ErrActivityNotFound when no such activity exists.
func (r *ActivityRepo) GetByNameTx(ctx context.Context, tx *sql.Tx, name string) (*model.Activity, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE name = ? LIMIT 1`, name)
	a, err := scanActivity(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	const q = `SELECT u.id, u.email, u.name, u.grade, u.student_id, u.role, u.created_at
	           FROM users u
	           JOIN activity_participants ap ON ap.user_id = u.id
	           WHERE ap.activity_id = ?
	           ORDER BY ap.enrolled_at, u.id`
	rows, err := tx.QueryContext(ctx, q, a.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	a.Participants = []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Grade, &u.StudentID, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		a.Participants = append(a.Participants, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns all activities ordered by ID with their participant
// sets loaded.  Participants for every activity are fetched in a
// single query to avoid one round trip per activity.
func (r *ActivityRepo) List(ctx context.Context) ([]model.Activity, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+activityColumns+` FROM activities ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	activities := make([]model.Activity, 0)
	index := make(map[int64]int)
	for rows.Next() {
		a, err := scanActivity(rows.Scan)
		if err != nil {
			return nil, err
		}
		a.Participants = []model.User{}
		index[a.ID] = len(activities)
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		return activities, nil
	}
	// Fetch participants for all activities in one query
	ids := make([]interface{}, 0, len(activities))
	placeholders := make([]string, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.ID)
		placeholders = append(placeholders, "?")
	}
	q := `SELECT ap.activity_id, u.id, u.email, u.name, u.grade, u.student_id, u.role, u.created_at
	      FROM activity_participants ap
	      JOIN users u ON u.id = ap.user_id
	      WHERE ap.activity_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY ap.activity_id, ap.enrolled_at, u.id`
	prows, err := r.DB.QueryContext(ctx, q, ids...)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var activityID int64
		var u model.User
		if err := prows.Scan(&activityID, &u.ID, &u.Email, &u.Name, &u.Grade, &u.StudentID, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		idx, ok := index[activityID]
		if !ok {
			continue
		}
		activities[idx].Participants = append(activities[idx].Participants, u)
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}

// InsertTx inserts a new activity within an existing transaction.  The
// validation rules mirror the schema CHECK constraints so a violation
// is reported with its rule name before the database ever sees the
// row.  The generated ID and timestamp are populated on the provided
// activity.
func (r *ActivityRepo) InsertTx(ctx context.Context, tx *sql.Tx, a *model.Activity) error {
	a.Name = strings.TrimSpace(a.Name)
	if len(a.Name) < 3 {
		return &ConstraintError{Rule: RuleMinNameLength}
	}
	if len(a.Description) < 10 {
		return &ConstraintError{Rule: RuleMinDescriptionLength}
	}
	if a.MaxParticipants <= 0 {
		return &ConstraintError{Rule: RulePositiveCapacity}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO activities (name, description, schedule, max_participants, created_by) VALUES (?, ?, ?, ?, ?)`,
		a.Name, a.Description, a.Schedule, a.MaxParticipants, a.CreatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrActivityExists
		}
		if ce := constraintViolation(err); ce != nil {
			return ce
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	// Query back the row to populate the column-default timestamp
	row := tx.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = ? LIMIT 1`, id)
	got, err := scanActivity(row.Scan)
	if err != nil {
		return err
	}
	a.CreatedAt = got.CreatedAt
	return nil
}

// IsParticipantTx reports whether the user is currently enrolled in
// the activity.  The explicit existence query keeps the seed procedure
// idempotent without relying on uniqueness errors.
func (r *ActivityRepo) IsParticipantTx(ctx context.Context, tx *sql.Tx, activityID, userID int64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM activity_participants WHERE activity_id = ? AND user_id = ? LIMIT 1`,
		activityID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddParticipantTx inserts the enrollment relation between an activity
// and a user within an existing transaction.
func (r *ActivityRepo) AddParticipantTx(ctx context.Context, tx *sql.Tx, activityID, userID int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO activity_participants (activity_id, user_id) VALUES (?, ?)`,
		activityID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return &ConstraintError{Rule: "duplicate_enrollment"}
		}
		return err
	}
	return nil
}

// RemoveParticipantTx deletes the enrollment relation within an
// existing transaction and reports whether a row was removed.
func (r *ActivityRepo) RemoveParticipantTx(ctx context.Context, tx *sql.Tx, activityID, userID int64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM activity_participants WHERE activity_id = ? AND user_id = ?`,
		activityID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the total number of activities.
func (r *ActivityRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&n)
	return n, err
}

// CountTx is Count scoped to an existing transaction.
func (r *ActivityRepo) CountTx(ctx context.Context, tx *sql.Tx) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&n)
	return n, err
}

// CountEnrollments returns the total number of rows in the enrollment
// relation across all activities.
func (r *ActivityRepo) CountEnrollments(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_participants`).Scan(&n)
	return n, err
}

// BackfillCreatedAt sets the creation timestamp on every activity that
// is missing one.  The single UPDATE commits as one unit and returns
// the number of repaired rows; zero means the pass was a no-op.
func (r *ActivityRepo) BackfillCreatedAt(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE activities SET created_at = ? WHERE created_at IS NULL`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
