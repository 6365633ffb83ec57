package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/iliyamo/school-activities/internal/model"
)

// emailRe mirrors the shape check applied by the original schema:
// something before the @, something after it, and a dotted domain.
var emailRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// NormalizeEmail trims and lower-cases an email and validates its
// shape.  All writes and lookups go through this so the uniqueness
// constraint on users.email is case-insensitive in practice.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRe.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

const userColumns = `id, email, name, grade, student_id, role, created_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Grade, &u.StudentID, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail fetches a user by normalized email.  Returns
// ErrUserNotFound when no such user exists and ErrInvalidEmail when
// the email is malformed.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email)
	return scanUser(row)
}

// GetByEmailTx is GetByEmail scoped to an existing transaction.
func (r *UserRepo) GetByEmailTx(ctx context.Context, tx *sql.Tx, email string) (*model.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email)
	return scanUser(row)
}

// CreateTx inserts a new user within the scope of an existing
// transaction.  Only the email and role are set; everything else keeps
// its column default.  The inserted row is read back so the caller
// receives the generated ID and timestamp.  The caller must commit or
// rollback the transaction.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, email, role string) (*model.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = model.RoleStudent
	}
	if !model.ValidRole(role) {
		return nil, &ConstraintError{Rule: RuleValidRole}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (email, role) VALUES (?, ?)`, email, role)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		if ce := constraintViolation(err); ce != nil {
			return nil, ce
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	row := tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
	return scanUser(row)
}

// Count returns the total number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
