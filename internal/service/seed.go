package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/school-activities/internal/database"
	"github.com/iliyamo/school-activities/internal/model"
	"github.com/iliyamo/school-activities/internal/repository"
)

// ResetConfirmToken is the exact confirmation an operator must supply
// before Reset destroys any data.
const ResetConfirmToken = "RESET"

// ErrResetNotConfirmed is returned by Reset when the confirmation
// token does not match ResetConfirmToken.
var ErrResetNotConfirmed = errors.New("reset not confirmed")

// seedActivity is one entry of the canonical bootstrap roster.
type seedActivity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
}

// seedEnrollment pairs an email with the activity it is enrolled in.
type seedEnrollment struct {
	Email    string
	Activity string
}

// The canonical roster inserted into an empty store.  Preserved
// verbatim as fixture data; nothing outside the seed path depends on
// its specific values.
var seedActivities = []seedActivity{
	{"Chess Club", "Learn strategies and compete in chess tournaments", "Fridays, 3:30 PM - 5:00 PM", 12},
	{"Programming Class", "Learn programming fundamentals and build software projects", "Tuesdays and Thursdays, 3:30 PM - 4:30 PM", 20},
	{"Gym Class", "Physical education and sports activities", "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM", 30},
	{"Soccer Team", "Join the school soccer team and compete in matches", "Tuesdays and Thursdays, 4:00 PM - 5:30 PM", 22},
	{"Basketball Team", "Practice and play basketball with the school team", "Wednesdays and Fridays, 3:30 PM - 5:00 PM", 15},
	{"Art Club", "Explore your creativity through painting and drawing", "Thursdays, 3:30 PM - 5:00 PM", 15},
	{"Drama Club", "Act, direct, and produce plays and performances", "Mondays and Wednesdays, 4:00 PM - 5:30 PM", 20},
	{"Math Club", "Solve challenging problems and participate in math competitions", "Tuesdays, 3:30 PM - 4:30 PM", 10},
	{"Debate Team", "Develop public speaking and argumentation skills", "Fridays, 4:00 PM - 5:30 PM", 12},
}

var seedEnrollments = []seedEnrollment{
	{"michael@mergington.edu", "Chess Club"},
	{"daniel@mergington.edu", "Chess Club"},
	{"emma@mergington.edu", "Programming Class"},
	{"sophia@mergington.edu", "Programming Class"},
	{"john@mergington.edu", "Gym Class"},
	{"olivia@mergington.edu", "Gym Class"},
	{"liam@mergington.edu", "Soccer Team"},
	{"noah@mergington.edu", "Soccer Team"},
	{"ava@mergington.edu", "Basketball Team"},
	{"mia@mergington.edu", "Basketball Team"},
	{"amelia@mergington.edu", "Art Club"},
	{"harper@mergington.edu", "Art Club"},
	{"ella@mergington.edu", "Drama Club"},
	{"scarlett@mergington.edu", "Drama Club"},
	{"james@mergington.edu", "Math Club"},
	{"benjamin@mergington.edu", "Math Club"},
	{"charlotte@mergington.edu", "Debate Team"},
	{"henry@mergington.edu", "Debate Team"},
}

// Seeder brings an empty or partially-initialized store into a
// canonical ready state and heals minor data drift, without ever
// duplicating or destroying user-supplied data.  Driver and DSN are
// needed for the schema and backup steps.
type Seeder struct {
	DB         *sql.DB
	Driver     string
	DSN        string
	Users      *repository.UserRepo
	Activities *repository.ActivityRepo
}

// NewSeeder constructs a Seeder bound to the given database.
func NewSeeder(db *sql.DB, driver, dsn string) *Seeder {
	return &Seeder{
		DB:         db,
		Driver:     driver,
		DSN:        dsn,
		Users:      repository.NewUserRepo(db),
		Activities: repository.NewActivityRepo(db),
	}
}

// Bootstrap populates an empty store with the canonical roster.  When
// activities already exist the whole step short-circuits, which makes
// running it twice a no-op.  Activities commit first, then users and
// their enrollments; each enrollment pair get-or-creates the user and
// skips pairs whose enrollment already exists (checked by an explicit
// existence query).
func (s *Seeder) Bootstrap(ctx context.Context) error {
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

	n, err := s.Activities.CountTx(ctx, tx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil // data already exists
	}
	for _, sa := range seedActivities {
		a := model.Activity{
			Name:            sa.Name,
			Description:     sa.Description,
			Schedule:        sa.Schedule,
			MaxParticipants: sa.MaxParticipants,
		}
		if err := s.Activities.InsertTx(ctx, tx, &a); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	return s.seedEnrollments(ctx)
}

func (s *Seeder) seedEnrollments(ctx context.Context) error {
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

	for _, se := range seedEnrollments {
		user, err := s.Users.GetByEmailTx(ctx, tx, se.Email)
		if errors.Is(err, repository.ErrUserNotFound) {
			user, err = s.Users.CreateTx(ctx, tx, se.Email, model.RoleStudent)
		}
		if err != nil {
			return err
		}
		activity, err := s.Activities.GetByNameTx(ctx, tx, se.Activity)
		if err != nil {
			if errors.Is(err, repository.ErrActivityNotFound) {
				continue
			}
			return err
		}
		enrolled, err := s.Activities.IsParticipantTx(ctx, tx, activity.ID, user.ID)
		if err != nil {
			return err
		}
		if enrolled {
			continue
		}
		if err := s.Activities.AddParticipantTx(ctx, tx, activity.ID, user.ID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Heal backfills the creation timestamp on activities missing one.  It
// returns the number of repaired rows; zero means nothing needed
// repair.
func (s *Seeder) Heal(ctx context.Context) (int64, error) {
	return s.Activities.BackfillCreatedAt(ctx, time.Now())
}

// Migrate runs the full migration procedure: back up the storage file
// (failure is logged, not fatal), ensure the schema exists, then
// bootstrap an empty store or heal an already-populated one.
func (s *Seeder) Migrate(ctx context.Context) error {
	backupPath, err := database.Backup(s.Driver, s.DSN)
	switch {
	case errors.Is(err, database.ErrBackupUnsupported):
		log.Printf("migrate: backup skipped: %v", err)
	case err != nil:
		log.Printf("migrate: backup failed: %v", err)
	case backupPath != "":
		log.Printf("migrate: backup created: %s", backupPath)
	}

	if err := database.CreateTables(s.DB, s.Driver); err != nil {
		return err
	}

	n, err := s.Activities.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		log.Printf("migrate: no existing data found, seeding initial data")
		return s.Bootstrap(ctx)
	}
	log.Printf("migrate: found %d existing activities", n)
	healed, err := s.Heal(ctx)
	if err != nil {
		return err
	}
	if healed > 0 {
		log.Printf("migrate: backfilled created_at on %d activities", healed)
	}
	return nil
}

// Reset drops and recreates all storage structures and re-runs the
// bootstrap.  The confirm argument must equal ResetConfirmToken
// exactly; otherwise nothing happens and ErrResetNotConfirmed is
// returned.  A backup is taken before anything is dropped; like in
// Migrate, a backup failure is logged but does not stop the reset.
func (s *Seeder) Reset(ctx context.Context, confirm string) error {
	if confirm != ResetConfirmToken {
		return ErrResetNotConfirmed
	}
	backupPath, err := database.Backup(s.Driver, s.DSN)
	switch {
	case errors.Is(err, database.ErrBackupUnsupported):
		log.Printf("reset: backup skipped: %v", err)
	case err != nil:
		log.Printf("reset: backup failed: %v", err)
	case backupPath != "":
		log.Printf("reset: backup created: %s", backupPath)
	}
	if err := database.DropTables(s.DB); err != nil {
		return err
	}
	if err := database.CreateTables(s.DB, s.Driver); err != nil {
		return err
	}
	return s.Bootstrap(ctx)
}

// ActivityFill is one line of the health report.
type ActivityFill struct {
	Name            string
	Enrolled        int
	MaxParticipants int
}

// HealthReport aggregates store statistics for the migration CLI.
type HealthReport struct {
	Activities  int
	Users       int
	Enrollments int
	Fill        []ActivityFill
}

// HealthReport gathers counts and per-activity fill status.
func (s *Seeder) HealthReport(ctx context.Context) (*HealthReport, error) {
	activities, err := s.Activities.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.Users.Count(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.Activities.CountEnrollments(ctx)
	if err != nil {
		return nil, err
	}
	rep := &HealthReport{
		Activities:  len(activities),
		Users:       users,
		Enrollments: enrollments,
	}
	for _, a := range activities {
		rep.Fill = append(rep.Fill, ActivityFill{
			Name:            a.Name,
			Enrolled:        len(a.Participants),
			MaxParticipants: a.MaxParticipants,
		})
	}
	return rep, nil
}
