package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/iliyamo/school-activities/internal/config"
	"github.com/iliyamo/school-activities/internal/database"
	"github.com/iliyamo/school-activities/internal/service"
)

// The migration CLI brings the store into a canonical ready state.
//
//	migrate - back up, ensure schema, bootstrap or heal
//	reset   - drop and recreate everything (requires typed RESET)
//	health  - print counts and per-activity fill status
func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg := config.Load()
	db, err := database.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Printf("failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	seeder := service.NewSeeder(db, cfg.DBDriver, cfg.DSN())
	ctx := context.Background()

	switch strings.ToLower(os.Args[1]) {
	case "migrate":
		err = runMigrate(ctx, seeder)
	case "reset":
		err = runReset(ctx, seeder)
	case "health":
		err = runHealth(ctx, seeder)
	default:
		fmt.Printf("unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: migrate [migrate|reset|health]")
	fmt.Println("  migrate - Run database migration")
	fmt.Println("  reset   - Reset database (DANGER: removes all data)")
	fmt.Println("  health  - Check database health")
}

func runMigrate(ctx context.Context, seeder *service.Seeder) error {
	fmt.Println("Starting database migration...")
	if err := seeder.Migrate(ctx); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		return err
	}
	fmt.Println("Database migration completed successfully")
	return nil
}

func runReset(ctx context.Context, seeder *service.Seeder) error {
	fmt.Println("WARNING: This will delete ALL data!")
	fmt.Print("Type 'RESET' to confirm: ")
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	confirm := strings.TrimSpace(line)

	if err := seeder.Reset(ctx, confirm); err != nil {
		if errors.Is(err, service.ErrResetNotConfirmed) {
			fmt.Println("Reset cancelled")
		} else {
			fmt.Printf("Reset failed: %v\n", err)
		}
		return err
	}
	fmt.Println("Database reset completed")
	return nil
}

func runHealth(ctx context.Context, seeder *service.Seeder) error {
	rep, err := seeder.HealthReport(ctx)
	if err != nil {
		fmt.Printf("Health check failed: %v\n", err)
		return err
	}
	fmt.Println("Database Health Report:")
	fmt.Printf("  Activities: %d\n", rep.Activities)
	fmt.Printf("  Users: %d\n", rep.Users)
	fmt.Printf("  Total Enrollments: %d\n", rep.Enrollments)
	fmt.Println("\nActivity Details:")
	for _, f := range rep.Fill {
		spotsLeft := f.MaxParticipants - f.Enrolled
		status := fmt.Sprintf("%d spots left", spotsLeft)
		if spotsLeft == 0 {
			status = "FULL"
		}
		fmt.Printf("  - %s: %d/%d (%s)\n", f.Name, f.Enrolled, f.MaxParticipants, status)
	}
	return nil
}
