package main // Entry point package

import (
	"context"
	"log" // Logging library
	"os"

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/school-activities/internal/config"     // Internal config loader
	"github.com/iliyamo/school-activities/internal/database"   // Database open + schema
	"github.com/iliyamo/school-activities/internal/handler"    // HTTP handlers
	"github.com/iliyamo/school-activities/internal/middleware" // Rate limiting middleware
	"github.com/iliyamo/school-activities/internal/queue"      // Enrollment event consumer
	"github.com/iliyamo/school-activities/internal/repository" // Storage access
	"github.com/iliyamo/school-activities/internal/router"     // Internal router setup
	"github.com/iliyamo/school-activities/internal/service"    // Enrollment + seed services
)

func main() {
	cfg := config.Load() // Load environment config
	ctx := context.Background()

	db, err := database.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.CreateTables(db, cfg.DBDriver); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	// Populate an empty store with the canonical roster.  Startup
	// continues even if seeding fails, matching the listing contract:
	// an empty activity map is better than no server at all.
	seeder := service.NewSeeder(db, cfg.DBDriver, cfg.DSN())
	if err := seeder.Bootstrap(ctx); err != nil {
		log.Printf("initial data seeding failed: %v", err)
	}

	users := repository.NewUserRepo(db)
	activities := repository.NewActivityRepo(db)
	enrollments := service.NewEnrollmentService(db, users, activities)

	// Enrollment events are only wired when a broker is configured.
	if os.Getenv("RABBITMQ_URL") != "" || os.Getenv("AMQP_URL") != "" {
		enrollments.PublishEvents = true
		go func() {
			if err := queue.StartEnrollmentConsumer(); err != nil {
				log.Printf("enrollment consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New() // Create Echo instance

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient())

	router.RegisterRoutes(e)
	router.RegisterActivities(e, handler.NewActivityHandler(activities, enrollments), limiter)
	router.RegisterAdmin(e, handler.NewAdminHandler(cfg.DBDriver, cfg.DSN()), handler.NewHealthHandler(db))
	router.RegisterStatic(e, cfg.StaticDir)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
