package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Supported driver names.  DriverSQLite is the default, file-backed
// store; DriverMySQL is available for deployments that already run a
// database server.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// MySQLDSN builds a MySQL connection string from its parts.
func MySQLDSN(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)
}

// SQLiteDSN builds a SQLite connection string for a database file.
func SQLiteDSN(path string) string {
	return "file:" + path
}

// Open connects with the given driver and verifies the connection.
// For SQLite the foreign_keys pragma is forced on through the DSN so
// that every pooled connection enforces cascading deletes.
func Open(driver, dsn string) (*sql.DB, error) {
	if driver == DriverSQLite && !strings.Contains(dsn, "_foreign_keys") {
		if strings.Contains(dsn, "?") {
			dsn += "&_foreign_keys=on"
		} else {
			dsn += "?_foreign_keys=on"
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// journal_mode may not be supported in some contexts (e.g. in-memory).
		_, _ = db.Exec(`PRAGMA journal_mode=WAL`)
		if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
			_ = db.Close()
			return nil, err
		}
	} else {
		// Pool settings
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
