package database

import "database/sql"

// Schema statements per driver.  There is no incremental migration
// history: tables are created from the current entity definitions and
// schema changes are handled by recreating them (see Reset in the
// seeder).  The CHECK constraints mirror the validation rules enforced
// in the repository layer so that nothing slips past the storage
// boundary.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		name TEXT,
		grade TEXT,
		student_id TEXT UNIQUE,
		role TEXT NOT NULL DEFAULT 'student',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT valid_role CHECK (role IN ('student','teacher','admin')),
		CONSTRAINT valid_email_format CHECK (email LIKE '%@%')
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL,
		schedule TEXT NOT NULL,
		max_participants INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		created_by INTEGER REFERENCES users(id),
		CONSTRAINT positive_max_participants CHECK (max_participants > 0),
		CONSTRAINT min_name_length CHECK (length(name) >= 3),
		CONSTRAINT min_description_length CHECK (length(description) >= 10)
	)`,
	`CREATE TABLE IF NOT EXISTS activity_participants (
		activity_id INTEGER NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		enrolled_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (activity_id, user_id)
	)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT NOT NULL AUTO_INCREMENT,
		email VARCHAR(255) NOT NULL,
		name VARCHAR(255) NULL,
		grade VARCHAR(10) NULL,
		student_id VARCHAR(50) NULL,
		role VARCHAR(50) NOT NULL DEFAULT 'student',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email),
		UNIQUE KEY uq_users_student_id (student_id),
		CONSTRAINT valid_role CHECK (role IN ('student','teacher','admin')),
		CONSTRAINT valid_email_format CHECK (email LIKE '%@%')
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id BIGINT NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		schedule VARCHAR(500) NOT NULL,
		max_participants INT NOT NULL,
		created_at DATETIME NULL DEFAULT CURRENT_TIMESTAMP,
		created_by BIGINT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_activities_name (name),
		CONSTRAINT fk_activities_creator FOREIGN KEY (created_by) REFERENCES users(id),
		CONSTRAINT positive_max_participants CHECK (max_participants > 0),
		CONSTRAINT min_name_length CHECK (CHAR_LENGTH(name) >= 3),
		CONSTRAINT min_description_length CHECK (CHAR_LENGTH(description) >= 10)
	)`,
	`CREATE TABLE IF NOT EXISTS activity_participants (
		activity_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		enrolled_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (activity_id, user_id),
		CONSTRAINT fk_ap_activity FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE,
		CONSTRAINT fk_ap_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
}

// Tables dropped in reverse dependency order.
var dropStatements = []string{
	`DROP TABLE IF EXISTS activity_participants`,
	`DROP TABLE IF EXISTS activities`,
	`DROP TABLE IF EXISTS users`,
}

// CreateTables ensures all tables exist for the given driver.
func CreateTables(db *sql.DB, driver string) error {
	stmts := sqliteSchema
	if driver == DriverMySQL {
		stmts = mysqlSchema
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// DropTables removes all tables.  Used only by the destructive reset
// path of the migration CLI.
func DropTables(db *sql.DB) error {
	for _, s := range dropStatements {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
