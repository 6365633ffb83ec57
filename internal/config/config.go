package config // package config loads application configuration from environment variables

import (
	"log" // log reports when the optional .env file is absent
	"os"  // os provides access to environment variables

	"github.com/joho/godotenv" // godotenv loads a local .env file when present

	"github.com/iliyamo/school-activities/internal/database"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Every value has a default
// suitable for local development so the server starts with no
// environment at all: a SQLite file beside the binary.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBDriver  string // storage driver: sqlite3 (default) or mysql
	DBPath    string // path of the SQLite database file
	DBUser    string // MySQL username
	DBPass    string // MySQL password (optional)
	DBHost    string // MySQL host address
	DBPort    string // MySQL port number
	DBName    string // MySQL database name
	StaticDir string // directory of the frontend assets
}

// Load reads configuration values from environment variables and
// returns a Config.  A .env file in the working directory is loaded
// first when present; real environment variables take precedence.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}
	return Config{
		Env:       getenv("APP_ENV", "dev"),
		Port:      getenv("APP_PORT", "8000"),
		DBDriver:  getenv("DB_DRIVER", database.DriverSQLite),
		DBPath:    getenv("DB_PATH", "mergington_activities.db"),
		DBUser:    getenv("DB_USER", "root"),
		DBPass:    os.Getenv("DB_PASS"), // empty allowed
		DBHost:    getenv("DB_HOST", "localhost"),
		DBPort:    getenv("DB_PORT", "3306"),
		DBName:    getenv("DB_NAME", "school_activities"),
		StaticDir: getenv("STATIC_DIR", "public"),
	}
}

// DSN builds the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == database.DriverMySQL {
		return database.MySQLDSN(c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
	}
	return database.SQLiteDSN(c.DBPath)
}

// getenv retrieves an environment variable or returns a default value.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
