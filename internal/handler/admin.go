package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/iliyamo/school-activities/internal/database"
	"github.com/labstack/echo/v4"
)

// AdminHandler exposes operator endpoints.
type AdminHandler struct {
	Driver string
	DSN    string
}

// NewAdminHandler constructs an AdminHandler for the given storage
// driver and DSN.
func NewAdminHandler(driver, dsn string) *AdminHandler {
	return &AdminHandler{Driver: driver, DSN: dsn}
}

// Backup handles GET /admin/backup.  It copies the storage file with a
// timestamped name and returns the backup path.  Storage kinds that
// are not file-based answer with an informational message rather than
// an error.
func (h *AdminHandler) Backup(c echo.Context) error {
	path, err := database.Backup(h.Driver, h.DSN)
	if err != nil {
		if errors.Is(err, database.ErrBackupUnsupported) {
			return c.JSON(http.StatusOK, echo.Map{"message": "Backup not available for this database type"})
		}
		log.Printf("error creating backup: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error creating database backup"})
	}
	if path == "" {
		return c.JSON(http.StatusOK, echo.Map{"message": "Database file not found for backup"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Backup created successfully", "backup_path": path})
}
