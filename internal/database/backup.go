package database

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrBackupUnsupported is returned when a backup is requested for a
// storage driver that is not file-based.  Callers should report this
// as an informational condition rather than a failure.
var ErrBackupUnsupported = errors.New("backup not supported for this storage driver")

// Backup copies the SQLite database file next to itself under a
// timestamped name and returns the backup path.  When the database
// file does not exist yet, an empty path and nil error are returned so
// that a fresh deployment can proceed without a backup.  Non-SQLite
// drivers return ErrBackupUnsupported.
func Backup(driver, dsn string) (string, error) {
	if driver != DriverSQLite {
		return "", ErrBackupUnsupported
	}

	path := FilePath(dsn)
	if path == "" {
		// In-memory databases have nothing to copy.
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	stamp := time.Now().Format("20060102_150405")
	backupPath := fmt.Sprintf("%s_backup_%s%s", stem, stamp, ext)

	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(backupPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(backupPath)
		return "", err
	}
	return backupPath, nil
}

// FilePath extracts the on-disk file path from a SQLite DSN.  It
// returns an empty string for in-memory databases.
func FilePath(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		if strings.Contains(p[i:], "mode=memory") {
			return ""
		}
		p = p[:i]
	}
	if p == ":memory:" || p == "" {
		return ""
	}
	return p
}
