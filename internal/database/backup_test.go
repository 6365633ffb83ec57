package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilePath(t *testing.T) {
	cases := []struct {
		dsn  string
		want string
	}{
		{"file:school.db", "school.db"},
		{"file:school.db?_foreign_keys=on", "school.db"},
		{"file:/var/lib/app/school.db?_foreign_keys=on&_journal_mode=WAL", "/var/lib/app/school.db"},
		{"school.db", "school.db"},
		{"file::memory:", ""},
		{":memory:", ""},
		{"file:test?mode=memory&cache=shared", ""},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FilePath(tc.dsn), "dsn %q", tc.dsn)
	}
}

func TestBackupCopiesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "school.db")
	require.NoError(t, os.WriteFile(path, []byte("not really a database"), 0o644))

	backupPath, err := Backup(DriverSQLite, "file:"+path+"?_foreign_keys=on")
	require.NoError(t, err)
	require.NotEmpty(t, backupPath)
	require.Contains(t, backupPath, "school_backup_")
	require.Equal(t, ".db", filepath.Ext(backupPath))

	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	require.Equal(t, "not really a database", string(data))
}

func TestBackupMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")
	backupPath, err := Backup(DriverSQLite, "file:"+path)
	require.NoError(t, err)
	require.Empty(t, backupPath)
}

func TestBackupInMemory(t *testing.T) {
	backupPath, err := Backup(DriverSQLite, "file:test?mode=memory&cache=shared")
	require.NoError(t, err)
	require.Empty(t, backupPath)
}

func TestBackupUnsupportedDriver(t *testing.T) {
	_, err := Backup(DriverMySQL, "user:pass@tcp(localhost:3306)/school")
	require.ErrorIs(t, err, ErrBackupUnsupported)
}
