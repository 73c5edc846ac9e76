package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB creates a migrated on-disk database under the test's temp
// directory. The file is removed with the directory when the test ends.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.Writer))

	return db
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }
