// Package sqlstoretest opens throwaway SQLite stores for tests.
package sqlstoretest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/storage/sqlstore"
)

// New returns a migrated store in a temporary directory, closed on cleanup
func New(tb testing.TB) *sqlstore.Store {
	tb.Helper()

	dsn := sqlstore.SQLiteDSN(filepath.Join(tb.TempDir(), "recruito.db"))
	store, err := sqlstore.Open(context.Background(), sqlstore.Config{
		Driver:  sqlstore.DriverSQLite,
		DSN:     dsn,
		Migrate: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite store: %v", err)
	}

	tb.Cleanup(func() {
		_ = store.Close(context.Background())
	})
	return store
}
