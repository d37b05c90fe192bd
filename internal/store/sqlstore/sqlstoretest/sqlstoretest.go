// Package sqlstoretest opens throwaway stores for tests in other packages.
package sqlstoretest

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benderchat/bender/internal/store/sqlstore"

	"github.com/stretchr/testify/require"
)

// Open returns an in-memory SQLite store private to the calling test.
func Open(t testing.TB) *sqlstore.Store {
	t.Helper()
	return open(t, memoryDSN(t))
}

// OpenRaw is Open plus a second handle on the same database, for tests that
// break the schema underneath the store (triggers, dropped tables).
func OpenRaw(t testing.TB) (*sqlstore.Store, *sql.DB) {
	t.Helper()
	dsn := memoryDSN(t)
	st := open(t, dsn)
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "open raw handle")
	t.Cleanup(func() { _ = db.Close() })
	return st, db
}

// OpenFile returns a store backed by a database file in a temp dir, for
// tests that need real concurrent writers.
func OpenFile(t testing.TB) *sqlstore.Store {
	t.Helper()
	return open(t, filepath.Join(t.TempDir(), "bender.db"))
}

func memoryDSN(t testing.TB) string {
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

func open(t testing.TB, dsn string) *sqlstore.Store {
	t.Helper()
	st, err := sqlstore.Open(dsn)
	require.NoError(t, err, "open store")
	t.Cleanup(func() { _ = st.Close() })
	return st
}
