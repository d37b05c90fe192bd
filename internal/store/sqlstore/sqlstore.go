// Package sqlstore implements the data store over database/sql. SQLite
// (modernc, pure Go) is the default; postgres:// URLs are served through the
// pgx stdlib driver.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/benderchat/bender/internal/store"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var errConnClosed = errors.New("sqlstore: connection already released")

type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to dsn and bootstraps the schema. A dsn starting with
// postgres:// or postgresql:// selects PostgreSQL; anything else is treated
// as a SQLite path or file: URI.
func Open(dsn string) (*Store, error) {
	d := dialectFor(dsn)
	db, err := sql.Open(d.driver, d.dataSource(dsn))
	if err != nil {
		return nil, err
	}
	if err := applySchema(db, d); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, dialect: d}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect reports the backing database, "sqlite" or "postgres".
func (s *Store) Dialect() string {
	return s.dialect.name
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Stats exposes the pool statistics, mostly for tests and health output.
func (s *Store) Stats() sql.DBStats {
	return s.db.Stats()
}

// Acquire returns a request-scoped handle. No connection is taken from the
// pool until the first statement runs.
func (s *Store) Acquire() store.Conn {
	c := &Conn{store: s}
	c.queries = queries{dialect: s.dialect, get: c.acquire}
	return c
}

// Conn lazily holds one pooled connection for the lifetime of a request.
type Conn struct {
	queries

	store  *Store
	mu     sync.Mutex
	conn   *sql.Conn
	closed bool
}

func (c *Conn) acquire(ctx context.Context) (execer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errConnClosed
	}
	if c.conn == nil {
		conn, err := c.store.db.Conn(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire connection: %w", err)
		}
		c.conn = conn
	}
	return c.conn, nil
}

// Acquired reports whether a pooled connection is currently held.
func (c *Conn) Acquired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// InTx runs fn inside a transaction on the request connection. The
// transaction commits when fn returns nil and rolls back otherwise,
// including when fn panics.
func (c *Conn) InTx(ctx context.Context, fn func(q store.Queries) error) (err error) {
	ex, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	tx, err := ex.(*sql.Conn).BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(queries{dialect: c.dialect, get: func(context.Context) (execer, error) { return tx, nil }}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close returns the connection to the pool. It is a no-op when nothing was
// acquired and safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

type dialect struct {
	name   string
	driver string
}

var (
	sqliteDialect   = dialect{name: "sqlite", driver: "sqlite"}
	postgresDialect = dialect{name: "postgres", driver: "pgx"}
)

func dialectFor(dsn string) dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgresDialect
	}
	return sqliteDialect
}

func (d dialect) dataSource(dsn string) string {
	if d != sqliteDialect || strings.Contains(dsn, "busy_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)"
}

// rebind rewrites ? placeholders into the dialect's form.
func (d dialect) rebind(query string) string {
	if d != postgresDialect {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
