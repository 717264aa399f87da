// Package store persists sites and audit runs in SQLite, MySQL or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver
	_ "modernc.org/sqlite"             // registers the sqlite driver
)

// Table names.
const (
	sitesTable = "pagepulse_sites"
	runsTable  = "pagepulse_runs"
)

// sqliteTimeLayout is fixed width so text comparison matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLStore implements contract.Store over database/sql.
type SQLStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.Store = &SQLStore{} // Compile-time check

// DriverName returns the database/sql driver registered for a backend.
func DriverName(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// NewStore opens the backend, verifies the connection and creates missing tables.
// The none backend returns a store that keeps nothing.
func NewStore(backend schema.DatabaseBackend, connStr string) (*SQLStore, error) {
	if backend == schema.NoneBackend {
		return &SQLStore{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is readable and writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLStore{db: db, backend: backend}, nil
}

// openDB opens a connection pool for backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	driverName, err := DriverName(backend)
	if err != nil {
		return nil, err
	}

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetDBFilePath()
		}
		db, err := sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		db, err := sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, nil

	default:
		db, err := sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=... user=...", err)
		}
		return db, nil
	}
}

// createTables runs the DDL statements of a backend in order.
func createTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, stmt := range ddlStatements(backend) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// ddlStatements returns the CREATE statements for sites and runs.
func ddlStatements(backend schema.DatabaseBackend) []string {
	sites := quoteTableName(sitesTable, backend)
	runs := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id VARCHAR(36) NOT NULL PRIMARY KEY,
				user_id VARCHAR(128) NOT NULL,
				url VARCHAR(512) NOT NULL,
				name VARCHAR(255),
				created_at DATETIME(6) NOT NULL,
				UNIQUE KEY sites_user_url_unique (user_id, url)
			)`, sites),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id VARCHAR(36) NOT NULL PRIMARY KEY,
				site_id VARCHAR(36) NOT NULL,
				user_id VARCHAR(128) NOT NULL,
				strategy VARCHAR(16) NOT NULL,
				created_at DATETIME(6) NOT NULL,
				performance INT,
				seo INT,
				accessibility INT,
				best_practices INT,
				lcp_ms DOUBLE,
				cls DOUBLE,
				inp_ms DOUBLE,
				inp_source VARCHAR(16) NOT NULL DEFAULT '',
				final_url TEXT,
				page_title TEXT,
				lighthouse_version VARCHAR(32),
				raw LONGTEXT,
				INDEX runs_site_strategy_created (site_id, strategy, created_at),
				INDEX runs_user_created (user_id, created_at)
			)`, runs),
		}

	case schema.PostgreSQLBackend:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				url TEXT NOT NULL,
				name TEXT,
				created_at TIMESTAMPTZ NOT NULL,
				CONSTRAINT sites_user_url_unique UNIQUE (user_id, url)
			)`, sites),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				site_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				strategy TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				performance INTEGER,
				seo INTEGER,
				accessibility INTEGER,
				best_practices INTEGER,
				lcp_ms DOUBLE PRECISION,
				cls DOUBLE PRECISION,
				inp_ms DOUBLE PRECISION,
				inp_source TEXT NOT NULL DEFAULT '',
				final_url TEXT,
				page_title TEXT,
				lighthouse_version TEXT,
				raw JSON
			)`, runs),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS runs_site_strategy_created ON %s (site_id, strategy, created_at)`, runs),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS runs_user_created ON %s (user_id, created_at)`, runs),
		}

	default: // SQLite
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				url TEXT NOT NULL,
				name TEXT,
				created_at TEXT NOT NULL,
				CONSTRAINT sites_user_url_unique UNIQUE (user_id, url)
			)`, sites),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				site_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				strategy TEXT NOT NULL,
				created_at TEXT NOT NULL,
				performance INTEGER,
				seo INTEGER,
				accessibility INTEGER,
				best_practices INTEGER,
				lcp_ms REAL,
				cls REAL,
				inp_ms REAL,
				inp_source TEXT NOT NULL DEFAULT '',
				final_url TEXT,
				page_title TEXT,
				lighthouse_version TEXT,
				raw TEXT
			)`, runs),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS runs_site_strategy_created ON %s (site_id, strategy, created_at)`, runs),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS runs_user_created ON %s (user_id, created_at)`, runs),
		}
	}
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Backend returns the configured backend.
func (s *SQLStore) Backend() schema.DatabaseBackend { return s.backend }

// disabled reports whether the store keeps nothing.
func (s *SQLStore) disabled() bool {
	return s.backend == schema.NoneBackend || s.db == nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// formatTime converts a time into the representation stored by the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(sqliteTimeLayout)
	default:
		return t.UTC()
	}
}

// quoteTableName quotes a table name for the backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// placeholders returns n comma-separated ? markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// timeValue scans native and text timestamps into a UTC time.
type timeValue struct {
	time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (tv *timeValue) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		tv.Time, tv.Valid = time.Time{}, false
		return nil
	case time.Time:
		tv.Time, tv.Valid = v.UTC(), true
		return nil
	case string:
		return tv.parse(v)
	case []byte:
		return tv.parse(string(v))
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
}

func (tv *timeValue) parse(s string) error {
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			tv.Time, tv.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("unparseable time %q", s)
}

// isUniqueViolation reports whether err came from a unique constraint.
func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// storageErr wraps a database failure as a storage error.
func storageErr(msg string, err error) error {
	return schema.WrapError(schema.KindStorageError, msg, err)
}

// firstLine returns the first line of a statement for error messages.
func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return strings.TrimSpace(stmt[:i])
	}
	return stmt
}

// withTx runs fn in a transaction and commits when fn succeeds.
func (s *SQLStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}
