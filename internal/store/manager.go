package store

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/pagepulse/schema"
)

// Manager holds the process-wide store.
type Manager struct {
	sync.RWMutex
	store *SQLStore
}

// Global manager instance for commands.
var (
	Global    = &Manager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetStore returns the initialized store, or nil before InitStore.
func (m *Manager) GetStore() *SQLStore {
	m.RLock()
	defer m.RUnlock()
	return m.store
}

// SetStore replaces the managed store.
func (m *Manager) SetStore(s *SQLStore) {
	m.Lock()
	defer m.Unlock()
	m.store = s
}

// InitStore opens the global store exactly once.
func InitStore(backend schema.DatabaseBackend, connStr string) error {
	var initErr error
	initOnce.Do(func() {
		s, err := NewStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize store: %w", err)
			return
		}
		Global.SetStore(s)
	})
	return initErr
}

// CloseStore should be called on application shutdown.
func CloseStore() {
	closeOnce.Do(func() {
		Global.Lock()
		defer Global.Unlock()
		if Global.store != nil {
			_ = Global.store.Close()
		}
	})
}

// ClearStore removes all stored sites and runs.
// For SQLite, it deletes the database file.
// For MySQL/PostgreSQL, it drops the tables.
// For NoneBackend, it does nothing.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		driverName, _ := DriverName(backend)
		for _, table := range []string{runsTable, sitesTable} {
			if err := clearSQLTable(driverName, connStr, quoteTableName(table, backend)); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(driverName, connStr, tableName string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
