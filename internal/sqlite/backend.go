// Package sqlite implements the SQLite Store backend. Entries live in a
// single table ordered by an autoincrement sequence; feelings are kept as a
// JSON object column. The schema is managed by embedded migrations.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/triggerlog/internal/logger"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// DBFileName is the database file inside DataDir.
const DBFileName = "triggers.db"

const (
	selectEntries = `SELECT id, timestamp, trigger, before, after, intensity, notes, feelings
FROM entries ORDER BY seq`
	insertEntry = `INSERT INTO entries (id, timestamp, trigger, before, after, intensity, notes, feelings)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	deleteEntries = `DELETE FROM entries`
)

// Backend implements types.Store on top of SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	path     string
	db       *sql.DB
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Path returns the database file path. Empty until attached.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// Attach creates DataDir if needed, migrates the schema, and opens the
// database. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	if err := quarantineUnreadable(dbPath); err != nil {
		return err
	}
	if err := RunMigrations(dbPath); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// One writer at a time keeps SQLite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	b.db = db
	b.config = config
	b.path = dbPath
	b.attached = true

	logger.Debug("store attached", "backend", config.Backend, "path", dbPath)
	return nil
}

// Detach closes the database. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		return err
	}
	return nil
}

// Load returns every entry in insertion order. Rows whose feelings column
// cannot be decoded are returned with no feelings.
func (b *Backend) Load() ([]types.Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.Query(selectEntries)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []types.Entry{}
	for rows.Next() {
		var (
			e        types.Entry
			feelings string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Trigger, &e.Before, &e.After, &e.Intensity, &e.Notes, &feelings); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(feelings), &e.Feelings); err != nil {
			logger.Warn("unreadable feelings column", "id", e.ID, "error", err)
			e.Feelings = types.Feelings{}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Append inserts one entry after every existing entry.
func (b *Backend) Append(entry types.Entry) error {
	return b.AppendAll([]types.Entry{entry})
}

// AppendAll inserts entries in one transaction.
func (b *Backend) AppendAll(entries []types.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertEntry)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		feelings := entry.Feelings
		if feelings == nil {
			feelings = types.Feelings{}
		}
		encoded, err := json.Marshal(feelings)
		if err != nil {
			return fmt.Errorf("encode feelings: %w", err)
		}
		_, err = stmt.Exec(
			entry.ID, entry.Timestamp, entry.Trigger, entry.Before, entry.After,
			entry.Intensity, entry.Notes, string(encoded))
		if err != nil {
			return fmt.Errorf("insert entry %d: %w", entry.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entries: %w", err)
	}
	return nil
}

// Clear deletes every entry.
func (b *Backend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if _, err := b.db.Exec(deleteEntries); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

// sqliteHeader opens every SQLite 3 database file.
const sqliteHeader = "SQLite format 3\x00"

// quarantineUnreadable moves a non-empty file that is not a SQLite database
// aside so Attach starts a fresh one. Damage past the header is not detected.
func quarantineUnreadable(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	header := make([]byte, len(sqliteHeader))
	n, err := io.ReadFull(f, header)
	f.Close()
	if n == 0 || (err == nil && string(header) == sqliteHeader) {
		return nil
	}

	dst := fmt.Sprintf("%s.corrupt-%d", path, time.Now().UnixMilli())
	if err := os.Rename(path, dst); err != nil {
		return fmt.Errorf("quarantine %s: %w", DBFileName, err)
	}
	logger.Warn("moved unreadable database aside", "from", path, "to", dst)
	return nil
}
