package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/stemhq/arbor/pkg/types"
)

// Backend is the transactional record store keyed by todo ID. It is
// safe for concurrent use; the hierarchy engine additionally serializes
// logical operations so that record and index updates commit together.
type Backend struct {
	mu      sync.RWMutex
	open    bool
	dataDir string
	db      *sql.DB
}

// NewBackend creates an unopened backend. Call Open with a Config to
// initialize it.
func NewBackend() *Backend {
	return &Backend{}
}

// Open initializes the backend: creates DataDir if needed, builds a
// fresh SQLite database with the schema, and loads todos.jsonl into it.
// Returns ErrAlreadyOpen if already open.
func (b *Backend) Open(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		return types.ErrAlreadyOpen
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	// The database is a cache over todos.jsonl; rebuild it from scratch
	// so the JSONL file stays the single source of truth.
	dbPath := filepath.Join(dataDir, "arbor.db")
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("%w: opening database: %v", types.ErrStorageUnavailable, err)
	}
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("%w: executing schema: %v", types.ErrStorageUnavailable, err)
		}
	}

	b.db = db
	b.dataDir = dataDir
	b.open = true

	if err := b.loadTodosJSONL(); err != nil {
		db.Close()
		b.db = nil
		b.open = false
		return fmt.Errorf("loading todos.jsonl: %w", err)
	}
	return nil
}

// Close releases the SQLite connection. Idempotent; after Close all
// operations return ErrStoreClosed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("%w: closing database: %v", types.ErrStorageUnavailable, err)
		}
		b.db = nil
	}
	b.open = false
	return nil
}
