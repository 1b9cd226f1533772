package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// memoryDatabase names a private in-memory journal.
const memoryDatabase = ":memory:"

// OpenDatabase opens or creates the journal database at path and ensures the
// schema is available. File databases run in WAL mode with a busy timeout so
// readers of the journal do not block mutations. memoryDatabase opens a
// journal that lives as long as the returned handle.
func OpenDatabase(ctx context.Context, path string) (*sql.DB, error) {
	dsn := memoryDatabase
	if path != memoryDatabase {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if path == memoryDatabase {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping journal %s: %w", path, err)
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS mutations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    op TEXT NOT NULL,
    kind TEXT NOT NULL,
    source TEXT NOT NULL,
    destination TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    applied_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mutations_source ON mutations(source);
`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Journal is a MutationTarget that appends every completed mutation to a
// SQLite table. It records operations only; the catalog itself is always
// rebuilt from disk.
type Journal struct {
	db *sql.DB
}

// NewJournal returns a journal writing to db. The schema must exist.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) ApplyMutation(ctx context.Context, m Mutation) error {
	at := m.At
	if at.IsZero() {
		at = time.Now()
	}
	if _, err := j.db.ExecContext(ctx, `
INSERT INTO mutations (op, kind, source, destination, category, applied_at)
VALUES (?, ?, ?, ?, ?, ?)
`, string(m.Op), string(m.Kind), m.Source, m.Destination, m.Category.String(), at.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert mutation: %w", err)
	}
	return nil
}
