package xmlstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// mode records how the backing SQLite file was provisioned, so Close can
// clean up a temp directory the way original_source/src/document.rs's
// Mode::TempDir does.
type mode int

const (
	modeMemory mode = iota
	modeTemp
	modeFile
)

// Store is the Document Store: the relational materialization of one XML
// document plus its typed query surface.
type Store struct {
	db      *sql.DB
	options Options
	mode    mode
	tempDir string
}

// OpenInMemory creates an ephemeral, process-local store. Nothing is
// persisted; the store disappears when Close is called or the process exits.
func OpenInMemory(opts ...Option) (*Store, error) {
	return create(":memory:", modeMemory, "", opts...)
}

// OpenTemp creates a store backed by a SQLite file in a fresh temporary
// directory, removed on Close.
func OpenTemp(opts ...Option) (*Store, error) {
	dir, err := os.MkdirTemp("", "xmlstore-")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp dir: %v", ErrStorage, err)
	}
	path := filepath.Join(dir, "store.db")
	s, err := create(path, modeTemp, dir, opts...)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return s, nil
}

// OpenFile creates a new store at a named path on disk. The path must not
// already exist as a populated store; use Open to reopen one.
func OpenFile(path string, opts ...Option) (*Store, error) {
	return create(path, modeFile, "", opts...)
}

// Open reopens a previously-committed store at path for reads (and, via the
// Redactor, in-place value updates). It does not (re)write the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrStorage, path, err)
	}
	s := &Store{db: db, mode: modeFile}
	if err := s.detectOptions(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// detectOptions inspects the nodes table for the inferred_type column,
// since the schema is self-describing.
func (s *Store) detectOptions() error {
	rows, err := s.db.Query("PRAGMA table_info(nodes)")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		if name == "inferred_type" {
			s.options.InferTypes = true
		}
	}
	return rows.Err()
}

func create(dsn string, m mode, tempDir string, opts ...Option) (*Store, error) {
	options := resolveOptions(opts)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrStorage, dsn, err)
	}
	db.SetMaxOpenConns(1) // exclusive locking mode requires a single connection

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrStorage, pragma, err)
		}
	}

	schema, sentinels := schemaSimple, sentinelRowsSimple
	if options.InferTypes {
		schema, sentinels = schemaWithTypes, sentinelRowsWithTypes
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", ErrStorage, err)
	}
	if _, err := db.Exec(sentinels); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: seeding sentinel rows: %v", ErrStorage, err)
	}

	return &Store{db: db, options: options, mode: m, tempDir: tempDir}, nil
}

// Close releases the underlying connection and, for OpenTemp stores, removes
// the backing temporary directory.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.mode == modeTemp && s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
	return err
}

// InferenceEnabled reports whether this store was created with type
// inference.
func (s *Store) InferenceEnabled() bool { return s.options.InferTypes }

// CaseInsensitive reports whether names were lowercased at ingest.
func (s *Store) CaseInsensitive() bool { return s.options.CaseInsensitive }

// createIndexes runs the six indexes used by the query surface. Called once,
// after the final ingest message drains.
func (s *Store) createIndexes(execer execer) error {
	for _, stmt := range indexStatements {
		if _, err := execer.Exec(stmt); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrStorage, stmt, err)
		}
	}
	return nil
}

// execer abstracts *sql.DB and *sql.Tx so createIndexes can run inside
// ingest's single write transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// withRetry retries a write while SQLite reports lock contention ("database
// is locked"), up to five attempts 50ms apart, matching
// termfx-morfx/internal/db/db.go's execWithRetry. Nothing in this package
// calls it: ingest, redact and Close all run their statements directly.
func withRetry(fn func() error) error {
	const maxRetries = 5
	var err error
	for i := 0; i < maxRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("%w: locked after %d retries: %v", ErrStorage, maxRetries, err)
}

// ElementCount returns the number of element nodes (supplemented feature,
// grounded on original_source/src/document.rs element_count).
func (s *Store) ElementCount() (int64, error) {
	return s.countWhere("SELECT COUNT(*) FROM nodes WHERE node_type = ?", int(NodeElement))
}

// NodeCount returns the total number of node rows, sentinels included.
func (s *Store) NodeCount() (int64, error) {
	return s.countWhere("SELECT COUNT(*) FROM nodes")
}

// AttrCount returns the total number of attribute rows.
func (s *Store) AttrCount() (int64, error) {
	return s.countWhere("SELECT COUNT(*) FROM attrs")
}

func (s *Store) countWhere(query string, args ...any) (int64, error) {
	var n int64
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return n, nil
}
