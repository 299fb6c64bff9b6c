// Package store implements the MetadataStore (§6): persistent structured
// storage for files, symbols, chunks, graph edges, file dependencies,
// summaries and pipeline state, plus two FTS5 full-text indexes kept in
// sync with their base tables via content-table triggers. It is the
// project's source of truth; the vector store (internal/vectorstore) is a
// cache over it.
//
// Backed by modernc.org/sqlite (cgo-free) in WAL mode with foreign keys
// enabled, following this repository's split-store redesign (two
// physically separate SQLite files rather than the teacher's single
// combined database — see DESIGN.md).
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SchemaVersion is the on-disk schema version this build writes/expects.
const SchemaVersion = 1

// Store is a single-writer handle onto the metadata database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the metadata database at path, ensuring the schema
// exists. Foreign keys and WAL mode are enabled for the lifetime of the
// connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	db.SetMaxOpenConns(1) // single-writer model (§5)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}

	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		_, err = s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}
	return err
}
