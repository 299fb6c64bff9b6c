// Package vectorstore implements the VectorStore (§6): a persistent dense
// vector store holding one table of chunk embeddings, queried by
// similarity with an optional language predicate. Backed by
// mattn/go-sqlite3 with the sqlite-vec extension loaded, following the
// teacher's internal/store vec0 usage — but split into its own database
// file per this repository's two-store redesign (see DESIGN.md), so it can
// be rebuilt independently of the metadata store after an embedding-model
// change.
package vectorstore

import (
	"database/sql"
	"fmt"
	"strings"

	sqlitevec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"repoknowledge/internal/model"
)

func init() {
	sqlitevec.Auto()
}

// Store is a single-writer handle onto the vector database.
type Store struct {
	db         *sql.DB
	dimensions int
}

// Open creates or opens the vector database at path for vectors of width
// dimensions, creating the chunk_vectors/chunk_vector_meta tables if
// absent.
func Open(path string, dimensions int) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("vectorstore: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dimensions: dimensions}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	ddl := fmt.Sprintf(`
CREATE VIRTUAL TABLE IF NOT EXISTS chunk_vectors USING vec0(
    chunk_id INTEGER PRIMARY KEY,
    embedding float[%d]
);
CREATE TABLE IF NOT EXISTS chunk_vector_meta (
    chunk_id     INTEGER PRIMARY KEY,
    file_id      INTEGER NOT NULL,
    file_path    TEXT NOT NULL,
    language     TEXT NOT NULL DEFAULT '',
    start_line   INTEGER NOT NULL,
    end_line     INTEGER NOT NULL,
    symbol_names TEXT NOT NULL DEFAULT '',
    content      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunk_vector_meta_file ON chunk_vector_meta(file_id);
CREATE INDEX IF NOT EXISTS idx_chunk_vector_meta_language ON chunk_vector_meta(language);
`, s.dimensions)
	_, err := s.db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("vectorstore: create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Recreate drops and recreates both tables, used on a full reindex (§4.8
// phase 7: "on full indexing create/replace the vector table").
func (s *Store) Recreate() error {
	if _, err := s.db.Exec("DROP TABLE IF EXISTS chunk_vectors; DROP TABLE IF EXISTS chunk_vector_meta;"); err != nil {
		return fmt.Errorf("vectorstore: drop tables: %w", err)
	}
	return s.ensureSchema()
}

// Insert appends rows to the vector table; used on incremental indexing
// where prior files' vectors are preserved.
func (s *Store) Insert(rows []model.ChunkEmbedding) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	vecStmt, err := tx.Prepare(`INSERT INTO chunk_vectors (chunk_id, embedding) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer vecStmt.Close()

	metaStmt, err := tx.Prepare(`INSERT INTO chunk_vector_meta
		(chunk_id, file_id, file_path, language, start_line, end_line, symbol_names, content)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer metaStmt.Close()

	for _, r := range rows {
		blob, err := sqlitevec.SerializeFloat32(r.Vector)
		if err != nil {
			return fmt.Errorf("vectorstore: serialize vector for chunk %d: %w", r.ChunkID, err)
		}
		if _, err := vecStmt.Exec(r.ChunkID, blob); err != nil {
			return fmt.Errorf("vectorstore: insert vector for chunk %d: %w", r.ChunkID, err)
		}
		if _, err := metaStmt.Exec(r.ChunkID, r.FileID, r.FilePath, r.Language,
			r.StartLine, r.EndLine, strings.Join(r.SymbolNames, " "), r.Content); err != nil {
			return fmt.Errorf("vectorstore: insert meta for chunk %d: %w", r.ChunkID, err)
		}
	}
	return tx.Commit()
}

// DeleteByFilePath evicts every vector row belonging to filePath. Orphan
// vectors (a vector row with no corresponding metadata-store chunk) are
// tolerated elsewhere, but modification and removal both actively evict by
// path so the store doesn't accumulate stale rows during normal use.
func (s *Store) DeleteByFilePath(filePath string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT chunk_id FROM chunk_vector_meta WHERE file_path = ?`, filePath)
	if err != nil {
		return err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range ids {
		if _, err := tx.Exec(`DELETE FROM chunk_vectors WHERE chunk_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM chunk_vector_meta WHERE chunk_id = ?`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Match is one vector-similarity search hit.
type Match struct {
	model.ChunkEmbedding
	Distance float64
}

// Query returns the nearest limit vectors to queryVec. languagePredicate,
// when non-empty, must already be a sanitized single-quoted literal (e.g.
// "'go'") as produced by the retriever's sanitize-and-wrap step; it is
// interpolated directly since sqlite-vec's MATCH clause cannot combine
// with a second bound parameter reliably across driver versions.
func (s *Store) Query(queryVec []float32, limit int, languagePredicate string) ([]Match, error) {
	blob, err := sqlitevec.SerializeFloat32(queryVec)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: serialize query vector: %w", err)
	}

	query := `
		SELECT v.chunk_id, v.distance, m.file_id, m.file_path, m.language, m.start_line, m.end_line, m.symbol_names, m.content
		FROM chunk_vectors v
		JOIN chunk_vector_meta m ON m.chunk_id = v.chunk_id
		WHERE v.embedding MATCH ? AND k = ?`
	args := []any{blob, limit}
	if languagePredicate != "" {
		query += ` AND m.language = ` + languagePredicate
	}
	query += ` ORDER BY v.distance`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: query: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		var names string
		if err := rows.Scan(&m.ChunkID, &m.Distance, &m.FileID, &m.FilePath, &m.Language,
			&m.StartLine, &m.EndLine, &names, &m.Content); err != nil {
			return nil, err
		}
		if names != "" {
			m.SymbolNames = strings.Fields(names)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
