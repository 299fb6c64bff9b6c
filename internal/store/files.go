package store

import (
	"database/sql"
	"fmt"
	"strings"

	"repoknowledge/internal/model"
)

// FileHash is the persisted hash/size pair used by the hasher's diff fast
// path.
type FileHash struct {
	Hash string
	Size int64
}

// FileHashes returns every persisted file's hash and size, keyed by
// relative path, for hasher.ComputeDiff.
func (s *Store) FileHashes() (map[string]FileHash, error) {
	rows, err := s.db.Query("SELECT path, hash, size_bytes FROM files")
	if err != nil {
		return nil, fmt.Errorf("store: file hashes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]FileHash)
	for rows.Next() {
		var path, hash string
		var size int64
		if err := rows.Scan(&path, &hash, &size); err != nil {
			return nil, err
		}
		out[path] = FileHash{Hash: hash, Size: size}
	}
	return out, rows.Err()
}

// GetFileID returns the id of the file at path, and whether it exists.
func (s *Store) GetFileID(path string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM files WHERE path = ?", path).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// UpsertFile inserts a new file row or updates the existing one for
// f.Path, returning its id.
func (s *Store) UpsertFile(f model.File) (int64, error) {
	id, exists, err := s.GetFileID(f.Path)
	if err != nil {
		return 0, fmt.Errorf("store: upsert file: %w", err)
	}
	if exists {
		_, err = s.db.Exec(
			`UPDATE files SET language=?, size_bytes=?, hash=?, indexed_at=?, line_count=?, purpose=? WHERE id=?`,
			f.Language, f.SizeBytes, f.Hash, f.IndexedAt, f.LineCount, f.Purpose, id,
		)
		return id, err
	}

	res, err := s.db.Exec(
		`INSERT INTO files (path, language, size_bytes, hash, indexed_at, line_count, purpose) VALUES (?,?,?,?,?,?,?)`,
		f.Path, f.Language, f.SizeBytes, f.Hash, f.IndexedAt, f.LineCount, f.Purpose,
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert file: %w", err)
	}
	return res.LastInsertId()
}

// DeleteFile removes the file row at path (cascading to its symbols,
// chunks, edges and dependencies), returning its former id and whether it
// existed. Callers are responsible for evicting the matching vector-store
// rows separately (the two stores are not transactionally joined).
func (s *Store) DeleteFile(path string) (int64, bool, error) {
	id, exists, err := s.GetFileID(path)
	if err != nil || !exists {
		return 0, exists, err
	}
	if _, err := s.db.Exec("DELETE FROM files WHERE id = ?", id); err != nil {
		return 0, false, fmt.Errorf("store: delete file: %w", err)
	}
	return id, true, nil
}

// ClearFileContents deletes fileID's symbols, chunks, graph edges and file
// dependencies without removing the file row itself, for the modified-file
// path of phase 2: the file is about to be re-parsed and re-persisted. Edges
// and dependencies are removed in both directions, including other files'
// edges and dependencies that point at this file; only the file row and its
// id are kept.
func (s *Store) ClearFileContents(fileID int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		stmts := []string{
			"DELETE FROM graph_edges WHERE source_file_id = ? OR target_file_id = ?",
			"DELETE FROM file_dependencies WHERE source_file_id = ? OR target_file_id = ?",
			"DELETE FROM chunks WHERE file_id = ?",
			"DELETE FROM symbols WHERE file_id = ?",
		}
		for _, stmt := range stmts {
			args := []any{fileID}
			if strings.Count(stmt, "?") == 2 {
				args = append(args, fileID)
			}
			if _, err := tx.Exec(stmt, args...); err != nil {
				return fmt.Errorf("store: clear file %d contents: %w", fileID, err)
			}
		}
		return nil
	})
}

// ListFiles returns every indexed file.
func (s *Store) ListFiles() ([]model.File, error) {
	rows, err := s.db.Query(`SELECT id, path, language, size_bytes, hash, indexed_at, line_count, purpose FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("store: list files: %w", err)
	}
	defer rows.Close()

	var out []model.File
	for rows.Next() {
		var f model.File
		if err := rows.Scan(&f.ID, &f.Path, &f.Language, &f.SizeBytes, &f.Hash, &f.IndexedAt, &f.LineCount, &f.Purpose); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// FilesByIDs returns the files whose id is in ids, keyed by id, for
// batch-loading retrieval results without N+1 queries.
func (s *Store) FilesByIDs(ids []int64) (map[int64]model.File, error) {
	out := make(map[int64]model.File, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	seen := make(map[int64]bool, len(ids))
	var unique []int64
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	placeholders, args := placeholdersFor(unique)
	rows, err := s.db.Query(
		`SELECT id, path, language, size_bytes, hash, indexed_at, line_count, purpose FROM files WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("store: files by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f model.File
		if err := rows.Scan(&f.ID, &f.Path, &f.Language, &f.SizeBytes, &f.Hash, &f.IndexedAt, &f.LineCount, &f.Purpose); err != nil {
			return nil, err
		}
		out[f.ID] = f
	}
	return out, rows.Err()
}

// ClearAll deletes every row from every table, for a --full reindex.
func (s *Store) ClearAll() error {
	return s.withTx(func(tx *sql.Tx) error {
		tables := []string{"graph_edges", "file_dependencies", "summaries", "chunks", "symbols", "files", "index_state"}
		for _, t := range tables {
			if _, err := tx.Exec("DELETE FROM " + t); err != nil {
				return fmt.Errorf("store: clear %s: %w", t, err)
			}
		}
		return nil
	})
}

func placeholdersFor(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	var b []byte
	for i, id := range ids {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
		args[i] = id
	}
	return string(b), args
}
