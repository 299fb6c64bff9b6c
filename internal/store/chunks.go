package store

import (
	"database/sql"
	"fmt"
	"strings"

	"repoknowledge/internal/model"
)

// InsertChunks inserts chunks for fileID in one per-file transaction and
// returns their assigned ids in the same order.
func (s *Store) InsertChunks(fileID int64, chunks []model.Chunk) ([]int64, error) {
	ids := make([]int64, len(chunks))
	err := s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO chunks
			(file_id, chunk_index, content, content_hash, start_line, end_line, symbol_names, token_count)
			VALUES (?,?,?,?,?,?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, c := range chunks {
			res, err := stmt.Exec(fileID, c.ChunkIndex, c.Content, c.ContentHash,
				c.StartLine, c.EndLine, strings.Join(c.SymbolNames, " "), c.TokenCount)
			if err != nil {
				return fmt.Errorf("store: insert chunk %d of file %d: %w", c.ChunkIndex, fileID, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			ids[i] = id
		}
		return nil
	})
	return ids, err
}

// ChunksByFile returns every chunk of fileID, ordered by chunk_index.
func (s *Store) ChunksByFile(fileID int64) ([]model.Chunk, error) {
	rows, err := s.db.Query(`SELECT id, file_id, chunk_index, content, content_hash, start_line, end_line, symbol_names, token_count
		FROM chunks WHERE file_id = ? ORDER BY chunk_index`, fileID)
	if err != nil {
		return nil, fmt.Errorf("store: chunks by file: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// ChunkRow is a Chunk joined with its owning file, the shape the retriever
// needs without a second round-trip.
type ChunkRow struct {
	model.Chunk
	FilePath string
	Language string
}

// ChunksByIDs batch-loads chunks (with their file path and language) by
// id, avoiding the N+1 pattern the retriever's keyword/vector paths would
// otherwise hit.
func (s *Store) ChunksByIDs(ids []int64) ([]ChunkRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders, args := placeholdersFor(ids)
	rows, err := s.db.Query(`
		SELECT c.id, c.file_id, c.chunk_index, c.content, c.content_hash, c.start_line, c.end_line, c.symbol_names, c.token_count,
		       f.path, f.language
		FROM chunks c JOIN files f ON f.id = c.file_id
		WHERE c.id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: chunks by ids: %w", err)
	}
	defer rows.Close()

	var out []ChunkRow
	for rows.Next() {
		var cr ChunkRow
		var names string
		if err := rows.Scan(&cr.ID, &cr.FileID, &cr.ChunkIndex, &cr.Content, &cr.ContentHash,
			&cr.StartLine, &cr.EndLine, &names, &cr.TokenCount, &cr.FilePath, &cr.Language); err != nil {
			return nil, err
		}
		cr.SymbolNames = splitNames(names)
		out = append(out, cr)
	}
	return out, rows.Err()
}

func scanChunks(rows *sql.Rows) ([]model.Chunk, error) {
	var out []model.Chunk
	for rows.Next() {
		var c model.Chunk
		var names string
		if err := rows.Scan(&c.ID, &c.FileID, &c.ChunkIndex, &c.Content, &c.ContentHash,
			&c.StartLine, &c.EndLine, &names, &c.TokenCount); err != nil {
			return nil, err
		}
		c.SymbolNames = splitNames(names)
		out = append(out, c)
	}
	return out, rows.Err()
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
