package store

import "fmt"

// ChunkMatch is one full-text hit against chunks_fts.
type ChunkMatch struct {
	ChunkID int64
	Rank    float64 // FTS5 bm25() score; more negative is a better match
}

// SearchChunksFTS runs ftsExpr (already tokenized/escaped by the caller)
// against the chunks full-text index, returning up to limit matches
// ordered by relevance. A malformed expression surfaces as a plain error;
// the retriever is responsible for swallowing it into an empty result set
// (§7 FullTextSyntaxError).
func (s *Store) SearchChunksFTS(ftsExpr string, limit int) ([]ChunkMatch, error) {
	rows, err := s.db.Query(
		`SELECT rowid, bm25(chunks_fts) AS rank FROM chunks_fts WHERE chunks_fts MATCH ? ORDER BY rank LIMIT ?`,
		ftsExpr, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: chunks fts: %w", err)
	}
	defer rows.Close()

	var out []ChunkMatch
	for rows.Next() {
		var m ChunkMatch
		if err := rows.Scan(&m.ChunkID, &m.Rank); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SymbolMatch is one full-text hit against symbols_fts.
type SymbolMatch struct {
	SymbolID int64
	Rank     float64
}

// SearchSymbolsFTS runs ftsExpr against the symbols full-text index.
func (s *Store) SearchSymbolsFTS(ftsExpr string, limit int) ([]SymbolMatch, error) {
	rows, err := s.db.Query(
		`SELECT rowid, bm25(symbols_fts) AS rank FROM symbols_fts WHERE symbols_fts MATCH ? ORDER BY rank LIMIT ?`,
		ftsExpr, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: symbols fts: %w", err)
	}
	defer rows.Close()

	var out []SymbolMatch
	for rows.Next() {
		var m SymbolMatch
		if err := rows.Scan(&m.SymbolID, &m.Rank); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
