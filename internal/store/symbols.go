package store

import (
	"database/sql"
	"fmt"

	"repoknowledge/internal/model"
)

// SymbolRef is a lightweight pointer into the symbol table, used by the
// graph builder's name-resolution index.
type SymbolRef struct {
	ID     int64
	FileID int64
	Kind   model.SymbolKind
}

// InsertSymbols inserts syms for fileID in one transaction and returns
// their assigned ids in the same order. Parent linkage is resolved
// separately by ResolveParents once every symbol of the file has an id.
func (s *Store) InsertSymbols(fileID int64, syms []model.Symbol) ([]int64, error) {
	ids := make([]int64, len(syms))
	err := s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO symbols
			(file_id, name, kind, signature, start_line, start_col, end_line, end_col, docstring, exported, importance)
			VALUES (?,?,?,?,?,?,?,?,?,?,0)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, sym := range syms {
			res, err := stmt.Exec(fileID, sym.Name, string(sym.Kind), sym.Signature,
				sym.StartLine, sym.StartCol, sym.EndLine, sym.EndCol, sym.Docstring, boolToInt(sym.Exported))
			if err != nil {
				return fmt.Errorf("store: insert symbol %q: %w", sym.Name, err)
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

// ResolveParents maps each of fileID's symbols' ParentName against the
// file's top-level symbols (those with no parent name of their own) and
// sets parent_id accordingly. Nested siblings are never used as parents,
// per the invariant that a symbol's parent is always a top-level symbol of
// the same file.
func (s *Store) ResolveParents(fileID int64, syms []model.Symbol, ids []int64) error {
	topLevel := make(map[string]int64)
	for i, sym := range syms {
		if sym.ParentName == "" {
			topLevel[sym.Name] = ids[i]
		}
	}
	if len(topLevel) == 0 {
		return nil
	}

	return s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`UPDATE symbols SET parent_id = ? WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, sym := range syms {
			if sym.ParentName == "" {
				continue
			}
			parentID, ok := topLevel[sym.ParentName]
			if !ok {
				continue
			}
			if _, err := stmt.Exec(parentID, ids[i]); err != nil {
				return fmt.Errorf("store: resolve parent for symbol %d: %w", ids[i], err)
			}
		}
		return nil
	})
}

// SymbolsByFile returns every symbol owned by fileID, ordered by start line.
func (s *Store) SymbolsByFile(fileID int64) ([]model.Symbol, error) {
	rows, err := s.db.Query(`SELECT id, file_id, name, kind, signature, start_line, start_col, end_line, end_col,
		parent_id, docstring, exported, importance FROM symbols WHERE file_id = ? ORDER BY start_line`, fileID)
	if err != nil {
		return nil, fmt.Errorf("store: symbols by file: %w", err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// AllSymbolsIndex builds the name -> list-of-(symbol id, file id, kind) map
// the graph builder resolves import/call targets against (§4.5 step 1).
func (s *Store) AllSymbolsIndex() (map[string][]SymbolRef, error) {
	rows, err := s.db.Query(`SELECT name, id, file_id, kind FROM symbols`)
	if err != nil {
		return nil, fmt.Errorf("store: all symbols index: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]SymbolRef)
	for rows.Next() {
		var name string
		var ref SymbolRef
		var kind string
		if err := rows.Scan(&name, &ref.ID, &ref.FileID, &kind); err != nil {
			return nil, err
		}
		ref.Kind = model.SymbolKind(kind)
		out[name] = append(out[name], ref)
	}
	return out, rows.Err()
}

// UpdateImportance persists ranker scores (symbol id -> score in [0,1]) in
// one batched transaction.
func (s *Store) UpdateImportance(scores map[int64]float64) error {
	return s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`UPDATE symbols SET importance = ? WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for id, score := range scores {
			if _, err := stmt.Exec(score, id); err != nil {
				return fmt.Errorf("store: update importance for symbol %d: %w", id, err)
			}
		}
		return nil
	})
}

// SymbolsByIDs returns the requested symbols keyed by id.
func (s *Store) SymbolsByIDs(ids []int64) (map[int64]model.Symbol, error) {
	out := make(map[int64]model.Symbol, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders, args := placeholdersFor(ids)
	rows, err := s.db.Query(`SELECT id, file_id, name, kind, signature, start_line, start_col, end_line, end_col,
		parent_id, docstring, exported, importance FROM symbols WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: symbols by ids: %w", err)
	}
	defer rows.Close()

	syms, err := scanSymbols(rows)
	if err != nil {
		return nil, err
	}
	for _, sym := range syms {
		out[sym.ID] = sym
	}
	return out, nil
}

// SymbolsForRanking returns every symbol id with no owning-file filter,
// used as the node set for PageRank.
func (s *Store) SymbolsForRanking() ([]int64, error) {
	rows, err := s.db.Query(`SELECT id FROM symbols`)
	if err != nil {
		return nil, fmt.Errorf("store: symbols for ranking: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanSymbols(rows *sql.Rows) ([]model.Symbol, error) {
	var out []model.Symbol
	for rows.Next() {
		var sym model.Symbol
		var kind string
		var parentID sql.NullInt64
		var exported int
		if err := rows.Scan(&sym.ID, &sym.FileID, &sym.Name, &kind, &sym.Signature,
			&sym.StartLine, &sym.StartCol, &sym.EndLine, &sym.EndCol,
			&parentID, &sym.Docstring, &exported, &sym.Importance); err != nil {
			return nil, err
		}
		sym.Kind = model.SymbolKind(kind)
		sym.Exported = exported != 0
		if parentID.Valid {
			id := parentID.Int64
			sym.ParentID = &id
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
