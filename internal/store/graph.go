package store

import (
	"database/sql"
	"fmt"

	"repoknowledge/internal/model"
)

// InsertEdges inserts edges in one batched transaction. Duplicates on
// (source_symbol_id, target_symbol_id, edge_type) are ignored, per §4.5's
// uniqueness requirement.
func (s *Store) InsertEdges(edges []model.GraphEdge) error {
	if len(edges) == 0 {
		return nil
	}
	return s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO graph_edges
			(source_symbol_id, target_symbol_id, source_file_id, target_file_id, edge_type, weight)
			VALUES (?,?,?,?,?,?)
			ON CONFLICT(source_symbol_id, target_symbol_id, edge_type) DO NOTHING`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range edges {
			if _, err := stmt.Exec(e.SourceSymbolID, e.TargetSymbolID, e.SourceFileID, e.TargetFileID, string(e.Type), e.Weight); err != nil {
				return fmt.Errorf("store: insert edge %d->%d: %w", e.SourceSymbolID, e.TargetSymbolID, err)
			}
		}
		return nil
	})
}

// InsertFileDependencies inserts deps in one batched transaction,
// deduplicating on (source_file_id, target_file_id, dependency_type).
func (s *Store) InsertFileDependencies(deps []model.FileDependency) error {
	if len(deps) == 0 {
		return nil
	}
	return s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO file_dependencies (source_file_id, target_file_id, dependency_type)
			VALUES (?,?,?) ON CONFLICT(source_file_id, target_file_id, dependency_type) DO NOTHING`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, d := range deps {
			typ := d.Type
			if typ == "" {
				typ = "imports"
			}
			if _, err := stmt.Exec(d.SourceFileID, d.TargetFileID, typ); err != nil {
				return fmt.Errorf("store: insert file dependency %d->%d: %w", d.SourceFileID, d.TargetFileID, err)
			}
		}
		return nil
	})
}

// EdgesForRanking returns every graph edge as (source, target) symbol id
// pairs with weights, the input PageRank iterates over.
func (s *Store) EdgesForRanking() ([]model.GraphEdge, error) {
	rows, err := s.db.Query(`SELECT source_symbol_id, target_symbol_id, edge_type, weight FROM graph_edges`)
	if err != nil {
		return nil, fmt.Errorf("store: edges for ranking: %w", err)
	}
	defer rows.Close()

	var out []model.GraphEdge
	for rows.Next() {
		var e model.GraphEdge
		var typ string
		if err := rows.Scan(&e.SourceSymbolID, &e.TargetSymbolID, &typ, &e.Weight); err != nil {
			return nil, err
		}
		e.Type = model.EdgeType(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}

// DependenciesOf returns the file dependency edges originating at fileID,
// for get_dependencies-style traversal.
func (s *Store) DependenciesOf(fileID int64) ([]model.FileDependency, error) {
	rows, err := s.db.Query(`SELECT source_file_id, target_file_id, dependency_type FROM file_dependencies WHERE source_file_id = ?`, fileID)
	if err != nil {
		return nil, fmt.Errorf("store: dependencies of: %w", err)
	}
	defer rows.Close()

	var out []model.FileDependency
	for rows.Next() {
		var d model.FileDependency
		if err := rows.Scan(&d.SourceFileID, &d.TargetFileID, &d.Type); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SymbolDependencies returns the symbols that source symbol id depends on
// (its outgoing edges' targets), for get_dependencies(symbol, depth=1).
func (s *Store) SymbolDependencies(symbolID int64) ([]model.Symbol, error) {
	rows, err := s.db.Query(`SELECT target_symbol_id FROM graph_edges WHERE source_symbol_id = ?`, symbolID)
	if err != nil {
		return nil, fmt.Errorf("store: symbol dependencies: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byID, err := s.SymbolsByIDs(ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.Symbol, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out, nil
}
