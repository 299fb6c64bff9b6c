package store

import (
	"database/sql"
	"fmt"

	"repoknowledge/internal/model"
)

// UpsertSummary writes s, replacing any existing summary of the same
// scope.
func (s *Store) UpsertSummary(sum model.Summary) error {
	_, err := s.db.Exec(`INSERT INTO summaries (scope_type, scope_id, content, token_count) VALUES (?,?,?,?)
		ON CONFLICT(scope_type, scope_id) DO UPDATE SET content = excluded.content, token_count = excluded.token_count`,
		string(sum.ScopeType), sum.ScopeID, sum.Content, sum.TokenCount)
	if err != nil {
		return fmt.Errorf("store: upsert summary %s/%s: %w", sum.ScopeType, sum.ScopeID, err)
	}
	return nil
}

// Summary returns the stored summary for (scopeType, scopeID), if any.
func (s *Store) Summary(scopeType model.SummaryScope, scopeID string) (model.Summary, bool, error) {
	var sum model.Summary
	sum.ScopeType = scopeType
	sum.ScopeID = scopeID
	err := s.db.QueryRow(`SELECT content, token_count FROM summaries WHERE scope_type = ? AND scope_id = ?`,
		string(scopeType), scopeID).Scan(&sum.Content, &sum.TokenCount)
	if err == sql.ErrNoRows {
		return model.Summary{}, false, nil
	}
	if err != nil {
		return model.Summary{}, false, err
	}
	return sum, true, nil
}
