package store

import (
	"database/sql"
	"fmt"
)

// State returns the value stored under key, and whether it was set.
func (s *Store) State(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM index_state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetState upserts a single key/value pair.
func (s *Store) SetState(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO index_state (key, value) VALUES (?,?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("store: set state %s: %w", key, err)
	}
	return nil
}

// SetStates upserts every pair of kvs in one transaction, for the
// pipeline's end-of-run state write (§4.8 phase 11).
func (s *Store) SetStates(kvs map[string]string) error {
	return s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO index_state (key, value) VALUES (?,?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for k, v := range kvs {
			if _, err := stmt.Exec(k, v); err != nil {
				return fmt.Errorf("store: set state %s: %w", k, err)
			}
		}
		return nil
	})
}
