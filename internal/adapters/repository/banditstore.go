// Package repository persists bandit arm state in an embedded SQLite
// database so reward learning survives process restarts.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the pure-Go "sqlite" driver

	"github.com/Ishita-2210/teamforge-recommender/internal/domain/explore"
)

// compile-time check that the store satisfies the bandit's persistence
// contract.
var _ explore.Store = (*BanditStore)(nil)

// BanditStore is a single-writer arm-state store. Writes are last-write-wins
// at the row level: two processes sharing the file can lose a decay cycle,
// which is the documented limitation of the bandit's persistence model. Run
// one process per state file.
type BanditStore struct {
	db *sql.DB
}

// NewBanditStore opens (or creates) the state database at path. Use
// ":memory:" for tests.
func NewBanditStore(path string) (*BanditStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open bandit store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping bandit store: %w", err)
	}
	s := &BanditStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BanditStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS bandit_arms (
			user_id INTEGER PRIMARY KEY,
			alpha   REAL NOT NULL,
			beta    REAL NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate bandit store: %w", err)
	}
	return nil
}

// LoadAll returns every persisted arm. Rows with non-positive pseudo-counts
// are skipped; the bandit re-seeds them from the uniform prior.
func (s *BanditStore) LoadAll(ctx context.Context) (map[int64]explore.ArmState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, alpha, beta FROM bandit_arms`)
	if err != nil {
		return nil, fmt.Errorf("load bandit arms: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]explore.ArmState)
	for rows.Next() {
		var id int64
		var st explore.ArmState
		if err := rows.Scan(&id, &st.Alpha, &st.Beta); err != nil {
			return nil, fmt.Errorf("scan bandit arm: %w", err)
		}
		if st.Alpha > 0 && st.Beta > 0 {
			out[id] = st
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bandit arms: %w", err)
	}
	return out, nil
}

// Save upserts one arm's state.
func (s *BanditStore) Save(ctx context.Context, userID int64, state explore.ArmState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bandit_arms (user_id, alpha, beta)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			alpha=excluded.alpha, beta=excluded.beta
	`, userID, state.Alpha, state.Beta)
	if err != nil {
		return fmt.Errorf("save bandit arm %d: %w", userID, err)
	}
	return nil
}

// Count returns the number of persisted arms.
func (s *BanditStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bandit_arms`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bandit arms: %w", err)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (s *BanditStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close bandit store: %w", err)
	}
	return nil
}
