// Package sqlite stores exported pull history in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

//go:embed schema.sql
var schema string

// Store persists pull records keyed by (session, game, pool, sequence).
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens the database at path, creating it and its schema if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Persist inserts records that are not stored yet and returns how many were
// new. Exporting the same history twice is a no-op.
func (s *Store) Persist(ctx context.Context, sessionID string, game int, records []gacha.PullRecord) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(sessionID) == "" {
		return 0, fmt.Errorf("session id is required")
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO pulls (
		   session_id, game, pool, sequence, rarity,
		   five_star_pity, four_star_pity, guarantee,
		   soft_pity, hard_pity, four_star_floor, five_star_rate,
		   reward_id, reward_name, reward_kind, exported_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	at := s.now().UTC().UnixMilli()
	added := 0
	for _, r := range records {
		res, err := stmt.ExecContext(ctx,
			sessionID, game, string(r.Pool), r.Sequence, int(r.Rarity),
			r.FiveStarPity, r.FourStarPity, r.Guarantee,
			r.SoftPity, r.HardPity, r.FourStarFloor, r.FiveStarRate,
			r.Reward.ID, r.Reward.Name, r.Reward.Kind, at,
		)
		if err != nil {
			return 0, fmt.Errorf("insert pull %s/%d: %w", r.Pool, r.Sequence, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		added += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return added, nil
}

// List returns the stored records of one pool of one game, in pull order.
func (s *Store) List(ctx context.Context, sessionID string, game int, pool gacha.PoolKind) ([]gacha.PullRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT
		   pool, sequence, rarity, five_star_pity, four_star_pity, guarantee,
		   soft_pity, hard_pity, four_star_floor, five_star_rate,
		   reward_id, reward_name, reward_kind
		 FROM pulls
		 WHERE session_id = ? AND game = ? AND pool = ?
		 ORDER BY sequence`,
		sessionID, game, string(pool),
	)
	if err != nil {
		return nil, fmt.Errorf("list pulls: %w", err)
	}
	defer rows.Close()

	var out []gacha.PullRecord
	for rows.Next() {
		var (
			r      gacha.PullRecord
			kind   string
			rarity int
		)
		if err := rows.Scan(
			&kind, &r.Sequence, &rarity, &r.FiveStarPity, &r.FourStarPity, &r.Guarantee,
			&r.SoftPity, &r.HardPity, &r.FourStarFloor, &r.FiveStarRate,
			&r.Reward.ID, &r.Reward.Name, &r.Reward.Kind,
		); err != nil {
			return nil, fmt.Errorf("scan pull: %w", err)
		}
		r.Pool = gacha.PoolKind(kind)
		r.Rarity = gacha.Rarity(rarity)
		r.Reward.Rarity = r.Rarity
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pulls: %w", err)
	}
	return out, nil
}

// Tally counts stored outcomes per rarity across every game of a session.
func (s *Store) Tally(ctx context.Context, sessionID string, pool gacha.PoolKind) (gacha.Tally, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT rarity, COUNT(*) FROM pulls WHERE session_id = ? AND pool = ? GROUP BY rarity`,
		sessionID, string(pool),
	)
	if err != nil {
		return nil, fmt.Errorf("tally pulls: %w", err)
	}
	defer rows.Close()

	t := gacha.Tally{}
	for rows.Next() {
		var rarity, n int
		if err := rows.Scan(&rarity, &n); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		t[gacha.Rarity(rarity)] = n
	}
	return t, rows.Err()
}
