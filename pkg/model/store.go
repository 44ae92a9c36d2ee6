package model

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"
	"luckyman-server/pkg/db"
	"luckyman-server/pkg/room"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

// ErrRoundNotFound is returned when a round has not been recorded
var ErrRoundNotFound = errors.New("round not found")

const roundColumns = `
rounds.round_id,
rounds.room_id,
rounds.started_ms,
rounds.finished_ms`

// Store is the relational implementation of room.Store
// The queries are written to run on both postgres and sqlite
type Store struct {
	db *sql.DB
}

var _ room.Store = (*Store)(nil)

// NewStore returns a store backed by dbh
func NewStore(dbh *sql.DB) *Store {
	return &Store{db: dbh}
}

// Round is a record in the `rounds` table
type Round struct {
	RoundID     string         `json:"roundId"`
	RoomID      string         `json:"roomId"`
	StartedAt   time.Time      `json:"startedAt"`
	FinishedAt  time.Time      `json:"finishedAt"`
	Adjustments map[string]int `json:"adjustments"`
}

// GetBounty returns the identity's balance in the room
func (s *Store) GetBounty(ctx context.Context, roomID, identity string) (int, bool, error) {
	const query = `
SELECT balance
FROM bounties
WHERE room_id = $1
  AND identity = $2`

	var balance int
	if err := s.db.QueryRowContext(ctx, query, roomID, identity).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}

		return 0, false, err
	}

	return balance, true, nil
}

// RecordRound saves the round log, the adjustments and the new balances in one transaction
// A round that has already been recorded is left untouched
func (s *Store) RecordRound(ctx context.Context, record *room.RoundRecord) error {
	logJSON, err := json.Marshal(record.Log)
	if err != nil {
		return fmt.Errorf("could not encode round log: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const insertRound = `
INSERT INTO rounds (round_id, room_id, started_ms, finished_ms, log)
VALUES ($1, $2, $3, $4, $5)`

	startedMs := record.StartedAt.UTC().UnixMilli()
	if _, err := tx.ExecContext(ctx, insertRound, record.RoundID, record.RoomID, startedMs, record.FinishedAt.UTC().UnixMilli(), string(logJSON)); err != nil {
		if isDuplicateKey(err) {
			return nil
		}

		return fmt.Errorf("could not record round %s: %w", record.RoundID, err)
	}

	const insertAdjustment = `
INSERT INTO round_adjustments (room_id, started_ms, identity, round_id, delta)
VALUES ($1, $2, $3, $4, $5)`

	for _, identity := range sortedKeys(record.Adjustments) {
		if _, err := tx.ExecContext(ctx, insertAdjustment, record.RoomID, startedMs, identity, record.RoundID, record.Adjustments[identity]); err != nil {
			return fmt.Errorf("could not record adjustment for %s: %w", identity, err)
		}
	}

	const upsertBounty = `
INSERT INTO bounties (room_id, identity, balance, updated_ms)
VALUES ($1, $2, $3, $4)
ON CONFLICT (room_id, identity) DO UPDATE
SET balance = excluded.balance,
    updated_ms = excluded.updated_ms`

	now := time.Now().UTC().UnixMilli()
	for _, identity := range sortedKeys(record.Bounties) {
		if _, err := tx.ExecContext(ctx, upsertBounty, record.RoomID, identity, record.Bounties[identity], now); err != nil {
			return fmt.Errorf("could not save bounty for %s: %w", identity, err)
		}
	}

	return tx.Commit()
}

// ListRounds returns the most recent rounds played in the room, newest first
func (s *Store) ListRounds(ctx context.Context, roomID string, limit int) ([]*Round, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	const query = `
SELECT ` + roundColumns + `
FROM rounds
WHERE room_id = $1
ORDER BY finished_ms DESC, started_ms DESC
LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*Round, 0, limit)
	for rows.Next() {
		round, err := getRoundByRow(rows)
		if err != nil {
			return nil, err
		}

		rounds = append(rounds, round)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, round := range rounds {
		if round.Adjustments, err = s.adjustments(ctx, round.RoundID); err != nil {
			return nil, err
		}
	}

	return rounds, nil
}

// GetRoundLog returns the raw JSON log of a recorded round
func (s *Store) GetRoundLog(ctx context.Context, roundID string) (json.RawMessage, error) {
	const query = `
SELECT log
FROM rounds
WHERE round_id = $1`

	var log string
	if err := s.db.QueryRowContext(ctx, query, roundID).Scan(&log); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}

		return nil, err
	}

	return json.RawMessage(log), nil
}

func (s *Store) adjustments(ctx context.Context, roundID string) (map[string]int, error) {
	const query = `
SELECT identity, delta
FROM round_adjustments
WHERE round_id = $1`

	rows, err := s.db.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	adjustments := make(map[string]int)
	for rows.Next() {
		var identity string
		var delta int
		if err := rows.Scan(&identity, &delta); err != nil {
			return nil, err
		}

		adjustments[identity] = delta
	}

	return adjustments, rows.Err()
}

func getRoundByRow(row db.Scanner) (*Round, error) {
	var round Round
	var startedMs, finishedMs int64
	if err := row.Scan(&round.RoundID, &round.RoomID, &startedMs, &finishedMs); err != nil {
		return nil, err
	}

	round.StartedAt = time.UnixMilli(startedMs).UTC()
	round.FinishedAt = time.UnixMilli(finishedMs).UTC()
	return &round, nil
}

func isDuplicateKey(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqDuplicateKeyErrorCode
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT
	}

	return false
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys
}
