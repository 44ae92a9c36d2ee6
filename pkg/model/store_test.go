package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"luckyman-server/pkg/db"
	"luckyman-server/pkg/room"
)

var cbg = context.Background()

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbh, err := db.Open(cbg, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })

	require.NoError(t, db.Migrate(dbh, db.DriverSQLite, ""))
	return NewStore(dbh)
}

func roundRecord(roundID string, started time.Time, deltas map[string]int) *room.RoundRecord {
	bounties := make(map[string]int)
	for identity, delta := range deltas {
		bounties[identity] = 1000 + delta
	}

	return &room.RoundRecord{
		RoomID:      "room-1",
		RoundID:     roundID,
		StartedAt:   started,
		FinishedAt:  started.Add(time.Minute),
		Adjustments: deltas,
		Bounties:    bounties,
		Log:         map[string]string{"roundId": roundID},
	}
}

func TestStore_GetBounty(t *testing.T) {
	a := assert.New(t)
	s := newTestStore(t)

	bounty, found, err := s.GetBounty(cbg, "room-1", "alice")
	a.NoError(err)
	a.False(found)
	a.Equal(0, bounty)

	started := time.Date(2026, 1, 2, 20, 0, 0, 0, time.UTC)
	a.NoError(s.RecordRound(cbg, roundRecord("r1", started, map[string]int{"alice": 38, "bob": -40})))

	bounty, found, err = s.GetBounty(cbg, "room-1", "alice")
	a.NoError(err)
	a.True(found)
	a.Equal(1038, bounty)

	bounty, found, err = s.GetBounty(cbg, "room-1", "bob")
	a.NoError(err)
	a.True(found)
	a.Equal(960, bounty)

	// bounties are per room
	_, found, err = s.GetBounty(cbg, "room-2", "alice")
	a.NoError(err)
	a.False(found)
}

func TestStore_RecordRound_idempotent(t *testing.T) {
	a := assert.New(t)
	s := newTestStore(t)

	started := time.Date(2026, 1, 2, 20, 0, 0, 0, time.UTC)
	record := roundRecord("r1", started, map[string]int{"alice": 10, "bob": -10})
	a.NoError(s.RecordRound(cbg, record))

	// a retry of the same write changes nothing
	record.Bounties["alice"] = 5000
	a.NoError(s.RecordRound(cbg, record))

	// neither does a second record for the same round start
	a.NoError(s.RecordRound(cbg, roundRecord("r1-retry", started, map[string]int{"alice": 99, "bob": -99})))

	bounty, _, err := s.GetBounty(cbg, "room-1", "alice")
	a.NoError(err)
	a.Equal(1010, bounty)

	rounds, err := s.ListRounds(cbg, "room-1", 0)
	a.NoError(err)
	if a.Len(rounds, 1) {
		a.Equal("r1", rounds[0].RoundID)
		a.Equal(map[string]int{"alice": 10, "bob": -10}, rounds[0].Adjustments)
	}
}

func TestStore_ListRounds(t *testing.T) {
	a := assert.New(t)
	s := newTestStore(t)

	started := time.Date(2026, 1, 2, 20, 0, 0, 0, time.UTC)
	a.NoError(s.RecordRound(cbg, roundRecord("r1", started, map[string]int{"alice": 10, "bob": -10})))
	a.NoError(s.RecordRound(cbg, roundRecord("r2", started.Add(time.Hour), map[string]int{"alice": -20, "bob": 19})))

	rounds, err := s.ListRounds(cbg, "room-1", 10)
	a.NoError(err)
	if a.Len(rounds, 2) {
		a.Equal("r2", rounds[0].RoundID)
		a.Equal("room-1", rounds[0].RoomID)
		a.Equal(started.Add(time.Hour), rounds[0].StartedAt)
		a.Equal(started.Add(time.Hour+time.Minute), rounds[0].FinishedAt)
		a.Equal(map[string]int{"alice": -20, "bob": 19}, rounds[0].Adjustments)
		a.Equal("r1", rounds[1].RoundID)
	}

	rounds, err = s.ListRounds(cbg, "room-1", 1)
	a.NoError(err)
	a.Len(rounds, 1)

	rounds, err = s.ListRounds(cbg, "room-2", 10)
	a.NoError(err)
	a.Empty(rounds)
}

func TestStore_GetRoundLog(t *testing.T) {
	a := assert.New(t)
	s := newTestStore(t)

	started := time.Date(2026, 1, 2, 20, 0, 0, 0, time.UTC)
	a.NoError(s.RecordRound(cbg, roundRecord("r1", started, map[string]int{"alice": 10, "bob": -10})))

	log, err := s.GetRoundLog(cbg, "r1")
	a.NoError(err)
	a.JSONEq(`{"roundId":"r1"}`, string(log))

	_, err = s.GetRoundLog(cbg, "nope")
	a.Equal(ErrRoundNotFound, err)
}

func TestStore_RecordRound_badLog(t *testing.T) {
	s := newTestStore(t)

	record := roundRecord("r1", time.Now(), map[string]int{"alice": 10})
	record.Log = make(chan int)
	assert.Error(t, s.RecordRound(cbg, record))
}

func Test_isDuplicateKey(t *testing.T) {
	a := assert.New(t)
	a.True(isDuplicateKey(&pq.Error{Code: "23505"}))
	a.False(isDuplicateKey(&pq.Error{Code: "23503"}))
	a.False(isDuplicateKey(errors.New("duplicate")))
}
