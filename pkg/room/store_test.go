package room

import (
	"context"
	"errors"
	"sync"
)

var errStoreDown = errors.New("store is down")

type fakeStore struct {
	mu       sync.Mutex
	bounties map[string]int
	records  map[string]*RoundRecord
	writes   int

	// failRecords is the number of RecordRound calls that fail before one succeeds
	failRecords int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bounties: make(map[string]int),
		records:  make(map[string]*RoundRecord),
	}
}

func (f *fakeStore) GetBounty(ctx context.Context, roomID, identity string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bounty, found := f.bounties[roomID+"/"+identity]
	return bounty, found, nil
}

func (f *fakeStore) RecordRound(ctx context.Context, record *RoundRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writes++
	if f.failRecords > 0 {
		f.failRecords--
		return errStoreDown
	}

	if _, found := f.records[record.RoundID]; found {
		return nil
	}

	f.records[record.RoundID] = record
	for identity, bounty := range record.Bounties {
		f.bounties[record.RoomID+"/"+identity] = bounty
	}

	return nil
}

func (f *fakeStore) setBounty(roomID, identity string, bounty int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.bounties[roomID+"/"+identity] = bounty
}

func (f *fakeStore) bounty(roomID, identity string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.bounties[roomID+"/"+identity]
}

func (f *fakeStore) recordCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.records)
}
