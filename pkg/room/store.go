package room

import (
	"context"
	"time"
)

// RoundRecord is everything that must be saved when a round finishes
// Writes are keyed on (RoomID, StartedAt, identity) so a record can be written more than once
type RoundRecord struct {
	RoomID      string
	RoundID     string
	StartedAt   time.Time
	FinishedAt  time.Time
	Adjustments map[string]int
	Bounties    map[string]int
	Log         interface{}
}

// Store persists bounties and round logs for the rooms
type Store interface {
	// GetBounty returns the identity's balance in the room
	// found is false if the identity has never been seated in the room
	GetBounty(ctx context.Context, roomID, identity string) (bounty int, found bool, err error)

	// RecordRound appends the round log, the adjustments and the resulting bounties
	// Recording the same round twice must not apply the adjustments twice
	RecordRound(ctx context.Context, record *RoundRecord) error
}
