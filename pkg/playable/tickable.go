package playable

import "time"

// Tickable is an interface that allows a periodic tick to update the game state
// The dealer calls Tick from its run loop, so a tick never races with an action
type Tickable interface {
	// Interval is how long the wait between each tick should be
	Interval() time.Duration

	// Tick will be called periodically
	// Return true if the dealer should request updated data
	Tick() (bool, error)
}
