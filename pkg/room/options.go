package room

import (
	"errors"
	"time"

	"luckyman-server/internal/rng"
	"luckyman-server/pkg/playable/luckyman"
)

// Options configure every room created by a pit boss
type Options struct {
	Game           luckyman.Options
	MaxSeats       int
	StartingBounty int
	StoreTimeout   time.Duration
	Generator      rng.Generator
}

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		Game:           luckyman.DefaultOptions(),
		MaxSeats:       4,
		StartingBounty: 1000,
		StoreTimeout:   5 * time.Second,
		Generator:      rng.Crypto{},
	}
}

// Validate checks the options
func (o Options) Validate() error {
	if err := o.Game.Validate(); err != nil {
		return err
	}

	if o.MaxSeats < luckyman.MinSeats || o.MaxSeats > o.Game.MaxSeats() {
		return errors.New("max seats cannot be dealt a full hand from one deck")
	}

	if o.StartingBounty < 0 {
		return errors.New("starting bounty cannot be negative")
	}

	if o.Generator == nil {
		return errors.New("a random generator is required")
	}

	return nil
}
