package luckyman

import (
	"errors"
	"time"

	"luckyman-server/pkg/deck"
)

// MinSeats is the fewest seats a round can be dealt to
const MinSeats = 2

// Options are options for dealing a new round
type Options struct {
	HandSize        int
	TurnTimeout     time.Duration
	BaseBonus       int
	Multiplier      int
	HouseFeePercent int
}

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		HandSize:        10,
		TurnTimeout:     30 * time.Second,
		BaseBonus:       10,
		Multiplier:      1,
		HouseFeePercent: 5,
	}
}

// MaxSeats returns how many seats can be dealt a full hand from one deck
func (o Options) MaxSeats() int {
	if o.HandSize <= 0 {
		return 0
	}

	return deck.Size / o.HandSize
}

// TickInterval is how often the turn timer is checked
// It is a tenth of the timeout, between 10ms and a second
func (o Options) TickInterval() time.Duration {
	interval := o.TurnTimeout / 10
	if interval > time.Second {
		return time.Second
	}

	if interval < 10*time.Millisecond {
		return 10 * time.Millisecond
	}

	return interval
}

// Validate checks the options
func (o Options) Validate() error {
	if o.HandSize <= 0 {
		return errors.New("hand size must be positive")
	}

	if o.BaseBonus <= 0 || o.Multiplier <= 0 {
		return errors.New("base bonus and multiplier must be positive")
	}

	if o.HouseFeePercent < 0 || o.HouseFeePercent > 100 {
		return errors.New("house fee must be between 0 and 100 percent")
	}

	return nil
}

// ScoreOptions are the stakes used to score a finished round
type ScoreOptions struct {
	BaseBonus       int
	Multiplier      int
	HouseFeePercent int
}

func (o Options) scoreOptions(multiplier int) ScoreOptions {
	return ScoreOptions{
		BaseBonus:       o.BaseBonus,
		Multiplier:      multiplier,
		HouseFeePercent: o.HouseFeePercent,
	}
}
