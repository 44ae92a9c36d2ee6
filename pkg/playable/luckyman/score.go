package luckyman

import (
	"luckyman-server/pkg/deck"
)

// ScoreResult is the bounty change of every seat for one finished round
// The deltas sum to -HouseFee
type ScoreResult struct {
	Winner   int   `json:"winner"`
	Deltas   []int `json:"deltas"`
	Gross    int   `json:"gross"`
	HouseFee int   `json:"houseFee"`
}

// Score converts the final hands into bounty deltas
// hands and bounties are indexed by seat. Exactly one hand must be empty, that seat is the winner
// and collects every other seat's penalty minus the house fee.
func Score(hands []deck.Hand, bounties []int, opts ScoreOptions) (*ScoreResult, error) {
	if len(hands) != len(bounties) {
		return nil, invariantViolation("scoring %d hands with %d bounties", len(hands), len(bounties))
	}

	winner := -1
	for seat, hand := range hands {
		if len(hand) > 0 {
			continue
		}

		if winner >= 0 {
			return nil, invariantViolation("seats %d and %d both have empty hands", winner, seat)
		}

		winner = seat
	}

	if winner < 0 {
		return nil, invariantViolation("no seat has an empty hand")
	}

	result := &ScoreResult{
		Winner: winner,
		Deltas: make([]int, len(hands)),
	}

	for seat, hand := range hands {
		if seat == winner {
			continue
		}

		penalty := Penalty(hand, opts)
		bounty := bounties[seat]
		if bounty < 0 {
			bounty = 0
		}

		if penalty > bounty {
			penalty = bounty
		}

		result.Deltas[seat] = -penalty
		result.Gross += penalty
	}

	result.HouseFee = result.Gross * opts.HouseFeePercent / 100
	result.Deltas[winner] = result.Gross - result.HouseFee

	return result, nil
}

// Penalty is what a seat left holding hand owes before the bounty clamp
// Each wildcard held doubles the seat's multiplier, and the wildcards themselves are
// discounted from the count. A hand that is a single wildcard is charged as one card at double.
func Penalty(hand deck.Hand, opts ScoreOptions) int {
	count := len(hand)
	if count == 0 {
		return 0
	}

	seatMultiplier := 1 << hand.WildCount()

	var effective int
	if count == 1 && seatMultiplier == 2 {
		effective = 1
	} else if seatMultiplier > 1 {
		effective = count - seatMultiplier/2
	} else {
		effective = count
	}

	if effective < 0 {
		effective = 0
	}

	return effective * opts.BaseBonus * opts.Multiplier * seatMultiplier
}
