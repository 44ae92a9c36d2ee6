package luckyman

import (
	"time"

	"luckyman-server/pkg/deck"
)

// Interval determines how often Tick() should be called
func (r *Round) Interval() time.Duration {
	return r.options.TickInterval()
}

// Tick acts for the seat whose turn timed out
// A seat that may pass is passed. The leader cannot pass, so it leads its lowest real card as a
// single, or the bomb if it holds nothing but both wildcards.
func (r *Round) Tick() (bool, error) {
	if r.phase != PhaseInProgress || r.deadline.IsZero() {
		return false, nil
	}

	if r.now().Before(r.deadline) {
		return false, nil
	}

	seat := r.turnSeat
	r.logger.WithField("seat", seat).Debug("turn timed out")

	if seat != r.leaderSeat {
		if err := r.pass(seat, EventTimeoutPass); err != nil {
			return false, err
		}

		return true, nil
	}

	cards := autoLead(r.seats[seat].hand)
	if cards == nil {
		if err := r.settleLead(); err != nil {
			return false, err
		}

		return true, nil
	}

	if _, err := r.play(seat, cards, EventTimeoutPlay); err != nil {
		return false, err
	}

	return true, nil
}

// autoLead picks what a timed out leader plays, nil if nothing in the hand can be led
func autoLead(hand deck.Hand) []*deck.Card {
	sorted := hand.Sorted()
	for _, card := range sorted {
		if !card.IsWild {
			return []*deck.Card{card}
		}
	}

	if len(sorted) == 2 && sorted.WildCount() == 2 {
		return sorted
	}

	return nil
}

// settleLead moves the lead off seats that hold nothing they can lead, a lone wildcard
// If no seat can lead, the resting stock is dealt. With no stock left the round cannot go on.
func (r *Round) settleLead() error {
	forfeits := 0
	for autoLead(r.seats[r.leaderSeat].hand) == nil {
		if forfeits == len(r.seats) {
			if len(r.stock) == 0 {
				return invariantViolation("no seat holds a card it can lead")
			}

			r.replenish()
			forfeits = 0
			continue
		}

		r.forfeitLead(r.leaderSeat)
		forfeits++
	}

	return nil
}

func (r *Round) forfeitLead(seat int) {
	r.leaderSeat = r.next(seat)
	r.turnSeat = r.leaderSeat
	r.tableTop = nil
	r.passStreak = 0
	r.appendLog(&LogEntry{Event: EventForfeitLead, Seat: seat}, "{} cannot lead and gives up the lead")
	r.arm()
}
