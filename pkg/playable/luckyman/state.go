package luckyman

import (
	"time"

	"luckyman-server/pkg/deck"
	"luckyman-server/pkg/playable"
)

// RoundState is the overall round state
// This is safe for all seats to see
type RoundState struct {
	RoundID    string       `json:"roundId"`
	Phase      Phase        `json:"phase"`
	Seats      []*SeatState `json:"seats"`
	TableTop   *Play        `json:"tableTop"`
	LeaderSeat int          `json:"leaderSeat"`
	TurnSeat   int          `json:"turnSeat"`
	PassStreak int          `json:"passStreak"`
	StockSize  int          `json:"stockSize"`
	Discarded  int          `json:"discarded"`
	Multiplier int          `json:"multiplier"`
	Deadline   *time.Time   `json:"deadline"`
	Result     *ScoreResult `json:"result"`
}

// SeatState is the public state of a seat
type SeatState struct {
	Seat        int    `json:"seat"`
	Identity    string `json:"identity"`
	CardsInHand int    `json:"cardsInHand"`
	Bounty      int    `json:"bounty"`
	Leaving     bool   `json:"leaving"`
}

// PlayerView is the response format for this game
type PlayerView struct {
	RoundState *RoundState `json:"roundState"`
	// Data below is seat specific, and must only be shown to the intended seat
	Seat int          `json:"seat"`
	Hand []*deck.Card `json:"hand"`
}

// State returns the public round state
func (r *Round) State() *RoundState {
	seats := make([]*SeatState, len(r.seats))
	for i, s := range r.seats {
		seats[i] = &SeatState{
			Seat:        i,
			Identity:    s.identity,
			CardsInHand: len(s.hand),
			Bounty:      s.bounty,
			Leaving:     s.leaving,
		}
	}

	var deadline *time.Time
	if !r.deadline.IsZero() {
		d := r.deadline
		deadline = &d
	}

	return &RoundState{
		RoundID:    r.ID,
		Phase:      r.phase,
		Seats:      seats,
		TableTop:   r.tableTop,
		LeaderSeat: r.leaderSeat,
		TurnSeat:   r.turnSeat,
		PassStreak: r.passStreak,
		StockSize:  len(r.stock),
		Discarded:  len(r.discards),
		Multiplier: r.multiplier,
		Deadline:   deadline,
		Result:     r.result,
	}
}

// GetPlayerState returns the state for the given identity
// An identity without a seat gets the public state only
func (r *Round) GetPlayerState(identity string) (*playable.Response, error) {
	view := &PlayerView{
		RoundState: r.State(),
		Seat:       -1,
	}

	if seat, ok := r.idToSeat[identity]; ok {
		view.Seat = seat
		view.Hand = r.seats[seat].hand.Sorted()
	}

	return &playable.Response{
		Key:   "roundState",
		Value: Name,
		Data:  view,
	}, nil
}
