package luckyman

import (
	"errors"
	"fmt"
)

// Reason is the code sent back to a seat when its action is rejected
type Reason string

// Reason constants
const (
	ReasonBadShape         Reason = "BadShape"
	ReasonDoesNotBeat      Reason = "DoesNotBeat"
	ReasonNotYourTurn      Reason = "NotYourTurn"
	ReasonLeaderCannotPass Reason = "LeaderCannotPass"
	ReasonRoundNotActive   Reason = "RoundNotActive"
	ReasonCardsNotHeld     Reason = "CardsNotHeld"
)

// ErrBadShape happens when the cards do not form any combination
var ErrBadShape = errors.New("the cards do not form a combination")

// ErrDoesNotBeat happens when the cards form a combination that cannot go on the table
var ErrDoesNotBeat = errors.New("the cards do not beat the table")

// ErrNotYourTurn is returned when it's not the seat's turn
var ErrNotYourTurn = errors.New("not your turn")

// ErrLeaderCannotPass happens when the seat nobody has beaten tries to pass
var ErrLeaderCannotPass = errors.New("the leader cannot pass")

// ErrRoundNotActive is an error when an action is attempted on a round that is not in progress
var ErrRoundNotActive = errors.New("the round is not in progress")

// ErrCardsNotHeld happens when the seat tries to play cards it doesn't have
var ErrCardsNotHeld = errors.New("cards are not in the seat's hand")

// ErrUnknownIdentity is returned when an identity has no seat in the round
var ErrUnknownIdentity = errors.New("identity is not seated in this round")

// ErrRoundAlreadyStarted is returned when Start is called twice
var ErrRoundAlreadyStarted = errors.New("the round has already started")

var reasonErrors = map[Reason]error{
	ReasonBadShape:         ErrBadShape,
	ReasonDoesNotBeat:      ErrDoesNotBeat,
	ReasonNotYourTurn:      ErrNotYourTurn,
	ReasonLeaderCannotPass: ErrLeaderCannotPass,
	ReasonRoundNotActive:   ErrRoundNotActive,
	ReasonCardsNotHeld:     ErrCardsNotHeld,
}

// RejectError is returned when a play or pass is refused
// A rejected action never changes the round
type RejectError struct {
	Reason Reason
	Seat   int
}

func reject(reason Reason, seat int) *RejectError {
	return &RejectError{Reason: reason, Seat: seat}
}

func (r *RejectError) Error() string {
	return fmt.Sprintf("seat %d: %s", r.Seat, r.Unwrap())
}

// Unwrap returns the sentinel error for the reason
func (r *RejectError) Unwrap() error {
	if err, ok := reasonErrors[r.Reason]; ok {
		return err
	}

	return fmt.Errorf("unknown reason: %s", r.Reason)
}

// InvariantViolation is an internal consistency failure
// It means bounty accounting can no longer be trusted and the round must be thrown away
type InvariantViolation struct {
	Detail string
}

func invariantViolation(format string, a ...interface{}) *InvariantViolation {
	return &InvariantViolation{Detail: fmt.Sprintf(format, a...)}
}

func (i *InvariantViolation) Error() string {
	return "invariant violation: " + i.Detail
}

// SeatCountError is an error on the number of seats in the round
type SeatCountError struct {
	Max int
	Got int
}

func (s SeatCountError) Error() string {
	return fmt.Sprintf("expected 2–%d seats, got %d", s.Max, s.Got)
}
