package luckyman

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"luckyman-server/pkg/deck"
	"luckyman-server/pkg/playable"
	"luckyman-server/pkg/playable/luckyman/combo"
)

// Phase is where a round is in its lifecycle
type Phase int

// Phase constants
const (
	PhaseDealt Phase = iota
	PhaseInProgress
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseDealt:
		return "dealt"
	case PhaseInProgress:
		return "inProgress"
	case PhaseFinished:
		return "finished"
	}

	panic(fmt.Sprintf("unknown phase: %d", p))
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// SeatInfo is who sits in a seat when the round is dealt
type SeatInfo struct {
	Identity string `json:"identity"`
	Bounty   int    `json:"bounty"`
}

type seat struct {
	identity string
	hand     deck.Hand
	bounty   int
	leaving  bool
}

// Play is an accepted combination on the table
type Play struct {
	Seat           int                   `json:"seat"`
	Identity       string                `json:"identity"`
	Interpretation *combo.Interpretation `json:"interpretation"`
}

// Round is one deal of Lucky Man
// A round is not safe for concurrent use, the room serializes every call
type Round struct {
	ID string

	options    Options
	seats      []*seat
	idToSeat   map[string]int
	stock      []*deck.Card
	discards   []*deck.Card
	cardsDealt int

	tableTop   *Play
	leaderSeat int
	turnSeat   int
	passStreak int
	phase      Phase
	multiplier int

	startedAt time.Time
	deadline  time.Time
	now       func() time.Time

	entries []*LogEntry
	result  *ScoreResult

	logger  logrus.FieldLogger
	logChan chan []*playable.LogMessage
}

// NewRound deals a new round
// Each seat is dealt opts.HandSize cards in one contiguous block, in seat order. Whatever is left in
// the deck becomes the resting stock. seats should already be in the correct order.
func NewRound(logger logrus.FieldLogger, seats []SeatInfo, d *deck.Deck, opts Options) (*Round, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if len(seats) < MinSeats || len(seats) > opts.MaxSeats() {
		return nil, SeatCountError{Max: opts.MaxSeats(), Got: len(seats)}
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if !d.CanDraw(len(seats) * opts.HandSize) {
		return nil, fmt.Errorf("cannot deal %d cards from a deck of %d", len(seats)*opts.HandSize, d.CardsLeft())
	}

	r := &Round{
		ID:         uuid.New().String(),
		options:    opts,
		seats:      make([]*seat, len(seats)),
		idToSeat:   make(map[string]int),
		cardsDealt: d.CardsLeft(),
		phase:      PhaseDealt,
		multiplier: opts.Multiplier,
		now:        time.Now,
		logger:     logger,
		logChan:    make(chan []*playable.LogMessage, 256),
	}

	for i, info := range seats {
		if info.Identity == "" {
			return nil, errors.New("seat identity cannot be empty")
		}

		if _, found := r.idToSeat[info.Identity]; found {
			return nil, fmt.Errorf("identity %s is seated twice", info.Identity)
		}

		s := &seat{
			identity: info.Identity,
			hand:     make(deck.Hand, 0, opts.HandSize),
			bounty:   info.Bounty,
		}

		for j := 0; j < opts.HandSize; j++ {
			card, err := d.Draw()
			if err != nil {
				return nil, err
			}

			s.hand.AddCard(card)
		}

		r.seats[i] = s
		r.idToSeat[info.Identity] = i
	}

	r.stock = append([]*deck.Card{}, d.Cards...)
	d.Cards = nil

	if err := r.checkConservation(); err != nil {
		return nil, err
	}

	r.appendLog(&LogEntry{Event: EventDeal, Seat: -1}, "Dealt %d cards to %d seats, %d resting", opts.HandSize, len(seats), len(r.stock))

	return r, nil
}

// Start moves the round from dealt to in progress
// openingSeat leads first and the turn timer is armed
func (r *Round) Start(openingSeat int) error {
	if r.phase != PhaseDealt {
		return ErrRoundAlreadyStarted
	}

	if openingSeat < 0 || openingSeat >= len(r.seats) {
		return fmt.Errorf("opening seat %d is out of range", openingSeat)
	}

	r.phase = PhaseInProgress
	r.leaderSeat = openingSeat
	r.turnSeat = openingSeat
	r.startedAt = r.now()
	r.arm()

	r.appendLog(&LogEntry{Event: EventStart, Seat: openingSeat}, "{} opens the round")
	return r.settleLead()
}

// SubmitPlay attempts to play cards from the seat's hand
// On success the chosen interpretation is returned, with any wildcards pinned.
// A rejection is returned as a *RejectError and leaves the round untouched.
func (r *Round) SubmitPlay(seat int, cards []*deck.Card) (*combo.Interpretation, error) {
	if err := r.checkTurn(seat); err != nil {
		return nil, err
	}

	return r.play(seat, cards, EventPlay)
}

// Pass gives up the seat's turn
func (r *Round) Pass(seat int) error {
	if err := r.checkTurn(seat); err != nil {
		return err
	}

	if seat == r.leaderSeat {
		return reject(ReasonLeaderCannotPass, seat)
	}

	return r.pass(seat, EventPass)
}

// MarkLeaving records that the seat wants to leave once the round is over
func (r *Round) MarkLeaving(seat int) error {
	if seat < 0 || seat >= len(r.seats) {
		return fmt.Errorf("seat %d is out of range", seat)
	}

	if r.seats[seat].leaving {
		return nil
	}

	r.seats[seat].leaving = true
	r.appendLog(&LogEntry{Event: EventLeaving, Seat: seat}, "{} will leave after this round")
	return nil
}

func (r *Round) checkTurn(seat int) error {
	if r.phase != PhaseInProgress {
		return reject(ReasonRoundNotActive, seat)
	}

	if seat != r.turnSeat {
		return reject(ReasonNotYourTurn, seat)
	}

	return nil
}

func (r *Round) play(seat int, cards []*deck.Card, event Event) (*combo.Interpretation, error) {
	s := r.seats[seat]
	for _, card := range cards {
		if card == nil {
			return nil, reject(ReasonBadShape, seat)
		}
	}

	// classify the seat's own cards, never the flags a client sent
	held, ok := s.hand.Take(cards)
	if !ok {
		return nil, reject(ReasonCardsNotHeld, seat)
	}

	guess := combo.Classify(held)
	if !guess.IsValid() {
		return nil, reject(ReasonBadShape, seat)
	}

	var top *combo.Guess
	if r.tableTop != nil {
		top = combo.Resolved(r.tableTop.Interpretation)
	}

	legal, resolved := combo.Beats(top, guess)
	if !legal {
		return nil, reject(ReasonDoesNotBeat, seat)
	}

	interp := resolved.Best()
	if !s.hand.Remove(held) {
		return nil, invariantViolation("seat %d lost cards %s while playing", seat, deck.CardsToString(held))
	}

	r.discards = append(r.discards, interp.Cards...)
	r.tableTop = &Play{
		Seat:           seat,
		Identity:       s.identity,
		Interpretation: interp,
	}
	r.leaderSeat = seat
	r.passStreak = 0

	if interp.Shape == combo.Bomb {
		r.multiplier *= 2
	}

	entry := &LogEntry{
		Event:    event,
		Seat:     seat,
		Cards:    interp.Cards,
		Shape:    interp.Shape,
		Strength: interp.Strength,
	}

	if event == EventTimeoutPlay {
		r.appendLog(entry, "{} ran out of time and led a %s", interp.Shape)
	} else {
		r.appendLog(entry, "{} played a %s", interp.Shape)
	}

	if len(s.hand) == 0 {
		return interp, r.finish(seat)
	}

	r.turnSeat = r.next(seat)
	r.arm()
	return interp, nil
}

func (r *Round) pass(seat int, event Event) error {
	r.passStreak++

	if event == EventTimeoutPass {
		r.appendLog(&LogEntry{Event: event, Seat: seat}, "{} ran out of time and passed")
	} else {
		r.appendLog(&LogEntry{Event: event, Seat: seat}, "{} passed")
	}

	r.turnSeat = r.next(seat)
	r.arm()
	if r.turnSeat == r.leaderSeat {
		r.clearTable()
		return r.settleLead()
	}

	return nil
}

// clearTable ends a full pass cycle: the leader leads fresh and the resting stock is handed out
func (r *Round) clearTable() {
	r.tableTop = nil
	r.passStreak = 0
	r.appendLog(&LogEntry{Event: EventTableCleared, Seat: r.leaderSeat}, "Nobody beat {}, the table is cleared")
	r.replenish()
}

// replenish deals the resting stock one card at a time to every seat, starting at seat 0
func (r *Round) replenish() {
	if len(r.stock) == 0 {
		return
	}

	count := len(r.stock)
	for len(r.stock) > 0 {
		for _, s := range r.seats {
			if len(r.stock) == 0 {
				break
			}

			s.hand.AddCard(r.stock[0])
			r.stock = r.stock[1:]
		}
	}

	r.appendLog(&LogEntry{Event: EventReplenish, Seat: -1}, "%d resting cards were dealt", count)
}

// next returns the seat after seat that still holds cards
func (r *Round) next(seat int) int {
	n := len(r.seats)
	for i := 1; i <= n; i++ {
		candidate := (seat + i) % n
		if len(r.seats[candidate].hand) > 0 {
			return candidate
		}
	}

	return seat
}

func (r *Round) finish(winner int) error {
	r.phase = PhaseFinished
	r.deadline = time.Time{}

	if err := r.checkConservation(); err != nil {
		return err
	}

	hands := make([]deck.Hand, len(r.seats))
	bounties := make([]int, len(r.seats))
	for i, s := range r.seats {
		hands[i] = s.hand
		bounties[i] = s.bounty
	}

	result, err := Score(hands, bounties, r.options.scoreOptions(r.multiplier))
	if err != nil {
		return err
	}

	if result.Winner != winner {
		return invariantViolation("seat %d emptied its hand but seat %d was scored as the winner", winner, result.Winner)
	}

	for i, s := range r.seats {
		s.bounty += result.Deltas[i]
	}

	r.result = result
	r.appendLog(&LogEntry{Event: EventFinish, Seat: winner}, "{} won the round and collects %d (house fee %d)", result.Deltas[winner], result.HouseFee)

	return nil
}

// checkConservation verifies every dealt card is in exactly one place
func (r *Round) checkConservation() error {
	seen := make(map[string]string)
	place := func(where string, cards []*deck.Card) error {
		for _, card := range cards {
			key := deck.CardToString(card)
			if other, found := seen[key]; found {
				return invariantViolation("card %s is in %s and %s", key, other, where)
			}

			seen[key] = where
		}

		return nil
	}

	for i, s := range r.seats {
		if err := place(fmt.Sprintf("seat %d", i), s.hand); err != nil {
			return err
		}
	}

	if err := place("the stock", r.stock); err != nil {
		return err
	}

	if err := place("the discards", r.discards); err != nil {
		return err
	}

	if len(seen) != r.cardsDealt {
		return invariantViolation("expected %d cards in play, found %d", r.cardsDealt, len(seen))
	}

	return nil
}

func (r *Round) arm() {
	if r.phase != PhaseInProgress || r.options.TurnTimeout <= 0 {
		r.deadline = time.Time{}
		return
	}

	r.deadline = r.now().Add(r.options.TurnTimeout)
}

// SeatOf returns the seat of the identity
func (r *Round) SeatOf(identity string) (int, bool) {
	seat, ok := r.idToSeat[identity]
	return seat, ok
}

// Phase returns the current phase
func (r *Round) Phase() Phase {
	return r.phase
}

// IsFinished returns true once a seat has emptied its hand
func (r *Round) IsFinished() bool {
	return r.phase == PhaseFinished
}

// TurnSeat returns the seat that must act next
func (r *Round) TurnSeat() int {
	return r.turnSeat
}

// LeaderSeat returns the seat whose play nobody has beaten
func (r *Round) LeaderSeat() int {
	return r.leaderSeat
}

// TableTop returns the play to beat, or nil if the table is empty
func (r *Round) TableTop() *Play {
	return r.tableTop
}

// PassStreak returns how many seats passed since the last play
func (r *Round) PassStreak() int {
	return r.passStreak
}

// Hand returns a copy of the seat's hand
func (r *Round) Hand(seat int) deck.Hand {
	return r.seats[seat].hand.Clone()
}

// StockSize returns the number of resting cards not yet dealt
func (r *Round) StockSize() int {
	return len(r.stock)
}

// Multiplier returns the round multiplier, doubled by every bomb
func (r *Round) Multiplier() int {
	return r.multiplier
}

// StartedAt returns when the round went in progress
func (r *Round) StartedAt() time.Time {
	return r.startedAt
}

// Deadline returns when the current turn times out, zero if no timer is armed
func (r *Round) Deadline() time.Time {
	return r.deadline
}

// Result returns the score once the round is finished
func (r *Round) Result() *ScoreResult {
	return r.result
}

// Seats returns the identity and current bounty of every seat
func (r *Round) Seats() []SeatInfo {
	seats := make([]SeatInfo, len(r.seats))
	for i, s := range r.seats {
		seats[i] = SeatInfo{Identity: s.identity, Bounty: s.bounty}
	}

	return seats
}
