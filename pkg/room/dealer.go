package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"luckyman-server/pkg/deck"
	"luckyman-server/pkg/playable"
	"luckyman-server/pkg/playable/luckyman"
	"luckyman-server/pkg/playable/luckyman/combo"
)

type seat struct {
	identity string
	bounty   int
	leaving  bool
}

// Dealer is responsible for running a single room
// Every event for the room is executed on the dealer's run loop, one at a time, so the round
// itself never needs a lock. Seat 0 is the host.
type Dealer struct {
	id      string
	pitBoss *PitBoss
	store   Store
	options Options
	logger  logrus.FieldLogger

	// everything below is owned by the run loop
	seats         []*seat
	clients       map[*Client]bool
	round         *luckyman.Round
	roundsPlayed  int
	pending       *RoundRecord
	logMessages   []*playable.LogMessage
	closeWhenIdle bool
	ticker        *time.Ticker

	// newDeck returns the deck for the next deal
	newDeck func() *deck.Deck

	execInRunLoop chan func()
	close         chan struct{}
	closeOnce     sync.Once
	done          chan struct{}
}

// NewDealer creates a new dealer object
// This is called from a blocking state, so it needs to return quickly
func NewDealer(pitBoss *PitBoss, roomID string, store Store, opts Options, logger logrus.FieldLogger) *Dealer {
	d := &Dealer{
		id:            roomID,
		pitBoss:       pitBoss,
		store:         store,
		options:       opts,
		logger:        logger.WithField("room", roomID),
		clients:       make(map[*Client]bool),
		execInRunLoop: make(chan func(), 256),
		close:         make(chan struct{}),
		done:          make(chan struct{}),
	}

	d.newDeck = d.shuffledDeck
	return d
}

func (d *Dealer) shuffledDeck() *deck.Deck {
	cards := deck.New()
	cards.Shuffle(d.options.Generator)
	return cards
}

// ID returns the room id
func (d *Dealer) ID() string {
	return d.id
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	go d.runLoop()
}

// EndShift tears the room down
// Any round in progress is abandoned and every later event returns ErrRoomClosed
func (d *Dealer) EndShift() {
	err := d.exec(context.Background(), func() error {
		d.shutdown("the room was shut down")
		return nil
	})

	if err != nil && !errors.Is(err, ErrRoomClosed) {
		d.logger.WithError(err).Error("could not end shift")
	}
}

// Done is closed once the run loop has stopped
func (d *Dealer) Done() <-chan struct{} {
	return d.done
}

func (d *Dealer) runLoop() {
	d.logger.Debug("creating dealer run loop")
	defer close(d.done)
	defer d.stopTicker()

	for {
		select {
		case fn := <-d.execInRunLoop:
			fn()
		case <-d.tickerC():
			d.tick()
		case <-d.close:
			d.logger.Debug("terminating dealer run loop")
			return
		}
	}
}

// exec runs fn on the run loop and waits for its result
func (d *Dealer) exec(ctx context.Context, fn func() error) error {
	select {
	case <-d.close:
		return ErrRoomClosed
	default:
	}

	res := make(chan error, 1)
	select {
	case d.execInRunLoop <- func() { res <- fn() }:
	case <-d.close:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-res:
		return err
	case <-d.done:
		// fn may have been the event that closed the room
		select {
		case err := <-res:
			return err
		default:
			return ErrRoomClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join seats the identity, or reconnects it if it already has a seat
// client may be nil for a seat that is not connected over a websocket
func (d *Dealer) Join(ctx context.Context, identity string, client *Client) error {
	if identity == "" {
		return errors.New("identity is required")
	}

	return d.exec(ctx, func() error {
		return d.join(ctx, identity, client)
	})
}

// StartRound deals a new round
// Only the host may start a round, and only once the previous round has been saved
func (d *Dealer) StartRound(ctx context.Context, identity string) error {
	return d.exec(ctx, func() error {
		return d.startRound(ctx, identity)
	})
}

// SubmitPlay plays cards for the identity
// A rejection is returned as a *luckyman.RejectError and is also sent to the identity's clients
func (d *Dealer) SubmitPlay(ctx context.Context, identity string, cards []*deck.Card) (*combo.Interpretation, error) {
	var interp *combo.Interpretation
	err := d.exec(ctx, func() error {
		resp, err := d.action(identity, &playable.PayloadIn{Action: "play", Cards: cards})
		if err != nil {
			return err
		}

		interp, _ = resp.Data.(*combo.Interpretation)
		return nil
	})

	return interp, err
}

// Pass passes the turn for the identity
func (d *Dealer) Pass(ctx context.Context, identity string) error {
	return d.exec(ctx, func() error {
		_, err := d.action(identity, &playable.PayloadIn{Action: "pass"})
		return err
	})
}

// LeaveIntent gives up the identity's seat
// During a round the seat is only marked, it is removed when the round is over. The room closes
// when the host leaves.
func (d *Dealer) LeaveIntent(ctx context.Context, identity string) error {
	return d.exec(ctx, func() error {
		return d.leave(identity)
	})
}

// State returns the public state of the room
func (d *Dealer) State(ctx context.Context) (*RoomState, error) {
	var state *RoomState
	err := d.exec(ctx, func() error {
		state = d.roomState()
		return nil
	})

	return state, err
}

// PlayerState returns what the identity can see of the current round
func (d *Dealer) PlayerState(ctx context.Context, identity string) (*playable.Response, error) {
	var resp *playable.Response
	err := d.exec(ctx, func() error {
		if d.round == nil {
			return luckyman.ErrRoundNotActive
		}

		var err error
		resp, err = d.round.GetPlayerState(identity)
		return err
	})

	return resp, err
}

// RemoveClient is called when a client disconnects
// The room closes once nobody is connected and no round is being played
func (d *Dealer) RemoveClient(client *Client) {
	err := d.exec(context.Background(), func() error {
		delete(d.clients, client)
		if len(d.clients) > 0 {
			d.broadcastRoomState()
			return nil
		}

		if d.roundInProgress() {
			d.closeWhenIdle = true
			return nil
		}

		d.shutdown("everyone disconnected")
		return nil
	})

	if err != nil && !errors.Is(err, ErrRoomClosed) {
		d.logger.WithError(err).Error("could not remove client")
	}
}

// ReceivedMessage is called when a client sends a message to the server
func (d *Dealer) ReceivedMessage(c *Client, msg *playable.PayloadIn) {
	ctx := context.Background()

	var resp *playable.Response
	var err error
	switch msg.Action {
	case "startRound":
		err = d.StartRound(ctx, c.identity)
	case "play", "pass":
		err = d.exec(ctx, func() error {
			var err error
			resp, err = d.action(c.identity, msg)
			return err
		})
	case "leave":
		err = d.LeaveIntent(ctx, c.identity)
	case "roundState":
		resp, err = d.PlayerState(ctx, c.identity)
	default:
		err = fmt.Errorf("unknown action: %s", msg.Action)
	}

	if err != nil {
		var rejectErr *luckyman.RejectError
		if errors.As(err, &rejectErr) {
			// the seat was already told why
			return
		}

		d.logger.WithError(err).WithField("client", c.String()).Info("could not perform action")
		c.Send(newErrorResponse(msg.Context, err))
		return
	}

	if resp == nil {
		resp = playable.OK()
	}

	resp.Context = msg.Context
	c.Send(resp)
}

// NOTE: must only be called from the run loop
func (d *Dealer) join(ctx context.Context, identity string, client *Client) error {
	if d.seatIndex(identity) < 0 {
		if len(d.seats) >= d.options.MaxSeats {
			return ErrRoomFull
		}

		bounty, err := d.loadBounty(ctx, identity)
		if err != nil {
			return err
		}

		d.seats = append(d.seats, &seat{identity: identity, bounty: bounty})
		d.logger.WithFields(logrus.Fields{
			"identity": identity,
			"seat":     len(d.seats) - 1,
			"bounty":   bounty,
		}).Info("seat taken")
	}

	if client != nil {
		d.clients[client] = true
		d.closeWhenIdle = false

		if len(d.logMessages) > 0 {
			client.Send(&playable.Response{Key: keyLog, Data: d.logMessages})
		}

		if d.round != nil {
			if resp, err := d.round.GetPlayerState(identity); err == nil {
				client.Send(resp)
			}
		}
	}

	d.broadcastRoomState()
	return nil
}

func (d *Dealer) loadBounty(ctx context.Context, identity string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, d.options.StoreTimeout)
	defer cancel()

	bounty, found, err := d.store.GetBounty(ctx, d.id, identity)
	if err != nil {
		return 0, fmt.Errorf("could not load bounty: %w", err)
	}

	if !found {
		return d.options.StartingBounty, nil
	}

	return bounty, nil
}

// NOTE: must only be called from the run loop
func (d *Dealer) startRound(ctx context.Context, identity string) error {
	idx := d.seatIndex(identity)
	if idx < 0 {
		return ErrNotSeated
	}

	if idx != 0 {
		return ErrNotHost
	}

	if d.roundInProgress() {
		return ErrRoundInProgress
	}

	if err := d.flushPending(ctx); err != nil {
		return fmt.Errorf("the previous round has not been saved: %w", err)
	}

	if len(d.seats) < luckyman.MinSeats {
		return ErrNotEnoughSeats
	}

	seats := make([]luckyman.SeatInfo, len(d.seats))
	for i, s := range d.seats {
		seats[i] = luckyman.SeatInfo{Identity: s.identity, Bounty: s.bounty}
	}

	cards := d.newDeck()
	hash := cards.HashCode()

	round, err := luckyman.NewRound(d.logger, seats, cards, d.options.Game)
	if err != nil {
		return err
	}

	// the opening seat rotates every round
	opening := d.roundsPlayed % len(seats)
	if err := round.Start(opening); err != nil {
		return err
	}

	d.logger.WithFields(logrus.Fields{
		"roundID": round.ID,
		"opening": opening,
		"deck":    hash,
	}).Info("round started")

	d.round = round
	d.startTicker(round)
	d.afterRoundChanged()
	d.broadcastRoomState()
	return nil
}

// NOTE: must only be called from the run loop
func (d *Dealer) action(identity string, msg *playable.PayloadIn) (*playable.Response, error) {
	idx := d.seatIndex(identity)
	if idx < 0 {
		return nil, ErrNotSeated
	}

	if !d.roundInProgress() {
		return nil, d.rejected(identity, msg.Context, &luckyman.RejectError{Reason: luckyman.ReasonRoundNotActive, Seat: idx})
	}

	roundSeat, ok := d.round.SeatOf(identity)
	if !ok {
		// seated after the deal, plays from the next round
		return nil, d.rejected(identity, msg.Context, &luckyman.RejectError{Reason: luckyman.ReasonRoundNotActive, Seat: idx})
	}

	resp, updateState, err := d.round.Action(identity, msg)
	if err != nil {
		var rejectErr *luckyman.RejectError
		if errors.As(err, &rejectErr) {
			return nil, d.rejected(identity, msg.Context, rejectErr)
		}

		var violation *luckyman.InvariantViolation
		if errors.As(err, &violation) {
			d.abortRound(violation)
		}

		return nil, err
	}

	d.logger.WithFields(logrus.Fields{
		"seat":   roundSeat,
		"action": msg.Action,
	}).Debug("action accepted")

	if updateState {
		d.afterRoundChanged()
	}

	return resp, nil
}

func (d *Dealer) rejected(identity, ctx string, err *luckyman.RejectError) error {
	d.sendToIdentity(identity, newPlayRejectedResponse(ctx, err))
	return err
}

// NOTE: must only be called from the run loop
func (d *Dealer) leave(identity string) error {
	idx := d.seatIndex(identity)
	if idx < 0 {
		return ErrNotSeated
	}

	if d.roundInProgress() {
		if roundSeat, ok := d.round.SeatOf(identity); ok {
			d.seats[idx].leaving = true
			if err := d.round.MarkLeaving(roundSeat); err != nil {
				return err
			}

			d.afterRoundChanged()
			d.broadcastRoomState()
			return nil
		}
	}

	d.removeSeat(idx)
	return nil
}

// NOTE: must only be called from the run loop
func (d *Dealer) tick() {
	if !d.roundInProgress() {
		return
	}

	updateState, err := d.round.Tick()
	if err != nil {
		var violation *luckyman.InvariantViolation
		if errors.As(err, &violation) {
			d.abortRound(violation)
			return
		}

		d.logger.WithError(err).Error("could not tick")
		return
	}

	if updateState {
		d.afterRoundChanged()
	}
}

// afterRoundChanged sends the new state to everyone and wraps up a finished round
func (d *Dealer) afterRoundChanged() {
	d.drainLog()
	d.broadcastRoundState()

	if d.round.IsFinished() {
		d.finishRound()
	}
}

func (d *Dealer) drainLog() {
	if d.round == nil {
		return
	}

	for {
		select {
		case messages := <-d.round.LogChan():
			d.sendLogMessages(messages)
		default:
			return
		}
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) finishRound() {
	details, isOver := d.round.GetEndOfGameDetails()
	if !isOver {
		return
	}

	bounties := make(map[string]int)
	for _, s := range d.round.Seats() {
		bounties[s.Identity] = s.Bounty
		if idx := d.seatIndex(s.Identity); idx >= 0 {
			d.seats[idx].bounty = s.Bounty
		}
	}

	d.roundsPlayed++
	d.pending = &RoundRecord{
		RoomID:      d.id,
		RoundID:     d.round.ID,
		StartedAt:   d.round.StartedAt(),
		FinishedAt:  time.Now(),
		Adjustments: details.BalanceAdjustments,
		Bounties:    bounties,
		Log:         details.Log,
	}

	d.logger.WithFields(logrus.Fields{
		"roundID":  d.round.ID,
		"winner":   d.round.Result().Winner,
		"houseFee": d.round.Result().HouseFee,
	}).Info("round finished")

	if err := d.flushPending(context.Background()); err != nil {
		d.logger.WithError(err).Warn("round will be saved before the next deal")
	}

	d.broadcast(newRoundFinishedResponse(d.round))

	d.afterRoundBoundary()
}

// abortRound throws the round away after an internal consistency failure
// NOTE: must only be called from the run loop
func (d *Dealer) abortRound(err error) {
	roundID := d.round.ID
	d.logger.WithError(err).WithFields(logrus.Fields{
		"type":    "exception",
		"roundID": roundID,
	}).Error("round aborted")

	d.drainLog()
	d.round = nil
	d.broadcast(&playable.Response{
		Key:   keyRoundAborted,
		Value: roundID,
		Data:  err.Error(),
	})

	d.afterRoundBoundary()
}

// afterRoundBoundary removes every seat that asked to leave
func (d *Dealer) afterRoundBoundary() {
	d.stopTicker()

	for i := len(d.seats) - 1; i >= 0; i-- {
		if d.seats[i].leaving {
			if d.removeSeat(i) {
				return
			}
		}
	}

	if d.closeWhenIdle && len(d.clients) == 0 {
		d.shutdown("everyone disconnected")
		return
	}

	d.broadcastRoomState()
}

// removeSeat removes the seat, closing the room if it is the host
// Returns true if the room was closed
func (d *Dealer) removeSeat(idx int) bool {
	identity := d.seats[idx].identity
	d.logger.WithFields(logrus.Fields{
		"identity": identity,
		"seat":     idx,
	}).Info("seat left")

	if idx == 0 {
		d.shutdown("the host left")
		return true
	}

	d.seats = append(d.seats[:idx], d.seats[idx+1:]...)
	d.broadcastRoomState()
	return false
}

func (d *Dealer) flushPending(ctx context.Context) error {
	if d.pending == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.options.StoreTimeout)
	defer cancel()

	if err := d.store.RecordRound(ctx, d.pending); err != nil {
		d.logger.WithError(err).WithField("roundID", d.pending.RoundID).Error("could not record round")
		return err
	}

	d.pending = nil
	return nil
}

// shutdown closes the room
// NOTE: must only be called from the run loop
func (d *Dealer) shutdown(reason string) {
	d.closeOnce.Do(func() {
		d.logger.WithField("reason", reason).Info("closing room")

		if err := d.flushPending(context.Background()); err != nil {
			d.logger.WithError(err).WithField("type", "exception").Error("room closed with an unsaved round")
		}

		d.broadcast(&playable.Response{
			Key:   keyRoomClosed,
			Value: reason,
		})

		for client := range d.clients {
			select {
			case client.Close <- reason:
			default:
			}
		}

		if d.pitBoss != nil {
			d.pitBoss.remove(d)
		}

		close(d.close)
	})
}

// startTicker ticks the game from the run loop while it is being played
func (d *Dealer) startTicker(game playable.Tickable) {
	d.stopTicker()
	d.ticker = time.NewTicker(game.Interval())
}

func (d *Dealer) stopTicker() {
	if d.ticker != nil {
		d.ticker.Stop()
		d.ticker = nil
	}
}

// tickerC is nil while no game is ticking, which blocks forever in a select
func (d *Dealer) tickerC() <-chan time.Time {
	if d.ticker == nil {
		return nil
	}

	return d.ticker.C
}

func (d *Dealer) roundInProgress() bool {
	return d.round != nil && d.round.Phase() == luckyman.PhaseInProgress
}

func (d *Dealer) seatIndex(identity string) int {
	for i, s := range d.seats {
		if s.identity == identity {
			return i
		}
	}

	return -1
}

func (d *Dealer) roomState() *RoomState {
	connected := make(map[string]bool)
	for client := range d.clients {
		connected[client.identity] = true
	}

	seats := make([]*SeatState, len(d.seats))
	for i, s := range d.seats {
		seats[i] = &SeatState{
			Seat:      i,
			Identity:  s.identity,
			Bounty:    s.bounty,
			Host:      i == 0,
			Connected: connected[s.identity],
			Leaving:   s.leaving,
		}
	}

	return &RoomState{
		RoomID:          d.id,
		Seats:           seats,
		RoundsPlayed:    d.roundsPlayed,
		RoundInProgress: d.roundInProgress(),
		PendingWrite:    d.pending != nil,
	}
}

func (d *Dealer) broadcast(msg interface{}) {
	for client := range d.clients {
		client.Send(msg)
	}
}

func (d *Dealer) broadcastRoomState() {
	d.broadcast(&playable.Response{
		Key:  keyRoomState,
		Data: d.roomState(),
	})
}

func (d *Dealer) broadcastRoundState() {
	if d.round == nil {
		return
	}

	for client := range d.clients {
		resp, err := d.round.GetPlayerState(client.identity)
		if err != nil {
			d.logger.WithError(err).Error("could not get player state")
			continue
		}

		client.Send(resp)
	}
}

func (d *Dealer) sendToIdentity(identity string, msg interface{}) {
	for client := range d.clients {
		if client.identity == identity {
			client.Send(msg)
		}
	}
}
