package room

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// PitBoss is responsible for dispatching seats to rooms
type PitBoss struct {
	mu      sync.Mutex
	dealers map[string]*Dealer

	store   Store
	options Options
	logger  logrus.FieldLogger
}

// NewPitBoss returns a new dispatch object
func NewPitBoss(logger logrus.FieldLogger, store Store, opts Options) *PitBoss {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &PitBoss{
		dealers: make(map[string]*Dealer),
		store:   store,
		options: opts,
		logger:  logger,
	}
}

// Join seats the identity in the room, opening the room if needed
func (p *PitBoss) Join(ctx context.Context, roomID, identity string, client *Client) (*Dealer, error) {
	// a room can close between the lookup and the join, the second attempt opens a fresh one
	for attempt := 0; attempt < 2; attempt++ {
		dealer := p.dealerFor(roomID)
		err := dealer.Join(ctx, identity, client)
		if errors.Is(err, ErrRoomClosed) {
			continue
		}

		if err != nil {
			return nil, err
		}

		if client != nil {
			client.dealer = dealer
		}

		return dealer, nil
	}

	return nil, ErrRoomClosed
}

// Dealer returns the dealer for an open room
func (p *PitBoss) Dealer(roomID string) (*Dealer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dealer, found := p.dealers[roomID]
	return dealer, found
}

// Rooms returns the number of open rooms
func (p *PitBoss) Rooms() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.dealers)
}

// ClientDisconnected is called when a client disconnects from the server
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.logger.WithField("client", client.String()).Debug("client disconnected")
	if client.dealer == nil {
		return
	}

	client.dealer.RemoveClient(client)
}

// EndShift closes every open room
func (p *PitBoss) EndShift() {
	p.mu.Lock()
	dealers := make([]*Dealer, 0, len(p.dealers))
	for _, dealer := range p.dealers {
		dealers = append(dealers, dealer)
	}
	p.mu.Unlock()

	for _, dealer := range dealers {
		dealer.EndShift()
	}
}

func (p *PitBoss) dealerFor(roomID string) *Dealer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if dealer, found := p.dealers[roomID]; found {
		return dealer
	}

	p.logger.WithField("room", roomID).Info("opening room")
	dealer := NewDealer(p, roomID, p.store, p.options, p.logger)
	dealer.StartShift()
	p.dealers[roomID] = dealer
	return dealer
}

// remove is called by the dealer when its room closes
func (p *PitBoss) remove(dealer *Dealer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dealers[dealer.id] == dealer {
		delete(p.dealers, dealer.id)
	}
}
