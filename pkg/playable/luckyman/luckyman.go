package luckyman

import (
	"fmt"

	"luckyman-server/pkg/playable"
)

// Name is the name of the game
const Name = "luckyman"

// Name returns "luckyman"
func (r *Round) Name() string {
	return Name
}

// LogChan returns a channel for sending log messages
func (r *Round) LogChan() <-chan []*playable.LogMessage {
	return r.logChan
}

// Action performs an action for the seat with the identity
// Supported actions are "play" with the cards in the payload, and "pass"
func (r *Round) Action(identity string, message *playable.PayloadIn) (playerResponse *playable.Response, updateState bool, err error) {
	seat, ok := r.idToSeat[identity]
	if !ok {
		return nil, false, ErrUnknownIdentity
	}

	log := r.logger.WithField("seat", seat)

	switch message.Action {
	case "play":
		log.WithField("cards", message.Cards).Debug("play")
		interp, err := r.SubmitPlay(seat, message.Cards)
		if err != nil {
			return nil, false, err
		}

		return &playable.Response{
			Key:     "status",
			Value:   "OK",
			Data:    interp,
			Context: message.Context,
		}, true, nil
	case "pass":
		log.Debug("pass")
		if err := r.Pass(seat); err != nil {
			return nil, false, err
		}

		return playable.OK(message.Context), true, nil
	default:
		return nil, false, fmt.Errorf("unknown action: %s", message.Action)
	}
}

// GetEndOfGameDetails returns the bounty adjustments once the round is finished
func (r *Round) GetEndOfGameDetails() (gameOverDetails *playable.GameOverDetails, isGameOver bool) {
	if r.phase != PhaseFinished || r.result == nil {
		return nil, false
	}

	adjustments := make(map[string]int)
	for i, s := range r.seats {
		adjustments[s.identity] = r.result.Deltas[i]
	}

	return &playable.GameOverDetails{
		BalanceAdjustments: adjustments,
		Log:                r.RoundLog(),
	}, true
}

var _ playable.Playable = (*Round)(nil)
var _ playable.Tickable = (*Round)(nil)
