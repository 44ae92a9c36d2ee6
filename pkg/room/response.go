package room

import (
	"luckyman-server/pkg/playable"
	"luckyman-server/pkg/playable/luckyman"
)

// outbound message keys
const (
	keyRoomState     = "roomState"
	keyPlayRejected  = "playRejected"
	keyRoundFinished = "roundFinished"
	keyRoundAborted  = "roundAborted"
	keyRoomClosed    = "roomClosed"
	keyLog           = "log"
	keyError         = "error"
)

// RoomState is the public state of a room
type RoomState struct {
	RoomID          string       `json:"roomId"`
	Seats           []*SeatState `json:"seats"`
	RoundsPlayed    int          `json:"roundsPlayed"`
	RoundInProgress bool         `json:"roundInProgress"`
	PendingWrite    bool         `json:"pendingWrite"`
}

// SeatState is the public state of one seat in the room
type SeatState struct {
	Seat      int    `json:"seat"`
	Identity  string `json:"identity"`
	Bounty    int    `json:"bounty"`
	Host      bool   `json:"host"`
	Connected bool   `json:"connected"`
	Leaving   bool   `json:"leaving"`
}

// RoundFinished is sent to everyone when a round ends
type RoundFinished struct {
	RoundID        string         `json:"roundId"`
	Winner         int            `json:"winner"`
	WinnerIdentity string         `json:"winnerIdentity"`
	Deltas         map[string]int `json:"deltas"`
	HouseFee       int            `json:"houseFee"`
}

func newErrorResponse(ctx string, err error) *playable.Response {
	return &playable.Response{
		Key:     keyError,
		Value:   err.Error(),
		Context: ctx,
	}
}

func newPlayRejectedResponse(ctx string, err *luckyman.RejectError) *playable.Response {
	return &playable.Response{
		Key:     keyPlayRejected,
		Value:   string(err.Reason),
		Data:    err.Unwrap().Error(),
		Context: ctx,
	}
}

func newRoundFinishedResponse(round *luckyman.Round) *playable.Response {
	result := round.Result()
	seats := round.Seats()

	deltas := make(map[string]int)
	for i, seat := range seats {
		deltas[seat.Identity] = result.Deltas[i]
	}

	return &playable.Response{
		Key: keyRoundFinished,
		Data: &RoundFinished{
			RoundID:        round.ID,
			Winner:         result.Winner,
			WinnerIdentity: seats[result.Winner].Identity,
			Deltas:         deltas,
			HouseFee:       result.HouseFee,
		},
	}
}
