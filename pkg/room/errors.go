package room

import "errors"

// ErrRoomClosed is returned for any event sent to a room that has been torn down
var ErrRoomClosed = errors.New("the room is closed")

// ErrNotHost is returned when someone other than the host tries to start a round
var ErrNotHost = errors.New("only the host can start a round")

// ErrRoundInProgress is returned when a round is started while another is being played
var ErrRoundInProgress = errors.New("a round is already in progress")

// ErrNotEnoughSeats is returned when a round is started with fewer than two seats
var ErrNotEnoughSeats = errors.New("need at least two seats to start a round")

// ErrRoomFull is returned when every seat is taken
var ErrRoomFull = errors.New("the room is full")

// ErrNotSeated is returned when the identity has no seat in the room
var ErrNotSeated = errors.New("you are not seated in this room")
