package luckyman

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"luckyman-server/pkg/deck"
	"luckyman-server/pkg/playable"
	"luckyman-server/pkg/playable/luckyman/combo"
)

// Event is the kind of a round log entry
type Event string

// Event constants
const (
	EventDeal         Event = "deal"
	EventStart        Event = "start"
	EventPlay         Event = "play"
	EventPass         Event = "pass"
	EventTimeoutPlay  Event = "timeoutPlay"
	EventTimeoutPass  Event = "timeoutPass"
	EventForfeitLead  Event = "forfeitLead"
	EventTableCleared Event = "tableCleared"
	EventReplenish    Event = "replenish"
	EventLeaving      Event = "leaving"
	EventFinish       Event = "finish"
)

// LogEntry is one line of the round log
// Seat is -1 for entries that concern the whole table
type LogEntry struct {
	Seq      int          `json:"seq"`
	Event    Event        `json:"event"`
	Seat     int          `json:"seat"`
	Identity string       `json:"identity,omitempty"`
	Cards    []*deck.Card `json:"cards,omitempty"`
	Shape    combo.Shape  `json:"shape,omitempty"`
	Strength int          `json:"strength,omitempty"`
	Time     time.Time    `json:"time"`
}

// RoundLog is the complete record of a round, persisted once it is finished
type RoundLog struct {
	RoundID    string       `json:"roundId"`
	StartedAt  time.Time    `json:"startedAt"`
	Seats      []SeatInfo   `json:"seats"`
	Multiplier int          `json:"multiplier"`
	Entries    []*LogEntry  `json:"entries"`
	Result     *ScoreResult `json:"result"`
}

// RoundLog returns a copy of the log so far
func (r *Round) RoundLog() *RoundLog {
	return &RoundLog{
		RoundID:    r.ID,
		StartedAt:  r.startedAt,
		Seats:      r.Seats(),
		Multiplier: r.multiplier,
		Entries:    append([]*LogEntry{}, r.entries...),
		Result:     r.result,
	}
}

func (r *Round) appendLog(entry *LogEntry, format string, a ...interface{}) {
	entry.Seq = len(r.entries) + 1
	entry.Time = r.now()
	if entry.Seat >= 0 && entry.Seat < len(r.seats) {
		entry.Identity = r.seats[entry.Seat].identity
	}

	r.entries = append(r.entries, entry)

	var identities []string
	if entry.Identity != "" {
		identities = []string{entry.Identity}
	}

	r.sendLogMessages(&playable.LogMessage{
		UUID:       uuid.New().String(),
		Identities: identities,
		Cards:      entry.Cards,
		Message:    fmt.Sprintf(format, a...),
		Time:       entry.Time,
	})
}

// sendLogMessages never blocks the round, messages are dropped if nobody is draining the channel
func (r *Round) sendLogMessages(msg ...*playable.LogMessage) {
	if r.logChan == nil {
		return
	}

	select {
	case r.logChan <- msg:
	default:
		r.logger.WithField("roundID", r.ID).Warn("log channel is full, dropping log messages")
	}
}
