package luckyman

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"luckyman-server/pkg/deck"
	"luckyman-server/pkg/playable/luckyman/combo"
)

func TestRound_Interval(t *testing.T) {
	r, _ := newTestRound(t, "", "5c", "6c")
	assert.Equal(t, time.Second, r.Interval())

	r.options.TurnTimeout = time.Second
	assert.Equal(t, 100*time.Millisecond, r.Interval())

	r.options.TurnTimeout = 0
	assert.Equal(t, 10*time.Millisecond, r.Interval())
}

func TestRound_Tick_timeouts(t *testing.T) {
	a := assert.New(t)

	r, clock := newTestRound(t, "", "9d,!l,5c", "6c,7c,8c")

	// nothing to do before the round starts
	update, err := r.Tick()
	a.False(update)
	a.NoError(err)

	a.NoError(r.Start(0))
	clock.Advance(29 * time.Second)
	update, err = r.Tick()
	a.False(update)
	a.NoError(err)

	// the leader leads its lowest real card
	clock.Advance(time.Second)
	update, err = r.Tick()
	a.True(update)
	a.NoError(err)
	a.Equal("5c", deck.CardsToString(r.TableTop().Interpretation.Cards))
	a.Equal("9d,!l", deck.CardsToString(r.Hand(0)))
	a.Equal(1, r.TurnSeat())
	a.Equal(clock.now.Add(30*time.Second), r.Deadline())

	update, err = r.Tick()
	a.False(update)
	a.NoError(err)

	// everyone else is passed
	clock.Advance(31 * time.Second)
	update, err = r.Tick()
	a.True(update)
	a.NoError(err)
	a.Nil(r.TableTop())
	a.Equal(0, r.TurnSeat())

	entries := r.RoundLog().Entries
	a.Equal(EventTimeoutPlay, entries[2].Event)
	a.Equal(EventTimeoutPass, entries[3].Event)
	a.Equal("bob", entries[3].Identity)

	// an accepted play re-arms the timer
	clock.Advance(10 * time.Second)
	play(t, r, 0, "9d")
	a.Equal(clock.now.Add(30*time.Second), r.Deadline())
}

func TestRound_Tick_leaderBomb(t *testing.T) {
	a := assert.New(t)

	r, clock := newTestRound(t, "", "!h,!l", "6c,7c")
	a.NoError(r.Start(0))

	clock.Advance(time.Minute)
	update, err := r.Tick()
	a.True(update)
	a.NoError(err)
	a.True(r.IsFinished())
	a.Equal(combo.Bomb, r.TableTop().Interpretation.Shape)
	a.Equal(2, r.Multiplier())
	a.Equal([]int{38, -40}, r.Result().Deltas)

	// a finished round has no timer
	clock.Advance(time.Minute)
	update, err = r.Tick()
	a.False(update)
	a.NoError(err)
}

func TestAutoLead(t *testing.T) {
	a := assert.New(t)

	a.Equal("3c", deck.CardsToString(autoLead(deck.CardsFromString("!h,9d,3c,!l"))))
	a.Equal("!h,!l", deck.CardsToString(autoLead(deck.CardsFromString("!l,!h"))))
	a.Nil(autoLead(deck.CardsFromString("!l")))
	a.Nil(autoLead(deck.CardsFromString("")))
}
