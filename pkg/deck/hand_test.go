package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHand_HasCard(t *testing.T) {
	hand := Hand(CardsFromString("2c,3c,4d"))
	assert.True(t, hand.HasCard(CardFromString("3c")))
	assert.False(t, hand.HasCard(CardFromString("3s")))
}

func TestHand_HasCards(t *testing.T) {
	hand := Hand(CardsFromString("2c,3c,!l"))
	assert.True(t, hand.HasCards(CardsFromString("3c,!l")))
	assert.False(t, hand.HasCards(CardsFromString("3c,3c")), "a card can only be used once")
	assert.False(t, hand.HasCards(CardsFromString("!h")))
}

func TestHand_Remove(t *testing.T) {
	a := assert.New(t)

	hand := Hand(CardsFromString("2c,3c,!l,9s"))
	a.False(hand.Remove(CardsFromString("3c,4c")))
	a.Equal("2c,3c,!l,9s", hand.String(), "nothing removed on a miss")

	a.True(hand.Remove(CardsFromString("!l,2c")))
	a.Equal("3c,9s", hand.String())
}

func TestHand_Take(t *testing.T) {
	a := assert.New(t)

	hand := Hand(CardsFromString("5s,9h,!l"))
	forged := []*Card{
		{Rank: 5, Suit: Spades, IsWild: true},
		{Rank: WildRank, Suit: WildLow, IsWild: false},
	}

	taken, ok := hand.Take(forged)
	a.True(ok)
	a.True(taken[0] == hand[0])
	a.False(taken[0].IsWild)
	a.True(taken[1] == hand[2])
	a.True(taken[1].IsWild)

	_, ok = hand.Take(CardsFromString("9h,9h"))
	a.False(ok, "a card can only be taken once")
	a.Equal("5s,9h,!l", hand.String())
}

func TestHand_Discard(t *testing.T) {
	hand := Hand(CardsFromString("2c,3c,3c,4d"))
	assert.Equal(t, 2, hand.Discard(CardFromString("3c")))
	assert.Equal(t, "2c,4d", CardsToString(hand))

	hand = Hand(CardsFromString("2c,3c,3c,4d"))
	assert.Equal(t, 1, hand.Discard(CardFromString("3c"), 1))
	assert.Equal(t, "2c,3c,4d", CardsToString(hand))
}

func TestHand_AddCard(t *testing.T) {
	h := make(Hand, 0)
	h.AddCard(CardFromString("13s"))
	h.AddCard(CardFromString("3c"))
	assert.Equal(t, "13s,3c", CardsToString(h))
}

func TestHand_Sorted(t *testing.T) {
	h := Hand(CardsFromString("13s,!h,3c,3d,!l"))
	assert.Equal(t, "!h,!l,3c,3d,13s", h.Sorted().String())
	assert.Equal(t, "13s,!h,3c,3d,!l", h.String(), "original untouched")
	assert.Equal(t, 2, h.WildCount())
}
