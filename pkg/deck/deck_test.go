package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"luckyman-server/internal/rng"
)

func TestNewDeck(t *testing.T) {
	d := New()

	assert.Equal(t, 54, d.CardsLeft())
	assert.Equal(t, Card{Rank: 1, Suit: Spades}, *d.Cards[0])
	assert.Equal(t, Card{Rank: 13, Suit: Diamonds}, *d.Cards[51])
	assert.Equal(t, Card{Rank: 0, Suit: WildLow, IsWild: true}, *d.Cards[52])
	assert.Equal(t, Card{Rank: 0, Suit: WildHigh, IsWild: true}, *d.Cards[53])

	seen := make(map[string]bool)
	for _, card := range d.Cards {
		s := CardToString(card)
		assert.False(t, seen[s], "duplicate card %s", s)
		seen[s] = true
	}
}

func TestDeck_Shuffle(t *testing.T) {
	d := New()
	unshuffled := d.HashCode()

	d.Shuffle(rng.Seeded(1))
	assert.Equal(t, 54, d.CardsLeft())
	first := d.HashCode()
	assert.NotEqual(t, unshuffled, first)

	d2 := New()
	d2.Shuffle(rng.Seeded(1))
	assert.Equal(t, first, d2.HashCode(), "same seed, same order")

	d.Shuffle(rng.Seeded(2))
	assert.NotEqual(t, first, d.HashCode())
}

func TestDeck_Draw(t *testing.T) {
	d := New()

	assert.True(t, d.CanDraw(54))
	assert.False(t, d.CanDraw(55))

	for i := 0; i < 54; i++ {
		card, err := d.Draw()
		assert.NotNil(t, card)
		assert.NoError(t, err)
	}

	assert.False(t, d.CanDraw(1))

	card, err := d.Draw()
	assert.Nil(t, card)
	assert.Equal(t, ErrEndOfDeck, err)
}

func TestFromCards(t *testing.T) {
	cards := CardsFromString("1c,2c,!h")
	d := FromCards(cards)
	cards[0] = nil

	c, _ := d.Draw()
	assert.Equal(t, "1c", CardToString(c))
	assert.Equal(t, 2, d.CardsLeft())
}
