package deck

import (
	"sort"
	"strings"
)

// Hand represents a collection of cards
type Hand []*Card

func (h Hand) Len() int {
	return len(h)
}

// Less orders by rank, then suit, so wildcards (rank 0) sort first
func (h Hand) Less(i, j int) bool {
	if h[i].Rank != h[j].Rank {
		return h[i].Rank < h[j].Rank
	}

	return strings.Compare(string(h[i].Suit), string(h[j].Suit)) < 0
}

func (h Hand) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// AddCard adds a card to the hand
func (h *Hand) AddCard(card *Card) {
	*h = append(*h, card)
}

// HasCard returns true if the hand contains the specified card
func (h Hand) HasCard(card *Card) bool {
	for _, c := range h {
		if c.Equal(card) {
			return true
		}
	}

	return false
}

// HasCards returns true if every card is in the hand
// Each card in the hand can only satisfy one requested card
func (h Hand) HasCards(cards []*Card) bool {
	_, ok := h.Take(cards)
	return ok
}

// Take returns the hand's own card for each requested card
// Cards are matched by suit and rank, so flags set on the requested cards are ignored.
// Returns false if any card is missing.
func (h Hand) Take(cards []*Card) ([]*Card, bool) {
	used := make([]bool, len(h))
	taken := make([]*Card, 0, len(cards))
	for _, card := range cards {
		found := false
		for i, c := range h {
			if !used[i] && c.Equal(card) {
				used[i] = true
				taken = append(taken, c)
				found = true
				break
			}
		}

		if !found {
			return nil, false
		}
	}

	return taken, true
}

// Remove removes every card from the hand
// Nothing is removed and false is returned if any card is missing
func (h *Hand) Remove(cards []*Card) bool {
	if !h.HasCards(cards) {
		return false
	}

	for _, card := range cards {
		h.Discard(card, 1)
	}

	return true
}

// Discard will discard the specified card
// If max is provided and > 0, then limit to max discards
func (h *Hand) Discard(card *Card, max ...int) int {
	count := 0
	m := len(*h)
	if len(max) == 1 && max[0] > 0 {
		m = max[0]
	}

	newHand := make([]*Card, 0, len(*h))
	for _, c := range *h {
		if c.Equal(card) && count < m {
			count++
		} else {
			newHand = append(newHand, c)
		}
	}

	*h = newHand
	return count
}

// WildCount returns the number of wildcards in the hand
func (h Hand) WildCount() int {
	n := 0
	for _, c := range h {
		if c.IsWild {
			n++
		}
	}

	return n
}

// Sorted returns a sorted copy of the hand
func (h Hand) Sorted() Hand {
	h2 := h.Clone()
	sort.Sort(h2)
	return h2
}

func (h Hand) String() string {
	return CardsToString(h)
}

// Clone returns a clone of the hand
func (h Hand) Clone() Hand {
	h2 := make(Hand, len(h))
	copy(h2, h)

	return h2
}
