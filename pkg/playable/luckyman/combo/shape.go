package combo

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"luckyman-server/pkg/deck"
)

// Shape is a recognized combination category
type Shape int

// Constants for shape
const (
	Invalid Shape = iota
	Single
	Pair
	Triplet
	Quad
	Straight
	DoubleStraight
	Bomb
)

// fixed combination lengths
const (
	StraightLength       = 5
	DoubleStraightLength = 10
	MaxCards             = DoubleStraightLength
)

// BombStrength is the strength of a bomb, higher than any rank
const BombStrength = math.MaxInt32

var shapeNames = map[Shape]string{
	Invalid:        "invalid",
	Single:         "single",
	Pair:           "pair",
	Triplet:        "triplet",
	Quad:           "quad",
	Straight:       "straight",
	DoubleStraight: "doubleStraight",
	Bomb:           "bomb",
}

// String returns the string representation of a shape
func (s Shape) String() string {
	name, ok := shapeNames[s]
	if !ok {
		panic(fmt.Sprintf("unknown shape: %d", s))
	}

	return name
}

// MarshalText encodes the shape by name
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes the shape by name
func (s *Shape) UnmarshalText(b []byte) error {
	for shape, name := range shapeNames {
		if name == string(b) {
			*s = shape
			return nil
		}
	}

	return fmt.Errorf("unknown shape: %s", b)
}

// Interpretation is one concrete reading of a set of cards
// Every wildcard in Cards is pinned to the rank it stands in for
type Interpretation struct {
	Shape    Shape        `json:"shape"`
	Strength int          `json:"strength"`
	Cards    []*deck.Card `json:"cards"`
}

func newInterpretation(shape Shape, strength int, cards []*deck.Card) *Interpretation {
	sorted := append([]*deck.Card{}, cards...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := sorted[i].GetWildRank(), sorted[j].GetWildRank()
		if ri != rj {
			return ri < rj
		}

		return sorted[i].Suit < sorted[j].Suit
	})

	return &Interpretation{
		Shape:    shape,
		Strength: strength,
		Cards:    sorted,
	}
}

// WildRanks returns the rank each wildcard stands in for, keyed by the wildcard's suit
func (i *Interpretation) WildRanks() map[deck.Suit]int {
	ranks := make(map[deck.Suit]int)
	for _, card := range i.Cards {
		if card.IsWild {
			ranks[card.Suit] = card.GetWildRank()
		}
	}

	return ranks
}

// Beats returns true if this interpretation legally beats top
// A nil top is an empty table, which any valid interpretation may lead
func (i *Interpretation) Beats(top *Interpretation) bool {
	if i == nil || i.Shape == Invalid {
		return false
	}

	if top == nil {
		return true
	}

	if top.Shape == Bomb {
		return false
	}

	if i.Shape == Bomb {
		return true
	}

	if i.Shape == top.Shape {
		return i.Strength > top.Strength
	}

	switch top.Shape {
	case Single, Pair:
		return i.Shape == Triplet || i.Shape == Quad
	case Triplet:
		return i.Shape == Quad
	}

	return false
}

func (i *Interpretation) String() string {
	parts := make([]string, len(i.Cards))
	for j, card := range i.Cards {
		if card.IsWild {
			parts[j] = fmt.Sprintf("%s=%d", deck.CardToString(card), card.GetWildRank())
		} else {
			parts[j] = deck.CardToString(card)
		}
	}

	return fmt.Sprintf("%s(%s)", i.Shape, strings.Join(parts, ","))
}

// Guess is the result of classifying a set of cards
// Interpretations is ordered by descending strength and is empty if Shape is Invalid
type Guess struct {
	Shape           Shape             `json:"shape"`
	Strength        int               `json:"strength"`
	Interpretations []*Interpretation `json:"interpretations"`
}

// IsValid returns true if the cards form at least one combination
func (g *Guess) IsValid() bool {
	return g != nil && g.Shape != Invalid && len(g.Interpretations) > 0
}

// Best returns the strongest interpretation, or nil if the guess is invalid
func (g *Guess) Best() *Interpretation {
	if !g.IsValid() {
		return nil
	}

	return g.Interpretations[0]
}

// Resolved returns a guess holding exactly one interpretation
func Resolved(interp *Interpretation) *Guess {
	if interp == nil || interp.Shape == Invalid {
		return &Guess{Shape: Invalid, Interpretations: []*Interpretation{}}
	}

	return &Guess{
		Shape:           interp.Shape,
		Strength:        interp.Strength,
		Interpretations: []*Interpretation{interp},
	}
}

// newGuess orders the interpretations and builds the guess from the strongest
func newGuess(interps []*Interpretation) *Guess {
	if len(interps) == 0 {
		return &Guess{Shape: Invalid, Interpretations: []*Interpretation{}}
	}

	sort.SliceStable(interps, func(i, j int) bool {
		if interps[i].Strength != interps[j].Strength {
			return interps[i].Strength > interps[j].Strength
		}

		return interps[i].Shape > interps[j].Shape
	})

	return &Guess{
		Shape:           interps[0].Shape,
		Strength:        interps[0].Strength,
		Interpretations: interps,
	}
}
