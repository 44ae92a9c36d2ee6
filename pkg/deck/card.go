package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNotWild is an error when an wild-type action is attempted on a standard card
var ErrNotWild = errors.New("the card is not wild")

// Suit represents a card suit
// The two wildcards are modeled as their own suits so they sort and serialize like any other card
type Suit string

// suit constants
const (
	Spades   Suit = "spades"
	Hearts   Suit = "hearts"
	Clubs    Suit = "clubs"
	Diamonds Suit = "diamonds"
	WildLow  Suit = "wildLow"
	WildHigh Suit = "wildHigh"
)

// StandardSuits are the four real suits
var StandardSuits = []Suit{Spades, Hearts, Clubs, Diamonds}

// ranks are play-strength ordered, not face value
const (
	// WildRank is the intrinsic rank of both wildcards
	WildRank = 0
	// LowRank is the weakest real card (a three)
	LowRank = 1
	// HighRank is the strongest real card (a two)
	HighRank = 13
)

var faces = [...]string{"", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A", "2"}

// Card is an individual playing card
type Card struct {
	Rank   int  `json:"rank"`
	Suit   Suit `json:"suit"`
	IsWild bool `json:"isWild"`

	// what the wild card represents
	wildRank int
}

func (c *Card) String() string {
	switch c.Suit {
	case WildLow:
		return "☆"
	case WildHigh:
		return "★"
	}

	var rank string
	if c.Rank >= LowRank && c.Rank <= HighRank {
		rank = faces[c.Rank]
	} else {
		rank = strconv.Itoa(c.Rank)
	}

	var suit string
	switch c.Suit {
	case Clubs:
		suit = "♣"
	case Diamonds:
		suit = "♢"
	case Hearts:
		suit = "♡"
	case Spades:
		suit = "♠"
	default:
		panic("unknown suit")
	}

	return fmt.Sprintf("%s%s", rank, suit)
}

// Equal returns true if the cards are equal (matches suit and rank)
func (c *Card) Equal(card *Card) bool {
	return c.Suit == card.Suit && c.Rank == card.Rank
}

var cardRx = regexp.MustCompile(`(?i)^(?:!([lh])|([1-9]|1[0-3])([cdhs]))\z`)

// CardFromString returns a Card from the string.
// The string must be in the format of <rank><suit> where rank >= 1 and <= 13 and suit in [cdhs],
// or !l / !h for the low and high wildcards
func CardFromString(s string) *Card {
	card, err := ParseCard(s)
	if err != nil {
		panic(err.Error())
	}

	return card
}

// ParseCard is the non-panicking version of CardFromString
func ParseCard(s string) (*Card, error) {
	if s == "" {
		return nil, nil
	}

	match := cardRx.FindStringSubmatch(s)
	if match == nil {
		return nil, fmt.Errorf("could not parse card: %s", s)
	}

	if match[1] != "" {
		suit := WildLow
		if strings.ToLower(match[1]) == "h" {
			suit = WildHigh
		}

		return &Card{Rank: WildRank, Suit: suit, IsWild: true}, nil
	}

	rank, err := strconv.Atoi(match[2])
	if err != nil {
		return nil, fmt.Errorf("could not parse card `%s`: %v", s, err)
	}

	var suit Suit
	switch strings.ToLower(match[3]) {
	case "c":
		suit = Clubs
	case "d":
		suit = Diamonds
	case "h":
		suit = Hearts
	case "s":
		suit = Spades
	}

	return &Card{
		Rank: rank,
		Suit: suit,
	}, nil
}

// SetWildRank will set the intended rank for a wild
func (c *Card) SetWildRank(rank int) error {
	if !c.IsWild {
		return ErrNotWild
	}

	c.wildRank = rank
	return nil
}

// GetWildRank returns the wild rank if set, otherwise returns the intrinsic rank
func (c *Card) GetWildRank() int {
	if c.IsWild && c.wildRank > 0 {
		return c.wildRank
	}

	return c.Rank
}

// Pinned returns a copy of a wildcard standing in for rank
// The receiver is not modified
func (c *Card) Pinned(rank int) *Card {
	cp := c.Clone()
	_ = cp.SetWildRank(rank)
	return cp
}

// MarshalJSON adds the rank a pinned wildcard stands in for
// Decoding ignores wildRank, so only the server can pin a wildcard
func (c Card) MarshalJSON() ([]byte, error) {
	out := struct {
		Rank     int  `json:"rank"`
		Suit     Suit `json:"suit"`
		IsWild   bool `json:"isWild"`
		WildRank int  `json:"wildRank,omitempty"`
	}{
		Rank:   c.Rank,
		Suit:   c.Suit,
		IsWild: c.IsWild,
	}

	if c.IsWild {
		out.WildRank = c.wildRank
	}

	return json.Marshal(out)
}

// Clone returns a clone of the card
func (c *Card) Clone() *Card {
	cp := *c
	return &cp
}

// CardsFromString will returns a slice of cards
func CardsFromString(s string) []*Card {
	if s == "" {
		return []*Card{}
	}

	cardStrings := strings.Split(s, ",")
	cards := make([]*Card, len(cardStrings))
	for i, card := range cardStrings {
		cards[i] = CardFromString(strings.TrimSpace(card))
	}

	return cards
}

// CardToString converts a card (three of clubs) to a string (1c)
func CardToString(card *Card) string {
	if card == nil {
		return ""
	}

	switch card.Suit {
	case WildLow:
		return "!l"
	case WildHigh:
		return "!h"
	}

	var suit string
	switch card.Suit {
	case Clubs:
		suit = "c"
	case Hearts:
		suit = "h"
	case Diamonds:
		suit = "d"
	case Spades:
		suit = "s"
	}

	return fmt.Sprintf("%d%s", card.Rank, suit)
}

// CardsToString will convert a slice of cards to a string in the format of 1c,2h,!l,...
func CardsToString(cards []*Card) string {
	c := make([]string, len(cards))
	for i, card := range cards {
		c[i] = CardToString(card)
	}

	return strings.Join(c, ",")
}
