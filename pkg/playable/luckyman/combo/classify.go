package combo

import (
	"sort"

	"luckyman-server/pkg/deck"
)

// Classify determines every combination the cards can represent
// Wildcards are expanded into each rank that makes the cards valid. The input must not contain
// the same card twice.
func Classify(cards []*deck.Card) *Guess {
	n := len(cards)
	if n == 0 || n > MaxCards {
		return newGuess(nil)
	}

	reals, wilds := split(cards)

	var interps []*Interpretation
	switch n {
	case 1:
		if len(wilds) == 0 {
			interps = single(reals[0])
		}
	case 2:
		if len(wilds) == 2 {
			interps = []*Interpretation{newInterpretation(Bomb, BombStrength, cards)}
		} else {
			interps = sameRank(Pair, reals, wilds)
		}
	case 3:
		interps = sameRank(Triplet, reals, wilds)
	case 4:
		interps = sameRank(Quad, reals, wilds)
	case StraightLength:
		interps = search(Straight, reals, wilds, isStraight)
	case DoubleStraightLength:
		interps = search(DoubleStraight, reals, wilds, isDoubleStraight)
	}

	return newGuess(interps)
}

// split separates the real cards from the wildcards
// wildcards are ordered wildLow first so that assignments are canonical
func split(cards []*deck.Card) (reals, wilds []*deck.Card) {
	for _, card := range cards {
		if card.IsWild {
			wilds = append(wilds, card)
		} else {
			reals = append(reals, card)
		}
	}

	sort.SliceStable(wilds, func(i, j int) bool {
		return wilds[i].Suit == deck.WildLow && wilds[j].Suit != deck.WildLow
	})

	return reals, wilds
}

func single(card *deck.Card) []*Interpretation {
	return []*Interpretation{newInterpretation(Single, card.Rank, []*deck.Card{card})}
}

// sameRank handles pairs, triplets and quads: every wildcard adopts the one real rank
func sameRank(shape Shape, reals, wilds []*deck.Card) []*Interpretation {
	if len(reals) == 0 {
		return nil
	}

	rank := reals[0].Rank
	for _, card := range reals {
		if card.Rank != rank {
			return nil
		}
	}

	cards := append([]*deck.Card{}, reals...)
	for _, wild := range wilds {
		cards = append(cards, wild.Pinned(rank))
	}

	return []*Interpretation{newInterpretation(shape, rank, cards)}
}

// validator reports whether the ranks form the shape and, if so, its strength
type validator func(ranks []int) (strength int, ok bool)

// search tries every rank for every wildcard and keeps each assignment that validates
// With two wildcards only assignments where wildLow takes the lower (or equal) rank are tried,
// the mirrored assignment is the same play.
func search(shape Shape, reals, wilds []*deck.Card, valid validator) []*Interpretation {
	ranks := make([]int, 0, len(reals)+len(wilds))
	for _, card := range reals {
		ranks = append(ranks, card.Rank)
	}

	try := func(assigned ...int) *Interpretation {
		all := append(append([]int{}, ranks...), assigned...)
		strength, ok := valid(all)
		if !ok {
			return nil
		}

		cards := append([]*deck.Card{}, reals...)
		for i, wild := range wilds {
			cards = append(cards, wild.Pinned(assigned[i]))
		}

		return newInterpretation(shape, strength, cards)
	}

	var interps []*Interpretation
	switch len(wilds) {
	case 0:
		if interp := try(); interp != nil {
			interps = append(interps, interp)
		}
	case 1:
		for r := deck.LowRank; r <= deck.HighRank; r++ {
			if interp := try(r); interp != nil {
				interps = append(interps, interp)
			}
		}
	case 2:
		for r1 := deck.LowRank; r1 <= deck.HighRank; r1++ {
			for r2 := r1; r2 <= deck.HighRank; r2++ {
				if interp := try(r1, r2); interp != nil {
					interps = append(interps, interp)
				}
			}
		}
	}

	return uniqueByStrength(interps)
}

// uniqueByStrength keeps the first interpretation found for each strength
func uniqueByStrength(interps []*Interpretation) []*Interpretation {
	seen := make(map[int]bool)
	unique := make([]*Interpretation, 0, len(interps))
	for _, interp := range interps {
		if seen[interp.Strength] {
			continue
		}

		seen[interp.Strength] = true
		unique = append(unique, interp)
	}

	return unique
}

func sortedRanks(ranks []int) []int {
	sorted := append([]int{}, ranks...)
	sort.Ints(sorted)
	return sorted
}

// isStraight requires five consecutive ranks without wrapping past the highest rank
func isStraight(ranks []int) (int, bool) {
	if len(ranks) != StraightLength {
		return 0, false
	}

	sorted := sortedRanks(ranks)
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] != 1 {
			return 0, false
		}
	}

	return sorted[0], true
}

// isDoubleStraight requires five consecutive ranks, each exactly twice
func isDoubleStraight(ranks []int) (int, bool) {
	if len(ranks) != DoubleStraightLength {
		return 0, false
	}

	sorted := sortedRanks(ranks)
	for i := 0; i < len(sorted); i += 2 {
		if sorted[i] != sorted[i+1] {
			return 0, false
		}

		if i > 0 && sorted[i]-sorted[i-2] != 1 {
			return 0, false
		}
	}

	return sorted[0], true
}
