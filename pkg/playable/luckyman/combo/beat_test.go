package combo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"luckyman-server/pkg/deck"
)

func TestInterpretation_Beats(t *testing.T) {
	tests := []struct {
		top       string
		candidate string
		beats     bool
	}{
		{"5c", "6c", true},
		{"5c", "5d", false},
		{"6c", "5d", false},
		{"5c", "3c,3d", false},
		{"5c", "3c,3d,3h", true},
		{"5c", "3c,3d,3h,3s", true},
		{"5c", "3c,4d,5h,6s,7c", false},
		{"5c,5d", "6c,6d", true},
		{"5c,5d", "2c,2d,2h", true},
		{"5c,5d", "2c,2d,2h,2s", true},
		{"5c,5d", "13c", false},
		{"5c,5d,5h", "2c,2d,2h,2s", true},
		{"5c,5d,5h", "6c,6d,6h", true},
		{"5c,5d,5h", "13c,13d", false},
		{"5c,5d,5h,5s", "6c,6d,6h,6s", true},
		{"5c,5d,5h,5s", "13c,13d,13h", false},
		{"2c,3d,4h,5s,6c", "3c,4d,5h,6s,7c", true},
		{"2c,3d,4h,5s,6c", "2d,3c,4s,5h,6d", false},
		{"2c,3d,4h,5s,6c", "13c,13d,13h,13s", false},
		{"2c,3d,4h,5s,6c", "2c,2d,3c,3d,4c,4d,5c,5d,6c,6d", false},
		{"2c,2d,3c,3d,4c,4d,5c,5d,6c,6d", "3c,3d,4c,4d,5c,5d,6c,6d,7c,7d", true},
		{"2c,2d,3c,3d,4c,4d,5c,5d,6c,6d", "3c,4d,5h,6s,7c", false},
	}

	for _, test := range tests {
		top := classify(test.top).Best()
		candidate := classify(test.candidate).Best()
		assert.Equal(t, test.beats, candidate.Beats(top), "%s on %s", test.candidate, test.top)
	}
}

func TestInterpretation_BeatsEmptyTable(t *testing.T) {
	assert.True(t, classify("1c").Best().Beats(nil))
	assert.True(t, classify("!l,!h").Best().Beats(nil))

	var nilInterp *Interpretation
	assert.False(t, nilInterp.Beats(nil))
}

func TestBeats_BombDominance(t *testing.T) {
	bomb := classify("!l,!h")
	for _, top := range []string{
		"13c",
		"13c,13d",
		"13c,13d,13h",
		"13c,13d,13h,13s",
		"9c,10d,11h,12s,13c",
		"9c,9d,10c,10d,11c,11d,12c,12d,13c,13d",
	} {
		legal, resolved := Beats(classify(top), bomb)
		assert.True(t, legal, top)
		assert.Equal(t, Bomb, resolved.Shape)

		// nothing beats a bomb
		legal, resolved = Beats(bomb, classify(top))
		assert.False(t, legal, top)
		assert.Nil(t, resolved)
	}
}

func TestBeats_HighestRankCeiling(t *testing.T) {
	top := classify("13c")

	for _, candidate := range []string{"13d", "13h", "12s", "1c", "13d,13h"} {
		legal, _ := Beats(top, classify(candidate))
		assert.False(t, legal, candidate)
	}

	for _, candidate := range []string{"1c,1d,1h", "1c,1d,!l", "1c,1d,1h,1s"} {
		legal, _ := Beats(top, classify(candidate))
		assert.True(t, legal, candidate)
	}
}

func TestBeats_ResolvesWildcards(t *testing.T) {
	a := assert.New(t)

	candidate := classify("2c,3d,4h,5s,!h")

	legal, resolved := Beats(nil, candidate)
	a.True(legal)
	a.Equal(1, len(resolved.Interpretations))
	a.Equal(2, resolved.Strength)
	a.Equal(6, resolved.Best().WildRanks()[deck.WildHigh])

	// the low interpretation is strong enough to beat this table
	legal, resolved = Beats(classify("1c,2d,3h,4s,5c"), candidate)
	a.True(legal)
	a.Equal(2, resolved.Strength)

	// neither interpretation beats a straight starting at 2
	legal, resolved = Beats(classify("2d,3h,4s,5c,6d"), candidate)
	a.False(legal)
	a.Nil(resolved)
}

func TestBeats_Invalid(t *testing.T) {
	legal, resolved := Beats(nil, classify("5c,6d"))
	assert.False(t, legal)
	assert.Nil(t, resolved)

	legal, resolved = Beats(nil, nil)
	assert.False(t, legal)
	assert.Nil(t, resolved)

	// an invalid table top is treated as an empty table
	legal, resolved = Beats(classify("5c,6d"), classify("3c"))
	assert.True(t, legal)
	assert.Equal(t, Single, resolved.Shape)
}

func TestShape_Text(t *testing.T) {
	b, err := DoubleStraight.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "doubleStraight", string(b))

	var s Shape
	assert.NoError(t, s.UnmarshalText([]byte("bomb")))
	assert.Equal(t, Bomb, s)
	assert.Error(t, s.UnmarshalText([]byte("flush")))
	assert.Panics(t, func() { _ = Shape(99).String() })
}
