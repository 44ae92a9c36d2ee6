package rng

import (
	"crypto/rand"
	"math/big"
)

// Crypto draws from crypto/rand and is used to shuffle live decks
type Crypto struct{}

// Intn returns a uniform number in [0, n)
// It panics if n <= 0, like math/rand
func (Crypto) Intn(n int) int {
	if n <= 0 {
		panic("rng: invalid argument to Intn")
	}

	b, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(b.Int64())
}
