package services

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// negIDPrefix separates the date part from the random suffix.
const negIDPrefix = "NEG"

// NegIDGenerator builds display codes of the form YYMMDDNEG#####.
// Uniqueness is enforced by the database; callers retry on collision.
type NegIDGenerator struct {
	Now  func() time.Time
	IntN func(n int) int
}

func NewNegIDGenerator() *NegIDGenerator {
	return &NegIDGenerator{Now: time.Now, IntN: rand.IntN}
}

func (g *NegIDGenerator) Next() string {
	return fmt.Sprintf("%s%s%05d", g.Now().Format("060102"), negIDPrefix, g.IntN(100000))
}
