package tests

import (
	"math/rand"
	"strings"
	"time"
)

type Randomizer struct {
	Float64 func() float64
	Bool    func() bool
	Intn    func(n int) int
}

func NewRandomizer() Randomizer {
	random := rand.New(rand.NewSource(time.Now().Unix())) //nolint:gosec // for tests

	return Randomizer{
		Float64: random.Float64,
		Bool:    func() bool { return random.Intn(2) == 0 }, //nolint:mnd // skip
		Intn:    random.Intn,
	}
}

// Pick returns a random element of values.
func (r Randomizer) Pick(values ...string) string {
	return values[r.Intn(len(values))]
}

// Perturb randomly changes letter case and pads with whitespace.
func (r Randomizer) Perturb(s string) string {
	var b strings.Builder

	if r.Bool() {
		b.WriteString(r.Pick(" ", "\t", "  "))
	}

	for _, ch := range s {
		if r.Bool() {
			b.WriteString(strings.ToUpper(string(ch)))
		} else {
			b.WriteString(strings.ToLower(string(ch)))
		}
	}

	if r.Bool() {
		b.WriteString(r.Pick(" ", "\n", "   "))
	}

	return b.String()
}
