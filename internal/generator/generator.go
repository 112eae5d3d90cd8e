// Package generator produces the random draws that drive the simulation.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
)

// Generator wraps a private random stream. It is not safe for concurrent use.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Derive returns an independent stream for the given index, stable for a
// given parent seed.
func Derive(seed int64, index int) *Generator {
	return NewSeeded(seed + int64(index)*17 + 99)
}

// SpawnInterval draws a rate uniformly from the pace range and returns 1/r.
func (g *Generator) SpawnInterval(p params.Pace) time.Duration {
	lo, hi := p.Range()
	r := lo + g.rnd.Float64()*(hi-lo)
	if r <= 0 {
		r = lo
	}
	return time.Duration(float64(time.Second) / r)
}

// Color picks a palette color uniformly.
func (g *Generator) Color(palette []model.Color) model.Color {
	if len(palette) == 0 {
		return ""
	}
	return palette[g.rnd.Intn(len(palette))]
}

// OtherColor picks uniformly among palette colors other than exclude.
func (g *Generator) OtherColor(palette []model.Color, exclude model.Color) model.Color {
	rest := make([]model.Color, 0, len(palette))
	for _, c := range palette {
		if c != exclude {
			rest = append(rest, c)
		}
	}
	if len(rest) == 0 {
		return exclude
	}
	return rest[g.rnd.Intn(len(rest))]
}

// Bernoulli returns true with probability p.
func (g *Generator) Bernoulli(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return g.rnd.Float64() < p
}

// Capacity draws a container capacity from the distribution.
func (g *Generator) Capacity(d params.CapacityDist) int {
	choices := d.Choices()
	return choices[g.rnd.Intn(len(choices))]
}

// Intn proxies rand.Intn.
func (g *Generator) Intn(n int) int {
	return g.rnd.Intn(n)
}
