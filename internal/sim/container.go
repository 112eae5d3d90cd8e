package sim

import (
	"time"

	"github.com/verte-zerg/wsim/internal/model"
)

// Variant describes a packaging mis-capacity error.
type Variant int

const (
	VariantNone Variant = iota
	VariantUnderfill
	VariantOverfill
)

func (v Variant) String() string {
	switch v {
	case VariantUnderfill:
		return "underfill"
	case VariantOverfill:
		return "overfill"
	default:
		return ""
	}
}

// Container is a sorting bin or a packaging box. Bins have zero capacity.
// Count never exceeds a box's Capacity; an overfilled box reports the
// surplus in Extra.
type Container struct {
	Color         model.Color
	Capacity      int
	Count         int
	Extra         int
	Error         bool
	Variant       Variant
	Fixed         bool
	Opacity       float64
	PendingErrors int

	sealed      bool
	fading      bool
	fadeElapsed time.Duration
}

func newBin(color model.Color) *Container {
	return &Container{Color: color, Opacity: 1}
}

func newBox(capacity int) *Container {
	return &Container{Capacity: capacity, Opacity: 1}
}

// Sealed reports whether a packaging box no longer accepts items.
func (c *Container) Sealed() bool {
	return c.sealed
}

// Fading reports whether the box is in its fade-out phase.
func (c *Container) Fading() bool {
	return c.fading
}

func (c *Container) startFade() {
	c.sealed = true
	c.fading = true
	c.fadeElapsed = 0
}

// advanceFade returns true once the fade is complete.
func (c *Container) advanceFade(dt time.Duration) bool {
	if !c.fading {
		return false
	}
	c.fadeElapsed += dt
	if c.fadeElapsed >= FadeDuration {
		c.Opacity = 0
		return true
	}
	c.Opacity = 1 - float64(c.fadeElapsed)/float64(FadeDuration)
	return false
}
