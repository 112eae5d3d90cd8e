// Package sim animates the warehouse tasks: conveyors, robotic arms and
// containers, with stochastic robot mistakes.
package sim

import (
	"math"
	"time"

	"github.com/verte-zerg/wsim/internal/model"
)

// Scene geometry, in belt pixels.
const (
	TickInterval = 16 * time.Millisecond

	BeltLength  = 600.0
	BeltSpeed   = 120.0
	StripeWidth = 40.0

	GripX        = 420.0
	GripWindow   = 18.0
	GripCooldown = 120 * time.Millisecond

	FadeDuration = 2 * time.Second
)

// Item is a box travelling on a belt.
type Item struct {
	ID    int
	Color model.Color
	X     float64
	Task  model.Task
}

// Conveyor moves items left to right at constant speed.
type Conveyor struct {
	task   model.Task
	items  []*Item
	phase  float64
	nextID int
}

func newConveyor(task model.Task) *Conveyor {
	return &Conveyor{task: task}
}

// Spawn places a new item at the left edge.
func (c *Conveyor) Spawn(color model.Color) *Item {
	c.nextID++
	item := &Item{ID: c.nextID, Color: color, Task: c.task}
	c.items = append(c.items, item)
	return item
}

// Advance moves every item and returns those that ran off the right edge.
func (c *Conveyor) Advance(dt time.Duration) []*Item {
	step := BeltSpeed * dt.Seconds()
	c.phase = math.Mod(c.phase+step, StripeWidth)
	var runOff []*Item
	kept := c.items[:0]
	for _, item := range c.items {
		item.X += step
		if item.X > BeltLength {
			runOff = append(runOff, item)
			continue
		}
		kept = append(kept, item)
	}
	for i := len(kept); i < len(c.items); i++ {
		c.items[i] = nil
	}
	c.items = kept
	return runOff
}

// InGripWindow returns the index of the first item inside the grip window,
// or -1.
func (c *Conveyor) InGripWindow() int {
	for i, item := range c.items {
		if math.Abs(item.X-GripX) <= GripWindow {
			return i
		}
	}
	return -1
}

// Take removes and returns the item at index i.
func (c *Conveyor) Take(i int) *Item {
	item := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	return item
}

// Len returns the number of items on the belt.
func (c *Conveyor) Len() int {
	return len(c.items)
}

// Items returns copies of the items on the belt.
func (c *Conveyor) Items() []Item {
	out := make([]Item, len(c.items))
	for i, item := range c.items {
		out[i] = *item
	}
	return out
}

// Phase is the belt stripe offset in [0, StripeWidth).
func (c *Conveyor) Phase() float64 {
	return c.phase
}
