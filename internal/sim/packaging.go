package sim

import (
	"time"

	"github.com/verte-zerg/wsim/internal/generator"
	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
)

// RowSize is the number of packaging boxes on screen.
const RowSize = 4

type packer struct {
	*line
	dist params.CapacityDist
	row  []*Container
}

// NewPackaging returns the packaging driver. Capacities are drawn from the
// configured distribution when the row is built and for every replacement.
func NewPackaging(p params.Packaging, gen *generator.Generator) Driver {
	p = p.Normalize()
	pk := &packer{
		line: newLine(model.TaskPackaging, gen, p.Pace, float64(p.ErrorRate), params.Palette(4)),
		dist: p.Capacity,
	}
	for i := 0; i < RowSize; i++ {
		pk.row = append(pk.row, newBox(gen.Capacity(pk.dist)))
	}
	return pk
}

// active is the leftmost box still accepting items, or -1.
func (p *packer) active() int {
	for i, c := range p.row {
		if !c.sealed {
			return i
		}
	}
	return -1
}

func (p *packer) Tick(dt time.Duration) []Event {
	events := p.advance(dt, func() bool { return p.active() >= 0 }, p.place)
	if p.paused {
		return events
	}
	for i := 0; i < len(p.row); i++ {
		c := p.row[i]
		if !c.advanceFade(dt) {
			continue
		}
		events = append(events, Event{Task: p.task, Kind: EventFaded, Target: i, Count: c.Count})
		p.row = append(p.row[:i], p.row[i+1:]...)
		p.row = append(p.row, newBox(p.gen.Capacity(p.dist)))
		i--
	}
	return events
}

func (p *packer) place(item *Item) []Event {
	idx := p.active()
	if idx < 0 {
		p.tally.RecordCommit(false)
		return []Event{{Task: p.task, Kind: EventCommitted, Color: item.Color, Target: -1}}
	}
	c := p.row[idx]
	c.Count++
	isError := false
	if c.Count >= c.Capacity {
		isError = p.gen.Bernoulli(p.errorRate)
		if isError {
			c.sealed = true
			c.Error = true
			if p.gen.Intn(2) == 0 {
				c.Variant = VariantUnderfill
				c.Count = c.Capacity - 1
			} else {
				c.Variant = VariantOverfill
				c.Extra = 1
			}
		} else {
			c.startFade()
		}
	}
	p.tally.RecordCommit(isError)
	return []Event{{Task: p.task, Kind: EventCommitted, Color: item.Color, Error: isError, Target: idx, Count: c.Count}}
}

// Click fixes an errored box: it is topped to capacity, marked fixed and
// starts fading.
func (p *packer) Click(target int) (Event, bool) {
	if !p.clickable() || target < 0 || target >= len(p.row) {
		return Event{}, false
	}
	c := p.row[target]
	if !c.Error || !p.tally.RecordCorrection() {
		return Event{}, false
	}
	c.Count = c.Capacity
	c.Extra = 0
	c.Error = false
	c.Variant = VariantNone
	c.Fixed = true
	c.startFade()
	return Event{Task: p.task, Kind: EventCorrected, Target: target, Count: c.Count}, true
}

func (p *packer) Scene() Scene {
	return p.scene(p.row, p.active())
}
