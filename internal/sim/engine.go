package sim

import (
	"time"

	"github.com/verte-zerg/wsim/internal/generator"
	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
)

// SnapshotFunc receives a full task snapshot after its tally changed.
type SnapshotFunc func(model.Snapshot)

// Engine owns the drivers of the active tasks and advances them together.
// It is not safe for concurrent use.
type Engine struct {
	seed       int64
	active     []model.Task
	params     params.Start
	drivers    []Driver
	running    bool
	paused     bool
	onSnapshot SnapshotFunc
}

// NewEngine returns an idle engine. Each driver derives its random stream
// from seed and the task's position, so runs are reproducible.
func NewEngine(seed int64) *Engine {
	return &Engine{seed: seed}
}

// OnSnapshot registers the snapshot callback.
func (e *Engine) OnSnapshot(fn SnapshotFunc) {
	e.onSnapshot = fn
}

// SetActive records the Observer's active task list. It takes effect on the
// next Start when the start parameters carry no list of their own.
func (e *Engine) SetActive(tasks []model.Task) {
	e.active = params.NormalizeActive(tasks)
}

// Active returns the active task list.
func (e *Engine) Active() []model.Task {
	return append([]model.Task(nil), e.active...)
}

// Start replaces all drivers with fresh ones built from p and starts them.
// Every started task reports a zero snapshot.
func (e *Engine) Start(p params.Start) {
	p = p.Normalize()
	if len(p.Active) == 0 {
		p.Active = e.Active()
	} else {
		e.active = append([]model.Task(nil), p.Active...)
	}
	e.params = p
	e.drivers = e.drivers[:0]
	for i, task := range model.AllTasks {
		if !p.IsActive(task) {
			continue
		}
		d := newDriver(task, p, generator.Derive(e.seed, i))
		d.Start()
		e.drivers = append(e.drivers, d)
	}
	e.running = true
	e.paused = false
	for _, d := range e.drivers {
		e.emit(d)
	}
}

func newDriver(task model.Task, p params.Start, gen *generator.Generator) Driver {
	switch task {
	case model.TaskPackaging:
		return NewPackaging(p.Packaging, gen)
	case model.TaskInspection:
		return NewInspection(p.Inspection, gen)
	default:
		return NewSorting(p.Sorting, gen)
	}
}

// Stop halts spawning on every driver. Drivers keep ticking so arms park.
func (e *Engine) Stop() {
	for _, d := range e.drivers {
		d.Stop()
	}
	e.running = false
	e.paused = false
	for _, d := range e.drivers {
		d.SetPaused(false)
	}
}

// TogglePause freezes or resumes every driver. It is a no-op when stopped.
func (e *Engine) TogglePause() bool {
	if !e.running {
		return false
	}
	e.paused = !e.paused
	for _, d := range e.drivers {
		d.SetPaused(e.paused)
	}
	return true
}

// Running reports whether a session is live on this engine.
func (e *Engine) Running() bool {
	return e.running
}

// Paused reports whether the engine is frozen.
func (e *Engine) Paused() bool {
	return e.paused
}

// Params returns the normalized parameters of the current session.
func (e *Engine) Params() params.Start {
	return e.params
}

// Tick advances every driver by dt. A snapshot is emitted once per driver
// whose tally changed during the tick.
func (e *Engine) Tick(dt time.Duration) []Event {
	var events []Event
	for _, d := range e.drivers {
		evs := d.Tick(dt)
		changed := false
		for _, ev := range evs {
			if ev.Accounting() {
				changed = true
			}
		}
		events = append(events, evs...)
		if changed {
			e.emit(d)
		}
	}
	return events
}

// Click forwards a correction click to the task's driver.
func (e *Engine) Click(task model.Task, target int) (Event, bool) {
	d, ok := e.Driver(task)
	if !ok {
		return Event{}, false
	}
	ev, ok := d.Click(target)
	if ok {
		e.emit(d)
	}
	return ev, ok
}

// Driver returns the driver for a task, if it is running on this engine.
func (e *Engine) Driver(task model.Task) (Driver, bool) {
	for _, d := range e.drivers {
		if d.Task() == task {
			return d, true
		}
	}
	return nil, false
}

// Scenes returns render copies of every driver in task order.
func (e *Engine) Scenes() []Scene {
	out := make([]Scene, 0, len(e.drivers))
	for _, d := range e.drivers {
		out = append(out, d.Scene())
	}
	return out
}

func (e *Engine) emit(d Driver) {
	if e.onSnapshot == nil {
		return
	}
	e.onSnapshot(d.Tally().Snapshot(d.Task()))
}
