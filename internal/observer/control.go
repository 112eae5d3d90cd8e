// Package observer holds the Observer station's non-UI logic: the control
// surface, session lifecycle, metrics intake and history.
package observer

import (
	"sync"

	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
	"github.com/verte-zerg/wsim/internal/scenario"
)

// EventKind identifies a control event.
type EventKind int

const (
	TasksChanged EventKind = iota
	StartPressed
	CompletePressed
	StopPressed
	PausePressed
)

func (k EventKind) String() string {
	switch k {
	case TasksChanged:
		return "tasks_changed"
	case StartPressed:
		return "start_pressed"
	case CompletePressed:
		return "complete_pressed"
	case StopPressed:
		return "stop_pressed"
	case PausePressed:
		return "pause_pressed"
	default:
		return "unknown"
	}
}

// Event is emitted by the control surface. Active is set for TasksChanged.
type Event struct {
	Kind   EventKind
	Active []model.Task
}

// TaskParams is the editable parameter view of one task.
type TaskParams struct {
	Task      model.Task
	Enabled   bool
	Pace      params.Pace
	ErrorRate float64
	BinCount  int
	Capacity  params.CapacityDist
}

// Control is the Observer's parameter panel. Getters are safe to call from
// worker goroutines; events are delivered synchronously to subscribers.
type Control struct {
	mu        sync.RWMutex
	scenario  scenario.Scenario
	timestamp func() string

	subs []func(Event)
}

// NewControl returns a control holding s.
func NewControl(s scenario.Scenario) *Control {
	return &Control{scenario: s.Normalize(), timestamp: func() string { return "00:00" }}
}

// Subscribe registers an event handler.
func (c *Control) Subscribe(fn func(Event)) {
	c.subs = append(c.subs, fn)
}

func (c *Control) emit(ev Event) {
	for _, fn := range c.subs {
		fn(ev)
	}
}

// SetClock wires the session clock used by Timestamp.
func (c *Control) SetClock(fn func() string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timestamp = fn
}

// Scenario returns the current scenario.
func (c *Control) Scenario() scenario.Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scenario
}

// ActiveTasks lists the enabled tasks.
func (c *Control) ActiveTasks() []model.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scenario.Active()
}

// ParamsForTask returns the parameters of one task.
func (c *Control) ParamsForTask(t model.Task) TaskParams {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.scenario
	switch t {
	case model.TaskSorting:
		return TaskParams{Task: t, Enabled: s.Sorting.Enabled, Pace: s.Sorting.Pace, ErrorRate: float64(s.Sorting.ErrorRate), BinCount: s.Sorting.BinCount}
	case model.TaskPackaging:
		return TaskParams{Task: t, Enabled: s.Packaging.Enabled, Pace: s.Packaging.Pace, ErrorRate: float64(s.Packaging.ErrorRate), Capacity: s.Packaging.Capacity}
	default:
		return TaskParams{Task: t, Enabled: s.Inspection.Enabled, Pace: s.Inspection.Pace, ErrorRate: float64(s.Inspection.ErrorRate)}
	}
}

// SoundsEnabled returns the sound flags.
func (c *Control) SoundsEnabled() params.Sounds {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scenario.Sounds
}

// Timestamp returns the session clock display.
func (c *Control) Timestamp() string {
	c.mu.RLock()
	fn := c.timestamp
	c.mu.RUnlock()
	return fn()
}

// StartParams builds the start payload from the current scenario.
func (c *Control) StartParams() params.Start {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scenario.StartParams()
}

// Replace swaps in a new scenario and reports the active list.
func (c *Control) Replace(s scenario.Scenario) {
	c.mu.Lock()
	c.scenario = s.Normalize()
	active := c.scenario.Active()
	c.mu.Unlock()
	c.emit(Event{Kind: TasksChanged, Active: active})
}

// Update applies fn to a copy of the scenario. A change of the active list
// is reported.
func (c *Control) Update(fn func(*scenario.Scenario)) {
	c.mu.Lock()
	before := c.scenario.Active()
	next := c.scenario
	fn(&next)
	c.scenario = next.Normalize()
	after := c.scenario.Active()
	c.mu.Unlock()
	if !sameTasks(before, after) {
		c.emit(Event{Kind: TasksChanged, Active: after})
	}
}

// ToggleTask flips a task's enabled flag.
func (c *Control) ToggleTask(t model.Task) {
	c.Update(func(s *scenario.Scenario) {
		on := false
		switch t {
		case model.TaskSorting:
			on = !s.Sorting.Enabled
		case model.TaskPackaging:
			on = !s.Packaging.Enabled
		case model.TaskInspection:
			on = !s.Inspection.Enabled
		}
		s.SetEnabled(t, on)
	})
}

// PressStart emits start_pressed.
func (c *Control) PressStart() { c.emit(Event{Kind: StartPressed}) }

// PressComplete emits complete_pressed.
func (c *Control) PressComplete() { c.emit(Event{Kind: CompletePressed}) }

// PressStop emits stop_pressed.
func (c *Control) PressStop() { c.emit(Event{Kind: StopPressed}) }

// PressPause emits pause_pressed.
func (c *Control) PressPause() { c.emit(Event{Kind: PausePressed}) }

func sameTasks(a, b []model.Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
