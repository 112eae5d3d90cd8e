package sim

import "github.com/verte-zerg/wsim/internal/model"

// EventKind classifies something that happened on a task line.
type EventKind int

const (
	EventSpawned EventKind = iota
	EventGripped
	EventCommitted
	EventMissed
	EventFaded
	EventCorrected
)

func (k EventKind) String() string {
	switch k {
	case EventSpawned:
		return "spawned"
	case EventGripped:
		return "gripped"
	case EventCommitted:
		return "committed"
	case EventMissed:
		return "missed"
	case EventFaded:
		return "faded"
	case EventCorrected:
		return "corrected"
	default:
		return "unknown"
	}
}

// Event is emitted by a driver tick or click. Target is the container index
// the event concerns; Count is the container count where relevant.
type Event struct {
	Task   model.Task
	Kind   EventKind
	Color  model.Color
	Error  bool
	Target int
	Count  int
}

// Accounting reports whether the event changes the task tally.
func (e Event) Accounting() bool {
	return e.Kind == EventCommitted || e.Kind == EventCorrected
}
