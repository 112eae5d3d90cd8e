package metrics

import (
	"time"

	"github.com/verte-zerg/wsim/internal/eventlog"
	"github.com/verte-zerg/wsim/internal/model"
)

// Board is the Observer side of the pipeline: latest labels per task, the
// rolling series and the session log rows.
type Board struct {
	labels map[model.Task]model.TaskMetrics
	series map[model.Task]*Series
	latest model.Snapshot
	log    *eventlog.Buffer
}

// NewBoard returns a board appending to log. A nil log disables row capture.
func NewBoard(log *eventlog.Buffer) *Board {
	b := &Board{log: log}
	b.Reset()
	return b
}

// SetLog swaps the row sink, e.g. when a new session starts.
func (b *Board) SetLog(log *eventlog.Buffer) {
	b.log = log
}

// Reset clears labels and series.
func (b *Board) Reset() {
	b.labels = map[model.Task]model.TaskMetrics{}
	b.series = map[model.Task]*Series{}
	b.latest = model.Snapshot{}
	for _, t := range model.AllTasks {
		b.series[t] = &Series{}
		b.labels[t] = model.TaskMetrics{Task: t}
	}
}

// Apply folds one snapshot into the board. elapsed is the session clock and
// stamp its "mm:ss" display used for the log rows.
func (b *Board) Apply(s model.Snapshot, elapsed time.Duration, stamp string) {
	if len(s) == 0 {
		return
	}
	Merge(b.latest, s)
	for task, m := range Split(s) {
		b.labels[task] = m
		b.series[task].Append(elapsed.Seconds(), float64(m.Errors), float64(m.Corrections))
	}
	if b.log != nil {
		b.log.Append(Rows(s, stamp)...)
	}
}

// Label returns the latest metrics for a task.
func (b *Board) Label(t model.Task) model.TaskMetrics {
	return b.labels[t]
}

// Series returns the rolling series of a task.
func (b *Board) Series(t model.Task) *Series {
	if s, ok := b.series[t]; ok {
		return s
	}
	return &Series{}
}

// Latest returns a copy of the merged snapshot seen so far.
func (b *Board) Latest() model.Snapshot {
	out := make(model.Snapshot, len(b.latest))
	Merge(out, b.latest)
	return out
}
