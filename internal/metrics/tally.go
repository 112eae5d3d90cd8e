// Package metrics turns task tallies into snapshots and keeps the
// Observer's rolling series.
package metrics

import (
	"math"

	"github.com/verte-zerg/wsim/internal/model"
)

// Tally counts the outcomes of one task.
type Tally struct {
	Total         int
	Correct       int
	Errors        int
	Corrections   int
	DefectsMissed int
}

// RecordCommit counts a committed item.
func (t *Tally) RecordCommit(isError bool) {
	t.Total++
	if isError {
		t.Errors++
		return
	}
	t.Correct++
}

// RecordCorrection counts a user correction. It refuses corrections that
// would outnumber robot errors.
func (t *Tally) RecordCorrection() bool {
	if t.Corrections >= t.Errors {
		return false
	}
	t.Corrections++
	return true
}

// ErrorRate is robot_errors / total_committed, 0 when nothing was committed.
func (t Tally) ErrorRate() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Errors) / float64(t.Total)
}

// CorrectionRate is user_corrections / robot_errors, 0 when there were no
// errors.
func (t Tally) CorrectionRate() float64 {
	if t.Errors == 0 {
		return 0
	}
	return float64(t.Corrections) / float64(t.Errors)
}

// Snapshot builds the full snapshot for a task. Rates are percents rounded to
// one decimal.
func (t Tally) Snapshot(task model.Task) model.Snapshot {
	p := task.Prefix() + "_"
	s := model.Snapshot{
		p + model.MetricTotal:          float64(t.Total),
		p + model.MetricErrors:         float64(t.Errors),
		p + model.MetricCorrections:    float64(t.Corrections),
		p + model.MetricErrorRate:      Percent(t.ErrorRate()),
		p + model.MetricCorrectionRate: Percent(t.CorrectionRate()),
	}
	if task == model.TaskInspection {
		s[p+model.MetricDefectsMissed] = float64(t.DefectsMissed)
	}
	return s
}

// Percent converts a fraction to a percent rounded to one decimal.
func Percent(fraction float64) float64 {
	return math.Round(fraction*1000) / 10
}
