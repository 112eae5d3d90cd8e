// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// Task identifies one of the three warehouse tasks.
type Task string

const (
	TaskSorting    Task = "sorting"
	TaskPackaging  Task = "packaging"
	TaskInspection Task = "inspection"
)

// AllTasks lists tasks in display and tick order.
var AllTasks = []Task{TaskSorting, TaskPackaging, TaskInspection}

// Prefix returns the snapshot key prefix for the task.
func (t Task) Prefix() string {
	switch t {
	case TaskSorting:
		return "sort"
	case TaskPackaging:
		return "pack"
	case TaskInspection:
		return "insp"
	default:
		return string(t)
	}
}

// Title returns a display label.
func (t Task) Title() string {
	switch t {
	case TaskSorting:
		return "Sorting"
	case TaskPackaging:
		return "Packaging"
	case TaskInspection:
		return "Inspection"
	default:
		return string(t)
	}
}

// ParseTask accepts a task name or its snapshot prefix.
func ParseTask(s string) (Task, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllTasks {
		if s == string(t) || s == t.Prefix() {
			return t, true
		}
	}
	return "", false
}

// TaskForPrefix maps a snapshot key prefix back to its task.
func TaskForPrefix(prefix string) (Task, bool) {
	for _, t := range AllTasks {
		if t.Prefix() == prefix {
			return t, true
		}
	}
	return "", false
}

// Color tags a box or a container.
type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Purple Color = "purple"
	Orange Color = "orange"
	Teal   Color = "teal"
)

// Snapshot is the flat metric mapping sent User -> Observer.
// Keys are "{prefix}_{metric}", e.g. "sort_total".
type Snapshot map[string]float64

// Metric names carried for every task.
const (
	MetricTotal          = "total"
	MetricErrors         = "errors"
	MetricCorrections    = "corrections"
	MetricErrorRate      = "error_rate"
	MetricCorrectionRate = "correction_rate"
	MetricDefectsMissed  = "defects_missed"
)

// MetricNames lists the per-task metric keys in a stable order.
var MetricNames = []string{MetricTotal, MetricErrors, MetricCorrections, MetricErrorRate, MetricCorrectionRate}

// TaskMetrics is a parsed per-task view of a snapshot.
type TaskMetrics struct {
	Task           Task
	Total          int
	Errors         int
	Corrections    int
	ErrorRate      float64
	CorrectionRate float64
	DefectsMissed  int
}

// EventRow is one line of the session event log.
type EventRow struct {
	Timestamp string
	Task      Task
	Metric    string
	Count     float64
}

// Outcome records how a session ended.
type Outcome string

const (
	OutcomeComplete Outcome = "complete"
	OutcomeStopped  Outcome = "stopped"
)

// SessionRecord captures a finished session for history.
type SessionRecord struct {
	ID           string
	ScenarioName string
	StartedAt    time.Time
	EndedAt      time.Time
	Outcome      Outcome
	DurationMs   int64
	LogPath      string
}
