package metrics

import (
	"sort"
	"strings"

	"github.com/verte-zerg/wsim/internal/model"
)

// Split groups a flat snapshot by task. Unknown keys are ignored.
func Split(s model.Snapshot) map[model.Task]model.TaskMetrics {
	out := map[model.Task]model.TaskMetrics{}
	for key, value := range s {
		task, metric, ok := splitKey(key)
		if !ok {
			continue
		}
		m := out[task]
		m.Task = task
		switch metric {
		case model.MetricTotal:
			m.Total = int(value)
		case model.MetricErrors:
			m.Errors = int(value)
		case model.MetricCorrections:
			m.Corrections = int(value)
		case model.MetricErrorRate:
			m.ErrorRate = value
		case model.MetricCorrectionRate:
			m.CorrectionRate = value
		case model.MetricDefectsMissed:
			m.DefectsMissed = int(value)
		default:
			continue
		}
		out[task] = m
	}
	return out
}

// Merge copies every key of src into dst.
func Merge(dst, src model.Snapshot) {
	for k, v := range src {
		dst[k] = v
	}
}

// Rows flattens a snapshot into event-log rows in stable key order.
func Rows(s model.Snapshot, stamp string) []model.EventRow {
	keys := make([]string, 0, len(s))
	for k := range s {
		if _, _, ok := splitKey(k); ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ti, mi, _ := splitKey(keys[i])
		tj, mj, _ := splitKey(keys[j])
		if ti != tj {
			return taskIndex(ti) < taskIndex(tj)
		}
		return metricIndex(mi) < metricIndex(mj)
	})
	rows := make([]model.EventRow, 0, len(keys))
	for _, k := range keys {
		task, _, _ := splitKey(k)
		rows = append(rows, model.EventRow{Timestamp: stamp, Task: task, Metric: k, Count: s[k]})
	}
	return rows
}

func splitKey(key string) (model.Task, string, bool) {
	prefix, metric, found := strings.Cut(key, "_")
	if !found {
		return "", "", false
	}
	task, ok := model.TaskForPrefix(prefix)
	if !ok {
		return "", "", false
	}
	return task, metric, true
}

func taskIndex(t model.Task) int {
	for i, a := range model.AllTasks {
		if a == t {
			return i
		}
	}
	return len(model.AllTasks)
}

func metricIndex(m string) int {
	for i, name := range model.MetricNames {
		if name == m {
			return i
		}
	}
	return len(model.MetricNames)
}
