package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/wsim/internal/metrics"
	"github.com/verte-zerg/wsim/internal/model"
)

// Summary aggregates one task across stored sessions.
type Summary struct {
	Task               model.Task
	Sessions           int
	Total              int
	Errors             int
	Corrections        int
	DefectsMissed      int
	MeanErrorRate      float64
	MeanCorrectionRate float64
}

// Summarize aggregates per-task metrics over sessions, in task order. Tasks
// that never ran are omitted.
func Summarize(sessions []model.SessionRecord, byID map[string][]model.TaskMetrics) []Summary {
	acc := map[model.Task]*Summary{}
	for _, s := range sessions {
		for _, m := range byID[s.ID] {
			sum, ok := acc[m.Task]
			if !ok {
				sum = &Summary{Task: m.Task}
				acc[m.Task] = sum
			}
			sum.Sessions++
			sum.Total += m.Total
			sum.Errors += m.Errors
			sum.Corrections += m.Corrections
			sum.DefectsMissed += m.DefectsMissed
			sum.MeanErrorRate += m.ErrorRate
			sum.MeanCorrectionRate += m.CorrectionRate
		}
	}
	var out []Summary
	for _, t := range model.AllTasks {
		sum, ok := acc[t]
		if !ok {
			continue
		}
		sum.MeanErrorRate = round1(sum.MeanErrorRate / float64(sum.Sessions))
		sum.MeanCorrectionRate = round1(sum.MeanCorrectionRate / float64(sum.Sessions))
		out = append(out, *sum)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RenderHistory prints the session table followed by per-task summaries.
func RenderHistory(w io.Writer, sessions []model.SessionRecord, byID map[string][]model.TaskMetrics) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	cols := []Column{textCol("Ended"), textCol("Scenario"), textCol("Outcome"), numCol("Duration")}
	for _, t := range model.AllTasks {
		cols = append(cols, numCol(t.Title()))
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		row := []string{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			orDash(s.ScenarioName),
			string(s.Outcome),
			(time.Duration(s.DurationMs) * time.Millisecond).Round(time.Second).String(),
		}
		tasks := map[model.Task]model.TaskMetrics{}
		for _, m := range byID[s.ID] {
			tasks[m.Task] = m
		}
		for _, t := range model.AllTasks {
			m, ok := tasks[t]
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, fmt.Sprintf("%d/%d/%d", m.Total, m.Errors, m.Corrections))
		}
		rows = append(rows, row)
	}
	lines := renderTable(cols, rows)
	lines = append(lines, "", "Task cells: total/errors/corrections", "")

	sumRows := [][]string{}
	for _, s := range Summarize(sessions, byID) {
		sumRows = append(sumRows, []string{
			s.Task.Title(),
			fmt.Sprintf("%d", s.Sessions),
			fmt.Sprintf("%d", s.Total),
			fmt.Sprintf("%d", s.Errors),
			fmt.Sprintf("%d", s.Corrections),
			fmt.Sprintf("%.1f%%", s.MeanErrorRate),
			fmt.Sprintf("%.1f%%", s.MeanCorrectionRate),
		})
	}
	lines = append(lines, renderTable([]Column{
		textCol("Task"), numCol("Sessions"), numCol("Items"), numCol("Errors"),
		numCol("Corrections"), numCol("Error %"), numCol("Correction %"),
	}, sumRows)...)
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ErrorRateTrend returns one point per session that ran task: x is the
// session's position, y its final error rate.
func ErrorRateTrend(sessions []model.SessionRecord, byID map[string][]model.TaskMetrics, task model.Task) Line {
	line := Line{Name: task.Title()}
	for i, s := range sessions {
		for _, m := range byID[s.ID] {
			if m.Task == task {
				line.Points = append(line.Points, Point{X: float64(i + 1), Y: m.ErrorRate})
			}
		}
	}
	return line
}

// RenderTrend plots per-task error rates across sessions.
func RenderTrend(w io.Writer, sessions []model.SessionRecord, byID map[string][]model.TaskMetrics, totalWidth, height int, paint Paint) error {
	var lines []Line
	maxY := 0.0
	for _, t := range model.AllTasks {
		l := ErrorRateTrend(sessions, byID, t)
		if len(l.Points) == 0 {
			continue
		}
		for _, p := range l.Points {
			maxY = math.Max(maxY, p.Y)
		}
		lines = append(lines, l)
	}
	if len(lines) == 0 {
		return nil
	}
	n := float64(len(sessions))
	axes := metrics.Axes{
		XMin:  1,
		XMax:  math.Max(n, 2),
		YMin:  0,
		YMax:  (math.Floor(maxY/metrics.YMajorTick) + 1) * metrics.YMajorTick,
		XTick: math.Max(1, math.Ceil(n/5)),
	}
	axes.YTick = math.Max(metrics.YMajorTick, math.Ceil(axes.YMax/4/metrics.YMajorTick)*metrics.YMajorTick)

	out := []string{"Error rate % by session"}
	out = append(out, Plot(lines, axes, PlotWidthFor(totalWidth), height, paint)...)
	out = append(out, Legend(lines, paint))
	_, err := fmt.Fprintln(w, strings.Join(out, "\n"))
	return err
}
