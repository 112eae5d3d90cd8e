package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/wsim/internal/model"
)

func fixture() ([]model.SessionRecord, map[string][]model.TaskMetrics) {
	end := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	sessions := []model.SessionRecord{
		{ID: "s1", ScenarioName: "warmup", EndedAt: end, Outcome: model.OutcomeComplete, DurationMs: 60000},
		{ID: "s2", EndedAt: end.Add(time.Hour), Outcome: model.OutcomeStopped, DurationMs: 30500},
	}
	byID := map[string][]model.TaskMetrics{
		"s1": {
			{Task: model.TaskSorting, Total: 10, Errors: 2, Corrections: 1, ErrorRate: 20, CorrectionRate: 50},
			{Task: model.TaskInspection, Total: 4, Errors: 1, ErrorRate: 25, DefectsMissed: 1},
		},
		"s2": {
			{Task: model.TaskSorting, Total: 5, Errors: 0, ErrorRate: 0},
		},
	}
	return sessions, byID
}

func TestSummarize(t *testing.T) {
	sessions, byID := fixture()
	sums := Summarize(sessions, byID)
	if len(sums) != 2 {
		t.Fatalf("expected sorting and inspection, got %d", len(sums))
	}
	sorting := sums[0]
	if sorting.Task != model.TaskSorting || sorting.Sessions != 2 || sorting.Total != 15 {
		t.Fatalf("unexpected sorting summary: %+v", sorting)
	}
	if sorting.MeanErrorRate != 10 || sorting.MeanCorrectionRate != 25 {
		t.Fatalf("unexpected means: %+v", sorting)
	}
	if sums[1].DefectsMissed != 1 {
		t.Fatalf("expected defects missed carried, got %+v", sums[1])
	}
}

func TestRenderHistory(t *testing.T) {
	sessions, byID := fixture()
	var buf bytes.Buffer
	if err := RenderHistory(&buf, sessions, byID); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"warmup", "10/2/1", "5/0/0", "stopped", "31s", "Correction %", "10.0%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := RenderHistory(&buf, nil, nil); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No sessions found." {
		t.Fatalf("unexpected empty output %q", buf.String())
	}
}

func TestErrorRateTrendAndRender(t *testing.T) {
	sessions, byID := fixture()
	line := ErrorRateTrend(sessions, byID, model.TaskInspection)
	if len(line.Points) != 1 || line.Points[0].X != 1 || line.Points[0].Y != 25 {
		t.Fatalf("unexpected trend %+v", line)
	}
	var buf bytes.Buffer
	if err := RenderTrend(&buf, sessions, byID, 60, 6, nil); err != nil {
		t.Fatalf("render trend: %v", err)
	}
	if !strings.Contains(buf.String(), "Sorting (solid)") {
		t.Fatalf("expected legend, got:\n%s", buf.String())
	}
}
