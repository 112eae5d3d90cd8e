package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wsim/internal/eventlog"
	"github.com/verte-zerg/wsim/internal/model"
)

func TestTallyRatesAndSnapshotKeys(t *testing.T) {
	var tally Tally
	tally.RecordCommit(false)
	tally.RecordCommit(true)
	tally.RecordCommit(false)
	require.True(t, tally.RecordCorrection())
	assert.False(t, tally.RecordCorrection(), "corrections must not exceed errors")

	assert.Equal(t, tally.Total, tally.Correct+tally.Errors)
	s := tally.Snapshot(model.TaskSorting)
	assert.Equal(t, model.Snapshot{
		"sort_total":           3,
		"sort_errors":          1,
		"sort_corrections":     1,
		"sort_error_rate":      33.3,
		"sort_correction_rate": 100,
	}, s)
}

func TestTallyZeroDenominators(t *testing.T) {
	var tally Tally
	assert.Zero(t, tally.ErrorRate())
	assert.Zero(t, tally.CorrectionRate())
	tally.RecordCommit(false)
	assert.Zero(t, tally.CorrectionRate())
	s := tally.Snapshot(model.TaskInspection)
	assert.Contains(t, s, "insp_defects_missed")
	assert.Equal(t, 0.0, s["insp_correction_rate"])
}

func TestSplitAndRows(t *testing.T) {
	s := model.Snapshot{
		"pack_total":           6,
		"pack_errors":          1,
		"pack_corrections":     0,
		"pack_error_rate":      16.7,
		"pack_correction_rate": 0,
		"bogus_total":          4,
		"nounderscore":         1,
	}
	split := Split(s)
	require.Len(t, split, 1)
	m := split[model.TaskPackaging]
	assert.Equal(t, 6, m.Total)
	assert.Equal(t, 1, m.Errors)
	assert.Equal(t, 16.7, m.ErrorRate)

	rows := Rows(s, "00:42")
	require.Len(t, rows, 5)
	assert.Equal(t, "pack_total", rows[0].Metric)
	assert.Equal(t, "pack_correction_rate", rows[4].Metric)
	for _, r := range rows {
		assert.Equal(t, "00:42", r.Timestamp)
		assert.Equal(t, model.TaskPackaging, r.Task)
	}
}

func TestSeriesEvictsOlderThanWindow(t *testing.T) {
	var s Series
	for sec := 0; sec <= 100; sec++ {
		s.Append(float64(sec), float64(sec/10), 0)
		samples := s.Samples()
		newest := samples[len(samples)-1].T
		for _, smp := range samples {
			assert.LessOrEqual(t, newest-smp.T, WindowSeconds)
		}
	}
	assert.Equal(t, 31, s.Len())
	assert.Equal(t, 70.0, s.Samples()[0].T)
}

func TestYBounds(t *testing.T) {
	var s Series
	lo, hi := s.YBounds()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 10.0, hi)

	s.Append(0, 7, 3)
	s.Append(1, 12, 4)
	lo, hi = s.YBounds()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 15.0, hi)

	var high Series
	for i := 0; i < 25; i++ {
		high.Append(float64(i), 23+float64(i), 11+float64(i))
	}
	// Only the last 20 samples count: min corrections = 16, max errors = 47.
	lo, hi = high.YBounds()
	assert.Equal(t, 15.0, lo)
	assert.Equal(t, 50.0, hi)
}

func TestXWindow(t *testing.T) {
	lo, hi := XWindow(12)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 30.0, hi)
	lo, hi = XWindow(75)
	assert.Equal(t, 45.0, lo)
	assert.Equal(t, 75.0, hi)
}

func TestBoardApplyUpdatesLabelsSeriesAndLog(t *testing.T) {
	log := eventlog.New()
	b := NewBoard(log)
	var tally Tally
	tally.RecordCommit(true)
	b.Apply(tally.Snapshot(model.TaskSorting), 3*time.Second, "00:03")
	tally.RecordCorrection()
	b.Apply(tally.Snapshot(model.TaskSorting), 5*time.Second, "00:05")

	label := b.Label(model.TaskSorting)
	assert.Equal(t, 1, label.Total)
	assert.Equal(t, 1, label.Corrections)
	assert.Equal(t, 100.0, label.CorrectionRate)

	samples := b.Series(model.TaskSorting).Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, 5.0, samples[1].T)
	assert.Equal(t, 1.0, samples[1].Corrections)
	assert.Zero(t, b.Series(model.TaskPackaging).Len())
	assert.Equal(t, 10, log.Len())
	assert.Equal(t, 1.0, b.Latest()["sort_corrections"])
}
