package params

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wsim/internal/model"
)

func TestNormalizeErrorRate(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{0.0, 0},
		{0.25, 0.25},
		{1.0, 1},
		{25.0, 0.25},
		{100.0, 1},
		{150.0, 0},
		{-0.5, 0},
		{30, 0.3},
		{"15%", 0.15},
		{" 40 % ", 0.4},
		{"250%", 1},
		{"0.3", 0},
		{"abc%", 0},
		{nil, 0},
		{true, 0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, NormalizeErrorRate(tc.in), 1e-9, "input %v", tc.in)
	}
}

func TestNormalizeErrorRateIdempotent(t *testing.T) {
	inputs := []any{0.0, 0.1, 0.5, 1.0, 2.0, 50.0, 100.0, "5%", "100%", "120%", -3.0, "x"}
	for _, in := range inputs {
		once := NormalizeErrorRate(in)
		assert.Equal(t, once, NormalizeErrorRate(once), "input %v", in)
		assert.GreaterOrEqual(t, once, 0.0)
		assert.LessOrEqual(t, once, 1.0)
	}
}

func TestErrorRateDecodesJSONForms(t *testing.T) {
	var s Sorting
	require.NoError(t, json.Unmarshal([]byte(`{"error_rate":"20%"}`), &s))
	assert.InDelta(t, 0.2, float64(s.ErrorRate), 1e-9)

	require.NoError(t, json.Unmarshal([]byte(`{"error_rate":35}`), &s))
	assert.InDelta(t, 0.35, float64(s.ErrorRate), 1e-9)

	require.NoError(t, json.Unmarshal([]byte(`{"error_rate":{"bad":1}}`), &s))
	assert.Zero(t, float64(s.ErrorRate))
}

func TestParseTimeLimit(t *testing.T) {
	d, ok := ParseTimeLimit("")
	assert.False(t, ok)
	assert.Zero(t, d)

	d, ok = ParseTimeLimit("02:30")
	assert.True(t, ok)
	assert.Equal(t, 150*time.Second, d)

	d, ok = ParseTimeLimit("nonsense")
	assert.True(t, ok)
	assert.Zero(t, d)

	d, ok = ParseTimeLimit("01:75")
	assert.True(t, ok)
	assert.Zero(t, d)

	assert.Equal(t, "02:05", FormatClock(125*time.Second+400*time.Millisecond))
	assert.Equal(t, FallbackTimeLimit, NormalizeTimeLimit("bad"))
}

func TestPaceRanges(t *testing.T) {
	lo, hi := PaceSlow.Range()
	assert.Equal(t, 0.1, lo)
	assert.Equal(t, 0.3, hi)
	lo, hi = PaceFast.Range()
	assert.Equal(t, 0.7, lo)
	assert.Equal(t, 1.0, hi)
	assert.Equal(t, PaceMedium, Pace("warp").Normalize())
	assert.Equal(t, PaceFast, Pace(" FAST ").Normalize())
}

func TestPaletteByBinCount(t *testing.T) {
	assert.Equal(t, []model.Color{model.Green, model.Purple}, Palette(2))
	assert.Len(t, Palette(4), 4)
	assert.Len(t, Palette(6), 6)
	assert.Equal(t, 4, Sorting{BinCount: 3}.Normalize().BinCount)
}

func TestStartNormalizeActive(t *testing.T) {
	s := Start{Active: []model.Task{"inspection", "sorting", "bogus", "sorting"}}.Normalize()
	assert.Equal(t, []model.Task{model.TaskSorting, model.TaskInspection}, s.Active)
	assert.True(t, s.IsActive(model.TaskInspection))
	assert.False(t, s.IsActive(model.TaskPackaging))
}
