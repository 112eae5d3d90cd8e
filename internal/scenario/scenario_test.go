package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
)

func custom() Scenario {
	return Scenario{
		Name:       "Night shift",
		TimeLimit:  "02:30",
		Sorting:    params.Sorting{Enabled: true, Pace: params.PaceFast, BinCount: 6, ErrorRate: 0.25},
		Packaging:  params.Packaging{Enabled: false, Pace: params.PaceSlow, ErrorRate: 0.1, Capacity: params.CapacityUniform46},
		Inspection: params.Inspection{Enabled: true, Pace: params.PaceMedium, ErrorRate: 1},
		Sounds:     params.Sounds{Conveyor: false, RoboticArm: true, CorrectChime: false, IncorrectChime: true, Alarm: false},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"drill.json", "drill.yaml", "drill.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, custom()))
			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, custom(), got)
		})
	}
}

func TestDecodeDefaultsAbsentKeys(t *testing.T) {
	s, err := Decode([]byte(`{"scenario_name":"x","sorting":{"pace":"fast","error_rate":"25%"}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "x", s.Name)
	assert.Equal(t, "05:00", s.TimeLimit)
	assert.True(t, s.Sorting.Enabled)
	assert.Equal(t, params.PaceFast, s.Sorting.Pace)
	assert.Equal(t, 4, s.Sorting.BinCount)
	assert.InDelta(t, 0.25, float64(s.Sorting.ErrorRate), 1e-9)
	assert.Equal(t, params.DefaultPackaging(), s.Packaging)
	assert.Equal(t, params.DefaultSounds(), s.Sounds)

	empty, err := Decode(nil, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, Default(), empty)
}

func TestDecodeNormalizesOutOfRange(t *testing.T) {
	data := []byte(`
scenario_name: odd
time_limit: soon
sorting:
  bin_count: 5
  pace: warp
  error_rate: 250
packaging:
  capacity: "9"
`)
	s, err := Decode(data, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, params.FallbackTimeLimit, s.TimeLimit)
	assert.Equal(t, 4, s.Sorting.BinCount)
	assert.Equal(t, params.PaceMedium, s.Sorting.Pace)
	assert.Zero(t, float64(s.Sorting.ErrorRate))
	assert.Equal(t, params.CapacityFixed6, s.Packaging.Capacity)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("{"), FormatJSON)
	assert.Error(t, err)
}

func TestStartParams(t *testing.T) {
	s := custom()
	p := s.StartParams()
	assert.Equal(t, []model.Task{model.TaskSorting, model.TaskInspection}, p.Active)
	assert.Equal(t, s.Sounds, p.Sounds)

	s.SetEnabled(model.TaskPackaging, true)
	assert.Len(t, s.Active(), 3)
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drill.json")
	require.NoError(t, Save(path, Default()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reloaded := make(chan Scenario, 8)
	go func() {
		_ = Watch(ctx, path, func(s Scenario, err error) {
			if err == nil {
				reloaded <- s
			}
		})
	}()

	want := custom()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case s := <-reloaded:
			assert.Equal(t, want.Name, s.Name)
			return
		case <-ticker.C:
			require.NoError(t, Save(path, want))
		case <-ctx.Done():
			t.Fatal("scenario change not observed")
		}
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(filepath.Join(dir, "a.json"), Default()))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.json", entries[0].Name())
}
