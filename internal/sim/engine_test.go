package sim

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wsim/internal/generator"
	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
)

func startParams(active ...model.Task) params.Start {
	return params.Start{
		Sorting:    params.DefaultSorting(),
		Packaging:  params.DefaultPackaging(),
		Inspection: params.DefaultInspection(),
		Sounds:     params.DefaultSounds(),
		Active:     active,
	}
}

// run ticks the engine for d and returns every event.
func run(e *Engine, d time.Duration) []Event {
	var events []Event
	for elapsed := time.Duration(0); elapsed < d; elapsed += TickInterval {
		events = append(events, e.Tick(TickInterval)...)
	}
	return events
}

func checkTally(t *testing.T, e *Engine) {
	t.Helper()
	for _, s := range e.Scenes() {
		tl := s.Tally
		require.Equal(t, tl.Total, tl.Correct+tl.Errors, s.Task)
		require.LessOrEqual(t, tl.Corrections, tl.Errors, s.Task)
		require.GreaterOrEqual(t, tl.ErrorRate(), 0.0)
		require.LessOrEqual(t, tl.ErrorRate(), 1.0)
	}
}

func TestSortingSlowTwoBinsNoErrors(t *testing.T) {
	p := startParams(model.TaskSorting)
	p.Sorting = params.Sorting{Enabled: true, Pace: params.PaceSlow, BinCount: 2}
	e := NewEngine(7)
	var last model.Snapshot
	e.OnSnapshot(func(s model.Snapshot) { last = s })
	e.Start(p)

	run(e, 10*time.Second)
	checkTally(t, e)
	require.NotNil(t, last)
	assert.Equal(t, 0.0, last["sort_errors"])
	assert.GreaterOrEqual(t, last["sort_total"], 1.0)
	assert.LessOrEqual(t, last["sort_total"], 3.0)

	scenes := e.Scenes()
	require.Len(t, scenes, 1)
	require.Len(t, scenes[0].Containers, 2)
	assert.Equal(t, model.Green, scenes[0].Containers[0].Color)
	assert.Equal(t, model.Purple, scenes[0].Containers[1].Color)
}

func TestSortingHalfErrorRate(t *testing.T) {
	var total, errs float64
	for seed := int64(1); seed <= 20; seed++ {
		p := startParams(model.TaskSorting)
		p.Sorting = params.Sorting{Enabled: true, Pace: params.PaceMedium, BinCount: 4, ErrorRate: 0.5}
		e := NewEngine(seed)
		var last model.Snapshot
		e.OnSnapshot(func(s model.Snapshot) { last = s })
		e.Start(p)
		run(e, 60*time.Second)
		checkTally(t, e)
		total += last["sort_total"]
		errs += last["sort_errors"]
	}
	require.Positive(t, total)
	assert.InDelta(t, 0.5, errs/total, 0.1)
}

func TestPackagingFadesFullContainers(t *testing.T) {
	p := startParams(model.TaskPackaging)
	p.Packaging = params.Packaging{Enabled: true, Pace: params.PaceFast, Capacity: params.CapacityFixed6}
	e := NewEngine(3)
	e.Start(p)

	var fades []Event
	for elapsed := time.Duration(0); elapsed < 5*time.Minute && len(fades) < 3; elapsed += TickInterval {
		for _, ev := range e.Tick(TickInterval) {
			if ev.Kind == EventFaded {
				fades = append(fades, ev)
			}
			assert.False(t, ev.Error)
		}
		scene := e.Scenes()[0]
		require.Len(t, scene.Containers, RowSize)
		for _, c := range scene.Containers {
			require.LessOrEqual(t, c.Count, c.Capacity)
		}
	}
	require.Len(t, fades, 3)
	for _, ev := range fades {
		assert.Equal(t, 6, ev.Count)
	}
	checkTally(t, e)
}

func TestPackagingErrorsKeepCountWithinCapacity(t *testing.T) {
	overfills := 0
	for seed := int64(1); seed < 20; seed++ {
		p := startParams(model.TaskPackaging)
		p.Packaging = params.Packaging{Enabled: true, Pace: params.PaceFast, Capacity: params.CapacityFixed6, ErrorRate: 1}
		e := NewEngine(seed)
		e.Start(p)
		for elapsed := time.Duration(0); elapsed < time.Minute; elapsed += TickInterval {
			e.Tick(TickInterval)
			for _, c := range e.Scenes()[0].Containers {
				require.LessOrEqual(t, c.Count, c.Capacity, "seed %d variant %s", seed, c.Variant)
			}
		}
		for _, c := range e.Scenes()[0].Containers {
			if c.Variant == VariantOverfill {
				overfills++
				assert.Equal(t, 1, c.Extra)
			}
		}
	}
	assert.Positive(t, overfills)
}

func TestPackagingUserFix(t *testing.T) {
	p := startParams(model.TaskPackaging)
	p.Packaging = params.Packaging{Enabled: true, Pace: params.PaceFast, Capacity: params.CapacityFixed6, ErrorRate: 1}
	e := NewEngine(11)
	var last model.Snapshot
	e.OnSnapshot(func(s model.Snapshot) { last = s })
	e.Start(p)

	target := -1
	for elapsed := time.Duration(0); elapsed < 2*time.Minute && target < 0; elapsed += TickInterval {
		for _, ev := range e.Tick(TickInterval) {
			if ev.Kind == EventCommitted && ev.Error {
				target = ev.Target
			}
		}
	}
	require.GreaterOrEqual(t, target, 0)
	box := e.Scenes()[0].Containers[target]
	require.True(t, box.Error)
	require.NotEqual(t, VariantNone, box.Variant)
	assert.Equal(t, 1.0, last["pack_errors"])

	_, ok := e.Click(model.TaskPackaging, target+1)
	assert.False(t, ok, "clean boxes cannot be corrected")

	ev, ok := e.Click(model.TaskPackaging, target)
	require.True(t, ok)
	assert.Equal(t, EventCorrected, ev.Kind)
	assert.Equal(t, 1.0, last["pack_corrections"])
	assert.Equal(t, 100.0, last["pack_correction_rate"])

	box = e.Scenes()[0].Containers[target]
	assert.True(t, box.Fixed)
	assert.False(t, box.Error)
	assert.True(t, box.Fading())
	assert.Equal(t, box.Capacity, box.Count)

	_, ok = e.Click(model.TaskPackaging, target)
	assert.False(t, ok, "a fixed box cannot be corrected twice")

	var faded *Event
	for elapsed := time.Duration(0); elapsed < 3*time.Second && faded == nil; elapsed += TickInterval {
		for _, ev := range e.Tick(TickInterval) {
			if ev.Kind == EventFaded {
				ev := ev
				faded = &ev
			}
		}
	}
	require.NotNil(t, faded)
	assert.Equal(t, 6, faded.Count)
	assert.Len(t, e.Scenes()[0].Containers, RowSize)
}

func TestInspectionRatesOneDecimal(t *testing.T) {
	p := startParams(model.TaskInspection)
	p.Inspection = params.Inspection{Enabled: true, Pace: params.PaceSlow, ErrorRate: 0.1}
	e := NewEngine(5)
	var last model.Snapshot
	e.OnSnapshot(func(s model.Snapshot) { last = s })
	e.Start(p)
	run(e, 30*time.Second)

	assert.GreaterOrEqual(t, last["insp_total"], 1.0)
	for _, key := range []string{"insp_error_rate", "insp_correction_rate"} {
		v, ok := last[key]
		require.True(t, ok, key)
		assert.Equal(t, math.Round(v*10)/10, v, key)
	}
	assert.Contains(t, last, "insp_defects_missed")
	checkTally(t, e)
}

func TestRouterErrorRateBoundaries(t *testing.T) {
	clean := newRouter(model.TaskSorting, generator.NewSeeded(1), params.PaceFast, 0, params.Palette(4))
	for i := 0; i < 100000; i++ {
		clean.place(&Item{Color: model.Blue})
	}
	assert.Equal(t, 100000, clean.tally.Total)
	assert.Zero(t, clean.tally.Errors)

	broken := newRouter(model.TaskInspection, generator.NewSeeded(1), params.PaceFast, 1, params.InspectionPalette)
	for i := 0; i < 1000; i++ {
		evs := broken.place(&Item{Color: model.Red})
		require.Len(t, evs, 1)
		require.True(t, evs[0].Error)
		require.Equal(t, model.Green, broken.bins[evs[0].Target].Color)
	}
	assert.Equal(t, 1000, broken.tally.Errors)
	assert.Equal(t, 1000, broken.tally.DefectsMissed)
}

func TestRouterCorrectionClearsErrorFlag(t *testing.T) {
	r := newRouter(model.TaskSorting, generator.NewSeeded(2), params.PaceFast, 1, params.Palette(2))
	r.Start()
	evs := r.place(&Item{Color: model.Green})
	target := evs[0].Target
	require.Equal(t, model.Purple, r.bins[target].Color)
	require.True(t, r.bins[target].Error)

	_, ok := r.Click(1 - target)
	assert.False(t, ok)
	ev, ok := r.Click(target)
	require.True(t, ok)
	assert.Equal(t, EventCorrected, ev.Kind)
	assert.False(t, r.bins[target].Error)
	assert.Equal(t, 1, r.tally.Corrections)

	_, ok = r.Click(target)
	assert.False(t, ok)
}

func TestEngineStopHaltsSpawning(t *testing.T) {
	e := NewEngine(1)
	e.Start(startParams(model.TaskSorting, model.TaskInspection))
	run(e, 5*time.Second)
	e.Stop()
	require.False(t, e.Running())

	events := run(e, 10*time.Second)
	for _, ev := range events {
		assert.NotEqual(t, EventSpawned, ev.Kind)
		assert.NotEqual(t, EventCommitted, ev.Kind)
	}
	for _, s := range e.Scenes() {
		assert.Equal(t, ArmIdle, s.ArmState)
	}
}

func TestEnginePauseFreezes(t *testing.T) {
	e := NewEngine(1)
	e.Start(startParams(model.TaskSorting))
	run(e, 2*time.Second)
	before := e.Scenes()[0]
	require.True(t, e.TogglePause())
	assert.Empty(t, run(e, 5*time.Second))
	after := e.Scenes()[0]
	assert.Equal(t, before.Items, after.Items)
	assert.True(t, after.Paused)

	_, ok := e.Click(model.TaskSorting, 0)
	assert.False(t, ok)
	require.True(t, e.TogglePause())
	assert.NotEmpty(t, run(e, 5*time.Second))
}

func TestEngineStartUsesActiveList(t *testing.T) {
	e := NewEngine(1)
	var snaps []model.Snapshot
	e.OnSnapshot(func(s model.Snapshot) { snaps = append(snaps, s) })
	e.SetActive([]model.Task{model.TaskInspection, model.TaskSorting, "bogus"})
	assert.Equal(t, []model.Task{model.TaskSorting, model.TaskInspection}, e.Active())

	e.Start(startParams())
	require.Len(t, e.Scenes(), 2)
	assert.Equal(t, model.TaskSorting, e.Scenes()[0].Task)
	require.Len(t, snaps, 2, "every started task reports a zero snapshot")
	assert.Equal(t, 0.0, snaps[0]["sort_total"])

	_, ok := e.Driver(model.TaskPackaging)
	assert.False(t, ok)
}

func TestEngineIsDeterministic(t *testing.T) {
	collect := func() []Event {
		e := NewEngine(42)
		p := startParams(model.TaskSorting, model.TaskPackaging, model.TaskInspection)
		p.Sorting.ErrorRate = 0.3
		e.Start(p)
		return run(e, 20*time.Second)
	}
	assert.Equal(t, collect(), collect())
}
