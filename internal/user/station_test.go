package user

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wsim/internal/link"
	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
	"github.com/verte-zerg/wsim/internal/sim"
	"github.com/verte-zerg/wsim/internal/sound"
)

type recorder struct {
	sent []link.Message
}

func (r *recorder) Send(m link.Message) { r.sent = append(r.sent, m) }

func (r *recorder) last() link.Message {
	return r.sent[len(r.sent)-1]
}

func newTestStation(t *testing.T) (*Station, *recorder) {
	t.Helper()
	rec := &recorder{}
	board := sound.NewBoard(filepath.Join(t.TempDir(), "sounds"), params.DefaultSounds())
	return NewStation(sim.NewEngine(11), rec, board), rec
}

func sortingStart(rate float64) params.Start {
	return params.Start{
		Sorting: params.Sorting{Enabled: true, Pace: params.PaceFast, BinCount: 2, ErrorRate: params.ErrorRate(rate)},
		Active:  []model.Task{model.TaskSorting},
		Sounds:  params.DefaultSounds(),
	}
}

func tickFor(s *Station, d time.Duration) []sound.Cue {
	var cues []sound.Cue
	for elapsed := time.Duration(0); elapsed < d; elapsed += sim.TickInterval {
		cues = append(cues, s.Tick(sim.TickInterval)...)
	}
	return cues
}

func TestStartSendsZeroSnapshot(t *testing.T) {
	st, rec := newTestStation(t)
	st.Handle(link.UpdateActive([]model.Task{model.TaskSorting, model.TaskInspection}))
	assert.Equal(t, "Ready.", st.Notice())
	assert.Equal(t, []model.Task{model.TaskSorting, model.TaskInspection}, st.Engine().Active())

	p := sortingStart(0)
	st.Handle(link.Start(p))
	require.Len(t, rec.sent, 1)
	assert.Equal(t, link.CmdMetrics, rec.sent[0].Command)
	assert.Equal(t, 0.0, rec.sent[0].Data["sort_total"])
	assert.True(t, st.Engine().Running())
	assert.Empty(t, st.Notice())
}

func TestCommitsProduceSnapshotsAndCues(t *testing.T) {
	st, rec := newTestStation(t)
	st.Handle(link.Start(sortingStart(0)))

	cues := tickFor(st, 10*time.Second)
	assert.Contains(t, cues, sound.Conveyor)
	assert.Contains(t, cues, sound.RoboticArm)
	assert.Contains(t, cues, sound.CorrectChime)
	assert.NotContains(t, cues, sound.IncorrectChime)

	last := rec.last()
	assert.Equal(t, link.CmdMetrics, last.Command)
	assert.Greater(t, last.Data["sort_total"], 0.0)
	assert.Equal(t, 0.0, last.Data["sort_errors"])
}

func TestCorrectionClick(t *testing.T) {
	st, rec := newTestStation(t)
	st.Handle(link.Start(sortingStart(1)))
	tickFor(st, 5*time.Second)

	scenes := st.Engine().Scenes()
	require.Len(t, scenes, 1)
	target := -1
	for i, c := range scenes[0].Containers {
		if c.PendingErrors > 0 {
			target = i
			break
		}
	}
	require.GreaterOrEqual(t, target, 0, "expected a misrouted item after 5s")

	before := rec.last().Data["sort_corrections"]
	cues := st.Click(model.TaskSorting, target)
	assert.Equal(t, []sound.Cue{sound.CorrectChime}, cues)
	assert.Equal(t, before+1, rec.last().Data["sort_corrections"])

	assert.Nil(t, st.Click(model.TaskPackaging, 0), "inactive task")
}

func TestPauseStopComplete(t *testing.T) {
	st, rec := newTestStation(t)
	st.Handle(link.Pause())
	assert.False(t, st.Engine().Paused(), "pause before start is ignored")

	st.Handle(link.Start(sortingStart(0)))
	st.Handle(link.Pause())
	assert.True(t, st.Engine().Paused())
	assert.Equal(t, "Paused.", st.Notice())

	sent := len(rec.sent)
	assert.Empty(t, tickFor(st, 5*time.Second))
	assert.Len(t, rec.sent, sent, "a paused engine reports nothing")

	st.Handle(link.Pause())
	assert.False(t, st.Engine().Paused())

	st.Handle(link.Complete())
	assert.False(t, st.Engine().Running())
	assert.Equal(t, "Complete.", st.Notice())

	st.Handle(link.Stop())
	assert.Equal(t, "Complete.", st.Notice(), "terminal commands are idempotent")
}

func TestMutedCuesAreDropped(t *testing.T) {
	st, _ := newTestStation(t)
	p := sortingStart(0)
	p.Sounds = params.Sounds{}
	st.Handle(link.Start(p))
	assert.Empty(t, tickFor(st, 5*time.Second))
}

func TestRepeatedStartResumesSession(t *testing.T) {
	st, rec := newTestStation(t)
	p := sortingStart(0)
	p.Session = "20260405-060708"
	st.Handle(link.Start(p))
	tickFor(st, 5*time.Second)
	total := rec.last().Data["sort_total"]
	require.Greater(t, total, 0.0)

	// The Observer reconnects while paused and greets with the same session.
	p.Paused = true
	sent := len(rec.sent)
	st.Handle(link.UpdateActive(p.Active))
	st.Handle(link.Start(p))
	assert.True(t, st.Engine().Running())
	assert.True(t, st.Engine().Paused())
	assert.Equal(t, "Paused.", st.Notice())
	assert.Len(t, rec.sent, sent, "a resume does not reset the tallies")

	p.Paused = false
	st.Handle(link.Start(p))
	assert.False(t, st.Engine().Paused())
	tickFor(st, 5*time.Second)
	assert.Greater(t, rec.last().Data["sort_total"], total)
}

func TestStartForNewSessionRestarts(t *testing.T) {
	st, rec := newTestStation(t)
	p := sortingStart(0)
	p.Session = "a"
	st.Handle(link.Start(p))
	tickFor(st, 5*time.Second)

	p.Session = "b"
	p.Paused = true
	st.Handle(link.Start(p))
	assert.Equal(t, 0.0, rec.last().Data["sort_total"])
	assert.True(t, st.Engine().Paused())
}
