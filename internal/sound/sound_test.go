package sound

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wsim/internal/params"
	"github.com/verte-zerg/wsim/internal/sim"
)

func TestForEvent(t *testing.T) {
	c, ok := ForEvent(sim.Event{Kind: sim.EventCommitted, Error: true})
	require.True(t, ok)
	assert.Equal(t, IncorrectChime, c)
	c, _ = ForEvent(sim.Event{Kind: sim.EventCommitted})
	assert.Equal(t, CorrectChime, c)
	_, ok = ForEvent(sim.Event{Kind: sim.EventFaded})
	assert.False(t, ok)
}

func TestSelectHonoursFlagsAndDedups(t *testing.T) {
	s := params.DefaultSounds()
	s.Conveyor = false
	b := NewBoard("/snd", s)
	cues := b.Select([]sim.Event{
		{Kind: sim.EventSpawned},
		{Kind: sim.EventGripped},
		{Kind: sim.EventGripped},
		{Kind: sim.EventMissed},
	})
	assert.Equal(t, []Cue{RoboticArm, Alarm}, cues)

	_, ok := b.Path(Conveyor)
	assert.False(t, ok)
	p, ok := b.Path(Alarm)
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/snd", "alarm_single.wav"), p)
}

func TestMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alarm_single.wav"), nil, 0o644))
	b := NewBoard(dir, params.DefaultSounds())
	missing := b.Missing()
	assert.Len(t, missing, 4)
	assert.NotContains(t, missing, Alarm)
}
