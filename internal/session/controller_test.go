package session

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wsim/internal/model"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	c := NewController(t.TempDir())
	c.SetClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local) })
	return c
}

func TestStartResetsClock(t *testing.T) {
	c := newTestController(t)
	tr, err := c.Start("01:00")
	require.NoError(t, err)
	assert.Equal(t, KindStarted, tr.Kind)
	assert.Equal(t, Running, c.State())
	assert.NotEmpty(t, c.ID())

	c.Tick()
	c.Tick()
	assert.Equal(t, "00:02", c.Timestamp())
	left, ok := c.Remaining()
	assert.True(t, ok)
	assert.Equal(t, 58*time.Second, left)

	_, err = c.Start("01:00")
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestZeroLimitCompletesOnFirstTick(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("00:00")
	require.NoError(t, err)
	tr := c.Tick()
	assert.Equal(t, KindCompleted, tr.Kind)
	assert.True(t, tr.Terminal())
	assert.Equal(t, Stopped, c.State())
	assert.True(t, c.Flashing())
}

func TestMalformedLimitFallsBackToZero(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("soon")
	require.NoError(t, err)
	assert.Equal(t, KindCompleted, c.Tick().Kind)
}

func TestNoLimitNeverCompletes(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("")
	require.NoError(t, err)
	for i := 0; i < 600; i++ {
		require.Equal(t, KindNone, c.Tick().Kind)
	}
	_, ok := c.Remaining()
	assert.False(t, ok)
}

func TestTerminalTransitionsAreIdempotent(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("00:02")
	require.NoError(t, err)
	c.Tick()
	completed := c.Tick()
	assert.Equal(t, KindCompleted, completed.Kind)

	assert.Equal(t, KindNone, c.Stop().Kind)
	assert.Equal(t, KindNone, c.Complete().Kind)
	assert.Equal(t, KindNone, c.Tick().Kind)
}

func TestStopDoesNotComplete(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("10:00")
	require.NoError(t, err)
	tr := c.Stop()
	assert.Equal(t, KindStopped, tr.Kind)
	assert.False(t, c.Flashing())
	assert.Equal(t, KindNone, c.Tick().Kind)
}

func TestPauseFreezesClock(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("00:05")
	require.NoError(t, err)
	c.Tick()
	tr, err := c.TogglePause()
	require.NoError(t, err)
	assert.Equal(t, KindPaused, tr.Kind)
	for i := 0; i < 10; i++ {
		c.Tick()
	}
	assert.Equal(t, time.Second, c.Elapsed())
	tr, err = c.TogglePause()
	require.NoError(t, err)
	assert.Equal(t, KindResumed, tr.Kind)

	c.Stop()
	_, err = c.TogglePause()
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestTerminalFlushesLog(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("")
	require.NoError(t, err)
	c.Log().Append(model.EventRow{Timestamp: "00:00", Task: model.TaskSorting, Metric: "sort_total", Count: 1})

	tr := c.Stop()
	require.NoError(t, tr.LogErr)
	require.NotEmpty(t, tr.LogPath)
	_, err = os.Stat(tr.LogPath)
	require.NoError(t, err)
	assert.Zero(t, c.Log().Len())
}

func TestEmptyLogFlushReturnsNoPath(t *testing.T) {
	c := newTestController(t)
	_, err := c.Start("")
	require.NoError(t, err)
	tr := c.Complete()
	assert.Equal(t, KindCompleted, tr.Kind)
	assert.NoError(t, tr.LogErr)
	assert.Empty(t, tr.LogPath)
}
