package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wsim/internal/model"
)

func TestArmCommitsOnPresent(t *testing.T) {
	a := newArm()
	require.True(t, a.Ready())
	item := &Item{ID: 1, Color: model.Blue}
	a.Grip(item)
	assert.False(t, a.Ready())

	var committed *Item
	var elapsed time.Duration
	for committed == nil && elapsed < time.Second {
		committed = a.Advance(TickInterval)
		elapsed += TickInterval
	}
	require.Same(t, item, committed)
	assert.Equal(t, ArmPresent, a.State())
	// to_prep + descend + hold + lift
	assert.GreaterOrEqual(t, elapsed, 470*time.Millisecond)
	assert.Less(t, elapsed, 470*time.Millisecond+TickInterval)

	for a.State() != ArmIdle {
		assert.Nil(t, a.Advance(TickInterval))
	}
	assert.Nil(t, a.Held())
	assert.Equal(t, poseRest, a.Pose())
	assert.True(t, a.Ready())
}

func TestArmSegmentsAreShort(t *testing.T) {
	for state, seg := range segments {
		assert.GreaterOrEqual(t, seg.duration, 40*time.Millisecond, state.String())
		assert.LessOrEqual(t, seg.duration, 200*time.Millisecond, state.String())
	}
	assert.Equal(t, 860*time.Millisecond, CycleDuration())
}

func TestArmHaltFinishesSegmentWithoutCommit(t *testing.T) {
	a := newArm()
	a.Grip(&Item{ID: 1})
	a.Advance(300 * time.Millisecond) // inside hold
	require.Equal(t, ArmHold, a.State())
	a.Halt()

	assert.Nil(t, a.Advance(10*time.Millisecond))
	assert.Equal(t, ArmHold, a.State(), "current segment keeps running")
	assert.Nil(t, a.Advance(time.Second))
	assert.Equal(t, ArmIdle, a.State())
	assert.Nil(t, a.Held())
	assert.False(t, a.Ready(), "a halted arm does not grip")

	a.Resume()
	assert.True(t, a.Ready())
}

func TestArmPoseInterpolates(t *testing.T) {
	a := newArm()
	a.Grip(&Item{ID: 1})
	a.Advance(75 * time.Millisecond)
	mid := lerpPose(poseRest, posePrep, 0.5)
	assert.InDelta(t, mid.Shoulder, a.Pose().Shoulder, 1e-9)
	assert.InDelta(t, mid.Elbow, a.Pose().Elbow, 1e-9)
}

func TestConveyorRunOffAndGripWindow(t *testing.T) {
	c := newConveyor(model.TaskSorting)
	c.Spawn(model.Red)
	assert.Equal(t, -1, c.InGripWindow())

	var inWindow bool
	var runOff []*Item
	for i := 0; i < 400 && runOff == nil; i++ {
		runOff = c.Advance(TickInterval)
		if c.InGripWindow() == 0 {
			inWindow = true
		}
		assert.GreaterOrEqual(t, c.Phase(), 0.0)
		assert.Less(t, c.Phase(), StripeWidth)
	}
	assert.True(t, inWindow)
	require.Len(t, runOff, 1)
	assert.Equal(t, model.Red, runOff[0].Color)
	assert.Zero(t, c.Len())
}

func TestConveyorTake(t *testing.T) {
	c := newConveyor(model.TaskSorting)
	a := c.Spawn(model.Red)
	b := c.Spawn(model.Blue)
	assert.Same(t, a, c.Take(0))
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ID)
}
