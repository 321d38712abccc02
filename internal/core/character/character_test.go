package character

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/webswing/internal/core/events/bus"
	"github.com/zeusync/webswing/internal/core/input"
	"github.com/zeusync/webswing/internal/core/swing"
	"github.com/zeusync/webswing/internal/core/systems/physics"
)

const dt = 1.0 / 60

func newCharacter(t *testing.T, opts ...Option) *Character {
	t.Helper()
	c, err := New(DefaultConfig(), physics.Vec3{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewAssignsIDAndGrounds(t *testing.T) {
	c := newCharacter(t)
	assert.Len(t, c.ID(), 36)

	snap := c.Snapshot()
	assert.True(t, snap.Grounded)
	assert.False(t, snap.Swinging)
	assert.Zero(t, snap.Tick)

	air, err := New(DefaultConfig(), physics.Vec3{Z: 500}, WithID("fixed"))
	require.NoError(t, err)
	assert.Equal(t, "fixed", air.ID())
	assert.False(t, air.Snapshot().Grounded)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Swing.ForceReductionFactor = 0
	_, err := New(cfg, physics.Vec3{})
	assert.ErrorIs(t, err, swing.ErrInvalidParams)
}

func TestMoveForwardThroughInput(t *testing.T) {
	c := newCharacter(t)
	require.NoError(t, c.Input().SetAxis(input.AxisMoveForward, 1))

	for i := 0; i < 30; i++ {
		require.NoError(t, c.Tick(dt))
	}

	snap := c.Snapshot()
	assert.EqualValues(t, 30, snap.Tick)
	assert.Greater(t, snap.Position.X, 0.0)
	assert.InDelta(t, 0, snap.Position.Y, 1e-9)
	assert.True(t, snap.Grounded)
}

func TestSwingLifecycle(t *testing.T) {
	b := bus.New()
	var started, released []swing.Event
	_, err := b.Subscribe(bus.TypeSwingStarted, func(ev bus.Event) error {
		started = append(started, ev.Data().(swing.Event))
		return nil
	})
	require.NoError(t, err)
	_, err = b.Subscribe(bus.TypeSwingReleased, func(ev bus.Event) error {
		released = append(released, ev.Data().(swing.Event))
		return nil
	})
	require.NoError(t, err)

	c := newCharacter(t, WithBus(b), WithID("hero"))
	require.NoError(t, b.PublishToTopic("hero", bus.NewEvent(bus.TypeInputAction, "test",
		input.ActionMessage{Name: input.ActionSwing, Pressed: true})))
	require.NoError(t, c.Tick(dt))

	snap := c.Snapshot()
	require.True(t, snap.Swinging)
	if diff := cmp.Diff(physics.Vec3{X: 1500, Z: 1200}, snap.AnchorPoint, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("anchor (-want +got):\n%s", diff)
	}
	require.Len(t, started, 1)
	assert.Equal(t, "hero", started[0].ActorID)

	// a body at rest has nothing to pull against
	assert.Equal(t, physics.Zero, snap.SwingForce)

	require.NoError(t, b.PublishToTopic("hero", bus.NewEvent(bus.TypeInputAction, "test",
		input.ActionMessage{Name: input.ActionSwing, Pressed: false})))
	require.NoError(t, c.Tick(dt))

	snap = c.Snapshot()
	assert.False(t, snap.Swinging)
	assert.InDelta(t, 1500, snap.AnchorPoint.X, 1e-9, "anchor kept after release")
	require.Len(t, released, 1)
}

func TestSwingPullsTowardAnchor(t *testing.T) {
	c := newCharacter(t)
	c.body.Position = physics.Vec3{Z: 800}
	c.body.Velocity = physics.Vec3{X: 1000, Z: -500}
	c.body.Grounded = false

	require.NoError(t, c.Input().PushAction(input.ActionSwing, input.Pressed))
	require.NoError(t, c.Tick(dt))

	snap := c.Snapshot()
	require.True(t, snap.Swinging)
	require.False(t, snap.SwingForce.IsZero())

	// the pull opposes motion along the rope
	toAnchor := snap.AnchorPoint.Sub(physics.Vec3{Z: 800})
	assert.Less(t, snap.SwingForce.Dot(toAnchor), 0.0)

	x, _, _ := snap.Rotation.Axes()
	assert.True(t, x.IsFinite())
}

func TestSwingBeginTwiceIsIgnored(t *testing.T) {
	c := newCharacter(t)
	require.NoError(t, c.Input().PushAction(input.ActionSwing, input.Pressed))
	require.NoError(t, c.Tick(dt))
	first := c.Snapshot().AnchorPoint

	c.SetControlRotation(physics.Rotator{Yaw: 90})
	require.NoError(t, c.Input().PushAction(input.ActionSwing, input.Pressed))
	require.NoError(t, c.Tick(dt))

	assert.Equal(t, first, c.Snapshot().AnchorPoint)
}

func TestUnpossessedIgnoresMovement(t *testing.T) {
	c := newCharacter(t)
	c.SetPossessed(false)
	require.NoError(t, c.Input().SetAxis(input.AxisMoveForward, 1))
	require.NoError(t, c.Input().SetAxis(input.AxisTurn, 30))
	require.NoError(t, c.Tick(dt))

	snap := c.Snapshot()
	assert.False(t, snap.Possessed)
	assert.Equal(t, physics.Zero, snap.Position)
	assert.Equal(t, physics.Rotator{}, snap.ControlRotation)
}

func TestMouseTurnUpdatesCamera(t *testing.T) {
	c := newCharacter(t)
	require.NoError(t, c.Input().SetAxis(input.AxisTurn, 90))
	require.NoError(t, c.Tick(dt))

	if diff := cmp.Diff(physics.Vec3{Y: 1}, c.CameraForward(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("camera (-want +got):\n%s", diff)
	}
}

func TestNonFiniteStateRollsBack(t *testing.T) {
	c := newCharacter(t)
	c.body.Velocity = physics.Vec3{X: 1e308}
	c.body.Grounded = false
	c.body.Position = physics.Vec3{Z: 100}
	c.lastGood = c.body
	c.move.AddForce(physics.Vec3{X: 1e308})

	err := c.Tick(1e10)
	require.ErrorIs(t, err, ErrNonFiniteState)
	assert.Equal(t, physics.Zero, c.Velocity())
	assert.Equal(t, physics.Vec3{Z: 100}, c.Position())
}

func TestCloseDetachesFromBus(t *testing.T) {
	b := bus.New()
	c := newCharacter(t, WithBus(b))
	require.NoError(t, c.Close())

	require.NoError(t, b.PublishToTopic(c.ID(), bus.NewEvent(bus.TypeInputAction, "test",
		input.ActionMessage{Name: input.ActionJump, Pressed: true})))
	assert.Zero(t, c.Input().Pending())
	assert.Empty(t, b.GetTopics())
}

func TestSnapshotReportsCameraAndJump(t *testing.T) {
	c := newCharacter(t)

	snap := c.Snapshot()
	assert.True(t, snap.Possessed)
	assert.False(t, snap.JumpHeld)
	if diff := cmp.Diff(physics.Vec3{X: -300}, snap.CameraLocation, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("camera location (-want +got):\n%s", diff)
	}

	require.NoError(t, c.Input().PushAction(input.ActionJump, input.Pressed))
	require.NoError(t, c.Tick(dt))
	snap = c.Snapshot()
	assert.True(t, snap.JumpHeld)
	assert.Greater(t, snap.Velocity.Z, 0.0)

	require.NoError(t, c.Input().PushAction(input.ActionJump, input.Released))
	require.NoError(t, c.Tick(dt))
	assert.False(t, c.Snapshot().JumpHeld)
}
