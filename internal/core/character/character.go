// Package character assembles a controllable swinging character from the
// locomotion, swing and input components.
package character

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/webswing/internal/core/events/bus"
	"github.com/zeusync/webswing/internal/core/input"
	"github.com/zeusync/webswing/internal/core/locomotion"
	"github.com/zeusync/webswing/internal/core/observability/log"
	"github.com/zeusync/webswing/internal/core/swing"
	"github.com/zeusync/webswing/internal/core/systems/physics"
)

// Snapshot is the externally visible state after a tick.
type Snapshot struct {
	ID              string          `json:"id"`
	Tick            uint64          `json:"tick"`
	Position        physics.Vec3    `json:"position"`
	Velocity        physics.Vec3    `json:"velocity"`
	Rotation        physics.Rotator `json:"rotation"`
	ControlRotation physics.Rotator `json:"control_rotation"`
	CameraForward   physics.Vec3    `json:"camera_forward"`
	CameraLocation  physics.Vec3    `json:"camera_location"`
	Possessed       bool            `json:"possessed"`
	Grounded        bool            `json:"grounded"`
	JumpHeld        bool            `json:"jump_held"`
	Swinging        bool            `json:"swinging"`
	AnchorPoint     physics.Vec3    `json:"anchor_point"`
	SwingForce      physics.Vec3    `json:"swing_force"`
}

type Option func(*Character)

func WithBus(b bus.EventBus) Option {
	return func(c *Character) { c.bus = b }
}

func WithLogger(l log.Log) Option {
	return func(c *Character) { c.logger = l }
}

// WithID overrides the generated id.
func WithID(id string) Option {
	return func(c *Character) { c.id = id }
}

// Character is safe for concurrent use: input may be pushed from any
// goroutine while the world ticks it.
type Character struct {
	id string

	mu        sync.Mutex
	body      locomotion.Body
	lastGood  locomotion.Body
	move      *locomotion.Movement
	swing     *swing.Controller
	input     *input.Component
	lastForce physics.Vec3
	tick      uint64

	subs   []bus.Subscription
	bus    bus.EventBus
	logger log.Log
}

// New creates a grounded character at spawn. With a bus, the character
// listens for input on the topic named after its id.
func New(cfg Config, spawn physics.Vec3, opts ...Option) (*Character, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Character{logger: log.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}

	ctrl, err := swing.NewController(c.id, cfg.Swing, cfg.Anchor,
		swing.WithBus(c.bus), swing.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	c.logger = c.logger.With(log.String("actor_id", c.id))
	c.swing = ctrl
	c.move = locomotion.NewMovement(cfg.Movement)
	c.input = input.NewComponent(cfg.Input)
	c.body = locomotion.Body{
		Position: spawn,
		Grounded: spawn.Z <= cfg.Movement.GroundHeight,
	}
	if c.body.Grounded {
		c.body.Position.Z = cfg.Movement.GroundHeight
	}
	c.lastGood = c.body

	if err := c.setupInput(); err != nil {
		return nil, err
	}
	if c.bus != nil {
		subs, err := c.input.Subscribe(c.bus, c.id)
		if err != nil {
			return nil, fmt.Errorf("subscribe input: %w", err)
		}
		c.subs = subs
	}
	return c, nil
}

// setupInput binds every known action and axis. Names missing from the
// configured bindings are skipped.
func (c *Character) setupInput() error {
	actions := []struct {
		name string
		key  input.KeyEvent
		fn   input.ActionHandler
	}{
		{input.ActionJump, input.Pressed, c.move.Jump},
		{input.ActionJump, input.Released, c.move.StopJumping},
		{input.ActionSwing, input.Pressed, c.beginSwing},
		{input.ActionSwing, input.Released, c.releaseSwing},
	}
	for _, a := range actions {
		if err := c.input.BindAction(a.name, a.key, a.fn); err != nil && !errors.Is(err, input.ErrUnknownBinding) {
			return err
		}
	}

	axes := map[string]input.AxisHandler{
		input.AxisMoveForward: func(v, _ float64) { c.move.MoveForward(v) },
		input.AxisMoveRight:   func(v, _ float64) { c.move.MoveRight(v) },
		input.AxisTurn:        func(v, _ float64) { c.move.AddYawInput(v) },
		input.AxisTurnRate:    c.move.TurnAtRate,
		input.AxisLookUp:      func(v, _ float64) { c.move.AddPitchInput(v) },
		input.AxisLookUpRate:  c.move.LookUpAtRate,
	}
	for name, h := range axes {
		if err := c.input.BindAxis(name, h); err != nil && !errors.Is(err, input.ErrUnknownBinding) {
			return err
		}
	}
	return nil
}

func (c *Character) ID() string { return c.id }

// Input exposes the binding component so local producers can push events
// without going through the bus.
func (c *Character) Input() *input.Component { return c.input }

// Tick advances the character by dt seconds: queued actions, axes, swing
// pull, integration. A non-finite result is rolled back to the previous
// tick and reported as ErrNonFiniteState.
func (c *Character) Tick(dt float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.input.Process(dt)

	step, swinging := c.swing.Step(c.view())
	if swinging {
		c.move.AddForce(step.Force)
		c.lastForce = step.Force
	} else {
		c.lastForce = physics.Zero
	}

	c.move.Integrate(&c.body, dt)
	if swinging {
		c.body.Rotation = step.Orientation.Rotator()
	}
	c.tick++

	if !c.body.Position.IsFinite() || !c.body.Velocity.IsFinite() {
		c.body = c.lastGood
		c.body.Velocity = physics.Zero
		c.logger.Warn("non-finite state rolled back", log.Uint64("tick", c.tick))
		return fmt.Errorf("%w: actor %s tick %d", ErrNonFiniteState, c.id, c.tick)
	}
	c.lastGood = c.body
	return nil
}

func (c *Character) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.swing.State()
	return Snapshot{
		ID:              c.id,
		Tick:            c.tick,
		Position:        c.body.Position,
		Velocity:        c.body.Velocity,
		Rotation:        c.body.Rotation,
		ControlRotation: c.move.ControlRotation(),
		CameraForward:   c.move.CameraForward(),
		CameraLocation:  c.move.CameraLocation(c.body),
		Possessed:       c.move.Possessed(),
		Grounded:        c.body.Grounded,
		JumpHeld:        c.move.IsJumpHeld(),
		Swinging:        state.IsSwinging,
		AnchorPoint:     state.AnchorPoint,
		SwingForce:      c.lastForce,
	}
}

func (c *Character) Position() physics.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.body.Position
}

func (c *Character) Velocity() physics.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.body.Velocity
}

func (c *Character) CameraForward() physics.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.move.CameraForward()
}

// SetControlRotation points the camera, e.g. when a client attaches.
func (c *Character) SetControlRotation(r physics.Rotator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.move.SetControlRotation(r)
}

// SetPossessed attaches or detaches the controller.
func (c *Character) SetPossessed(possessed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.move.SetPossessed(possessed)
}

// Close detaches the character from the bus.
func (c *Character) Close() error {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	var errs []error
	for _, s := range subs {
		errs = append(errs, c.bus.Unsubscribe(s))
	}
	return errors.Join(errs...)
}

// view captures the body for the swing controller while c.mu is held.
func (c *Character) view() actorView {
	return actorView{
		position: c.body.Position,
		velocity: c.body.Velocity,
		forward:  c.move.CameraForward(),
	}
}

func (c *Character) beginSwing() {
	if _, err := c.swing.Begin(c.view()); err != nil {
		c.logger.Debug("swing begin ignored", log.Error(err))
	}
}

func (c *Character) releaseSwing() {
	if _, err := c.swing.Release(c.view()); err != nil {
		c.logger.Debug("swing release ignored", log.Error(err))
	}
}

type actorView struct {
	position, velocity, forward physics.Vec3
}

func (v actorView) Position() physics.Vec3      { return v.position }
func (v actorView) Velocity() physics.Vec3      { return v.velocity }
func (v actorView) CameraForward() physics.Vec3 { return v.forward }

var (
	_ swing.ActorContext = (*Character)(nil)
	_ swing.ActorContext = actorView{}
)
