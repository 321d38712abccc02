package swing

import (
	"github.com/zeusync/webswing/internal/core/events/bus"
	"github.com/zeusync/webswing/internal/core/observability/log"
)

// Controller moves one character between NotSwinging and Swinging.
// It is not safe for concurrent use; the owning character serialises calls.
type Controller struct {
	actorID string
	params  Params
	anchor  AnchorParams
	state   State

	bus    bus.EventBus
	logger log.Log
}

type Option func(*Controller)

// WithBus publishes swing.started and swing.released on b.
func WithBus(b bus.EventBus) Option {
	return func(c *Controller) { c.bus = b }
}

func WithLogger(l log.Log) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController validates params and returns a controller in NotSwinging.
func NewController(actorID string, params Params, anchor AnchorParams, opts ...Option) (*Controller, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := anchor.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		actorID: actorID,
		params:  params,
		anchor:  anchor,
		logger:  log.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(log.String("actor_id", actorID))
	return c, nil
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Phase() Phase { return c.state.Phase() }

func (c *Controller) Params() Params { return c.params }

// Begin starts a swing: the state is reset and a fresh anchor is chosen from
// the actor's current position, camera and vertical speed.
func (c *Controller) Begin(actor ActorContext) (State, error) {
	if actor == nil {
		return c.state, ErrNilActor
	}
	if c.state.IsSwinging {
		return c.state, ErrAlreadySwinging
	}

	position := actor.Position()
	vz := actor.Velocity().Z
	c.state = State{
		IsSwinging:  true,
		AnchorPoint: c.anchor.AnchorPoint(position, actor.CameraForward(), vz),
	}

	reach := c.anchor.VerticalReach(vz)
	c.logger.Debug("swing started",
		log.Stringer("anchor", c.state.AnchorPoint),
		log.Stringer("position", position),
		log.Float64("vertical_reach", reach))
	c.publish(bus.TypeSwingStarted, Event{
		ActorID:       c.actorID,
		AnchorPoint:   c.state.AnchorPoint,
		Position:      position,
		VerticalReach: reach,
	})
	return c.state, nil
}

// Release ends the swing. The last anchor stays readable until the next Begin.
func (c *Controller) Release(actor ActorContext) (State, error) {
	if !c.state.IsSwinging {
		return c.state, ErrNotSwinging
	}
	c.state.IsSwinging = false

	ev := Event{ActorID: c.actorID, AnchorPoint: c.state.AnchorPoint}
	if actor != nil {
		ev.Position = actor.Position()
	}
	c.logger.Debug("swing released", log.Stringer("anchor", c.state.AnchorPoint))
	c.publish(bus.TypeSwingReleased, ev)
	return c.state, nil
}

// Step computes this tick's force and orientation. ok is false when the
// character is not swinging.
func (c *Controller) Step(actor ActorContext) (step Step, ok bool) {
	if !c.state.IsSwinging || actor == nil {
		return Step{}, false
	}
	position := actor.Position()
	velocity := actor.Velocity()
	return Step{
		Force:       ComputeSwingForce(c.state.AnchorPoint, position, velocity, c.params),
		Orientation: ComputeSwingOrientation(c.state.AnchorPoint, position, velocity),
	}, true
}

func (c *Controller) publish(eventType string, ev Event) {
	if c.bus == nil {
		return
	}
	if err := c.bus.Publish(bus.NewEvent(eventType, c.actorID, ev)); err != nil {
		c.logger.Warn("swing event handler failed", log.String("event", eventType), log.Error(err))
	}
}
