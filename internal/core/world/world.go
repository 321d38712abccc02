// Package world owns every character and advances them on a fixed timestep.
package world

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/webswing/internal/core/character"
	"github.com/zeusync/webswing/internal/core/events/bus"
	"github.com/zeusync/webswing/internal/core/observability/log"
	"github.com/zeusync/webswing/internal/core/observability/metrics"
	"github.com/zeusync/webswing/internal/core/systems/physics"
)

// ActorEvent is the payload of actor.spawned and actor.removed.
type ActorEvent struct {
	ActorID  string       `json:"actor_id"`
	Position physics.Vec3 `json:"position"`
}

type World struct {
	cfg      Config
	actorCfg character.Config
	actors   *registry
	count    atomic.Int64

	frame     atomic.Int64
	totalNs   atomic.Int64
	lastDelta atomic.Uint64 // math.Float64bits
	paused    atomic.Bool
	closed    atomic.Bool

	bus    bus.EventBus
	logger log.Log

	tickTimer   metrics.Timer
	actorGauge  metrics.Gauge
	actorErrors metrics.Counter
}

type Option func(*World)

// WithMetrics reports tick durations, the actor count and failed actor
// ticks into r.
func WithMetrics(r *metrics.Registry) Option {
	return func(w *World) {
		w.tickTimer = r.Timer("world.tick")
		w.actorGauge = r.Gauge("world.actors")
		w.actorErrors = r.Counter("world.actor_errors")
	}
}

// New validates both configurations. b may be nil, in which case characters
// only receive input pushed directly to them.
func New(cfg Config, actorCfg character.Config, b bus.EventBus, logger log.Log, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := actorCfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Nop()
	}
	w := &World{
		cfg:      cfg,
		actorCfg: actorCfg,
		actors:   newRegistry(cfg.Shards),
		bus:      b,
		logger:   logger.With(log.String("component", "world")),
	}
	WithMetrics(nil)(w)
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *World) Config() Config { return w.cfg }

// Spawn creates a character at position. An empty id gets a generated one.
func (w *World) Spawn(id string, position physics.Vec3) (*character.Character, error) {
	if w.closed.Load() {
		return nil, ErrWorldClosed
	}
	if n := w.count.Add(1); w.cfg.MaxActors > 0 && n > int64(w.cfg.MaxActors) {
		w.count.Add(-1)
		return nil, fmt.Errorf("%w: %d actors", ErrWorldFull, w.cfg.MaxActors)
	}

	opts := []character.Option{character.WithLogger(w.logger), character.WithID(id)}
	if w.bus != nil {
		opts = append(opts, character.WithBus(w.bus))
	}
	c, err := character.New(w.actorCfg, position, opts...)
	if err != nil {
		w.count.Add(-1)
		return nil, err
	}
	if !w.actors.insert(c) {
		w.count.Add(-1)
		_ = c.Close()
		return nil, fmt.Errorf("%w: %s", ErrActorExists, c.ID())
	}

	w.actorGauge.Inc()
	w.logger.Info("actor spawned", log.String("actor_id", c.ID()), log.Stringer("position", position))
	w.publish(bus.TypeActorSpawned, ActorEvent{ActorID: c.ID(), Position: c.Position()})
	return c, nil
}

// Remove detaches the character from the bus and forgets it.
func (w *World) Remove(id string) error {
	c, ok := w.actors.remove(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrActorNotFound, id)
	}
	w.count.Add(-1)
	w.actorGauge.Dec()
	if err := c.Close(); err != nil {
		w.logger.Warn("actor close failed", log.String("actor_id", id), log.Error(err))
	}
	if w.bus != nil {
		w.bus.DropTopic(id)
	}
	w.logger.Info("actor removed", log.String("actor_id", id))
	w.publish(bus.TypeActorRemoved, ActorEvent{ActorID: id, Position: c.Position()})
	return nil
}

func (w *World) Get(id string) (*character.Character, bool) {
	return w.actors.get(id)
}

func (w *World) Len() int { return int(w.count.Load()) }

// Actors returns every character ordered by id.
func (w *World) Actors() []*character.Character { return w.actors.all() }

// Snapshots returns the state of every character ordered by id.
func (w *World) Snapshots() []character.Snapshot {
	actors := w.actors.all()
	out := make([]character.Snapshot, len(actors))
	for i, c := range actors {
		out[i] = c.Snapshot()
	}
	return out
}

// Tick advances every actor by dt seconds. Shards run in parallel, at most
// Workers at a time; actors inside a shard tick one after another. A paused
// world does not advance. A failing actor is logged and does not stop the
// others; only context cancellation aborts the tick.
func (w *World) Tick(ctx context.Context, dt float64) error {
	if w.closed.Load() {
		return ErrWorldClosed
	}
	if w.paused.Load() {
		return nil
	}

	defer w.tickTimer.Start()()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Workers)
	for _, s := range w.actors.shards {
		g.Go(func() error {
			for _, c := range s.members() {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := c.Tick(dt); err != nil {
					w.actorErrors.Inc()
					w.logger.Warn("actor tick failed", log.String("actor_id", c.ID()), log.Error(err))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w.frame.Add(1)
	w.totalNs.Add(int64(dt * float64(time.Second)))
	w.lastDelta.Store(math.Float64bits(dt))
	return nil
}

// Run ticks at the configured rate until ctx is cancelled. onTick, if set,
// is called after every completed frame from the loop goroutine.
func (w *World) Run(ctx context.Context, onTick func(frame int64)) error {
	ticker := time.NewTicker(w.cfg.Interval())
	defer ticker.Stop()

	dt := w.cfg.FixedDeltaTime()
	w.logger.Info("simulation started",
		log.Float64("tick_rate", w.cfg.TickRate),
		log.Int("workers", w.cfg.Workers))
	defer w.logger.Info("simulation stopped", log.Int64("frames", w.FrameCount()))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			before := w.FrameCount()
			if err := w.Tick(ctx, dt); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if frame := w.FrameCount(); onTick != nil && frame != before {
				onTick(frame)
			}
		}
	}
}

func (w *World) SetPaused(paused bool) { w.paused.Store(paused) }

func (w *World) IsPaused() bool { return w.paused.Load() }

func (w *World) FrameCount() int64 { return w.frame.Load() }

func (w *World) TotalTime() time.Duration { return time.Duration(w.totalNs.Load()) }

// DeltaTime is the step of the last completed tick.
func (w *World) DeltaTime() float64 { return math.Float64frombits(w.lastDelta.Load()) }

func (w *World) FixedDeltaTime() float64 { return w.cfg.FixedDeltaTime() }

// Close removes every actor. Further Spawn and Tick calls fail.
func (w *World) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	for _, c := range w.actors.all() {
		_ = w.Remove(c.ID())
	}
	return nil
}

func (w *World) publish(eventType string, ev ActorEvent) {
	if w.bus == nil {
		return
	}
	if err := w.bus.Publish(bus.NewEvent(eventType, "world", ev)); err != nil {
		w.logger.Warn("world event handler failed", log.String("event", eventType), log.Error(err))
	}
}
