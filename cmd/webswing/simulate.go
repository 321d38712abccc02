package main

import (
	"fmt"
	"sync"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/zeusync/webswing/internal/core/events/bus"
	"github.com/zeusync/webswing/internal/core/input"
	"github.com/zeusync/webswing/internal/core/observability/log"
	"github.com/zeusync/webswing/internal/core/systems/physics"
	"github.com/zeusync/webswing/internal/core/world"
	"github.com/zeusync/webswing/internal/server"
)

type simulateOptions struct {
	frames    int
	actors    int
	height    float64
	forward   float64
	yaw       float64
	pitch     float64
	swingAt   int
	releaseAt int
	every     int
}

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	so := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scripted headless swing and print JSON lines",
		Long: "Spawns actors in the air, holds MoveForward, presses Swing at --swing-at and " +
			"releases it at --release-at. Snapshots and gameplay events are written to stdout " +
			"in the same shape the WebSocket server sends.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := so.validate(); err != nil {
				return err
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger, err := log.NewWithConfig(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			b := bus.New()
			w, err := world.New(cfg.Simulation, cfg.Character(), b, logger)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			// events arrive from the shard goroutines during Tick
			var mu sync.Mutex
			enc := json.NewEncoder(cmd.OutOrStdout())
			var encErr error
			emit := func(msg server.ServerMessage) {
				mu.Lock()
				defer mu.Unlock()
				if encErr == nil {
					encErr = enc.Encode(msg)
				}
			}

			var frame int64
			for _, eventType := range []string{bus.TypeSwingStarted, bus.TypeSwingReleased} {
				if _, err := b.Subscribe(eventType, func(ev bus.Event) error {
					emit(server.ServerMessage{Type: server.MessageEvent, Frame: frame, Event: ev.Type(), Data: ev.Data()})
					return nil
				}); err != nil {
					return err
				}
			}

			for i := 0; i < so.actors; i++ {
				c, err := w.Spawn(fmt.Sprintf("sim-%d", i), physics.Vec3{Y: float64(i) * 500, Z: so.height})
				if err != nil {
					return err
				}
				c.SetControlRotation(physics.Rotator{Pitch: so.pitch, Yaw: so.yaw})
				if err := c.Input().SetAxis(input.AxisMoveForward, so.forward); err != nil {
					return err
				}
			}

			dt := cfg.Simulation.FixedDeltaTime()
			for frame = 1; frame <= int64(so.frames); frame++ {
				if err := so.script(w, frame); err != nil {
					return err
				}
				if err := w.Tick(cmd.Context(), dt); err != nil {
					return err
				}
				if frame%int64(so.every) == 0 || frame == int64(so.frames) {
					emit(server.ServerMessage{Type: server.MessageSnapshot, Frame: frame, Snapshots: w.Snapshots()})
				}
				mu.Lock()
				err := encErr
				mu.Unlock()
				if err != nil {
					return err
				}
			}
			logger.Info("simulation finished",
				log.Int64("frames", w.FrameCount()),
				log.Duration("simulated", w.TotalTime()))
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&so.frames, "frames", 240, "frames to simulate")
	f.IntVar(&so.actors, "actors", 1, "number of actors")
	f.Float64Var(&so.height, "height", 1500, "spawn height in cm")
	f.Float64Var(&so.forward, "forward", 1, "MoveForward axis value held for the whole run")
	f.Float64Var(&so.yaw, "yaw", 0, "initial camera yaw in degrees; the web is thrown along it")
	f.Float64Var(&so.pitch, "pitch", 0, "initial camera pitch in degrees, clamped to the movement limits")
	f.IntVar(&so.swingAt, "swing-at", 30, "frame at which Swing is pressed (0 disables)")
	f.IntVar(&so.releaseAt, "release-at", 150, "frame at which Swing is released (0 disables)")
	f.IntVar(&so.every, "every", 10, "emit a snapshot every N frames")
	return cmd
}

func (o *simulateOptions) validate() error {
	switch {
	case o.frames <= 0:
		return fmt.Errorf("--frames must be positive")
	case o.actors <= 0:
		return fmt.Errorf("--actors must be positive")
	case o.every <= 0:
		return fmt.Errorf("--every must be positive")
	case o.forward < -1 || o.forward > 1:
		return fmt.Errorf("--forward must be within [-1, 1]")
	}
	return nil
}

// script queues the swing presses for frame on every actor.
func (o *simulateOptions) script(w *world.World, frame int64) error {
	var key input.KeyEvent
	switch frame {
	case int64(o.swingAt):
		key = input.Pressed
	case int64(o.releaseAt):
		key = input.Released
	default:
		return nil
	}
	for _, c := range w.Actors() {
		if err := c.Input().PushAction(input.ActionSwing, key); err != nil {
			return err
		}
	}
	return nil
}
