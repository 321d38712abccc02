package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/webswing/internal/config"
	"github.com/zeusync/webswing/internal/core/events/bus"
	"github.com/zeusync/webswing/internal/core/observability/log"
	"github.com/zeusync/webswing/internal/core/observability/metrics"
	"github.com/zeusync/webswing/internal/core/world"
	"github.com/zeusync/webswing/internal/server"
)

// App is the fully wired process.
type App struct {
	Config  config.Config
	Logger  log.Log
	Metrics *metrics.Registry
	Bus     bus.EventBus
	World   *world.World
	Server  *server.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideBus,
	ProvideWorld,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) (log.Log, func(), error) {
	logger, err := log.NewWithConfig(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideMetrics() *metrics.Registry {
	return metrics.NewRegistry()
}

func ProvideBus(reg *metrics.Registry) (bus.EventBus, func()) {
	b := bus.New()
	obs := metrics.NewBusObserver(reg)
	b.AddObserver(obs)
	return b, func() { b.RemoveObserver(obs) }
}

func ProvideWorld(cfg config.Config, b bus.EventBus, reg *metrics.Registry, logger log.Log) (*world.World, func(), error) {
	w, err := world.New(cfg.Simulation, cfg.Character(), b, logger, world.WithMetrics(reg))
	if err != nil {
		return nil, nil, err
	}
	return w, func() { _ = w.Close() }, nil
}

func ProvideServer(cfg config.Config, w *world.World, b bus.EventBus, reg *metrics.Registry, logger log.Log) (*server.Server, func(), error) {
	s, err := server.NewServer(cfg.Server, w, b, logger, server.WithMetrics(reg))
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}
