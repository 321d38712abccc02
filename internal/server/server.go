// Package server exposes the simulation over WebSocket: clients send input
// for their actor and receive periodic world snapshots and gameplay events.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/webswing/internal/core/events/bus"
	"github.com/zeusync/webswing/internal/core/observability/log"
	"github.com/zeusync/webswing/internal/core/observability/metrics"
	"github.com/zeusync/webswing/internal/core/world"
)

// Server represents a webswing game server
type Server struct {
	// Core components
	world      *world.World
	bus        bus.EventBus
	httpServer *http.Server
	listener   net.Listener
	subs       []bus.Subscription

	// Client management
	clients     sync.Map // map[string]*ClientSession
	clientCount int64    // atomic

	// Server state
	running int32 // atomic bool
	closed  int32 // atomic bool

	// Configuration and logging
	config  Config
	logger  log.Log
	metrics *metrics.Registry

	received  metrics.Counter
	rejected  metrics.Counter
	throttled metrics.Counter
	dropped   metrics.Counter
	connected metrics.Gauge

	// Background workers
	workerGroup sync.WaitGroup
	sessions    sync.WaitGroup
	stopChan    chan struct{}
}

type Option func(*Server)

// WithMetrics counts client traffic into r and adds r to /healthz.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Server) { s.metrics = r }
}

// NewServer creates a server for w. Input from clients is published on b,
// which must be the bus the world's characters listen on.
func NewServer(config Config, w *world.World, b bus.EventBus, logger log.Log, opts ...Option) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Nop()
	}

	server := &Server{
		world:  w,
		bus:    b,
		config: config,
		logger: logger.With(log.String("component", "server")),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.received = server.metrics.Counter("server.messages_received")
	server.rejected = server.metrics.Counter("server.messages_rejected")
	server.throttled = server.metrics.Counter("server.messages_throttled")
	server.dropped = server.metrics.Counter("server.broadcasts_dropped")
	server.connected = server.metrics.Gauge("server.clients")

	server.logger.Info("Server created",
		log.String("listen_addr", config.ListenAddr),
		log.Int("max_clients", config.MaxClients))

	return server, nil
}

// Handler serves /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start starts the server
func (s *Server) Start(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}

	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	s.logger.Info("Starting server")

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return errors.Join(ErrListenerFailed, err)
	}
	s.listener = listener
	s.stopChan = make(chan struct{})
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := s.subscribeEvents(); err != nil {
		atomic.StoreInt32(&s.running, 0)
		_ = listener.Close()
		return err
	}

	s.logger.Info("Server listening", log.String("addr", listener.Addr().String()))

	// Start background workers
	s.startWorkers()

	s.workerGroup.Add(1)
	go func() {
		defer s.workerGroup.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		}
	}()

	s.logger.Info("Server started successfully")

	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server")

	// Signal stop
	close(s.stopChan)

	for _, sub := range s.subs {
		_ = s.bus.Unsubscribe(sub)
	}
	s.subs = nil

	// Hijacked WebSocket connections are not tracked by Shutdown.
	err := s.httpServer.Shutdown(ctx)

	// Disconnect all clients
	s.clients.Range(func(_, value any) bool {
		if session, ok := value.(*ClientSession); ok {
			session.close()
		}
		return true
	})

	// Wait for workers to stop
	s.stopWorkers()

	drained := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		s.logger.Warn("Sessions still draining at shutdown deadline")
		err = errors.Join(err, ctx.Err())
	}

	s.logger.Info("Server stopped")

	return err
}

// Close closes the server and releases all resources
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil // Already closed
	}

	s.logger.Info("Closing server")

	// Stop if running
	if atomic.LoadInt32(&s.running) == 1 {
		_ = s.Stop(context.Background())
	}

	s.logger.Info("Server closed")

	return nil
}

// Addr is the bound listen address once started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// OnTick broadcasts world snapshots every SnapshotEvery frames. It is meant
// to be passed to world.Run.
func (s *Server) OnTick(frame int64) {
	if atomic.LoadInt32(&s.running) == 0 || frame%int64(s.config.SnapshotEvery) != 0 {
		return
	}
	if atomic.LoadInt64(&s.clientCount) == 0 {
		return
	}
	s.broadcast(ServerMessage{Type: MessageSnapshot, Frame: frame, Snapshots: s.world.Snapshots()})
}

// broadcast encodes msg once and queues it for every client.
func (s *Server) broadcast(msg ServerMessage) {
	data, err := encode(msg)
	if err != nil {
		s.logger.Error("Failed to encode broadcast", log.String("type", msg.Type), log.Error(err))
		return
	}
	dropped := 0
	s.clients.Range(func(_, value any) bool {
		if !value.(*ClientSession).enqueue(data) {
			dropped++
		}
		return true
	})
	if dropped > 0 {
		s.dropped.Add(float64(dropped))
		s.logger.Debug("Broadcast dropped for slow clients",
			log.String("type", msg.Type),
			log.Int("dropped", dropped))
	}
}

// subscribeEvents forwards gameplay notifications to every client. Handlers
// may run while a character is mid-tick, so they only enqueue.
func (s *Server) subscribeEvents() error {
	forward := func(ev bus.Event) error {
		s.broadcast(ServerMessage{Type: MessageEvent, Event: ev.Type(), Data: ev.Data()})
		return nil
	}
	for _, eventType := range []string{
		bus.TypeSwingStarted,
		bus.TypeSwingReleased,
		bus.TypeActorSpawned,
		bus.TypeActorRemoved,
	} {
		sub, err := s.bus.Subscribe(eventType, forward)
		if err != nil {
			for _, prev := range s.subs {
				_ = s.bus.Unsubscribe(prev)
			}
			s.subs = nil
			return err
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

// GetStats returns server statistics
func (s *Server) GetStats() Stats {
	return Stats{
		ClientCount: atomic.LoadInt64(&s.clientCount),
		ActorCount:  int64(s.world.Len()),
		Frame:       s.world.FrameCount(),
		Running:     atomic.LoadInt32(&s.running) == 1,
	}
}

// Stats contains server statistics
type Stats struct {
	ClientCount int64 `json:"clients"`
	ActorCount  int64 `json:"actors"`
	Frame       int64 `json:"frame"`
	Running     bool  `json:"running"`
}

// startWorkers starts background worker goroutines
func (s *Server) startWorkers() {
	s.workerGroup.Add(1)

	// Health monitor
	go func() {
		defer s.workerGroup.Done()
		s.healthMonitor()
	}()
}

// stopWorkers stops background worker goroutines
func (s *Server) stopWorkers() {
	s.workerGroup.Wait()
}

// healthMonitor monitors client health
func (s *Server) healthMonitor() {
	s.logger.Debug("Health monitor started")

	ticker := time.NewTicker(s.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.performHealthChecks(time.Now())
		case <-s.stopChan:
			s.logger.Debug("Health monitor stopped")
			return
		}
	}
}

// performHealthChecks disconnects clients that sent nothing for ClientTimeout.
func (s *Server) performHealthChecks(now time.Time) int {
	if s.config.ClientTimeout <= 0 {
		return 0
	}
	deadline := now.Add(-s.config.ClientTimeout).UnixNano()

	var idle []*ClientSession
	s.clients.Range(func(_, value any) bool {
		session := value.(*ClientSession)
		if session.LastSeen.Load() < deadline {
			idle = append(idle, session)
		}
		return true
	})

	for _, session := range idle {
		s.logger.Info("Disconnecting inactive client", log.String("client_id", session.ID))
		session.close()
	}

	if len(idle) > 0 {
		s.logger.Info("Health check completed",
			log.Int("disconnected_clients", len(idle)),
			log.Int64("active_clients", atomic.LoadInt64(&s.clientCount)))
	}
	return len(idle)
}
