package server

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/zeusync/webswing/internal/core/character"
	"github.com/zeusync/webswing/internal/core/events/bus"
	"github.com/zeusync/webswing/internal/core/input"
	"github.com/zeusync/webswing/internal/core/observability/log"
	"github.com/zeusync/webswing/internal/core/systems/physics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients are served from anywhere.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ClientSession represents a connected WebSocket client driving one actor.
type ClientSession struct {
	ID          string
	ActorID     string
	Owned       bool // the actor was spawned for this session
	ConnectedAt time.Time
	LastSeen    atomic.Int64 // unix nanoseconds

	conn      *websocket.Conn
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
	limiter   *rate.Limiter
	throttled bool // read loop only
}

// enqueue hands data to the write pump. It never blocks: a full buffer
// drops the message.
func (c *ClientSession) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- data:
		return true
	default:
		return false
	}
}

func (c *ClientSession) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *ClientSession) writePump(timeout time.Duration, logger log.Log) {
	defer c.close()
	for {
		select {
		case <-c.done:
			return
		case data := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Debug("Write failed", log.Error(err))
				return
			}
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&s.running) == 0 {
		http.Error(w, ErrServerNotRunning.Error(), http.StatusServiceUnavailable)
		return
	}
	if n := atomic.AddInt64(&s.clientCount, 1); int(n) > s.config.MaxClients {
		atomic.AddInt64(&s.clientCount, -1)
		s.logger.Warn("Maximum clients reached, rejecting connection",
			log.String("remote_addr", r.RemoteAddr))
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	s.sessions.Add(1)
	defer s.sessions.Done()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		atomic.AddInt64(&s.clientCount, -1)
		s.logger.Warn("WebSocket upgrade failed", log.Error(err))
		return
	}

	actor, owned, err := s.attach(r.URL.Query().Get("actor"))
	if err != nil {
		atomic.AddInt64(&s.clientCount, -1)
		s.logger.Warn("Failed to attach actor", log.Error(err))
		if data, encErr := encode(ServerMessage{Type: MessageError, Error: err.Error()}); encErr == nil {
			_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			_ = conn.WriteMessage(websocket.TextMessage, data)
		}
		_ = conn.Close()
		return
	}

	session := &ClientSession{
		ID:          uuid.NewString(),
		ActorID:     actor.ID(),
		Owned:       owned,
		ConnectedAt: time.Now(),
		conn:        conn,
		out:         make(chan []byte, s.config.SendBuffer),
		done:        make(chan struct{}),
		limiter:     rate.NewLimiter(rate.Limit(s.config.InputRate), s.config.InputBurst),
	}
	session.LastSeen.Store(time.Now().UnixNano())

	clientLogger := s.logger.With(
		log.String("client_id", session.ID),
		log.String("actor_id", session.ActorID))
	if !s.register(session) {
		clientLogger.Info("Server stopped during handshake, dropping client")
		s.disconnect(session, clientLogger)
		return
	}
	clientLogger.Info("Client connected",
		log.String("remote_addr", r.RemoteAddr),
		log.Bool("owned", owned),
		log.Int64("total_clients", atomic.LoadInt64(&s.clientCount)))

	s.sessions.Add(1)
	go func() {
		defer s.sessions.Done()
		session.writePump(s.config.WriteTimeout, clientLogger)
	}()

	s.send(session, ServerMessage{Type: MessageWelcome, ActorID: session.ActorID, Frame: s.world.FrameCount()})
	s.readLoop(session, clientLogger)
	s.disconnect(session, clientLogger)
}

// register publishes the session to the client set. A Stop that ran while
// the handshake was in flight has already swept the set, so the session is
// closed here instead and register reports false.
func (s *Server) register(session *ClientSession) bool {
	s.clients.Store(session.ID, session)
	s.connected.Inc()
	if atomic.LoadInt32(&s.running) == 0 {
		session.close()
		return false
	}
	return true
}

// attach returns the requested actor, spawning it when it does not exist yet.
func (s *Server) attach(actorID string) (*character.Character, bool, error) {
	if actorID != "" {
		if c, ok := s.world.Get(actorID); ok {
			return c, false, nil
		}
	}
	c, err := s.world.Spawn(actorID, physics.Zero)
	if err != nil {
		return nil, false, fmt.Errorf("spawn actor: %w", err)
	}
	return c, true, nil
}

func (s *Server) readLoop(session *ClientSession, clientLogger log.Log) {
	session.conn.SetReadLimit(s.config.MaxMessageSize)
	for {
		_, data, err := session.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				clientLogger.Warn("Failed to receive message", log.Error(err))
			}
			return
		}
		session.LastSeen.Store(time.Now().UnixNano())
		s.received.Inc()

		if !session.limiter.Allow() {
			s.throttled.Inc()
			if !session.throttled {
				session.throttled = true
				clientLogger.Debug("Client throttled")
				s.sendError(session, ErrRateLimited)
			}
			continue
		}
		session.throttled = false

		if err := s.handleMessage(session, data); err != nil {
			s.rejected.Inc()
			clientLogger.Debug("Rejected message", log.Error(err))
			s.sendError(session, err)
		}
	}
}

// handleMessage routes one client frame onto the actor's input topic.
func (s *Server) handleMessage(session *ClientSession, data []byte) error {
	msg, err := decode(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	var ev bus.Event
	switch msg.Type {
	case MessageAction:
		ev = bus.NewEvent(bus.TypeInputAction, session.ID, input.ActionMessage{Name: msg.Name, Pressed: msg.Pressed})
	case MessageAxis:
		ev = bus.NewEvent(bus.TypeInputAxis, session.ID, input.AxisMessage{Name: msg.Name, Value: msg.Value})
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, msg.Type)
	}
	return s.bus.PublishToTopic(session.ActorID, ev)
}

func (s *Server) disconnect(session *ClientSession, clientLogger log.Log) {
	session.close()
	s.clients.Delete(session.ID)
	atomic.AddInt64(&s.clientCount, -1)
	s.connected.Dec()

	if session.Owned {
		if err := s.world.Remove(session.ActorID); err != nil {
			clientLogger.Debug("Actor already gone", log.Error(err))
		}
	}
	clientLogger.Info("Client disconnected",
		log.Duration("session", time.Since(session.ConnectedAt)),
		log.Int64("total_clients", atomic.LoadInt64(&s.clientCount)))
}

func (s *Server) send(session *ClientSession, msg ServerMessage) {
	data, err := encode(msg)
	if err != nil {
		s.logger.Error("Failed to encode message", log.String("type", msg.Type), log.Error(err))
		return
	}
	session.enqueue(data)
}

func (s *Server) sendError(session *ClientSession, err error) {
	s.send(session, ServerMessage{Type: MessageError, Error: err.Error()})
}
