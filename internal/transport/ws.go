package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"
	"github.com/kreid06/pirate-game-4-sub000/internal/observability"
	"github.com/kreid06/pirate-game-4-sub000/internal/proto"
	"github.com/kreid06/pirate-game-4-sub000/internal/session"
	"github.com/kreid06/pirate-game-4-sub000/internal/sim/entities"
	"github.com/kreid06/pirate-game-4-sub000/internal/sim/rules"
)

const (
	// ReadDeadline is the read deadline for WebSocket connections (60 seconds)
	ReadDeadline = 60 * time.Second
	// WriteDeadline is the write deadline for WebSocket connections (10 seconds)
	WriteDeadline = 10 * time.Second
	// PongWait is the time to wait for pong response (equal to ReadDeadline)
	PongWait = 60 * time.Second
	// PingPeriod is how often to send ping messages (must be less than PongWait)
	PingPeriod = (PongWait * 9) / 10
)

var (
	// upgrader is the WebSocket upgrader used for HTTP to WebSocket upgrades
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// For now, allow all origins. In production, this should validate
			// the origin against a whitelist.
			return true
		},
	}
)

// Connection manages a WebSocket connection lifecycle.
// It provides methods for reading and writing messages, and graceful closure.
type Connection struct {
	conn      *websocket.Conn
	done      chan struct{}
	writeChan chan []byte
	startTime time.Time
}

// NewConnection creates a new Connection wrapper around a WebSocket connection.
func NewConnection(conn *websocket.Conn) *Connection {
	c := &Connection{
		conn:      conn,
		done:      make(chan struct{}),
		writeChan: make(chan []byte, 256),
		startTime: time.Now(),
	}

	// Set read deadline and pong handler
	conn.SetReadDeadline(time.Now().Add(PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(PongWait))
		return nil
	})

	// Start write pump (handles all writes including pings)
	go c.writePump()

	return c
}

// GetStartTime returns the connection start time.
func (c *Connection) GetStartTime() time.Time {
	return c.startTime
}

// UpgradeConnection upgrades an HTTP connection to a WebSocket connection.
// Returns the WebSocket connection or an error if the upgrade fails.
func UpgradeConnection(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	return conn, nil
}

// ReadMessage reads a JSON text message from the WebSocket connection.
// Returns the message bytes or an error if the read fails.
func (c *Connection) ReadMessage() ([]byte, error) {
	messageType, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	// Only accept text messages (JSON)
	if messageType != websocket.TextMessage {
		return nil, websocket.ErrBadHandshake
	}

	// Record bytes in and message count
	if len(data) > 0 {
		if bytesCounter := observability.GetConnectionBytesCounter(); bytesCounter != nil {
			bytesCounter.WithLabelValues("in").Add(float64(len(data)))
		}
		if msgCounter := observability.GetMessagesCounter(); msgCounter != nil {
			msgCounter.WithLabelValues("in").Inc()
		}
	}

	return data, nil
}

// WriteMessage enqueues a JSON text message to be written to the WebSocket connection.
// Returns an error if the connection is closed or the message cannot be enqueued.
func (c *Connection) WriteMessage(data []byte) error {
	select {
	case <-c.done:
		return fmt.Errorf("connection closed")
	case c.writeChan <- data:
		return nil
	}
}

// Close gracefully closes the WebSocket connection.
// It can be called multiple times safely.
// Closing c.done signals writePump to exit, then the underlying connection is closed.
func (c *Connection) Close() error {
	select {
	case <-c.done:
		// Already closed
		return nil
	default:
		close(c.done)
		// writePump exits on c.done. writeChan is left open: WriteMessage's
		// select may still pick its send case after c.done is closed, and a
		// send on a closed channel would panic.
		return c.conn.Close()
	}
}

// writePump handles all writes to the WebSocket connection.
// It processes messages from writeChan and sends periodic ping messages.
// This ensures only one goroutine writes to the connection, preventing concurrent write panics.
// Messages are prioritized over pings, and pending messages are batched for efficiency.
func (c *Connection) writePump() {
	pingTicker := time.NewTicker(PingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-c.done:
			return

		case data, ok := <-c.writeChan:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.writeMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-pingTicker.C:
			// Before sending a ping, check if there is a message ready.
			select {
			case data, ok := <-c.writeChan:
				if !ok {
					_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}

				if err := c.writeMessage(websocket.TextMessage, data); err != nil {
					return
				}
			default:
				// Truly idle: safe to ping
				if err := c.writeMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}

		// Drain pending messages after any write for efficiency
	drain:
		for {
			select {
			case <-c.done:
				return
			case data, ok := <-c.writeChan:
				if !ok {
					_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}

				if err := c.writeMessage(websocket.TextMessage, data); err != nil {
					return
				}
			default:
				break drain
			}
		}
	}
}

// writeMessage writes a message to the WebSocket connection and records metrics.
func (c *Connection) writeMessage(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(WriteDeadline))
	if err := c.conn.WriteMessage(messageType, data); err != nil {
		return err
	}

	if messageType == websocket.TextMessage && len(data) > 0 {
		c.recordMetrics(data)
	}

	return nil
}

// recordMetrics records bytes and message count metrics for outgoing messages.
func (c *Connection) recordMetrics(data []byte) {
	if len(data) > 0 {
		if bytesCounter := observability.GetConnectionBytesCounter(); bytesCounter != nil {
			bytesCounter.WithLabelValues("out").Add(float64(len(data)))
		}
		if msgCounter := observability.GetMessagesCounter(); msgCounter != nil {
			msgCounter.WithLabelValues("out").Inc()
		}
	}
}

// InputMessageHandler handles InputMessage messages.
type InputMessageHandler interface {
	HandleInput(msg *proto.InputMessage) error
}

// RestartMessageHandler handles RestartMessage messages.
type RestartMessageHandler interface {
	HandleRestart(msg *proto.RestartMessage) error
}

// HitClaimMessageHandler handles HitClaimMessage messages.
type HitClaimMessageHandler interface {
	HandleHitClaim(msg *proto.HitClaimMessage) error
}

// ParseMessage parses a JSON message and returns a typed message (InputMessage, RestartMessage or HitClaimMessage).
// Returns an error if the message is malformed, invalid, or of unknown type.
func ParseMessage(data []byte) (interface{}, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty message")
	}

	// First, parse into a generic map to determine message type
	var msgType map[string]interface{}
	if err := json.Unmarshal(data, &msgType); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	// Check if "t" field exists
	typeField, ok := msgType["t"]
	if !ok {
		return nil, fmt.Errorf("missing message type field 't'")
	}

	typeStr, ok := typeField.(string)
	if !ok {
		return nil, fmt.Errorf("message type field 't' must be a string")
	}

	// Route to appropriate message type
	switch typeStr {
	case "input":
		var msg proto.InputMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to parse InputMessage: %w", err)
		}
		if err := proto.ValidateInputMessage(&msg); err != nil {
			return nil, fmt.Errorf("invalid InputMessage: %w", err)
		}
		return &msg, nil

	case "restart":
		var msg proto.RestartMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to parse RestartMessage: %w", err)
		}
		if err := proto.ValidateRestartMessage(&msg); err != nil {
			return nil, fmt.Errorf("invalid RestartMessage: %w", err)
		}
		return &msg, nil

	case "hit_claim":
		var msg proto.HitClaimMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to parse HitClaimMessage: %w", err)
		}
		if err := proto.ValidateHitClaimMessage(&msg); err != nil {
			return nil, fmt.Errorf("invalid HitClaimMessage: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unknown message type: %s", typeStr)
	}
}

// RouteMessage parses a JSON message, validates it, and routes it to the
// appropriate handler. hitHandler may be nil for callers that do not
// support hit claims; all other unmatched types return an error.
func RouteMessage(data []byte, inputHandler InputMessageHandler, restartHandler RestartMessageHandler, hitHandler HitClaimMessageHandler) error {
	msg, err := ParseMessage(data)
	if err != nil {
		return err
	}

	// Route to appropriate handler
	switch m := msg.(type) {
	case *proto.InputMessage:
		if inputHandler == nil {
			return fmt.Errorf("InputMessageHandler is nil")
		}
		return inputHandler.HandleInput(m)

	case *proto.RestartMessage:
		if restartHandler == nil {
			return fmt.Errorf("RestartMessageHandler is nil")
		}
		return restartHandler.HandleRestart(m)

	case *proto.HitClaimMessage:
		if hitHandler == nil {
			return fmt.Errorf("HitClaimMessageHandler is nil")
		}
		return hitHandler.HandleHitClaim(m)

	default:
		return fmt.Errorf("unexpected message type: %T", msg)
	}
}

// ErrorMessage represents an error response message.
type ErrorMessage struct {
	Type    string `json:"t"`
	Message string `json:"message"`
}

// NewErrorMessage creates a JSON error response message.
func NewErrorMessage(err error) []byte {
	errorMsg := ErrorMessage{
		Type:    "error",
		Message: err.Error(),
	}
	data, _ := json.Marshal(errorMsg)
	return data
}

// NewInitialWorld creates the default starting world for a fresh game
// server: one ship near the origin and no players, matching the
// minimal hull a newly connecting client needs to see before anyone
// has spawned.
func NewInitialWorld() entities.World {
	hull := []entities.Vec2{
		entities.NewVec2(20, 0),
		entities.NewVec2(-10, 12),
		entities.NewVec2(-10, -12),
	}
	ship := entities.NewShip(1, entities.NewVec2(0, 0), 0, hull, 5000, 40000, 120, 1.2, 0.02, 0.05)
	return entities.NewWorld([]entities.Ship{ship}, nil)
}

// GameServer owns the single authoritative Session shared by every
// connected client, and the per-connection registry used to broadcast
// snapshots and route carrier/hit events back out.
type GameServer struct {
	mu      sync.Mutex
	sess    *session.Session
	clients map[uint32]*Connection
	nextID  uint32
	clock   session.Clock

	done chan struct{}
}

// NewGameServer creates a game server around a fresh session built
// from the given initial world and the compile-time default config.
func NewGameServer(clock session.Clock, initialWorld entities.World, logger logr.Logger) *GameServer {
	sess := session.NewSession(clock, initialWorld, session.DefaultConfig(), 256)
	if logger.Enabled() {
		sess.SetLogger(logger)
	}
	return &GameServer{
		sess:    sess,
		clients: make(map[uint32]*Connection),
		clock:   clock,
		done:    make(chan struct{}),
	}
}

// Register assigns a new client id to conn and adds it to the
// broadcast registry.
func (g *GameServer) Register(conn *Connection) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	id := g.nextID
	g.clients[id] = conn
	return id
}

// Unregister drops a client's connection and all session-side state
// for it (buffered input, anti-cheat history, tracked delay).
func (g *GameServer) Unregister(clientID uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.clients, clientID)
	g.sess.RemoveClient(clientID)
}

// SubmitInput screens and enqueues one client's input frame.
func (g *GameServer) SubmitInput(clientID uint32, msg *proto.InputMessage) error {
	msg.ClientID = clientID
	nowMS := g.clock.Now().UnixMilli()
	frame := InputMessageToFrame(*msg, g.sess.GetWorld().Tick)
	if !g.sess.SubmitInput(frame, nowMS) {
		return fmt.Errorf("input rejected for client %d", clientID)
	}
	return nil
}

// ResetClientState clears a client's buffered input and anti-cheat
// history without touching the shared world; spawning or repositioning
// the client's player is a separate concern this handler does not own.
func (g *GameServer) ResetClientState(clientID uint32) {
	g.sess.RemoveClient(clientID)
}

// ValidateHitClaim answers a lag-compensated hit claim against the
// rewind ring.
func (g *GameServer) ValidateHitClaim(msg *proto.HitClaimMessage) proto.HitValidationMessage {
	origin, direction, rng, reportedTick := HitClaimMessageToValidationInput(*msg)
	result := g.sess.Rewind().ValidateHit(msg.ClientID, reportedTick, origin, direction, rng, g.clock.Now().UnixMilli())
	if counter := observability.GetRewindHitsCounter(); counter != nil {
		if result.HitValid {
			counter.WithLabelValues("true").Inc()
		} else {
			counter.WithLabelValues("false").Inc()
		}
	}
	return HitValidationToMessage(result)
}

// Run drives the tick loop and periodic snapshot/event broadcast until
// Stop is called.
func (g *GameServer) Run() {
	sessionTicker := time.NewTicker(33 * time.Millisecond)
	snapshotTicker := time.NewTicker(100 * time.Millisecond)
	defer sessionTicker.Stop()
	defer snapshotTicker.Stop()

	for {
		select {
		case <-g.done:
			return

		case <-sessionTicker.C:
			results := g.sess.Run(10)
			g.broadcastEvents(results)

		case <-snapshotTicker.C:
			snapshot := WorldToSnapshot(g.sess.GetWorld())
			data, err := json.Marshal(snapshot)
			if err != nil {
				continue
			}
			g.broadcast(data)
		}
	}
}

// Stop halts the broadcast loop. It does not close client connections.
func (g *GameServer) Stop() {
	close(g.done)
}

func (g *GameServer) broadcastEvents(results []rules.StepResult) {
	for _, result := range results {
		for _, ev := range result.CarrierEvents {
			var data []byte
			var err error
			switch ev.Kind {
			case rules.CarrierChanged:
				data, err = json.Marshal(CarrierChangedMessage(ev))
			default:
				data, err = json.Marshal(LeftDeckMessage(ev))
			}
			if err == nil {
				g.broadcast(data)
			}
		}
	}
}

func (g *GameServer) broadcast(data []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, conn := range g.clients {
		_ = conn.WriteMessage(data)
	}
}

// SessionHandler adapts one WebSocket connection's incoming messages to
// the shared GameServer, tagging every message with the connection's
// assigned client id.
type SessionHandler struct {
	server   *GameServer
	clientID uint32
}

// NewSessionHandler registers conn with server and returns a handler
// for its incoming messages.
func NewSessionHandler(server *GameServer, conn *Connection) *SessionHandler {
	return &SessionHandler{server: server, clientID: server.Register(conn)}
}

// ClientID returns the id assigned to this connection.
func (h *SessionHandler) ClientID() uint32 { return h.clientID }

// HandleInput forwards an input frame to the shared session under this
// connection's client id.
func (h *SessionHandler) HandleInput(msg *proto.InputMessage) error {
	return h.server.SubmitInput(h.clientID, msg)
}

// HandleRestart clears this client's buffered input and anti-cheat
// history, leaving its player/ship entity untouched.
func (h *SessionHandler) HandleRestart(msg *proto.RestartMessage) error {
	h.server.ResetClientState(h.clientID)
	return nil
}

// HandleHitClaim validates a lag-compensated hit claim and writes the
// result back to this connection.
func (h *SessionHandler) HandleHitClaim(msg *proto.HitClaimMessage) error {
	result := h.server.ValidateHitClaim(msg)
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal hit validation: %w", err)
	}
	return h.conn().WriteMessage(data)
}

func (h *SessionHandler) conn() *Connection {
	h.server.mu.Lock()
	defer h.server.mu.Unlock()
	return h.server.clients[h.clientID]
}

// Stop unregisters this connection from the shared server.
func (h *SessionHandler) Stop() {
	h.server.Unregister(h.clientID)
}
