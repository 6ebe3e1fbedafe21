package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/rs/zerolog/log"
)

// ConnectionManager fans draft events out to every connected admin console.
type ConnectionManager struct {
	connections map[*Connection]bool
	mu          sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	state    StateProvider

	broadcastCh chan Message
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  256,
		CheckOrigin: func(r *http.Request) bool {
			// CORS is enforced by the HTTP server in front of this handler
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager. state may be nil.
func NewConnectionManager(config ConnectionConfig, state StateProvider) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		state:       state,
		broadcastCh: make(chan Message, 1000),
	}
}

// Start processes broadcasts until ctx is done, then closes every connection.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// Publish queues a draft event for every connected client. It never blocks; a full queue drops the event.
func (cm *ConnectionManager) Publish(_ context.Context, event events.Event) error {
	msg := Message{
		ID:        event.ID.String(),
		Type:      string(event.Type),
		SessionID: event.SessionID,
		Timestamp: event.Timestamp,
		Data:      event.Payload,
	}
	select {
	case cm.broadcastCh <- msg:
		return nil
	default:
		log.Warn().Str("event_type", msg.Type).Msg("broadcast channel full, dropping message")
		return fmt.Errorf("broadcast channel full, dropped %s", msg.Type)
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and sends the current state.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		ConnectedAt: time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	return nil
}

// registerConnection adds conn and queues the state message in the same critical section.
// Broadcasts send under the read lock, so every event after the snapshot follows it on conn.
func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn] = true

	if cm.state != nil {
		data, err := newStateMessage(cm.state, time.Now().UTC())
		if err != nil {
			log.Error().Err(err).Str("connection_id", conn.ID).Msg("failed to build state message")
		} else {
			conn.Send <- data
		}
	}

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

// unregisterConnection removes conn and closes its send channel exactly once.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.connections[conn]; !exists {
		return
	}
	delete(cm.connections, conn)
	close(conn.Send)

	log.Info().
		Str("connection_id", conn.ID).
		Dur("connected_for", time.Since(conn.ConnectedAt)).
		Msg("connection unregistered")
}

func (cm *ConnectionManager) handleBroadcast(message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	// Sends happen under the read lock so unregisterConnection cannot close a channel mid-send.
	var slow []*Connection
	cm.mu.RLock()
	for conn := range cm.connections {
		select {
		case conn.Send <- data:
		default:
			slow = append(slow, conn)
		}
	}
	delivered := len(cm.connections) - len(slow)
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().Str("connection_id", conn.ID).Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		_ = conn.Conn.Close()
	}

	log.Debug().
		Str("event_type", message.Type).
		Int("session_id", message.SessionID).
		Int("connections", delivered).
		Msg("event broadcasted")
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	conns := make([]*Connection, 0, len(cm.connections))
	for conn := range cm.connections {
		conns = append(conns, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range conns {
		cm.unregisterConnection(conn)
	}
}

// ConnectionStats summarizes the connected clients.
type ConnectionStats struct {
	TotalConnections int `json:"total_connections"`
	QueuedBroadcasts int `json:"queued_broadcasts"`
}

func (cm *ConnectionManager) Stats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return ConnectionStats{
		TotalConnections: len(cm.connections),
		QueuedBroadcasts: len(cm.broadcastCh),
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump drains client frames so pongs and close frames are processed. Consoles only listen.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		log.Debug().
			Str("connection_id", c.ID).
			Int("bytes", len(message)).
			Msg("ignoring client message")
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
