// internal/api/websocket.go
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zageabb/reflex-AgentDemo/internal/transcript"
	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketClient is one viewer connected to a session.
type WebSocketClient struct {
	conn      WebSocketConnection
	sessionID string
	send      chan []byte
	done      chan struct{}
	closed    int32 // 0 open, 1 closed
	lastPing  atomic.Int64
	createdAt time.Time
}

// WebSocketManager fans session events out to connected viewers.
type WebSocketManager struct {
	connections   map[string]map[WebSocketConnection]*WebSocketClient // sessionID -> connections
	register      chan *WebSocketClient
	unregister    chan *WebSocketClient
	done          chan struct{}
	stopOnce      sync.Once
	mutex         sync.RWMutex
	pingTimeout   time.Duration
	cleanupTicker *time.Ticker
	logger        *utils.Logger
	metrics       *utils.APIMetrics
}

// WebSocketConnection is the part of *websocket.Conn the manager uses.
type WebSocketConnection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
}

// WebSocketConnWrapper adapts *websocket.Conn to WebSocketConnection.
type WebSocketConnWrapper struct {
	*websocket.Conn
}

func newWebSocketClient(conn WebSocketConnection, sessionID string) *WebSocketClient {
	client := &WebSocketClient{
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
		done:      make(chan struct{}),
		createdAt: time.Now(),
	}
	client.UpdatePing()
	return client
}

// Close marks the client closed and closes its connection once.
func (client *WebSocketClient) Close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		close(client.done)
		if client.conn != nil {
			client.conn.Close()
		}
	}
}

// IsClosed reports whether Close has run
func (client *WebSocketClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

// UpdatePing records activity
func (client *WebSocketClient) UpdatePing() {
	client.lastPing.Store(time.Now().UnixNano())
}

// LastPing returns the last activity time
func (client *WebSocketClient) LastPing() time.Time {
	return time.Unix(0, client.lastPing.Load())
}

// IsExpired reports whether the client has been silent longer than timeout
func (client *WebSocketClient) IsExpired(timeout time.Duration) bool {
	if timeout <= 0 {
		return true
	}
	return time.Since(client.LastPing()) > timeout
}

// SendMessage queues v as JSON without blocking. A full queue drops it.
func (client *WebSocketClient) SendMessage(v interface{}) error {
	if client.IsClosed() {
		return nil
	}

	msgBytes, err := json.Marshal(v)
	if err != nil {
		return err
	}
	client.enqueue(msgBytes)
	return nil
}

func (client *WebSocketClient) enqueue(msg []byte) bool {
	select {
	case <-client.done:
		return false
	default:
	}
	select {
	case client.send <- msg:
		return true
	default:
		return false
	}
}

// SendError queues an error message
func (client *WebSocketClient) SendError(errorMsg string) {
	client.SendMessage(map[string]interface{}{
		"type":      "error",
		"error":     errorMsg,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// NewWebSocketManager creates a manager; Start runs its loop.
func NewWebSocketManager(logger *utils.Logger) *WebSocketManager {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &WebSocketManager{
		connections: make(map[string]map[WebSocketConnection]*WebSocketClient),
		register:    make(chan *WebSocketClient, 256),
		unregister:  make(chan *WebSocketClient, 256),
		done:        make(chan struct{}),
		pingTimeout: 60 * time.Second,
		logger:      logger,
		metrics:     utils.GetAPIMetrics(),
	}
}

// Start runs the manager loop in the background.
func (manager *WebSocketManager) Start() {
	go manager.run()
}

// Stop closes every connection and ends the loop.
func (manager *WebSocketManager) Stop() {
	manager.stopOnce.Do(func() { close(manager.done) })
}

func (manager *WebSocketManager) run() {
	manager.cleanupTicker = time.NewTicker(30 * time.Second)
	defer manager.cleanupTicker.Stop()

	for {
		select {
		case client := <-manager.register:
			manager.registerClient(client)

		case client := <-manager.unregister:
			manager.unregisterClient(client)

		case <-manager.cleanupTicker.C:
			manager.cleanupExpiredConnections()

		case <-manager.done:
			manager.shutdown()
			return
		}
	}
}

func (manager *WebSocketManager) registerClient(client *WebSocketClient) {
	if client == nil {
		return
	}

	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	if manager.connections[client.sessionID] == nil {
		manager.connections[client.sessionID] = make(map[WebSocketConnection]*WebSocketClient)
	}
	manager.connections[client.sessionID][client.conn] = client
	client.UpdatePing()
	manager.metrics.SetConnections(manager.countLocked())

	manager.logger.Debug("viewer connected", map[string]interface{}{"session": client.sessionID})
}

func (manager *WebSocketManager) unregisterClient(client *WebSocketClient) {
	if client == nil {
		return
	}

	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	if connections, exists := manager.connections[client.sessionID]; exists {
		delete(connections, client.conn)
		if len(connections) == 0 {
			delete(manager.connections, client.sessionID)
		}
	}
	client.Close()
	manager.metrics.SetConnections(manager.countLocked())

	manager.logger.Debug("viewer disconnected", map[string]interface{}{"session": client.sessionID})
}

// cleanupExpiredConnections drops closed and silent clients
func (manager *WebSocketManager) cleanupExpiredConnections() int {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	removed := 0
	for sessionID, connections := range manager.connections {
		for conn, client := range connections {
			if client.IsClosed() || client.IsExpired(manager.pingTimeout) {
				delete(connections, conn)
				client.Close()
				removed++
			}
		}
		if len(connections) == 0 {
			delete(manager.connections, sessionID)
		}
	}
	manager.metrics.SetConnections(manager.countLocked())
	return removed
}

func (manager *WebSocketManager) countLocked() int {
	total := 0
	for _, connections := range manager.connections {
		total += len(connections)
	}
	return total
}

// processBatch queues message for each client. Clients whose queue is full
// are closed; the viewer reconnects and resyncs from a snapshot.
func (manager *WebSocketManager) processBatch(clients []*WebSocketClient, message []byte) {
	for _, client := range clients {
		if client.IsClosed() {
			continue
		}
		if !client.enqueue(message) {
			client.Close()
			select {
			case manager.unregister <- client:
			default:
			}
		}
	}
}

func (manager *WebSocketManager) shutdown() {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	for _, connections := range manager.connections {
		for _, client := range connections {
			client.Close()
		}
	}
	manager.connections = make(map[string]map[WebSocketConnection]*WebSocketClient)
	manager.metrics.SetConnections(0)
	manager.logger.Info("websocket manager stopped", nil)
}

// GetStatus reports connected viewers per session
func (manager *WebSocketManager) GetStatus() map[string]interface{} {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	sessions := make(map[string]interface{})
	totalConnections := 0

	for sessionID, connections := range manager.connections {
		active := 0
		viewers := make([]interface{}, 0)
		for _, client := range connections {
			if client != nil && !client.IsClosed() {
				active++
				viewers = append(viewers, map[string]interface{}{
					"connected_at": client.createdAt.Format(time.RFC3339),
					"last_ping":    client.LastPing().Format(time.RFC3339),
				})
			}
		}
		sessions[sessionID] = map[string]interface{}{
			"client_count": active,
			"viewers":      viewers,
		}
		totalConnections += active
	}

	return map[string]interface{}{
		"total_sessions":    len(manager.connections),
		"total_connections": totalConnections,
		"sessions":          sessions,
	}
}

// ClientCount returns the number of viewers of a session.
func (manager *WebSocketManager) ClientCount(sessionID string) int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return len(manager.connections[sessionID])
}

// BroadcastToSession sends a message to every viewer of a session. It never
// blocks, so it is safe to call from a playback surface.
func (manager *WebSocketManager) BroadcastToSession(sessionID string, message interface{}) {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		manager.logger.Error("failed to encode broadcast", map[string]interface{}{"error": err.Error()})
		return
	}

	manager.mutex.RLock()
	connections, exists := manager.connections[sessionID]
	if !exists {
		manager.mutex.RUnlock()
		return
	}
	clients := make([]*WebSocketClient, 0, len(connections))
	for _, client := range connections {
		if !client.IsClosed() {
			clients = append(clients, client)
		}
	}
	manager.mutex.RUnlock()

	manager.processBatch(clients, msgBytes)
}

// PublishEvent wraps a transcript event for the wire.
func (manager *WebSocketManager) PublishEvent(sessionID string, event transcript.Event) {
	manager.BroadcastToSession(sessionID, map[string]interface{}{
		"type":  "event",
		"event": event,
	})
}
