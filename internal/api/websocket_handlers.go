// internal/api/websocket_handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/zageabb/reflex-AgentDemo/internal/services"
	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingPeriod   = 54 * time.Second
)

// WebSocketHandler serves live transcript streams.
type WebSocketHandler struct {
	manager  *WebSocketManager
	playback *services.PlaybackService
	logger   *utils.Logger
}

// NewWebSocketHandler creates the handler and routes playback events into
// the manager.
func NewWebSocketHandler(manager *WebSocketManager, playback *services.PlaybackService, logger *utils.Logger) *WebSocketHandler {
	playback.SetPublisher(manager.PublishEvent)
	return &WebSocketHandler{manager: manager, playback: playback, logger: logger}
}

// SessionWebSocket streams a session's transcript. The first messages are a
// welcome and a full snapshot; every later surface change follows as an
// event. Viewers may send play, snapshot and ping messages.
func (wh *WebSocketHandler) SessionWebSocket(c *gin.Context) {
	sessionID := c.Param("session")
	sess, err := wh.playback.Session(sessionID)
	if err != nil {
		http.Error(c.Writer, "invalid session id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		wh.logger.Warn("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	client := newWebSocketClient(&WebSocketConnWrapper{conn}, sessionID)
	wh.sendWelcomeMessage(client)

	// no event may slip between the snapshot and the subscription
	sess.Controller.Sync(func() {
		wh.manager.registerClient(client)
		client.SendMessage(map[string]interface{}{
			"type":     "snapshot",
			"snapshot": sess.Document.Snapshot(),
		})
	})

	defer func() {
		select {
		case wh.manager.unregister <- client:
		case <-time.After(5 * time.Second):
			wh.logger.Warn("websocket unregister timed out", map[string]interface{}{"session": sessionID})
			client.Close()
		}
	}()

	go wh.handleWebSocketWrites(client)
	wh.handleWebSocketReads(c.Request.Context(), client)
}

func (wh *WebSocketHandler) handleWebSocketReads(ctx context.Context, client *WebSocketClient) {
	client.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	client.conn.SetPongHandler(func(string) error {
		client.UpdatePing()
		client.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		wh.playback.Touch(client.sessionID)
		return nil
	})

	for !client.IsClosed() {
		_, messageBytes, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				wh.logger.Warn("websocket read failed", map[string]interface{}{"error": err.Error()})
			}
			return
		}
		client.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		client.UpdatePing()
		wh.playback.Touch(client.sessionID)

		var message map[string]interface{}
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			client.SendError("invalid message")
			continue
		}
		wh.handleMessage(ctx, client, message)
	}
}

func (wh *WebSocketHandler) handleWebSocketWrites(client *WebSocketClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		client.Close()
	}()

	for {
		select {
		case message := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				wh.logger.Debug("websocket write failed", map[string]interface{}{"error": err.Error()})
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-client.done:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			client.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (wh *WebSocketHandler) handleMessage(ctx context.Context, client *WebSocketClient, message map[string]interface{}) {
	msgType, _ := message["type"].(string)

	switch msgType {
	case "play":
		wh.handlePlay(ctx, client, message)
	case "snapshot":
		wh.handleSnapshot(client)
	case "ping":
		client.SendMessage(map[string]interface{}{
			"type":      "pong",
			"timestamp": time.Now().Unix(),
		})
	default:
		client.SendError("unknown message type: " + msgType)
	}
}

func (wh *WebSocketHandler) handlePlay(ctx context.Context, client *WebSocketClient, message map[string]interface{}) {
	scenarioID, _ := message["scenario_id"].(string)
	restart, _ := message["restart"].(bool)
	if scenarioID == "" {
		client.SendError("scenario_id is required")
		return
	}
	if _, err := wh.playback.Play(ctx, client.sessionID, scenarioID, restart); err != nil {
		client.SendError(err.Error())
	}
}

func (wh *WebSocketHandler) handleSnapshot(client *WebSocketClient) {
	sess, err := wh.playback.Existing(client.sessionID)
	if err != nil {
		client.SendError(err.Error())
		return
	}
	sess.Controller.Sync(func() {
		client.SendMessage(map[string]interface{}{
			"type":     "snapshot",
			"snapshot": sess.Document.Snapshot(),
		})
	})
}

func (wh *WebSocketHandler) sendWelcomeMessage(client *WebSocketClient) {
	client.SendMessage(map[string]interface{}{
		"type":       "connected",
		"session_id": client.sessionID,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}
