package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/procboard/procboard/internal/slogging"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second
	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second
	// Ping period, must be less than pongWait
	pingPeriod = 54 * time.Second
)

// HandleChatWebSocket upgrades the connection and starts the lifecycle:
// attach anonymous, then process identify / send_message events until the
// connection closes.
func (s *Server) HandleChatWebSocket(c *gin.Context) {
	logger := slogging.Get()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// Same-origin policy is enforced at the proxy layer
			return true
		},
		ReadBufferSize:  s.config.WebSocket.ReadBufferSize,
		WriteBufferSize: s.config.WebSocket.WriteBufferSize,
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Failed to upgrade HTTP connection to WebSocket: %v", err)
		c.JSON(http.StatusInternalServerError, Error{
			Error:            "websocket_upgrade_failed",
			ErrorDescription: "Failed to upgrade connection",
		})
		return
	}

	client := &ChatClient{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, s.config.WebSocket.SendQueueSize),
		Hub:         s.hub,
		ConnectedAt: time.Now().UTC(),
	}

	s.hub.Attach(client)

	go client.writePump()
	go s.readPump(client)
}

// readPump handles inbound frames for one connection and drives the
// lifecycle transitions. It owns the disconnect path: whatever ends the read
// loop ends the connection.
func (s *Server) readPump(client *ChatClient) {
	logger := slogging.Get()

	// The connection's context; operations started by inbound frames end
	// with the read loop
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		s.hub.Detach(client)
		_ = client.Conn.Close()
	}()

	_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error - connection_id: %s: %v", client.ID, err)
			}
			break
		}

		var envelope WSEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			logger.Warn("Invalid frame from connection %s: %v", client.ID, err)
			continue
		}

		switch envelope.MessageType {
		case WSMessageTypeIdentify:
			s.handleIdentify(client, raw)
		case WSMessageTypeSendMessage:
			s.handleSendMessage(ctx, client, raw)
		default:
			logger.Warn("Unknown message_type %q from connection %s", envelope.MessageType, client.ID)
		}
	}
}

// handleIdentify processes the identify event for a connection
func (s *Server) handleIdentify(client *ChatClient, raw []byte) {
	var msg IdentifyMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		slogging.Get().Warn("Malformed identify from connection %s: %v", client.ID, err)
		return
	}
	if err := msg.Validate(); err != nil {
		slogging.Get().Warn("Invalid identify from connection %s: %v", client.ID, err)
		return
	}

	user := msg.User
	if user.ID == "" {
		user.ID = msg.UserID
	}

	s.hub.Identify(client, msg.UserID, user)
}

// handleSendMessage processes a chat send. The sender identity comes from
// the connection's presence entry, not from the payload: an unidentified
// connection cannot send, and a spoofed sender_id is ignored.
func (s *Server) handleSendMessage(ctx context.Context, client *ChatClient, raw []byte) {
	var msg SendMessageMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.hub.sendToConnection(client.ID, newWSErrorBytes("invalid_message", "Malformed send_message payload"))
		return
	}
	if err := msg.Validate(); err != nil {
		s.hub.sendToConnection(client.ID, newWSErrorBytes("invalid_message", err.Error()))
		return
	}

	entry, ok := s.hub.Registry().FindByConnection(client.ID)
	if !ok {
		s.hub.sendToConnection(client.ID, newWSErrorBytes("not_identified", "Identify before sending messages"))
		return
	}

	_, err := s.router.Send(ctx, entry.UserID, msg.RecipientID, msg.Content, msg.Kind)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidMessage):
			s.hub.sendToConnection(client.ID, newWSErrorBytes("invalid_message", err.Error()))
		case errors.Is(err, ErrStorageUnavailable):
			s.hub.sendToConnection(client.ID, newWSErrorBytes("storage_unavailable", "Message could not be stored"))
		default:
			s.hub.sendToConnection(client.ID, newWSErrorBytes("send_failed", err.Error()))
		}
	}
}

// writePump drains the send queue to the connection and keeps it alive with
// pings. Ends when the hub closes the send channel or a write fails.
func (c *ChatClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
