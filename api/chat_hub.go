package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/procboard/procboard/internal/slogging"
)

// ChatClient represents one live websocket connection. A connection starts
// anonymous; it becomes visible to presence only after an identify event.
type ChatClient struct {
	// Unique identifier for the connection, ephemeral
	ID string

	// WebSocket connection; nil in unit tests that exercise the hub directly
	Conn *websocket.Conn

	// Send channel for outbound frames
	Send chan []byte

	// Hub reference
	Hub *ChatHub

	// Connection metadata
	ConnectedAt time.Time
}

// ChatHub ties the connection lifecycle to the presence registry and fans
// out presence snapshots, chat deliveries and invalidation signals to every
// attached connection. All fan-out is best-effort: a slow or dead connection
// has its frame dropped, never blocking the triggering operation.
type ChatHub struct {
	// All attached connections by connection ID, anonymous ones included
	mu    sync.RWMutex
	conns map[string]*ChatClient

	// Presence source of truth
	registry *ConnectionRegistry

	logger *slogging.Logger
}

// NewChatHub creates a hub around a presence registry
func NewChatHub(registry *ConnectionRegistry) *ChatHub {
	return &ChatHub{
		conns:    make(map[string]*ChatClient),
		registry: registry,
		logger:   slogging.Get(),
	}
}

// Registry exposes the presence registry for read-side consumers
func (h *ChatHub) Registry() *ConnectionRegistry {
	return h.registry
}

// Attach adds a newly established connection in the anonymous state
func (h *ChatHub) Attach(client *ChatClient) {
	h.mu.Lock()
	h.conns[client.ID] = client
	h.mu.Unlock()

	metricOpenConnections.Inc()
	h.logger.Info("Chat connection attached - connection_id: %s", client.ID)
}

// Identify transitions a connection to the identified state: register in the
// presence table, then push the new snapshot to everyone. An empty user ID is
// a logged no-op and does not trigger a broadcast.
func (h *ChatHub) Identify(client *ChatClient, userID string, user UserSummary) {
	if userID == "" {
		h.registry.Register(userID, user, client.ID)
		return
	}

	h.registry.Register(userID, user, client.ID)
	metricIdentifiedUsers.Set(float64(h.registry.Count()))

	h.logger.Info("Chat connection identified - connection_id: %s, user_id: %s, name: %s",
		client.ID, userID, user.Name)

	h.AnnouncePresence()
}

// Detach terminates a connection: drop it from the hub, remove any presence
// entry keyed by it, then push the new snapshot to everyone. Idempotent -
// a duplicate disconnect is a silent no-op with no second broadcast.
func (h *ChatHub) Detach(client *ChatClient) {
	h.mu.Lock()
	if _, ok := h.conns[client.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, client.ID)
	close(client.Send)
	h.mu.Unlock()

	metricOpenConnections.Dec()

	// No-op if the connection never identified or was replaced by a newer one
	h.registry.Deregister(client.ID)
	metricIdentifiedUsers.Set(float64(h.registry.Count()))

	h.logger.Info("Chat connection detached - connection_id: %s", client.ID)

	h.AnnouncePresence()
}

// AnnouncePresence pushes the full online-user snapshot to every attached
// connection. Always full state, never a delta; clients replace their view.
func (h *ChatHub) AnnouncePresence() {
	snapshot := h.registry.Snapshot()
	b, err := newPresenceSnapshotBytes(snapshot)
	if err != nil {
		h.logger.Error("Failed to marshal presence snapshot: %v", err)
		return
	}

	metricPresenceBroadcasts.Inc()
	h.broadcast(b)
}

// NotifyStateChanged broadcasts the invalidation signal after a successful
// REST mutation. Every client refetches its bulk state from the REST layer.
func (h *ChatHub) NotifyStateChanged() {
	metricInvalidationBroadcasts.Inc()
	h.broadcast(newStateInvalidatedBytes())
}

// broadcast sends a frame to every attached connection, dropping frames for
// connections whose send queue is full
func (h *ChatHub) broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.conns {
		select {
		case client.Send <- message:
		default:
			metricDeliveriesDropped.Inc()
			h.logger.Warn("Send queue full, dropping broadcast frame - connection_id: %s", client.ID)
		}
	}
}

// sendToConnection delivers a frame to one connection if it is still
// attached. Returns false when the connection is gone or its queue is full.
func (h *ChatHub) sendToConnection(connectionID string, message []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.conns[connectionID]
	if !ok {
		return false
	}

	select {
	case client.Send <- message:
		return true
	default:
		metricDeliveriesDropped.Inc()
		h.logger.Warn("Send queue full, dropping frame - connection_id: %s", connectionID)
		return false
	}
}

// DeliverToUser delivers a frame to the user's active connection, if the
// user is online. Returns false when the user is offline or the delivery
// was dropped.
func (h *ChatHub) DeliverToUser(userID string, message []byte) bool {
	entry, ok := h.registry.FindByUser(userID)
	if !ok {
		return false
	}
	return h.sendToConnection(entry.ConnectionID, message)
}

// ConnectionCount returns the number of attached connections
func (h *ChatHub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns)
}
