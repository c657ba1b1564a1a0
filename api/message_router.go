package api

import (
	"context"

	"github.com/procboard/procboard/internal/slogging"
)

// MessageRouter implements the send-message protocol: persist first, then
// deliver best-effort. No delivery ever happens for a message that was not
// stored, and no delivery is retried or queued.
type MessageRouter struct {
	store  MessageStore
	hub    *ChatHub
	logger *slogging.Logger
}

// NewMessageRouter creates a router over a message store and a hub
func NewMessageRouter(store MessageStore, hub *ChatHub) *MessageRouter {
	return &MessageRouter{
		store:  store,
		hub:    hub,
		logger: slogging.Get(),
	}
}

// Send persists a message and routes it. The stored form (with the
// server-assigned ID and timestamp) goes to the sender's active connection
// unconditionally and to the recipient's connection if the recipient is
// online. An offline recipient is not an error; they will see the message on
// their next conversation fetch.
func (r *MessageRouter) Send(ctx context.Context, senderID, recipientID, content string, kind MessageKind) (*Message, error) {
	msg, err := r.store.Append(ctx, senderID, recipientID, content, kind)
	if err != nil {
		return nil, err
	}

	metricMessagesRouted.Inc()

	frame, err := newMessageDeliveredBytes(msg)
	if err != nil {
		// The message is durable; only the live push is lost
		r.logger.Error("Failed to marshal delivery frame for message %d: %v", msg.ID, err)
		return msg, nil
	}

	if !r.hub.DeliverToUser(senderID, frame) {
		r.logger.Debug("Sender %s has no active connection for echo of message %d", senderID, msg.ID)
	}

	if !r.hub.DeliverToUser(recipientID, frame) {
		r.logger.Debug("Recipient %s offline, message %d stored only", recipientID, msg.ID)
	}

	return msg, nil
}

// Conversation returns the stored history between two users in display order
func (r *MessageRouter) Conversation(ctx context.Context, userA, userB string) ([]Message, error) {
	return r.store.Conversation(ctx, userA, userB)
}
