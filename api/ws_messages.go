package api

import (
	"encoding/json"
	"fmt"
)

// WebSocket message types for the chat and invalidation channel.
// Inbound messages carry a message_type discriminator; outbound messages use
// the same envelope so clients can dispatch on a single field.

// WSMessageType represents the type of a WebSocket message
type WSMessageType string

const (
	// Client -> server
	WSMessageTypeIdentify    WSMessageType = "identify"
	WSMessageTypeSendMessage WSMessageType = "send_message"

	// Server -> client
	WSMessageTypePresenceSnapshot WSMessageType = "presence_snapshot"
	WSMessageTypeMessageDelivered WSMessageType = "message_delivered"
	WSMessageTypeStateInvalidated WSMessageType = "state_invalidated"
	WSMessageTypeError            WSMessageType = "error"
)

// WSEnvelope is used to peek at the message_type of an inbound frame before
// decoding the full payload
type WSEnvelope struct {
	MessageType WSMessageType `json:"message_type"`
}

// IdentifyMessage announces the user behind a connection. Until a connection
// identifies it is invisible to presence and cannot send chat messages.
type IdentifyMessage struct {
	MessageType WSMessageType `json:"message_type"`
	UserID      string        `json:"user_id"`
	User        UserSummary   `json:"user"`
}

// Validate checks the identify payload shape. An empty user_id is NOT an
// error here; the registry treats it as a logged no-op.
func (m IdentifyMessage) Validate() error {
	if m.MessageType != WSMessageTypeIdentify {
		return fmt.Errorf("invalid message_type: expected %s, got %s", WSMessageTypeIdentify, m.MessageType)
	}
	return nil
}

// SendMessageMessage asks the server to persist and route a chat message.
// The sender is the identity registered for this connection; a sender_id in
// the payload is ignored.
type SendMessageMessage struct {
	MessageType WSMessageType `json:"message_type"`
	RecipientID string        `json:"recipient_id"`
	Content     string        `json:"content"`
	Kind        MessageKind   `json:"kind,omitempty"`
}

// Validate checks the send payload shape
func (m SendMessageMessage) Validate() error {
	if m.MessageType != WSMessageTypeSendMessage {
		return fmt.Errorf("invalid message_type: expected %s, got %s", WSMessageTypeSendMessage, m.MessageType)
	}
	if m.Kind != "" && !m.Kind.IsValid() {
		return fmt.Errorf("unknown message kind: %s", m.Kind)
	}
	return nil
}

// PresenceSnapshotMessage pushes the full online-user set to every client.
// Full state, not a delta; clients replace their presence view wholesale.
type PresenceSnapshotMessage struct {
	MessageType WSMessageType `json:"message_type"`
	Users       []UserSummary `json:"users"`
}

// MessageDeliveredMessage pushes a stored chat message to a connection
type MessageDeliveredMessage struct {
	MessageType WSMessageType `json:"message_type"`
	Message     Message       `json:"message"`
}

// StateInvalidatedMessage tells every client its cached REST state may be
// stale. No payload: the client re-runs its bulk fetch.
type StateInvalidatedMessage struct {
	MessageType WSMessageType `json:"message_type"`
}

// WSErrorMessage surfaces a rejected operation to the offending client only
type WSErrorMessage struct {
	MessageType WSMessageType `json:"message_type"`
	Code        string        `json:"code"`
	Description string        `json:"description"`
}

// newPresenceSnapshotBytes builds the serialized presence push for a snapshot
func newPresenceSnapshotBytes(users []UserSummary) ([]byte, error) {
	if users == nil {
		users = []UserSummary{}
	}
	return json.Marshal(PresenceSnapshotMessage{
		MessageType: WSMessageTypePresenceSnapshot,
		Users:       users,
	})
}

// newMessageDeliveredBytes builds the serialized delivery push for a stored message
func newMessageDeliveredBytes(msg *Message) ([]byte, error) {
	return json.Marshal(MessageDeliveredMessage{
		MessageType: WSMessageTypeMessageDelivered,
		Message:     *msg,
	})
}

// newStateInvalidatedBytes builds the serialized invalidation signal
func newStateInvalidatedBytes() []byte {
	b, _ := json.Marshal(StateInvalidatedMessage{MessageType: WSMessageTypeStateInvalidated})
	return b
}

// newWSErrorBytes builds a serialized error event
func newWSErrorBytes(code, description string) []byte {
	b, _ := json.Marshal(WSErrorMessage{
		MessageType: WSMessageTypeError,
		Code:        code,
		Description: description,
	})
	return b
}
