package api

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// MessageKind discriminates what the content field carries
type MessageKind string

const (
	// MessageKindText is a plain text message
	MessageKindText MessageKind = "text"
	// MessageKindImageLink carries an image URL in the content field
	MessageKindImageLink MessageKind = "image-link"
	// MessageKindFileReference carries a stored filename in the content field
	MessageKindFileReference MessageKind = "file-reference"
)

// IsValid reports whether the kind is one of the known message kinds
func (k MessageKind) IsValid() bool {
	switch k {
	case MessageKindText, MessageKindImageLink, MessageKindFileReference:
		return true
	}
	return false
}

// Message is a stored chat message. Immutable once created; ID and CreatedAt
// are assigned by the store and are authoritative for ordering.
type Message struct {
	ID          int64       `json:"id"`
	SenderID    string      `json:"sender_id"`
	RecipientID string      `json:"recipient_id"`
	Content     string      `json:"content"`
	Kind        MessageKind `json:"kind"`
	ReadFlag    bool        `json:"read_flag"`
	CreatedAt   time.Time   `json:"created_at"`
}

var (
	// ErrInvalidMessage indicates a send with a missing sender, recipient or content
	ErrInvalidMessage = errors.New("message requires sender, recipient and content")
	// ErrStorageUnavailable indicates the persistence layer failed; the caller
	// does not retry and no delivery happens on top of it
	ErrStorageUnavailable = errors.New("message storage unavailable")
)

// MessageStore is the durable append-only log of chat messages.
// Append must assign IDs atomically with insertion: no gaps or duplicates are
// observable in ID order even under concurrent appends.
type MessageStore interface {
	Append(ctx context.Context, senderID, recipientID, content string, kind MessageKind) (*Message, error)
	// Conversation returns all messages between the two users in either
	// direction, ordered by created time ascending, ties broken by ID.
	Conversation(ctx context.Context, userA, userB string) ([]Message, error)
}

// validateMessage checks the append preconditions shared by all store implementations
func validateMessage(senderID, recipientID, content string) error {
	if senderID == "" || recipientID == "" || content == "" {
		return ErrInvalidMessage
	}
	return nil
}

// normalizeKind applies the default kind for empty input
func normalizeKind(kind MessageKind) MessageKind {
	if kind == "" {
		return MessageKindText
	}
	return kind
}

// InMemoryMessageStore implements MessageStore with a mutex-guarded slice.
// Used in tests and single-node development mode.
type InMemoryMessageStore struct {
	mu       sync.RWMutex
	messages []Message
	nextID   int64
}

// NewInMemoryMessageStore creates an empty in-memory message store
func NewInMemoryMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{nextID: 1}
}

// Append validates and stores a message, assigning ID and timestamp under the lock
func (s *InMemoryMessageStore) Append(ctx context.Context, senderID, recipientID, content string, kind MessageKind) (*Message, error) {
	if err := validateMessage(senderID, recipientID, content); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := Message{
		ID:          s.nextID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Kind:        normalizeKind(kind),
		CreatedAt:   time.Now().UTC(),
	}
	s.nextID++
	s.messages = append(s.messages, msg)

	return &msg, nil
}

// Conversation returns both directions of traffic between two users in (created_at, id) order
func (s *InMemoryMessageStore) Conversation(ctx context.Context, userA, userB string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Message
	for _, msg := range s.messages {
		if (msg.SenderID == userA && msg.RecipientID == userB) ||
			(msg.SenderID == userB && msg.RecipientID == userA) {
			result = append(result, msg)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// Count returns the number of stored messages
func (s *InMemoryMessageStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.messages)
}
