package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/procboard/procboard/api/models"
	"github.com/procboard/procboard/internal/slogging"
	"gorm.io/gorm"
)

// GormMessageStore implements MessageStore on the application database.
// The mutex serializes the insert relative to ID assignment so that ID order
// matches insertion order even with concurrent senders.
type GormMessageStore struct {
	db    *gorm.DB
	mutex sync.Mutex
}

// NewGormMessageStore creates a database-backed message store
func NewGormMessageStore(db *gorm.DB) *GormMessageStore {
	return &GormMessageStore{db: db}
}

// Append validates and persists a message, returning the stored form with
// the server-assigned ID and timestamp
func (s *GormMessageStore) Append(ctx context.Context, senderID, recipientID, content string, kind MessageKind) (*Message, error) {
	if err := validateMessage(senderID, recipientID, content); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	model := models.ChatMessage{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Kind:        string(normalizeKind(kind)),
	}

	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		slogging.Get().Error("Failed to persist chat message from %s to %s: %v", senderID, recipientID, err)
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return messageFromModel(&model), nil
}

// Conversation returns both directions of traffic between two users ordered
// by created time, ties broken by ID
func (s *GormMessageStore) Conversation(ctx context.Context, userA, userB string) ([]Message, error) {
	var rows []models.ChatMessage
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		slogging.Get().Error("Failed to load conversation between %s and %s: %v", userA, userB, err)
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	messages := make([]Message, 0, len(rows))
	for i := range rows {
		messages = append(messages, *messageFromModel(&rows[i]))
	}
	return messages, nil
}

func messageFromModel(m *models.ChatMessage) *Message {
	return &Message{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		Kind:        MessageKind(m.Kind),
		ReadFlag:    m.ReadFlag,
		CreatedAt:   m.CreatedAt,
	}
}
