package api

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryMessageStore_AppendAssignsIdentity(t *testing.T) {
	store := NewInMemoryMessageStore()
	ctx := context.Background()

	msg, err := store.Append(ctx, "u1", "u2", "hello", MessageKindText)
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.ID)
	assert.Equal(t, "u1", msg.SenderID)
	assert.Equal(t, "u2", msg.RecipientID)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, MessageKindText, msg.Kind)
	assert.False(t, msg.CreatedAt.IsZero())

	msg2, err := store.Append(ctx, "u2", "u1", "hi back", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), msg2.ID)
	assert.Equal(t, MessageKindText, msg2.Kind, "empty kind defaults to text")
}

func TestInMemoryMessageStore_AppendValidation(t *testing.T) {
	store := NewInMemoryMessageStore()
	ctx := context.Background()

	tests := []struct {
		name                       string
		sender, recipient, content string
	}{
		{"missing sender", "", "u2", "hello"},
		{"missing recipient", "u1", "", "hello"},
		{"missing content", "u1", "u2", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Append(ctx, tc.sender, tc.recipient, tc.content, MessageKindText)
			assert.ErrorIs(t, err, ErrInvalidMessage)
		})
	}

	assert.Equal(t, 0, store.Count(), "rejected sends must not be stored")
}

func TestInMemoryMessageStore_ConcurrentAppendsHaveNoGaps(t *testing.T) {
	store := NewInMemoryMessageStore()
	ctx := context.Background()

	const goroutines = 20
	const perGoroutine = 25

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				_, err := store.Append(ctx, "u1", "u2", "x", MessageKindText)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	messages, err := store.Conversation(ctx, "u1", "u2")
	require.NoError(t, err)
	require.Len(t, messages, goroutines*perGoroutine)

	seen := make(map[int64]bool)
	for _, msg := range messages {
		assert.False(t, seen[msg.ID], "duplicate id %d", msg.ID)
		seen[msg.ID] = true
	}
	for id := int64(1); id <= int64(goroutines*perGoroutine); id++ {
		assert.True(t, seen[id], "gap at id %d", id)
	}
}

func TestInMemoryMessageStore_ConversationOrderAndDirection(t *testing.T) {
	store := NewInMemoryMessageStore()
	ctx := context.Background()

	_, err := store.Append(ctx, "u1", "u2", "first", MessageKindText)
	require.NoError(t, err)
	_, err = store.Append(ctx, "u2", "u1", "second", MessageKindText)
	require.NoError(t, err)
	_, err = store.Append(ctx, "u1", "u3", "unrelated", MessageKindText)
	require.NoError(t, err)
	_, err = store.Append(ctx, "u1", "u2", "third", MessageKindText)
	require.NoError(t, err)

	messages, err := store.Conversation(ctx, "u2", "u1")
	require.NoError(t, err)
	require.Len(t, messages, 2+1)

	// Non-decreasing in (created_at, id) regardless of direction
	for i := 1; i < len(messages); i++ {
		prev, cur := messages[i-1], messages[i]
		if prev.CreatedAt.Equal(cur.CreatedAt) {
			assert.Less(t, prev.ID, cur.ID)
		} else {
			assert.True(t, prev.CreatedAt.Before(cur.CreatedAt))
		}
	}
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
	assert.Equal(t, "third", messages[2].Content)
}

func TestGormMessageStore_AppendAndConversation(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormMessageStore(db)
	ctx := context.Background()

	first, err := store.Append(ctx, "u1", "u2", "hello", MessageKindText)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	second, err := store.Append(ctx, "u2", "u1", "https://example.com/pic.png", MessageKindImageLink)
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	messages, err := store.Conversation(ctx, "u1", "u2")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, MessageKindImageLink, messages[1].Kind)
	assert.False(t, messages[0].ReadFlag, "read flag is stored unset")
}

func TestGormMessageStore_Validation(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormMessageStore(db)

	_, err := store.Append(context.Background(), "u1", "u2", "", MessageKindText)
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestGormMessageStore_StorageFailure(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormMessageStore(db)

	// Closing the underlying pool makes every subsequent operation fail
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = store.Append(context.Background(), "u1", "u2", "hello", MessageKindText)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = store.Conversation(context.Background(), "u1", "u2")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
