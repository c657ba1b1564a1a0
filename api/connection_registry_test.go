package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionRegistry_RegisterAndSnapshot(t *testing.T) {
	registry := NewConnectionRegistry()

	registry.Register("u1", UserSummary{ID: "u1", Name: "Alice", Role: "admin"}, "c1")
	registry.Register("u2", UserSummary{ID: "u2", Name: "Bob", Role: "member"}, "c2")

	snapshot := registry.Snapshot()
	assert.ElementsMatch(t, []UserSummary{
		{ID: "u1", Name: "Alice", Role: "admin"},
		{ID: "u2", Name: "Bob", Role: "member"},
	}, snapshot)
	assert.Equal(t, 2, registry.Count())
}

func TestConnectionRegistry_EmptyUserIDIsNoOp(t *testing.T) {
	registry := NewConnectionRegistry()

	registry.Register("", UserSummary{Name: "Ghost"}, "c1")

	assert.Empty(t, registry.Snapshot())
	_, ok := registry.FindByConnection("c1")
	assert.False(t, ok)
}

func TestConnectionRegistry_LastConnectionWins(t *testing.T) {
	registry := NewConnectionRegistry()

	registry.Register("u1", UserSummary{ID: "u1", Name: "Alice"}, "c1")
	registry.Register("u1", UserSummary{ID: "u1", Name: "Alice"}, "c2")

	// Only the newer connection maps to the user
	entry, ok := registry.FindByUser("u1")
	require.True(t, ok)
	assert.Equal(t, "c2", entry.ConnectionID)

	_, ok = registry.FindByConnection("c1")
	assert.False(t, ok, "replaced connection should no longer resolve")

	// Deregistering the stale connection must not evict the user
	removed := registry.Deregister("c1")
	assert.False(t, removed)
	assert.Equal(t, 1, registry.Count())
}

func TestConnectionRegistry_DeregisterIsIdempotent(t *testing.T) {
	registry := NewConnectionRegistry()
	registry.Register("u1", UserSummary{ID: "u1"}, "c1")

	assert.True(t, registry.Deregister("c1"))
	assert.False(t, registry.Deregister("c1"))
	assert.Empty(t, registry.Snapshot())
}

func TestConnectionRegistry_FindByConnection(t *testing.T) {
	registry := NewConnectionRegistry()
	registry.Register("u1", UserSummary{ID: "u1", Name: "Alice"}, "c1")

	entry, ok := registry.FindByConnection("c1")
	require.True(t, ok)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, "Alice", entry.User.Name)

	_, ok = registry.FindByConnection("unknown")
	assert.False(t, ok)
}
