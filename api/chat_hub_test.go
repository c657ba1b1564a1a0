package api

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFrame(t *testing.T, frame []byte) WSEnvelope {
	t.Helper()
	var envelope WSEnvelope
	require.NoError(t, json.Unmarshal(frame, &envelope))
	return envelope
}

func countFrames(t *testing.T, frames [][]byte, messageType WSMessageType) int {
	t.Helper()
	n := 0
	for _, frame := range frames {
		if decodeFrame(t, frame).MessageType == messageType {
			n++
		}
	}
	return n
}

func lastPresenceSnapshot(t *testing.T, frames [][]byte) ([]UserSummary, bool) {
	t.Helper()
	var snapshot PresenceSnapshotMessage
	found := false
	for _, frame := range frames {
		if decodeFrame(t, frame).MessageType == WSMessageTypePresenceSnapshot {
			require.NoError(t, json.Unmarshal(frame, &snapshot))
			found = true
		}
	}
	return snapshot.Users, found
}

func TestChatHub_IdentifyBroadcastsToEveryone(t *testing.T) {
	hub := NewChatHub(NewConnectionRegistry())

	identified := newTestClient()
	anonymous := newTestClient()
	hub.Attach(identified)
	hub.Attach(anonymous)

	hub.Identify(identified, "u1", UserSummary{ID: "u1", Name: "Alice"})

	// The snapshot goes to every attached connection, anonymous ones included
	for _, client := range []*ChatClient{identified, anonymous} {
		users, ok := lastPresenceSnapshot(t, drainFrames(client))
		require.True(t, ok)
		assert.ElementsMatch(t, []UserSummary{{ID: "u1", Name: "Alice"}}, users)
	}
}

func TestChatHub_IdentifyWithEmptyUserIDDoesNotBroadcast(t *testing.T) {
	hub := NewChatHub(NewConnectionRegistry())

	client := newTestClient()
	hub.Attach(client)
	hub.Identify(client, "", UserSummary{Name: "Ghost"})

	assert.Empty(t, drainFrames(client))
	assert.Equal(t, 0, hub.Registry().Count())
}

func TestChatHub_DetachIsIdempotent(t *testing.T) {
	hub := NewChatHub(NewConnectionRegistry())

	leaver := newTestClient()
	observer := newTestClient()
	hub.Attach(leaver)
	hub.Attach(observer)
	hub.Identify(leaver, "u1", UserSummary{ID: "u1", Name: "Alice"})
	drainFrames(observer)

	hub.Detach(leaver)
	frames := drainFrames(observer)
	assert.Equal(t, 1, countFrames(t, frames, WSMessageTypePresenceSnapshot))
	users, _ := lastPresenceSnapshot(t, frames)
	assert.Empty(t, users)

	// A duplicate disconnect is a silent no-op: no second broadcast, no panic
	require.NotPanics(t, func() { hub.Detach(leaver) })
	assert.Empty(t, drainFrames(observer))
}

func TestChatHub_ReconnectReplacesPresenceEntry(t *testing.T) {
	hub := NewChatHub(NewConnectionRegistry())

	oldConn := newTestClient()
	newConn := newTestClient()
	hub.Attach(oldConn)
	hub.Attach(newConn)

	hub.Identify(oldConn, "u1", UserSummary{ID: "u1", Name: "Alice"})
	hub.Identify(newConn, "u1", UserSummary{ID: "u1", Name: "Alice"})

	// The user stays online through the replaced connection's disconnect
	hub.Detach(oldConn)
	users, ok := lastPresenceSnapshot(t, drainFrames(newConn))
	require.True(t, ok)
	assert.ElementsMatch(t, []UserSummary{{ID: "u1", Name: "Alice"}}, users)

	delivered := hub.DeliverToUser("u1", []byte(`{"message_type":"message_delivered"}`))
	assert.True(t, delivered, "delivery should target the newer connection")
}

func TestChatHub_PresenceConvergence(t *testing.T) {
	// For any interleaving of identify/disconnect events, the final snapshot
	// must equal the set of users whose last event was identify.
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		hub := NewChatHub(NewConnectionRegistry())

		const numUsers = 8
		online := make(map[string]UserSummary)
		conns := make(map[string]*ChatClient)

		for step := 0; step < 50; step++ {
			userID := string(rune('a' + rng.Intn(numUsers)))
			summary := UserSummary{ID: userID, Name: "user-" + userID}

			if rng.Intn(2) == 0 {
				client := newTestClient()
				hub.Attach(client)
				hub.Identify(client, userID, summary)
				if prev, ok := conns[userID]; ok {
					// Simulate the transport reaping the replaced connection
					hub.Detach(prev)
				}
				conns[userID] = client
				online[userID] = summary
			} else if client, ok := conns[userID]; ok {
				hub.Detach(client)
				delete(conns, userID)
				delete(online, userID)
			}
		}

		expected := make([]UserSummary, 0, len(online))
		for _, summary := range online {
			expected = append(expected, summary)
		}
		assert.ElementsMatch(t, expected, hub.Registry().Snapshot(), "run %d diverged", run)
	}
}

func TestChatHub_NotifyStateChangedReachesAllClients(t *testing.T) {
	hub := NewChatHub(NewConnectionRegistry())

	clients := []*ChatClient{newTestClient(), newTestClient(), newTestClient()}
	for _, client := range clients {
		hub.Attach(client)
	}

	hub.NotifyStateChanged()

	for _, client := range clients {
		frames := drainFrames(client)
		assert.Equal(t, 1, countFrames(t, frames, WSMessageTypeStateInvalidated))
	}
}

func TestChatHub_FullSendQueueDropsFrame(t *testing.T) {
	hub := NewChatHub(NewConnectionRegistry())

	stuck := &ChatClient{ID: "stuck", Send: make(chan []byte)} // zero capacity, never drained
	hub.Attach(stuck)

	// Must not block or panic; the frame is dropped
	require.NotPanics(t, func() { hub.NotifyStateChanged() })
	assert.Equal(t, 1, hub.ConnectionCount())
}
