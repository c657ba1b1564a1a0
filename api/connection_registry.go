package api

import (
	"sync"

	"github.com/procboard/procboard/internal/slogging"
)

// RegistryEntry maps a user identity to its live connection.
type RegistryEntry struct {
	UserID       string
	User         UserSummary
	ConnectionID string
}

// ConnectionRegistry is the presence source of truth: which users are
// currently reachable and through which connection. A user has at most one
// active connection; a newer identify for the same user silently replaces the
// prior entry (last-connection-wins). The registry is mutated only by the
// connection lifecycle; everyone else reads it.
type ConnectionRegistry struct {
	mu     sync.RWMutex
	byUser map[string]*RegistryEntry
	byConn map[string]string // connection ID -> user ID
	logger *slogging.Logger
}

// NewConnectionRegistry creates an empty registry
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		byUser: make(map[string]*RegistryEntry),
		byConn: make(map[string]string),
		logger: slogging.Get(),
	}
}

// Register inserts or replaces the entry for userID. An empty userID is a
// logged no-op, never an error.
func (r *ConnectionRegistry) Register(userID string, user UserSummary, connectionID string) {
	if userID == "" {
		r.logger.Warn("Ignoring identify with empty user id - connection_id: %s", connectionID)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byUser[userID]; ok {
		delete(r.byConn, prev.ConnectionID)
		r.logger.Info("Replacing presence entry for user %s - old_connection: %s, new_connection: %s",
			userID, prev.ConnectionID, connectionID)
	}

	r.byUser[userID] = &RegistryEntry{
		UserID:       userID,
		User:         user,
		ConnectionID: connectionID,
	}
	r.byConn[connectionID] = userID
}

// Deregister removes the entry whose connection matches. Deregistering an
// unknown connection (duplicate disconnect, or a connection that was replaced
// by a newer identify) is a silent no-op. Returns true if an entry was removed.
func (r *ConnectionRegistry) Deregister(connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connectionID]
	if !ok {
		return false
	}
	delete(r.byConn, connectionID)
	delete(r.byUser, userID)
	return true
}

// FindByConnection returns the entry registered for a connection, if any
func (r *ConnectionRegistry) FindByConnection(connectionID string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.byConn[connectionID]
	if !ok {
		return nil, false
	}
	entry := r.byUser[userID]
	return entry, entry != nil
}

// FindByUser returns the entry registered for a user, if any
func (r *ConnectionRegistry) FindByUser(userID string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byUser[userID]
	return entry, ok
}

// Snapshot returns the summaries of all currently registered users.
// Order is unspecified; consumers must not rely on it.
func (r *ConnectionRegistry) Snapshot() []UserSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]UserSummary, 0, len(r.byUser))
	for _, entry := range r.byUser {
		users = append(users, entry.User)
	}
	return users
}

// Count returns the number of registered users
func (r *ConnectionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byUser)
}
