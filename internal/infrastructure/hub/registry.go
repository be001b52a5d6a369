package hub

import (
	"sync"

	"go-event-relay/internal/infrastructure/logger"
	"go-event-relay/internal/infrastructure/metrics"
)

// Registry is the authoritative set of connections eligible for broadcast.
// All methods are safe for concurrent use: close/error callbacks, failed
// sends and inbound HTTP requests may all mutate it at the same time.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]Connection

	logger logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		connections: make(map[string]Connection),
		logger:      log.WithField("component", "registry"),
	}
}

// Register adds a connection. Registering the same connection twice is a
// benign overwrite, never an error.
func (r *Registry) Register(conn Connection) {
	r.mu.Lock()
	r.connections[conn.ID()] = conn
	size := len(r.connections)
	r.mu.Unlock()

	metrics.ConnectionsCurrent.Set(float64(size))
	r.logger.Infof("connection %s registered (type: %s, total: %d)", conn.ID(), conn.Type(), size)
}

// Unregister removes a connection if present and closes it. Removing an
// absent connection is a no-op, so the three trigger paths (close,
// error, failed send) can race each other freely; Close is idempotent,
// so removals triggered by a close event are no-ops there. The entry is
// only removed if it still maps to this exact connection, so a late
// unregister cannot evict an ID's newer owner.
func (r *Registry) Unregister(conn Connection) {
	r.mu.Lock()
	current, exists := r.connections[conn.ID()]
	if exists && current == conn {
		delete(r.connections, conn.ID())
	} else {
		exists = false
	}
	size := len(r.connections)
	r.mu.Unlock()

	if exists {
		if err := conn.Close(); err != nil {
			r.logger.Errorf("failed to close connection %s: %v", conn.ID(), err)
		}
		metrics.ConnectionsCurrent.Set(float64(size))
		r.logger.Infof("connection %s unregistered (total: %d)", conn.ID(), size)
	}
}

// Snapshot returns a point-in-time copy of the registered connections,
// safe to iterate while registrations and removals continue underneath.
func (r *Registry) Snapshot() []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connections := make([]Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		connections = append(connections, conn)
	}
	return connections
}

// SnapshotByType returns the registered connections of one transport type.
func (r *Registry) SnapshotByType(connType string) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var connections []Connection
	for _, conn := range r.connections {
		if conn.Type() == connType {
			connections = append(connections, conn)
		}
	}
	return connections
}

// Size returns the current connection count. Under concurrent mutation
// the value is eventually consistent, which is all health reporting needs.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// CloseAll closes every connection and empties the registry. Used by the
// shutdown drain; a broadcast mid-flight sees its snapshot entries move
// to closed and simply stops counting them.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	drained := make([]Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		drained = append(drained, conn)
	}
	r.connections = make(map[string]Connection)
	r.mu.Unlock()

	for _, conn := range drained {
		if err := conn.Close(); err != nil {
			r.logger.Errorf("failed to close connection %s: %v", conn.ID(), err)
		}
	}

	metrics.ConnectionsCurrent.Set(0)
	r.logger.Infof("registry drained (%d connections closed)", len(drained))
}
