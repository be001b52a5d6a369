package hub

import "context"

// State describes where a connection is in its lifecycle.
// Transitions only move forward: Open -> Closing -> Closed.
type State int32

const (
	StateOpen State = iota
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Connection is a live duplex channel to one peer (WebSocket, SSE, etc.),
// capable of accepting one-way push payloads. A connection is created by
// the transport layer, handed to the registry, and never reused after it
// has been unregistered.
type Connection interface {
	ID() string
	Type() string
	State() State

	// Send pushes a serialized payload to the peer. Sends issued from a
	// single goroutine arrive at the peer in issue order.
	Send(ctx context.Context, payload []byte) error

	// Close is idempotent; calls after the first are no-ops.
	Close() error

	// Context is cancelled once the connection is closed by any path.
	Context() context.Context
}
