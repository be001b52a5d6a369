package hub

import (
	"context"
	"sync"

	"go-event-relay/internal/infrastructure/logger"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string)                              {}
func (m *mockLogger) Debugf(format string, args ...any)             {}
func (m *mockLogger) Info(msg string)                               {}
func (m *mockLogger) Infof(format string, args ...any)              {}
func (m *mockLogger) Warn(msg string)                               {}
func (m *mockLogger) Warnf(format string, args ...any)              {}
func (m *mockLogger) Error(msg string)                              {}
func (m *mockLogger) Errorf(format string, args ...any)             {}
func (m *mockLogger) Fatal(msg string)                              {}
func (m *mockLogger) Fatalf(format string, args ...any)             {}
func (m *mockLogger) WithField(key string, value any) logger.Logger { return m }
func (m *mockLogger) WithFields(fields logger.Fields) logger.Logger { return m }

type mockConnection struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	payloads [][]byte
	sendErr  error

	// honorCtx makes Send fail when the passed context is done, the way
	// the real connection types do.
	honorCtx bool

	// sendEntered (when set) receives a signal as each Send takes the
	// transport lock; sendGate (when set) holds the Send there until
	// the channel is closed, simulating a slow-draining peer.
	sendEntered chan struct{}
	sendGate    chan struct{}
}

func newMockConnection(id string) *mockConnection {
	ctx, cancel := context.WithCancel(context.Background())
	return &mockConnection{
		id:     id,
		ctx:    ctx,
		cancel: cancel,
		state:  StateOpen,
	}
}

func (m *mockConnection) ID() string   { return m.id }
func (m *mockConnection) Type() string { return "mock" }

func (m *mockConnection) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *mockConnection) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *mockConnection) Send(ctx context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendEntered != nil {
		select {
		case m.sendEntered <- struct{}{}:
		default:
		}
	}
	if m.sendGate != nil {
		<-m.sendGate
	}
	if m.honorCtx {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	m.payloads = append(m.payloads, buf)
	return nil
}

func (m *mockConnection) received() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.payloads))
	copy(out, m.payloads)
	return out
}

func (m *mockConnection) Close() error {
	m.mu.Lock()
	m.state = StateClosed
	m.mu.Unlock()
	m.cancel()
	return nil
}

func (m *mockConnection) Context() context.Context { return m.ctx }

func registryHas(r *Registry, id string) bool {
	for _, conn := range r.Snapshot() {
		if conn.ID() == id {
			return true
		}
	}
	return false
}
