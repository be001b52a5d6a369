package hub

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/sse"

	"go-event-relay/internal/infrastructure/logger"
)

// SSEConnection adapts a text/event-stream response to the Connection
// interface. SSE is push-only, which is all the relay needs from a
// connection; the peer leaving is observed through the request context.
type SSEConnection struct {
	id      string
	writer  http.ResponseWriter
	request *http.Request

	ctx    context.Context
	cancel context.CancelFunc

	state   State
	stateMu sync.RWMutex

	writeMu sync.Mutex

	logger logger.Logger
}

func NewSSEConnection(ctx context.Context, id string, w http.ResponseWriter, r *http.Request, log logger.Logger) *SSEConnection {
	rctx, cancel := context.WithCancel(ctx)

	conn := &SSEConnection{
		id:      id,
		writer:  w,
		request: r,
		ctx:     rctx,
		cancel:  cancel,
		state:   StateOpen,
		logger:  log.WithField("connection_id", id),
	}

	conn.setupHeaders()
	go conn.keepAlive()

	return conn
}

func (c *SSEConnection) ID() string {
	return c.id
}

func (c *SSEConnection) Type() string {
	return "sse"
}

func (c *SSEConnection) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Send writes one payload as an SSE message event. The write runs in its
// own goroutine so a stalled client only blocks until ctx expires, at
// which point the connection is closed rather than retried.
func (c *SSEConnection) Send(ctx context.Context, payload []byte) error {
	if c.State() != StateOpen {
		return fmt.Errorf("connection %s is not open", c.id)
	}

	done := make(chan error, 1)
	go func() {
		c.writeMu.Lock()
		defer c.writeMu.Unlock()

		err := sse.Encode(c.writer, sse.Event{
			Event: "message",
			Data:  string(payload),
		})
		if err != nil {
			done <- err
			return
		}
		if flusher, ok := c.writer.(http.Flusher); ok {
			flusher.Flush()
		}
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			c.logger.Errorf("failed to write sse payload: %v", err)
			c.Close()
			return err
		}
		return nil

	case <-ctx.Done():
		c.logger.Warn("sse send deadline exceeded")
		c.Close()
		return ctx.Err()

	case <-c.ctx.Done():
		return fmt.Errorf("connection %s closed", c.id)
	}
}

func (c *SSEConnection) Close() error {
	c.stateMu.Lock()
	if c.state != StateOpen {
		c.stateMu.Unlock()
		return nil
	}
	c.state = StateClosing
	c.stateMu.Unlock()

	c.cancel()

	c.stateMu.Lock()
	c.state = StateClosed
	c.stateMu.Unlock()

	c.logger.Info("sse connection closed")
	return nil
}

func (c *SSEConnection) Context() context.Context {
	return c.ctx
}

func (c *SSEConnection) setupHeaders() {
	c.writer.Header().Set("Content-Type", "text/event-stream")
	c.writer.Header().Set("Cache-Control", "no-cache")
	c.writer.Header().Set("Connection", "keep-alive")
	c.writer.Header().Set("X-Accel-Buffering", "no") // for nginx
}

// keepAlive emits a periodic heartbeat so intermediaries keep the stream
// open; a failed heartbeat ends the connection.
func (c *SSEConnection) keepAlive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := c.Send(ctx, []byte(`{"type":"keepalive"}`))
			cancel()
			if err != nil {
				c.logger.Errorf("failed to send keep-alive: %v", err)
				c.Close()
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
