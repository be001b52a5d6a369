package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go-event-relay/internal/infrastructure/logger"
)

// WebSocketConnection adapts a gorilla WebSocket to the Connection
// interface. Payloads queue onto a buffered channel drained by a single
// write pump, which serializes writes and keeps per-connection delivery
// in enqueue order.
type WebSocketConnection struct {
	id   string
	conn *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc

	state   State
	stateMu sync.RWMutex

	logger logger.Logger

	send chan []byte

	writeTimeout time.Duration
	pongTimeout  time.Duration
}

func NewWebSocketConnection(id string, conn *websocket.Conn, log logger.Logger) *WebSocketConnection {
	ctx, cancel := context.WithCancel(context.Background())

	wsConn := &WebSocketConnection{
		id:           id,
		conn:         conn,
		ctx:          ctx,
		cancel:       cancel,
		state:        StateOpen,
		logger:       log.WithField("connection_id", id),
		send:         make(chan []byte, 256),
		writeTimeout: 10 * time.Second,
		pongTimeout:  60 * time.Second,
	}

	conn.SetReadDeadline(time.Now().Add(wsConn.pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsConn.pongTimeout))
	})

	go wsConn.writePump()
	go wsConn.readPump()

	return wsConn
}

func (c *WebSocketConnection) ID() string {
	return c.id
}

func (c *WebSocketConnection) Type() string {
	return "websocket"
}

func (c *WebSocketConnection) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Send queues a payload for the write pump. It blocks only until the
// queue accepts the payload or ctx expires, so one stalled peer cannot
// hold up a broadcast beyond the caller's deadline.
func (c *WebSocketConnection) Send(ctx context.Context, payload []byte) error {
	if c.State() != StateOpen {
		return fmt.Errorf("connection %s is not open", c.id)
	}

	select {
	case c.send <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return fmt.Errorf("connection %s closed", c.id)
	}
}

// Close transitions the connection to closed, notifies the peer and
// releases the underlying socket. Safe to call from the read pump, the
// transport handler and the broadcaster concurrently.
func (c *WebSocketConnection) Close() error {
	c.stateMu.Lock()
	if c.state != StateOpen {
		c.stateMu.Unlock()
		return nil
	}
	c.state = StateClosing
	c.stateMu.Unlock()

	c.cancel()

	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	err := c.conn.Close()

	c.stateMu.Lock()
	c.state = StateClosed
	c.stateMu.Unlock()

	c.logger.Info("websocket connection closed")
	return err
}

func (c *WebSocketConnection) Context() context.Context {
	return c.ctx
}

// writePump drains the send queue onto the socket and pings the peer
// often enough to beat the pong timeout.
func (c *WebSocketConnection) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Errorf("failed to write payload: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Errorf("failed to send ping: %v", err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// readPump consumes inbound frames. The relay pushes one way, so frames
// are discarded; the pump exists to surface peer close and transport
// errors, which end the connection.
func (c *WebSocketConnection) readPump() {
	defer c.Close()

	for {
		messageType, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure,
			) {
				c.logger.Errorf("websocket read error: %v", err)
			}
			return
		}

		if messageType == websocket.CloseMessage {
			c.logger.Info("received close message from peer")
			return
		}
	}
}
