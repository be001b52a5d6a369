package hub

import (
	"context"
	"time"

	"go-event-relay/internal/infrastructure/logger"
	"go-event-relay/internal/infrastructure/metrics"
)

const defaultSendTimeout = 5 * time.Second

// Broadcaster delivers one serialized payload to every open connection in
// a registry. Delivery is best-effort at-most-once: a connection whose
// send fails is pruned from the registry and never retried.
type Broadcaster struct {
	registry    *Registry
	logger      logger.Logger
	sendTimeout time.Duration
}

func NewBroadcaster(registry *Registry, log logger.Logger, sendTimeout time.Duration) *Broadcaster {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &Broadcaster{
		registry:    registry,
		logger:      log.WithField("component", "broadcaster"),
		sendTimeout: sendTimeout,
	}
}

// Broadcast sends payload to every open connection and returns how many
// accepted it. It iterates a snapshot, so registrations and removals
// during delivery are safe. A failed send unregisters that connection and
// never aborts delivery to the rest; no error reaches the caller.
//
// Sends are issued sequentially, so two payloads broadcast one after the
// other reach any shared connection in that order (each connection's
// transport drains its queue FIFO). Delivery is not atomic across
// recipients: concurrent broadcasts may interleave arbitrarily between
// different connections.
func (b *Broadcaster) Broadcast(ctx context.Context, payload []byte) int {
	snapshot := b.registry.Snapshot()
	if len(snapshot) == 0 {
		return 0
	}

	metrics.BroadcastsTotal.Inc()

	delivered := 0
	for _, conn := range snapshot {
		switch conn.State() {
		case StateOpen:
			// proceed
		case StateClosed:
			// The close handler owns cleanup, but unregister is
			// idempotent so reaping a dead entry here is harmless.
			b.registry.Unregister(conn)
			continue
		default:
			continue
		}

		// The per-send context is detached from the caller's: an inbound
		// request aborting mid-broadcast is not a recipient failure.
		// Only the connection's own send result demotes it.
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.sendTimeout)
		err := conn.Send(sendCtx, payload)
		cancel()

		if err != nil {
			b.logger.Errorf("failed to deliver to connection %s: %v", conn.ID(), err)
			metrics.DeliveriesTotal.WithLabelValues("failed").Inc()
			b.registry.Unregister(conn)
			continue
		}

		metrics.DeliveriesTotal.WithLabelValues("ok").Inc()
		delivered++
	}

	b.logger.Debugf("broadcast delivered to %d/%d connections", delivered, len(snapshot))
	return delivered
}
