package hub

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestBroadcaster_EmptyRegistry(t *testing.T) {
	registry := NewRegistry(&mockLogger{})
	broadcaster := NewBroadcaster(registry, &mockLogger{}, 0)

	delivered := broadcaster.Broadcast(context.Background(), []byte(`{"type":"ping"}`))
	if delivered != 0 {
		t.Errorf("expected 0 deliveries to empty registry, got %d", delivered)
	}
}

func TestBroadcaster_DeliversToAllOpenConnections(t *testing.T) {
	registry := NewRegistry(&mockLogger{})
	broadcaster := NewBroadcaster(registry, &mockLogger{}, 0)

	conns := make([]*mockConnection, 3)
	for i := range conns {
		conns[i] = newMockConnection(fmt.Sprintf("conn-%d", i))
		registry.Register(conns[i])
	}

	payload := []byte(`{"type":"ping"}`)
	delivered := broadcaster.Broadcast(context.Background(), payload)

	if delivered != 3 {
		t.Errorf("expected 3 deliveries, got %d", delivered)
	}
	for _, conn := range conns {
		received := conn.received()
		if len(received) != 1 {
			t.Fatalf("connection %s should have received 1 payload, got %d", conn.ID(), len(received))
		}
		if !bytes.Equal(received[0], payload) {
			t.Errorf("connection %s received %q, want %q", conn.ID(), received[0], payload)
		}
	}
}

func TestBroadcaster_FailedSendPrunesConnection(t *testing.T) {
	registry := NewRegistry(&mockLogger{})
	broadcaster := NewBroadcaster(registry, &mockLogger{}, 0)

	healthy1 := newMockConnection("conn-a")
	failing := newMockConnection("conn-b")
	healthy2 := newMockConnection("conn-c")
	failing.sendErr = errors.New("peer gone")

	registry.Register(healthy1)
	registry.Register(failing)
	registry.Register(healthy2)

	payload := []byte(`{"type":"ping"}`)
	delivered := broadcaster.Broadcast(context.Background(), payload)

	if delivered != 2 {
		t.Errorf("expected 2 deliveries, got %d", delivered)
	}
	if registry.Size() != 2 {
		t.Errorf("failed connection should be pruned, registry size = %d, want 2", registry.Size())
	}
	for _, conn := range []*mockConnection{healthy1, healthy2} {
		if len(conn.received()) != 1 {
			t.Errorf("connection %s should still receive the payload", conn.ID())
		}
	}
	if len(failing.received()) != 0 {
		t.Errorf("failing connection should not record a delivery")
	}

	// Pruning must also close the connection so its transport resources
	// are released and its handler unblocks.
	if failing.State() != StateClosed {
		t.Errorf("pruned connection state = %s, want closed", failing.State())
	}
	select {
	case <-failing.Context().Done():
	default:
		t.Error("pruned connection context should be cancelled")
	}
}

func TestBroadcaster_CallerCancellationIsNotRecipientFailure(t *testing.T) {
	registry := NewRegistry(&mockLogger{})
	broadcaster := NewBroadcaster(registry, &mockLogger{}, 0)

	conns := make([]*mockConnection, 3)
	for i := range conns {
		conns[i] = newMockConnection(fmt.Sprintf("conn-%d", i))
		conns[i].honorCtx = true
		registry.Register(conns[i])
	}

	// The notifier aborting its request must not demote healthy peers.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	delivered := broadcaster.Broadcast(ctx, []byte(`{"type":"ping"}`))

	if delivered != 3 {
		t.Errorf("delivered = %d, want 3", delivered)
	}
	if registry.Size() != 3 {
		t.Errorf("healthy connections were purged: size = %d, want 3", registry.Size())
	}
	for _, conn := range conns {
		if len(conn.received()) != 1 {
			t.Errorf("connection %s received %d payloads, want 1", conn.ID(), len(conn.received()))
		}
	}
}

func TestBroadcaster_SkipsNonOpenConnections(t *testing.T) {
	registry := NewRegistry(&mockLogger{})
	broadcaster := NewBroadcaster(registry, &mockLogger{}, 0)

	closing := newMockConnection("conn-closing")
	closing.setState(StateClosing)
	closed := newMockConnection("conn-closed")
	closed.setState(StateClosed)

	registry.Register(closing)
	registry.Register(closed)

	delivered := broadcaster.Broadcast(context.Background(), []byte(`{"type":"ping"}`))

	if delivered != 0 {
		t.Errorf("expected 0 deliveries, got %d", delivered)
	}
	if len(closing.received()) != 0 || len(closed.received()) != 0 {
		t.Error("non-open connections must not receive payloads")
	}

	// Closed entries are reaped opportunistically; closing ones belong
	// to the close path and stay put.
	if registryHas(registry, "conn-closed") {
		t.Error("closed connection should have been unregistered during broadcast")
	}
	if !registryHas(registry, "conn-closing") {
		t.Error("closing connection should remain registered")
	}
}

func TestBroadcaster_PerConnectionOrderingUnderConcurrentBroadcasts(t *testing.T) {
	registry := NewRegistry(&mockLogger{})
	broadcaster := NewBroadcaster(registry, &mockLogger{}, 0)

	conn := newMockConnection("conn-1")
	conn.sendEntered = make(chan struct{}, 2)
	conn.sendGate = make(chan struct{})
	registry.Register(conn)

	m1 := []byte(`{"seq":1}`)
	m2 := []byte(`{"seq":2}`)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		broadcaster.Broadcast(context.Background(), m1)
	}()

	// Hold the first broadcast inside the connection's send, then start
	// the second so the two calls overlap on a slow-draining peer. The
	// transport serializes sends, so m2 must queue behind m1.
	<-conn.sendEntered
	go func() {
		defer wg.Done()
		broadcaster.Broadcast(context.Background(), m2)
	}()

	close(conn.sendGate)
	wg.Wait()

	received := conn.received()
	if len(received) != 2 {
		t.Fatalf("received %d payloads, want 2", len(received))
	}
	if !bytes.Equal(received[0], m1) || !bytes.Equal(received[1], m2) {
		t.Errorf("payloads delivered out of order: %q then %q", received[0], received[1])
	}
}

func TestBroadcaster_ConcurrentBroadcasts(t *testing.T) {
	registry := NewRegistry(&mockLogger{})
	broadcaster := NewBroadcaster(registry, &mockLogger{}, 0)

	conns := make([]*mockConnection, 4)
	for i := range conns {
		conns[i] = newMockConnection(fmt.Sprintf("conn-%d", i))
		registry.Register(conns[i])
	}

	const broadcasts = 50

	var wg sync.WaitGroup
	for i := 0; i < broadcasts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			broadcaster.Broadcast(context.Background(), []byte(fmt.Sprintf(`{"seq":%d}`, n)))
		}(i)
	}
	wg.Wait()

	for _, conn := range conns {
		if len(conn.received()) != broadcasts {
			t.Errorf("connection %s received %d payloads, want %d", conn.ID(), len(conn.received()), broadcasts)
		}
	}
	if registry.Size() != len(conns) {
		t.Errorf("registry size changed under concurrent broadcasts: %d", registry.Size())
	}
}

func TestBroadcaster_EndToEndScenario(t *testing.T) {
	registry := NewRegistry(&mockLogger{})
	broadcaster := NewBroadcaster(registry, &mockLogger{}, 0)

	connA := newMockConnection("conn-a")
	connB := newMockConnection("conn-b")
	connC := newMockConnection("conn-c")
	registry.Register(connA)
	registry.Register(connB)
	registry.Register(connC)

	ping := []byte(`{"type":"ping"}`)
	if delivered := broadcaster.Broadcast(context.Background(), ping); delivered != 3 {
		t.Fatalf("first broadcast delivered %d, want 3", delivered)
	}
	for _, conn := range []*mockConnection{connA, connB, connC} {
		received := conn.received()
		if len(received) != 1 || !bytes.Equal(received[0], ping) {
			t.Fatalf("connection %s did not receive the ping exactly once", conn.ID())
		}
	}

	connB.sendErr = errors.New("write: broken pipe")

	ping2 := []byte(`{"type":"ping2"}`)
	if delivered := broadcaster.Broadcast(context.Background(), ping2); delivered != 2 {
		t.Errorf("second broadcast delivered %d, want 2", delivered)
	}
	if registry.Size() != 2 {
		t.Errorf("registry size after prune = %d, want 2", registry.Size())
	}
	if registryHas(registry, "conn-b") {
		t.Error("conn-b should be absent after its send failed")
	}
}
