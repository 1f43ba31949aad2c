package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

type fakeListenConn struct {
	notifications chan *pgconn.Notification

	mu       sync.Mutex
	channels []string
	closed   bool
}

func newFakeListenConn(buffer int) *fakeListenConn {
	return &fakeListenConn{notifications: make(chan *pgconn.Notification, buffer)}
}

func (c *fakeListenConn) Listen(_ context.Context, channel string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels = append(c.channels, channel)
	return nil
}

func (c *fakeListenConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case n, ok := <-c.notifications:
		if !ok {
			return nil, errors.New("connection lost")
		}
		return n, nil
	}
}

func (c *fakeListenConn) Close(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func collect(l *Listener) (<-chan Notification, func()) {
	ch := make(chan Notification, 16)
	unsubscribe := l.Subscribe(func(n Notification) { ch <- n })
	return ch, unsubscribe
}

func receive(t *testing.T, ch <-chan Notification) Notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return Notification{}
	}
}

func TestListener_DispatchesNotifications(t *testing.T) {
	t.Parallel()

	conn := newFakeListenConn(4)
	dial := func(context.Context) (ListenConn, error) { return conn, nil }
	l := NewListener(dial, "employees_changes", time.Millisecond, nil)
	got, _ := collect(l)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	conn.notifications <- &pgconn.Notification{Channel: "employees_changes", Payload: "INSERT"}
	conn.notifications <- &pgconn.Notification{Channel: "employees_changes", Payload: "DELETE"}

	if n := receive(t, got); n.Payload != "INSERT" {
		t.Fatalf("unexpected first payload: %q", n.Payload)
	}
	if n := receive(t, got); n.Payload != "DELETE" {
		t.Fatalf("unexpected second payload: %q", n.Payload)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.channels) != 1 || conn.channels[0] != "employees_changes" {
		t.Fatalf("unexpected LISTEN calls: %v", conn.channels)
	}
	if !conn.closed {
		t.Fatal("expected connection to be closed after Run")
	}
}

func TestListener_ReconnectsAndSignalsGap(t *testing.T) {
	t.Parallel()

	first := newFakeListenConn(1)
	second := newFakeListenConn(1)

	var mu sync.Mutex
	dials := 0
	dial := func(context.Context) (ListenConn, error) {
		mu.Lock()
		defer mu.Unlock()
		dials++
		switch dials {
		case 1:
			return nil, errors.New("database is starting up")
		case 2:
			return first, nil
		default:
			return second, nil
		}
	}

	l := NewListener(dial, "employees_changes", time.Millisecond, nil)
	got, _ := collect(l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	// 初回の接続失敗後の接続でも取りこぼし通知が届きます。
	if n := receive(t, got); n.Payload != "" {
		t.Fatalf("expected gap notification, got %q", n.Payload)
	}

	close(first.notifications)

	if n := receive(t, got); n.Payload != "" {
		t.Fatalf("expected gap notification after reconnect, got %q", n.Payload)
	}

	second.notifications <- &pgconn.Notification{Channel: "employees_changes", Payload: "UPDATE"}
	if n := receive(t, got); n.Payload != "UPDATE" {
		t.Fatalf("unexpected payload: %q", n.Payload)
	}
}

func TestListener_UnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	l := NewListener(nil, "employees_changes", 0, nil)
	got, unsubscribe := collect(l)

	l.dispatch(Notification{Payload: "INSERT"})
	receive(t, got)

	unsubscribe()
	unsubscribe()
	l.dispatch(Notification{Payload: "INSERT"})

	select {
	case n := <-got:
		t.Fatalf("unexpected notification after unsubscribe: %+v", n)
	default:
	}

	if err := l.Run(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
