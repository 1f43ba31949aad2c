package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const defaultReconnectDelay = 5 * time.Second

// Notification は LISTEN で受信した通知です。
// Payload が空の通知は再接続時に発行され、取りこぼしの可能性を表します。
type Notification struct {
	Channel string
	Payload string
}

// ListenConn は LISTEN 専用に占有する接続です。
type ListenConn interface {
	Listen(ctx context.Context, channel string) error
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context)
}

// Dialer は ListenConn を確立します。
type Dialer func(ctx context.Context) (ListenConn, error)

// PoolDialer は pgxpool から 1 接続を取得して LISTEN に使う Dialer を返します。
func PoolDialer(pool *pgxpool.Pool) Dialer {
	return func(ctx context.Context) (ListenConn, error) {
		if pool == nil {
			return nil, ErrNotConfigured
		}
		conn, err := pool.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("postgres: acquire listen conn: %w", err)
		}
		return &poolListenConn{conn: conn}, nil
	}
}

type poolListenConn struct {
	conn *pgxpool.Conn
}

func (c *poolListenConn) Listen(ctx context.Context, channel string) error {
	if _, err := c.conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		return fmt.Errorf("postgres: listen %s: %w", channel, err)
	}
	return nil
}

func (c *poolListenConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	return c.conn.Conn().WaitForNotification(ctx)
}

// Close は LISTEN 状態を持ったままプールへ戻さないよう接続ごと破棄します。
func (c *poolListenConn) Close(ctx context.Context) {
	_ = c.conn.Conn().Close(ctx)
	c.conn.Release()
}

// Listener は単一チャネルの LISTEN ループを管理し、購読者へ通知を配信します。
type Listener struct {
	dial    Dialer
	channel string
	delay   time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	subs   map[int]func(Notification)
	nextID int
}

// NewListener は Listener を生成します。delay が 0 以下なら既定値を使います。
func NewListener(dial Dialer, channel string, delay time.Duration, logger *zap.Logger) *Listener {
	if delay <= 0 {
		delay = defaultReconnectDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		dial:    dial,
		channel: channel,
		delay:   delay,
		logger:  logger.Named("listener").With(zap.String("channel", channel)),
		subs:    make(map[int]func(Notification)),
	}
}

// Subscribe は通知ごとに fn を呼び出すよう登録し、解除関数を返します。
// fn は受信ループ上で呼ばれるため、すぐに戻る必要があります。
func (l *Listener) Subscribe(fn func(Notification)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
		})
	}
}

// Run は ctx が終了するまで LISTEN を続けます。接続が失われた場合は delay 後に再接続します。
func (l *Listener) Run(ctx context.Context) error {
	if l.dial == nil {
		return ErrNotConfigured
	}

	reconnecting := false
	for {
		err := l.session(ctx, reconnecting)
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn("listen session ended", zap.Error(err), zap.Duration("retry_in", l.delay))
		reconnecting = true

		timer := time.NewTimer(l.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (l *Listener) session(ctx context.Context, reconnecting bool) error {
	conn, err := l.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(context.WithoutCancel(ctx))

	if err := conn.Listen(ctx, l.channel); err != nil {
		return err
	}
	l.logger.Info("listening")

	if reconnecting {
		l.dispatch(Notification{Channel: l.channel})
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return fmt.Errorf("postgres: wait for notification: %w", err)
		}
		if n == nil {
			continue
		}
		l.dispatch(Notification{Channel: n.Channel, Payload: n.Payload})
	}
}

func (l *Listener) dispatch(n Notification) {
	l.mu.Lock()
	fns := make([]func(Notification), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(n)
	}
}
