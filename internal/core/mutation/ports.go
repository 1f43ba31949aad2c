package mutation

import (
	"context"
)

// NoticeKind は利用者への通知の種類です。
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice は利用者に表示する確認またはエラーのメッセージです。
type Notice struct {
	Kind        NoticeKind
	Title       string
	Description string
}

// Notifier は通知の表示先です。
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc は関数を Notifier として扱います。
type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) {
	f(ctx, n)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notice) {}

// Confirmer は削除前に利用者へ可否を問い合わせます。
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc は関数を Confirmer として扱います。
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Confirmed は問い合わせずに決まった答えを返す Confirmer です。
type Confirmed bool

func (c Confirmed) Confirm(context.Context, string) (bool, error) {
	return bool(c), nil
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}
