package employee

import "context"

// Repository はリモートの employees テーブルへの読み書きの抽象です。
type Repository interface {
	// FetchAll は名前の昇順 (大文字小文字無視) で全件を返します。
	FetchAll(ctx context.Context) ([]*Employee, error)
	// Insert は 1 行を作成し、サーバーが採番した ID を返します。
	Insert(ctx context.Context, in NewEmployee) (string, error)
	// UpdatePartial は指定された項目だけを更新します。
	UpdatePartial(ctx context.Context, id string, fields UpdateFields) error
	Remove(ctx context.Context, id string) error
}

// ChangeKind は変更通知の種類です。
type ChangeKind string

const (
	ChangeInsert  ChangeKind = "INSERT"
	ChangeUpdate  ChangeKind = "UPDATE"
	ChangeDelete  ChangeKind = "DELETE"
	ChangeUnknown ChangeKind = "UNKNOWN"
)

// ChangeEvent は「テーブルが変わった」ことだけを伝える通知です。
// 行の内容は含まれないため、受け手は全件を再取得します。
type ChangeEvent struct {
	Kind  ChangeKind
	Table string
}

// ChangeFeed は変更通知の購読口です。
type ChangeFeed interface {
	SubscribeToChanges(fn func(ChangeEvent)) (unsubscribe func(), err error)
}

// Gateway は Repository と ChangeFeed をまとめたリモートストアの窓口です。
type Gateway interface {
	Repository
	ChangeFeed
}
