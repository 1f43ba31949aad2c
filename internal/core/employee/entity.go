package employee

import "strings"

// Status は社員の在籍状態を表します。
type Status string

const (
	StatusActive   Status = "Active"
	StatusPending  Status = "Pending"
	StatusHiring   Status = "Hiring"
	StatusBackfill Status = "Backfill"
)

// Employee は社員エンティティです。
//
// Level / Photo / StartDate / Email は任意項目で、空文字は未設定を意味します。
type Employee struct {
	ID        string
	Name      string
	Team      string
	Position  string
	Level     string
	Status    Status
	Photo     string
	StartDate string
	Email     string
	// Unsynced はサーバー採番前の楽観的追加であることを示します。
	Unsynced bool
}

// Clone は Employee のコピーを返します。
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}

// HasTeam はチームが設定されているかを返します。
func (e *Employee) HasTeam() bool {
	return e != nil && strings.TrimSpace(e.Team) != ""
}

// NewEmployee は ID 採番前の社員の入力です。
type NewEmployee struct {
	Name      string
	Team      string
	Position  string
	Level     string
	Status    Status
	Photo     string
	StartDate string
	Email     string
}

// UpdateFields は部分更新の対象項目です。nil の項目は変更しません。
type UpdateFields struct {
	Name     *string
	Position *string
	Level    *string
	Status   *Status
	Team     *string
}

// IsEmpty は更新項目が一つも指定されていないかを返します。
func (f UpdateFields) IsEmpty() bool {
	return f.Name == nil && f.Position == nil && f.Level == nil && f.Status == nil && f.Team == nil
}

// ApplyTo は更新項目を e に反映します。
func (f UpdateFields) ApplyTo(e *Employee) {
	if e == nil {
		return
	}
	if f.Name != nil {
		e.Name = *f.Name
	}
	if f.Position != nil {
		e.Position = *f.Position
	}
	if f.Level != nil {
		e.Level = *f.Level
	}
	if f.Status != nil {
		e.Status = *f.Status
	}
	if f.Team != nil {
		e.Team = *f.Team
	}
}

// CloneAll は一覧をディープコピーします。
func CloneAll(list []*Employee) []*Employee {
	out := make([]*Employee, 0, len(list))
	for _, e := range list {
		if e == nil {
			continue
		}
		out = append(out, e.Clone())
	}
	return out
}
