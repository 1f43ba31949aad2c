package livestate

import "github.com/ogurasousui/headcount-dashboard/internal/core/employee"

// Mutation はリモート書き込みの完了前にローカル一覧へ適用する変更です。
// 次の全件取得で必ず上書きされ、永続化済みとはみなしません。
type Mutation interface {
	apply(list []*employee.Employee) []*employee.Employee
}

// StatusChange は状態の変更です。
type StatusChange struct {
	ID     string
	Status employee.Status
}

func (m StatusChange) apply(list []*employee.Employee) []*employee.Employee {
	return updateByID(list, m.ID, func(e *employee.Employee) { e.Status = m.Status })
}

// TeamMove はチームの移動です。
type TeamMove struct {
	ID   string
	Team string
}

func (m TeamMove) apply(list []*employee.Employee) []*employee.Employee {
	return updateByID(list, m.ID, func(e *employee.Employee) { e.Team = employee.NormalizeTeam(m.Team) })
}

// FieldEdit は項目の部分更新です。
type FieldEdit struct {
	ID     string
	Fields employee.UpdateFields
}

func (m FieldEdit) apply(list []*employee.Employee) []*employee.Employee {
	return updateByID(list, m.ID, m.Fields.ApplyTo)
}

// Removal は社員の削除です。
type Removal struct {
	ID string
}

func (m Removal) apply(list []*employee.Employee) []*employee.Employee {
	out := list[:0]
	for _, e := range list {
		if e.ID != m.ID {
			out = append(out, e)
		}
	}
	return out
}

// PendingAdd はサーバー採番前の追加です。Employee.Unsynced が立った状態で一覧に入ります。
type PendingAdd struct {
	Employee *employee.Employee
}

func (m PendingAdd) apply(list []*employee.Employee) []*employee.Employee {
	if m.Employee == nil {
		return list
	}
	added := m.Employee.Clone()
	added.Unsynced = true
	return append(list, added)
}

func updateByID(list []*employee.Employee, id string, fn func(*employee.Employee)) []*employee.Employee {
	for _, e := range list {
		if e.ID == id {
			fn(e)
		}
	}
	return list
}
