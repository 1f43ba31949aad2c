package view

import (
	"strings"

	"github.com/ogurasousui/headcount-dashboard/internal/core/employee"
)

// AllSentinel は単一選択 UI で「絞り込みなし」を表す値です。
const AllSentinel = "all"

// Filter は一覧の絞り込み条件です。各集合は空なら無制約です。
type Filter struct {
	Teams       []string
	Statuses    []employee.Status
	Levels      []string
	EmployeeIDs []string
	Search      string
}

// Single は単一選択の値を集合に変換します。"all" と空文字は無制約になります。
func Single(value string) []string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == AllSentinel {
		return nil
	}
	return []string{trimmed}
}

// SingleStatus は単一選択の状態値を集合に変換します。
func SingleStatus(value string) []employee.Status {
	values := Single(value)
	if len(values) == 0 {
		return nil
	}
	return []employee.Status{employee.NormalizeStatus(values[0])}
}

// IsZero は絞り込みが何も指定されていないかを返します。
func (f Filter) IsZero() bool {
	return len(f.Teams) == 0 && len(f.Statuses) == 0 && len(f.Levels) == 0 &&
		len(f.EmployeeIDs) == 0 && strings.TrimSpace(f.Search) == ""
}

// Match は e がすべての条件を満たすかを返します。
// 検索語は名前と役職のどちらかに大文字小文字を無視した部分一致で照合します。
func (f Filter) Match(e *employee.Employee) bool {
	if e == nil {
		return false
	}
	if len(f.Teams) > 0 && !containsString(f.Teams, employee.NormalizeTeam(e.Team)) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, e.Status) {
		return false
	}
	if len(f.Levels) > 0 && !containsString(f.Levels, strings.TrimSpace(e.Level)) {
		return false
	}
	if len(f.EmployeeIDs) > 0 && !containsString(f.EmployeeIDs, e.ID) {
		return false
	}
	return matchSearch(f.Search, e)
}

// Apply は条件に合う社員を元の順序のまま返します。
func Apply(employees []*employee.Employee, f Filter) []*employee.Employee {
	out := make([]*employee.Employee, 0, len(employees))
	for _, e := range employees {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

func matchSearch(search string, e *employee.Employee) bool {
	term := strings.TrimSpace(search)
	if term == "" {
		return true
	}
	needle := employee.FoldCase(term)
	return strings.Contains(employee.FoldCase(e.Name), needle) ||
		strings.Contains(employee.FoldCase(e.Position), needle)
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == target {
			return true
		}
	}
	return false
}

func containsStatus(values []employee.Status, target employee.Status) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
