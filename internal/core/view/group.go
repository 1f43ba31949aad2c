package view

import "github.com/ogurasousui/headcount-dashboard/internal/core/employee"

// TeamGroup は表示用のチーム単位のまとまりです。
type TeamGroup struct {
	Team      Team
	Employees []*employee.Employee
}

// GroupByTeam は絞り込み済みの社員をチームごとに分けます。
// 該当者のいないチームも空のグループとして teams の順で残ります。
func GroupByTeam(filtered []*employee.Employee, teams []Team) []TeamGroup {
	index := make(map[string]int, len(teams))
	groups := make([]TeamGroup, len(teams))
	for i, t := range teams {
		index[t.ID] = i
		groups[i] = TeamGroup{Team: t, Employees: []*employee.Employee{}}
	}

	for _, e := range filtered {
		if e == nil {
			continue
		}
		if i, ok := index[employee.NormalizeTeam(e.Team)]; ok {
			groups[i].Employees = append(groups[i].Employees, e)
		}
	}
	return groups
}

// Dashboard は画面全体の派生値一式です。
type Dashboard struct {
	Teams     []Team
	Stats     Stats
	Levels    []LevelCount
	Summaries []TeamSummary
	Filtered  []*employee.Employee
	Groups    []TeamGroup
}

// Build は社員一覧と絞り込み条件からダッシュボードを組み立てます。
// 集計は絞り込み前の全件、グループは絞り込み後の結果から作ります。
func Build(employees []*employee.Employee, f Filter) Dashboard {
	teams := Teams(employees)
	filtered := Apply(employees, f)
	return Dashboard{
		Teams:     teams,
		Stats:     ComputeStats(employees, teams),
		Levels:    Levels(employees),
		Summaries: TeamSummaries(employees, teams),
		Filtered:  filtered,
		Groups:    GroupByTeam(filtered, teams),
	}
}
