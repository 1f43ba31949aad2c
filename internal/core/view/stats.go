package view

import "github.com/ogurasousui/headcount-dashboard/internal/core/employee"

// Stats は人数の集計です。
type Stats struct {
	Total    int
	Active   int
	Pending  int
	Hiring   int
	Backfill int
	ByTeam   map[string]int
}

// TeamSummary はチームごとの状態別人数です。
type TeamSummary struct {
	Team     Team
	Total    int
	Active   int
	Pending  int
	Hiring   int
	Backfill int
}

// ComputeStats は全体と状態別、チーム別の人数を数えます。
// ByTeam には teams に含まれるチームだけが現れます。
func ComputeStats(employees []*employee.Employee, teams []Team) Stats {
	stats := Stats{ByTeam: make(map[string]int, len(teams))}
	for _, t := range teams {
		stats.ByTeam[t.ID] = 0
	}

	for _, e := range employees {
		if e == nil {
			continue
		}
		stats.Total++
		countStatus(e.Status, &stats.Active, &stats.Pending, &stats.Hiring, &stats.Backfill)

		team := employee.NormalizeTeam(e.Team)
		if _, ok := stats.ByTeam[team]; ok {
			stats.ByTeam[team]++
		}
	}
	return stats
}

// TeamSummaries はチーム順にチームごとの内訳を返します。
func TeamSummaries(employees []*employee.Employee, teams []Team) []TeamSummary {
	index := make(map[string]int, len(teams))
	summaries := make([]TeamSummary, len(teams))
	for i, t := range teams {
		index[t.ID] = i
		summaries[i].Team = t
	}

	for _, e := range employees {
		if e == nil {
			continue
		}
		i, ok := index[employee.NormalizeTeam(e.Team)]
		if !ok {
			continue
		}
		s := &summaries[i]
		s.Total++
		countStatus(e.Status, &s.Active, &s.Pending, &s.Hiring, &s.Backfill)
	}
	return summaries
}

// countStatus は取り込み境界を経ていない値も DefaultStatus 側で数えます。
func countStatus(status employee.Status, active, pending, hiring, backfill *int) {
	if !status.IsValid() {
		status = employee.NormalizeStatus(string(status))
	}
	switch status {
	case employee.StatusActive:
		*active++
	case employee.StatusPending:
		*pending++
	case employee.StatusHiring:
		*hiring++
	case employee.StatusBackfill:
		*backfill++
	}
}
