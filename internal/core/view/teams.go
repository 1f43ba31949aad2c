// Package view はローカルの社員一覧から表示用の派生値を計算します。
// すべて純粋関数で、同じ入力には同じ出力を返します。
package view

import (
	"sort"
	"strings"

	"github.com/ogurasousui/headcount-dashboard/internal/core/employee"
)

// Palette はチーム色の固定パレットです。初出順に割り当て、足りなければ循環します。
var Palette = []string{"#8A05BE", "#B64ACB", "#6D28D9", "#9333EA", "#7C3AED", "#5B21B6", "#A855F7"}

// Team は社員のチーム値から導出されるチームです。
type Team struct {
	ID    string
	Name  string
	Color string
}

// LevelCount はレベルごとの人数です。
type LevelCount struct {
	Level string
	Count int
}

// Teams は空でないチーム値を初出順に重複なく返します。
func Teams(employees []*employee.Employee) []Team {
	seen := make(map[string]struct{})
	teams := make([]Team, 0)
	for _, e := range employees {
		if e == nil {
			continue
		}
		id := employee.NormalizeTeam(e.Team)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		teams = append(teams, Team{
			ID:    id,
			Name:  id,
			Color: Palette[len(teams)%len(Palette)],
		})
	}
	return teams
}

// Levels は空でないレベルを辞書順に並べ、人数を添えて返します。
func Levels(employees []*employee.Employee) []LevelCount {
	counts := make(map[string]int)
	for _, e := range employees {
		if e == nil {
			continue
		}
		level := strings.TrimSpace(e.Level)
		if level == "" {
			continue
		}
		counts[level]++
	}

	levels := make([]LevelCount, 0, len(counts))
	for level, count := range counts {
		levels = append(levels, LevelCount{Level: level, Count: count})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Level < levels[j].Level })
	return levels
}
