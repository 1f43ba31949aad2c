package view

import (
	"testing"

	"github.com/ogurasousui/headcount-dashboard/internal/core/employee"
)

func emp(id, name, team string, status employee.Status) *employee.Employee {
	return &employee.Employee{ID: id, Name: name, Team: team, Status: status}
}

func scenarioEmployees() []*employee.Employee {
	return []*employee.Employee{
		emp("1", "Ana", "Eng", employee.StatusActive),
		emp("2", "Bea", "Eng", employee.StatusPending),
		emp("3", "Carl", "Eng", employee.StatusHiring),
		emp("4", "Dana", "Design", employee.StatusBackfill),
	}
}

func TestTeams_FirstSeenOrderAndColors(t *testing.T) {
	t.Parallel()

	teams := Teams([]*employee.Employee{
		{ID: "1", Team: "X"},
		{ID: "2", Team: "Y"},
		{ID: "3", Team: " X "},
		{ID: "4", Team: "   "},
	})

	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %+v", teams)
	}
	if teams[0].ID != "X" || teams[1].ID != "Y" {
		t.Fatalf("unexpected order: %+v", teams)
	}
	if teams[0].Name != teams[0].ID {
		t.Fatalf("expected name to equal id, got %+v", teams[0])
	}
	if teams[0].Color != Palette[0] || teams[1].Color != Palette[1] || teams[0].Color == teams[1].Color {
		t.Fatalf("unexpected colors: %+v", teams)
	}

	again := Teams([]*employee.Employee{{Team: "X"}, {Team: "X"}, {Team: "Y"}})
	if again[0] != teams[0] || again[1] != teams[1] {
		t.Fatalf("expected stable assignment, got %+v", again)
	}
}

func TestTeams_PaletteWraps(t *testing.T) {
	t.Parallel()

	var list []*employee.Employee
	for i := 0; i < len(Palette)+1; i++ {
		list = append(list, &employee.Employee{Team: string(rune('A' + i))})
	}
	teams := Teams(list)
	if teams[len(Palette)].Color != Palette[0] {
		t.Fatalf("expected palette to wrap, got %s", teams[len(Palette)].Color)
	}
}

func TestComputeStats_Scenario(t *testing.T) {
	t.Parallel()

	list := scenarioEmployees()
	teams := Teams(list)
	if len(teams) != 2 || teams[0].ID != "Eng" || teams[1].ID != "Design" {
		t.Fatalf("unexpected teams: %+v", teams)
	}

	stats := ComputeStats(list, teams)
	if stats.Total != 4 || stats.Active != 1 || stats.Pending != 1 || stats.Hiring != 1 || stats.Backfill != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.ByTeam["Eng"] != 3 || stats.ByTeam["Design"] != 1 || len(stats.ByTeam) != 2 {
		t.Fatalf("unexpected by team: %+v", stats.ByTeam)
	}
}

func TestComputeStats_SumsAreConsistent(t *testing.T) {
	t.Parallel()

	list := []*employee.Employee{
		emp("1", "a", "Eng", employee.StatusActive),
		emp("2", "b", "", employee.StatusPending),
		emp("3", "c", "Ops", employee.StatusHiring),
		emp("4", "d", "Eng", employee.StatusBackfill),
		emp("5", "e", "  ", employee.StatusActive),
		emp("6", "f", "Ops", employee.Status("weird")),
	}
	stats := ComputeStats(list, Teams(list))

	if sum := stats.Active + stats.Pending + stats.Hiring + stats.Backfill; sum != stats.Total {
		t.Fatalf("status counts sum %d != total %d", sum, stats.Total)
	}

	withTeam := 0
	for _, e := range list {
		if e.HasTeam() {
			withTeam++
		}
	}
	teamSum := 0
	for _, n := range stats.ByTeam {
		teamSum += n
	}
	if teamSum != withTeam {
		t.Fatalf("team counts sum %d != employees with team %d", teamSum, withTeam)
	}
}

func TestLevels_SortedWithCounts(t *testing.T) {
	t.Parallel()

	list := []*employee.Employee{
		{Level: "M2.IC4"}, {Level: "M1"}, {Level: " M2.IC4 "}, {Level: ""}, {Level: "IC3"},
	}
	levels := Levels(list)
	want := []LevelCount{{"IC3", 1}, {"M1", 1}, {"M2.IC4", 2}}
	if len(levels) != len(want) {
		t.Fatalf("unexpected levels: %+v", levels)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("level %d: want %+v got %+v", i, want[i], levels[i])
		}
	}
}

func TestFilter_Conjunction(t *testing.T) {
	t.Parallel()

	e := &employee.Employee{ID: "1", Name: "Ana", Team: "A", Status: employee.StatusActive, Level: "L1"}

	if !(Filter{Statuses: []employee.Status{employee.StatusActive}}).Match(e) {
		t.Fatal("expected match on status only")
	}
	if (Filter{Teams: []string{"B"}}).Match(e) {
		t.Fatal("expected team B to exclude")
	}
	if (Filter{Teams: []string{"A"}, Levels: []string{"L2"}}).Match(e) {
		t.Fatal("expected conjunction to fail on level")
	}
	if !(Filter{Teams: []string{"A", "B"}, Levels: []string{"L1"}, EmployeeIDs: []string{"1"}}).Match(e) {
		t.Fatal("expected all dimensions to match")
	}
	if (Filter{EmployeeIDs: []string{"2"}}).Match(e) {
		t.Fatal("expected employee selection to exclude")
	}
}

func TestFilter_Search(t *testing.T) {
	t.Parallel()

	byName := &employee.Employee{Name: "Ana García", Position: "Diseñadora"}
	byPosition := &employee.Employee{Name: "Luis", Position: "Analista"}
	neither := &employee.Employee{Name: "Marta", Position: "Ventas"}

	f := Filter{Search: "ana"}
	if !f.Match(byName) || !f.Match(byPosition) {
		t.Fatal("expected case-insensitive match on name or position")
	}
	if f.Match(neither) {
		t.Fatal("expected no match")
	}
	if !(Filter{Search: "  "}).Match(neither) {
		t.Fatal("expected blank search to match everything")
	}
	if !(Filter{Search: "GARCÍA"}).Match(byName) {
		t.Fatal("expected folded match for accented upper case")
	}
}

func TestSingle_AllSentinel(t *testing.T) {
	t.Parallel()

	if Single("all") != nil || Single("") != nil {
		t.Fatal("expected all and blank to be unconstrained")
	}
	if got := Single(" Eng "); len(got) != 1 || got[0] != "Eng" {
		t.Fatalf("unexpected single: %v", got)
	}
	if got := SingleStatus("activo"); len(got) != 1 || got[0] != employee.StatusActive {
		t.Fatalf("unexpected status selection: %v", got)
	}
}

func TestGroupByTeam_KeepsEmptyGroups(t *testing.T) {
	t.Parallel()

	list := scenarioEmployees()
	teams := Teams(list)
	filtered := Apply(list, Filter{Statuses: []employee.Status{employee.StatusActive}})

	groups := GroupByTeam(filtered, teams)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Team.ID != "Eng" || len(groups[0].Employees) != 1 {
		t.Fatalf("unexpected Eng group: %+v", groups[0])
	}
	if groups[1].Team.ID != "Design" || groups[1].Employees == nil || len(groups[1].Employees) != 0 {
		t.Fatalf("expected empty Design group, got %+v", groups[1])
	}
}

func TestTeamSummaries(t *testing.T) {
	t.Parallel()

	list := scenarioEmployees()
	summaries := TeamSummaries(list, Teams(list))
	if summaries[0].Total != 3 || summaries[0].Active != 1 || summaries[0].Hiring != 1 {
		t.Fatalf("unexpected Eng summary: %+v", summaries[0])
	}
	if summaries[1].Total != 1 || summaries[1].Backfill != 1 {
		t.Fatalf("unexpected Design summary: %+v", summaries[1])
	}
}

func TestBuild_IsDeterministic(t *testing.T) {
	t.Parallel()

	list := scenarioEmployees()
	f := Filter{Search: "a"}
	first := Build(list, f)
	second := Build(list, f)

	if len(first.Filtered) != len(second.Filtered) || first.Stats.Total != second.Stats.Total {
		t.Fatal("expected identical output for identical input")
	}
	for i := range first.Teams {
		if first.Teams[i] != second.Teams[i] {
			t.Fatalf("teams differ at %d", i)
		}
	}
	if first.Stats.Total != 4 {
		t.Fatalf("stats must be computed from the unfiltered list, got %d", first.Stats.Total)
	}
}
