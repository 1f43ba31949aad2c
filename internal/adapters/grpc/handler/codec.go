package handler

import (
	"fmt"
	"strings"

	"github.com/ogurasousui/headcount-dashboard/internal/core/employee"
	"github.com/ogurasousui/headcount-dashboard/internal/core/livestate"
	"github.com/ogurasousui/headcount-dashboard/internal/core/view"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func stringField(req *structpb.Struct, key string) string {
	return strings.TrimSpace(req.GetFields()[key].GetStringValue())
}

// optionalStringField はキーが文字列として存在する場合だけ値を返します。
func optionalStringField(req *structpb.Struct, key string) *string {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil
	}
	if _, isString := v.GetKind().(*structpb.Value_StringValue); !isString {
		return nil
	}
	s := v.GetStringValue()
	return &s
}

func boolField(req *structpb.Struct, key string) bool {
	return req.GetFields()[key].GetBoolValue()
}

// stringSetField は文字列または文字列の配列を受け付け、絞り込み用の集合に変換します。
func stringSetField(req *structpb.Struct, key string) []string {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return view.Single(kind.StringValue)
	case *structpb.Value_ListValue:
		var out []string
		for _, item := range kind.ListValue.GetValues() {
			out = append(out, view.Single(item.GetStringValue())...)
		}
		return out
	default:
		return nil
	}
}

func requireID(req *structpb.Struct) (string, error) {
	id := stringField(req, "id")
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "id is required")
	}
	return id, nil
}

func filterFromRequest(req *structpb.Struct) (view.Filter, error) {
	f := view.Filter{
		Teams:       stringSetField(req, "team"),
		Levels:      stringSetField(req, "level"),
		EmployeeIDs: stringSetField(req, "employee_id"),
		Search:      req.GetFields()["search"].GetStringValue(),
	}
	for _, raw := range stringSetField(req, "status") {
		s, ok := employee.ParseStatus(raw)
		if !ok {
			return view.Filter{}, status.Error(codes.InvalidArgument, fmt.Sprintf("status: unknown value %q", raw))
		}
		f.Statuses = append(f.Statuses, s)
	}
	return f, nil
}

func employeeValue(e *employee.Employee) map[string]any {
	return map[string]any{
		"id":         e.ID,
		"name":       e.Name,
		"team":       e.Team,
		"position":   e.Position,
		"level":      e.Level,
		"status":     string(e.Status),
		"photo":      employee.PhotoOrAvatar(e.Photo, e.Name),
		"start_date": e.StartDate,
		"email":      e.Email,
		"unsynced":   e.Unsynced,
	}
}

func employeeList(list []*employee.Employee) []any {
	out := make([]any, 0, len(list))
	for _, e := range list {
		out = append(out, employeeValue(e))
	}
	return out
}

func teamValue(t view.Team) map[string]any {
	return map[string]any{"id": t.ID, "name": t.Name, "color": t.Color}
}

func dashboardValue(d view.Dashboard, snap livestate.Snapshot) map[string]any {
	teams := make([]any, 0, len(d.Teams))
	for _, t := range d.Teams {
		teams = append(teams, teamValue(t))
	}

	byTeam := make(map[string]any, len(d.Stats.ByTeam))
	for team, n := range d.Stats.ByTeam {
		byTeam[team] = n
	}

	levels := make([]any, 0, len(d.Levels))
	for _, l := range d.Levels {
		levels = append(levels, map[string]any{"level": l.Level, "count": l.Count})
	}

	summaries := make([]any, 0, len(d.Summaries))
	for _, s := range d.Summaries {
		summaries = append(summaries, map[string]any{
			"team":     teamValue(s.Team),
			"total":    s.Total,
			"active":   s.Active,
			"pending":  s.Pending,
			"hiring":   s.Hiring,
			"backfill": s.Backfill,
		})
	}

	groups := make([]any, 0, len(d.Groups))
	for _, g := range d.Groups {
		groups = append(groups, map[string]any{
			"team":      teamValue(g.Team),
			"employees": employeeList(g.Employees),
		})
	}

	return map[string]any{
		"teams": teams,
		"stats": map[string]any{
			"total":    d.Stats.Total,
			"active":   d.Stats.Active,
			"pending":  d.Stats.Pending,
			"hiring":   d.Stats.Hiring,
			"backfill": d.Stats.Backfill,
			"by_team":  byTeam,
		},
		"levels":    levels,
		"summaries": summaries,
		"employees": employeeList(d.Filtered),
		"groups":    groups,
		"version":   float64(snap.Version),
		"loaded":    snap.Loaded,
		"available": snap.Available,
	}
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}
