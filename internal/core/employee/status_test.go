package employee

import (
	"errors"
	"testing"
)

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]Status{
		"activo":     StatusActive,
		"Activo":     StatusActive,
		"active":     StatusActive,
		"Active":     StatusActive,
		"ACTIVE ":    StatusActive,
		"pending":    StatusPending,
		"Pendiente":  StatusPending,
		" hiring":    StatusHiring,
		"BACKFILL":   StatusBackfill,
		"foo":        StatusPending,
		"":           StatusPending,
		"on leave":   StatusPending,
		"Backfill\t": StatusBackfill,
	}

	for raw, want := range cases {
		if got := NormalizeStatus(raw); got != want {
			t.Errorf("NormalizeStatus(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestParseStatus_ReportsUnrecognized(t *testing.T) {
	t.Parallel()

	if _, ok := ParseStatus("foo"); ok {
		t.Fatal("expected foo to be unrecognized")
	}
	if status, ok := ParseStatus("Hiring"); !ok || status != StatusHiring {
		t.Fatalf("expected Hiring, got %s (%t)", status, ok)
	}
	if DefaultStatus != StatusPending {
		t.Fatalf("default status must be Pending, got %s", DefaultStatus)
	}
}

func TestNextStatus_CycleHasPeriodFour(t *testing.T) {
	t.Parallel()

	for _, start := range Statuses() {
		seen := map[Status]bool{start: true}
		current := start
		for i := 1; i < 4; i++ {
			current = NextStatus(current)
			if seen[current] {
				t.Fatalf("status %s repeated after %d steps from %s", current, i, start)
			}
			seen[current] = true
		}
		if back := NextStatus(current); back != start {
			t.Fatalf("expected cycle to return to %s after 4 steps, got %s", start, back)
		}
	}
}

func TestNextStatus_Order(t *testing.T) {
	t.Parallel()

	want := map[Status]Status{
		StatusActive:   StatusPending,
		StatusPending:  StatusHiring,
		StatusHiring:   StatusBackfill,
		StatusBackfill: StatusActive,
	}
	for from, to := range want {
		if got := from.Next(); got != to {
			t.Errorf("%s.Next() = %s, want %s", from, got, to)
		}
	}

	if got := NextStatus(Status("activo")); got != StatusPending {
		t.Fatalf("expected non-canonical input to normalize before cycling, got %s", got)
	}
}

func TestAvatarURL_Deterministic(t *testing.T) {
	t.Parallel()

	first := AvatarURL("Ana García")
	second := AvatarURL(" Ana García ")
	if first != second {
		t.Fatalf("expected same avatar for same name, got %s and %s", first, second)
	}
	if first != "https://api.dicebear.com/7.x/avataaars/svg?seed=Ana+Garc%C3%ADa" {
		t.Fatalf("unexpected avatar url %s", first)
	}
	if got := PhotoOrAvatar(" https://img/x.png ", "Ana"); got != "https://img/x.png" {
		t.Fatalf("expected explicit photo to win, got %s", got)
	}
}

func TestParseStartDate(t *testing.T) {
	t.Parallel()

	d, err := ParseStartDate(" 2024-01-08 ")
	if err != nil || d == nil {
		t.Fatalf("unexpected result %v %v", d, err)
	}
	if FormatStartDate(d) != "2024-01-08" {
		t.Fatalf("unexpected format %s", FormatStartDate(d))
	}

	if d, err := ParseStartDate(""); d != nil || err != nil {
		t.Fatalf("expected nil for blank date, got %v %v", d, err)
	}

	if _, err := ParseStartDate("08/01/2024"); !errors.Is(err, ErrInvalidStartDate) {
		t.Fatalf("expected ErrInvalidStartDate, got %v", err)
	}
}

func TestValidationError_Is(t *testing.T) {
	t.Parallel()

	err := NewValidationError("name", ErrInvalidName)
	if !errors.Is(err, ErrValidationFailed) || !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected validation error to match both sentinels: %v", err)
	}
}

func TestUpdateFields_ApplyTo(t *testing.T) {
	t.Parallel()

	emp := &Employee{ID: "1", Name: "Ana", Team: "Eng", Level: "M2", Status: StatusActive}
	level := ""
	team := "Design"
	fields := UpdateFields{Level: &level, Team: &team}
	if fields.IsEmpty() {
		t.Fatal("expected fields to be non-empty")
	}
	fields.ApplyTo(emp)

	if emp.Level != "" || emp.Team != "Design" || emp.Name != "Ana" {
		t.Fatalf("unexpected employee after apply: %+v", emp)
	}
	if !(UpdateFields{}).IsEmpty() {
		t.Fatal("expected zero value to be empty")
	}
}
