package employee

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultStatus は認識できない状態値の取り込み先です。
// 汚れたデータでも行を落とさないため、取り込み時は常にこの値へ寄せます。
const DefaultStatus = StatusPending

// statusCycle はカードクリック時の巡回順です。
var statusCycle = []Status{StatusActive, StatusPending, StatusHiring, StatusBackfill}

var statusAliases = map[string]Status{
	"active":    StatusActive,
	"activo":    StatusActive,
	"pending":   StatusPending,
	"pendiente": StatusPending,
	"hiring":    StatusHiring,
	"backfill":  StatusBackfill,
}

// FoldCase は大文字小文字を区別しない比較用に文字列を畳み込みます。
// cases.Caser はゴルーチン間で共有できないため呼び出しごとに生成します。
func FoldCase(s string) string {
	return cases.Fold().String(s)
}

// Statuses は正規の状態値を巡回順で返します。
func Statuses() []Status {
	out := make([]Status, len(statusCycle))
	copy(out, statusCycle)
	return out
}

// ParseStatus は表記揺れを吸収して状態値を解釈します。
// 認識できない場合は false を返します。
func ParseStatus(raw string) (Status, bool) {
	key := FoldCase(strings.TrimSpace(raw))
	status, ok := statusAliases[key]
	return status, ok
}

// NormalizeStatus は任意の入力を正規の状態値に変換します。
// 認識できない値は DefaultStatus になります。
func NormalizeStatus(raw string) Status {
	if status, ok := ParseStatus(raw); ok {
		return status
	}
	return DefaultStatus
}

// IsValid は正規の状態値かを返します。
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPending, StatusHiring, StatusBackfill:
		return true
	default:
		return false
	}
}

// Next は巡回順で次の状態を返します。
func (s Status) Next() Status {
	return NextStatus(s)
}

// NextStatus は Active → Pending → Hiring → Backfill → Active の順で次の状態を返します。
func NextStatus(s Status) Status {
	current := s
	if !current.IsValid() {
		current = NormalizeStatus(string(s))
	}
	for i, candidate := range statusCycle {
		if candidate == current {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return statusCycle[0]
}

// NormalizeTeam はチームキーを正規化します。
func NormalizeTeam(raw string) string {
	return strings.TrimSpace(raw)
}
