package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/headcount-dashboard/internal/core/employee"
	pgdb "github.com/ogurasousui/headcount-dashboard/internal/platform/db/postgres"
)

const employeesTable = "employees"

const selectNotifyTriggerQuery = `
        SELECT pg_get_triggerdef(t.oid)
          FROM pg_trigger t
         WHERE t.tgname = 'employees_notify_change'
           AND t.tgrelid = 'employees'::regclass
    `

var triggerChannelPattern = regexp.MustCompile(`EXECUTE (?:FUNCTION|PROCEDURE) \S+\('([^']*)'\)`)

// ErrNotifyTriggerMissing は employees に変更通知トリガーが無いことを表します。
var ErrNotifyTriggerMissing = errors.New("postgres: employees notify trigger is missing")

// NotifyTriggerChannel は employees の変更通知トリガーが pg_notify する channel を返します。
func (r *EmployeeRepository) NotifyTriggerChannel(ctx context.Context) (string, error) {
	exec, err := r.queryer(ctx)
	if err != nil {
		return "", err
	}

	var def string
	if err := exec.QueryRow(ctx, selectNotifyTriggerQuery).Scan(&def); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotifyTriggerMissing
		}
		return "", translateEmployeePgError(err)
	}

	m := triggerChannelPattern.FindStringSubmatch(def)
	if m == nil {
		return "", fmt.Errorf("%w: unexpected definition %q", ErrNotifyTriggerMissing, def)
	}
	return m[1], nil
}

// EmployeeChangeFeed は LISTEN で受け取った employees の変更通知を ChangeEvent に変換します。
type EmployeeChangeFeed struct {
	listener *pgdb.Listener
}

// NewEmployeeChangeFeed は EmployeeChangeFeed を生成します。
func NewEmployeeChangeFeed(listener *pgdb.Listener) *EmployeeChangeFeed {
	return &EmployeeChangeFeed{listener: listener}
}

// SubscribeToChanges は通知ごとに fn を呼び出します。
// listener が無い場合は ErrStoreUnavailable を返します。
func (f *EmployeeChangeFeed) SubscribeToChanges(fn func(employee.ChangeEvent)) (func(), error) {
	if f == nil || f.listener == nil {
		return nil, employee.ErrStoreUnavailable
	}
	if fn == nil {
		return func() {}, nil
	}

	return f.listener.Subscribe(func(n pgdb.Notification) {
		fn(employee.ChangeEvent{Kind: parseChangeKind(n.Payload), Table: employeesTable})
	}), nil
}

func parseChangeKind(payload string) employee.ChangeKind {
	switch kind := employee.ChangeKind(strings.ToUpper(strings.TrimSpace(payload))); kind {
	case employee.ChangeInsert, employee.ChangeUpdate, employee.ChangeDelete:
		return kind
	default:
		return employee.ChangeUnknown
	}
}

// EmployeeGateway は EmployeeRepository と EmployeeChangeFeed をまとめた employee.Gateway の実装です。
type EmployeeGateway struct {
	*EmployeeRepository
	*EmployeeChangeFeed
}

var _ employee.Gateway = (*EmployeeGateway)(nil)

// NewEmployeeGateway は EmployeeGateway を生成します。
func NewEmployeeGateway(pool pgdb.Queryer, listener *pgdb.Listener) *EmployeeGateway {
	return &EmployeeGateway{
		EmployeeRepository: NewEmployeeRepository(pool),
		EmployeeChangeFeed: NewEmployeeChangeFeed(listener),
	}
}
