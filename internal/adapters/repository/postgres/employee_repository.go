package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/headcount-dashboard/internal/core/employee"
	pgdb "github.com/ogurasousui/headcount-dashboard/internal/platform/db/postgres"
)

const (
	employeeCheckViolationCode   = "23514"
	employeeNotNullViolationCode = "23502"
	employeeInvalidTextCode      = "22P02"
)

const selectEmployeesQuery = `
        SELECT id, name, team, position, levelling, status, photo, start_date, email
          FROM employees
         ORDER BY lower(name), id
    `

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
// pool が nil の場合、すべての操作は ErrStoreUnavailable を返します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

func (r *EmployeeRepository) queryer(ctx context.Context) (pgdb.Queryer, error) {
	if r == nil || r.pool == nil {
		return nil, employee.ErrStoreUnavailable
	}
	return pgdb.QueryerFromContext(ctx, r.pool), nil
}

// FetchAll は全社員を名前順に取得します。
func (r *EmployeeRepository) FetchAll(ctx context.Context) ([]*employee.Employee, error) {
	exec, err := r.queryer(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := exec.Query(ctx, selectEmployeesQuery)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}

	return employees, nil
}

// Insert は社員を 1 件作成し、採番された ID を返します。
func (r *EmployeeRepository) Insert(ctx context.Context, in employee.NewEmployee) (string, error) {
	exec, err := r.queryer(ctx)
	if err != nil {
		return "", err
	}

	start, err := employee.ParseStartDate(in.StartDate)
	if err != nil {
		return "", employee.NewValidationError("start_date", err)
	}

	var id string
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (name, team, position, levelling, status, photo, start_date, email)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `,
		in.Name,
		employee.NormalizeTeam(in.Team),
		strings.TrimSpace(in.Position),
		nullableString(in.Level),
		string(employee.NormalizeStatus(string(in.Status))),
		nullableString(in.Photo),
		nullableTime(start),
		nullableString(in.Email),
	)
	if err := row.Scan(&id); err != nil {
		return "", translateEmployeePgError(err)
	}
	return id, nil
}

// UpdatePartial は fields で指定された列だけを更新します。
func (r *EmployeeRepository) UpdatePartial(ctx context.Context, id string, fields employee.UpdateFields) error {
	if strings.TrimSpace(id) == "" {
		return employee.NewValidationError("id", employee.ErrInvalidID)
	}
	if fields.IsEmpty() {
		return nil
	}

	exec, err := r.queryer(ctx)
	if err != nil {
		return err
	}

	args := make([]any, 0, 6)
	sets := make([]string, 0, 6)

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if fields.Name != nil {
		set("name", *fields.Name)
	}
	if fields.Team != nil {
		set("team", employee.NormalizeTeam(*fields.Team))
	}
	if fields.Position != nil {
		set("position", strings.TrimSpace(*fields.Position))
	}
	if fields.Level != nil {
		set("levelling", nullableString(*fields.Level))
	}
	if fields.Status != nil {
		set("status", string(*fields.Status))
	}

	args = append(args, id)
	query := `
        UPDATE employees
           SET ` + strings.Join(sets, ", ") + `, updated_at = now()
         WHERE id = $` + strconv.Itoa(len(args)) + `
    `

	tag, err := exec.Exec(ctx, query, args...)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// Remove は社員を削除します。
func (r *EmployeeRepository) Remove(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return employee.NewValidationError("id", employee.ErrInvalidID)
	}

	exec, err := r.queryer(ctx)
	if err != nil {
		return err
	}

	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id        string
		name      string
		team      sql.NullString
		position  sql.NullString
		level     sql.NullString
		status    string
		photo     sql.NullString
		startDate sql.NullTime
		email     sql.NullString
	)

	if err := row.Scan(
		&id,
		&name,
		&team,
		&position,
		&level,
		&status,
		&photo,
		&startDate,
		&email,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	var start *time.Time
	if startDate.Valid {
		t := startDate.Time.UTC()
		start = &t
	}

	return &employee.Employee{
		ID:        id,
		Name:      name,
		Team:      employee.NormalizeTeam(team.String),
		Position:  position.String,
		Level:     strings.TrimSpace(level.String),
		Status:    employee.NormalizeStatus(status),
		Photo:     photo.String,
		StartDate: employee.FormatStartDate(start),
		Email:     email.String,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case employeeCheckViolationCode:
			if pgErr.ConstraintName == "employees_status_check" {
				return employee.NewValidationError("status", employee.ErrInvalidStatus)
			}
			return employee.NewValidationError(pgErr.ColumnName, employee.ErrValidationFailed)
		case employeeNotNullViolationCode:
			if pgErr.ColumnName == "name" {
				return employee.NewValidationError("name", employee.ErrInvalidName)
			}
			return employee.NewValidationError(pgErr.ColumnName, employee.ErrValidationFailed)
		case employeeInvalidTextCode:
			// uuid として解釈できない ID は存在しない行として扱います。
			return employee.ErrEmployeeNotFound
		}
		return err
	}

	var (
		connErr *pgconn.ConnectError
		netErr  net.Error
	)
	if errors.As(err, &connErr) || errors.As(err, &netErr) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", employee.ErrStoreUnavailable, err)
	}

	return err
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
