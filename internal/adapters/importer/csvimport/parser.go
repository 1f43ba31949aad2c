// Package csvimport は社員 CSV を employee.NewEmployee の一覧に変換します。
//
// 取り込みは寛容で、名前が空の行もレコードとして扱います。
// 完全に空の行は読み飛ばし、構造的に壊れた行は行番号付きで報告します。
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ogurasousui/headcount-dashboard/internal/core/employee"
)

const utf8BOM = "\ufeff"

var (
	ErrEmptyInput     = errors.New("csvimport: input is empty")
	ErrMissingColumns = errors.New("csvimport: header must contain a name column")
)

type column int

const (
	colName column = iota
	colTeam
	colPosition
	colStatus
	colLevel
	colPhoto
	colStartDate
	colEmail
)

var headerAliases = map[string]column{
	"name":       colName,
	"team":       colTeam,
	"position":   colPosition,
	"status":     colStatus,
	"level":      colLevel,
	"levelling":  colLevel,
	"date":       colStartDate,
	"start_date": colStartDate,
	"startdate":  colStartDate,
	"photo":      colPhoto,
	"email":      colEmail,
}

// RowError は取り込めなかった、または一部の値を捨てた行の情報です。
// Line はヘッダーを 1 行目とした CSV 上の行番号です。
type RowError struct {
	Line  int
	Field string
	Err   error
}

func (e RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Field, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result は Parse の結果です。
type Result struct {
	Rows   []employee.NewEmployee
	Errors []RowError
}

// Parse は r から CSV を読み込みます。
// ヘッダーが読めない場合と name 列がない場合のみエラーを返します。
func Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("csvimport: read header: %w", err)
	}

	index, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Errors = append(result.Errors, RowError{Line: parseErr.StartLine, Err: parseErr.Err})
				continue
			}
			return nil, fmt.Errorf("csvimport: read: %w", err)
		}
		if blankRecord(rec) {
			continue
		}

		line, _ := reader.FieldPos(0)
		row, rowErrs := buildRow(rec, index, line)
		result.Rows = append(result.Rows, row)
		result.Errors = append(result.Errors, rowErrs...)
	}

	return result, nil
}

func mapHeader(header []string) (map[column]int, error) {
	index := make(map[column]int, len(header))
	for i, raw := range header {
		if i == 0 {
			raw = strings.TrimPrefix(raw, utf8BOM)
		}
		key := strings.ToLower(strings.TrimSpace(raw))
		col, ok := headerAliases[key]
		if !ok {
			continue
		}
		if _, seen := index[col]; !seen {
			index[col] = i
		}
	}
	if _, ok := index[colName]; !ok {
		return nil, ErrMissingColumns
	}
	return index, nil
}

func buildRow(rec []string, index map[column]int, line int) (employee.NewEmployee, []RowError) {
	get := func(c column) string {
		i, ok := index[c]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	row := employee.NewEmployee{
		Name:     get(colName),
		Team:     employee.NormalizeTeam(get(colTeam)),
		Position: get(colPosition),
		Level:    get(colLevel),
		Status:   employee.NormalizeStatus(get(colStatus)),
		Photo:    get(colPhoto),
		Email:    get(colEmail),
	}

	var errs []RowError
	if raw := get(colStartDate); raw != "" {
		start, err := employee.ParseStartDate(raw)
		if err != nil {
			errs = append(errs, RowError{Line: line, Field: "start_date", Err: err})
		} else {
			row.StartDate = employee.FormatStartDate(start)
		}
	}

	return row, errs
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
