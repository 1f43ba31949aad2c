// Package mutation は利用者操作による社員の変更フローをまとめます。
//
// どのフローも 検証 → (楽観的反映) → リモート書き込み → 再取得 → 通知 の順に進みます。
package mutation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ogurasousui/headcount-dashboard/internal/core/employee"
	"github.com/ogurasousui/headcount-dashboard/internal/core/livestate"
	"go.uber.org/zap"
)

const pendingIDPrefix = "pending-"

// ErrConfirmationRequired は確認手段なしに削除しようとしたことを表します。
var ErrConfirmationRequired = errors.New("mutation: confirmation required")

// Options はフローの挙動を切り替えます。
type Options struct {
	// RefetchAfterWrite は書き込み成功後に変更通知を待たず全件を取り直すかどうかです。
	RefetchAfterWrite bool
	// RequireTeam は追加時にチームを必須とするかどうかです。
	RequireTeam bool
}

// DefaultOptions は既定の Options を返します。
func DefaultOptions() Options {
	return Options{RefetchAfterWrite: true, RequireTeam: true}
}

// Deps は Service の依存です。Store を省略すると楽観的反映と再取得を行いません。
type Deps struct {
	Repository employee.Repository
	Store      *livestate.Store
	Tx         TransactionManager
	Notifier   Notifier
	Logger     *zap.Logger
}

// Service は社員の追加・状態変更・チーム移動・編集・削除を扱います。
type Service struct {
	repo     employee.Repository
	store    *livestate.Store
	tx       TransactionManager
	notifier Notifier
	logger   *zap.Logger
	opts     Options
}

// NewService は Service を生成します。
func NewService(deps Deps, opts Options) *Service {
	s := &Service{
		repo:     deps.Repository,
		store:    deps.Store,
		tx:       deps.Tx,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		opts:     opts,
	}
	if s.tx == nil {
		s.tx = noopTransactionManager{}
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named("mutation")
	return s
}

// AddEmployeeInput は社員追加フォームの入力です。
type AddEmployeeInput struct {
	Name      string
	Team      string
	Position  string
	Level     string
	Status    string
	Photo     string
	StartDate string
	Email     string
}

// EditInput は編集フォームの入力です。nil の項目は変更しません。
type EditInput struct {
	Name     *string
	Position *string
	Level    *string
}

// DragPayload はドラッグ開始時に記録する社員の情報です。
type DragPayload struct {
	EmployeeID string
	Name       string
	Team       string
}

// NewDragPayload はドラッグ開始時点の社員から DragPayload を作ります。
func NewDragPayload(e *employee.Employee) DragPayload {
	if e == nil {
		return DragPayload{}
	}
	return DragPayload{EmployeeID: e.ID, Name: e.Name, Team: employee.NormalizeTeam(e.Team)}
}

// ImportResult は一括取り込みの結果です。
type ImportResult struct {
	Inserted int
	IDs      []string
}

// AddEmployee は社員を追加し、サーバーが採番した ID を返します。
// 検証に失敗した場合はリモート呼び出しも通知も行いません。
func (s *Service) AddEmployee(ctx context.Context, in AddEmployeeInput) (string, error) {
	newEmp, err := s.prepareNew(in)
	if err != nil {
		return "", err
	}

	pending := &employee.Employee{
		ID:        pendingIDPrefix + uuid.NewString(),
		Name:      newEmp.Name,
		Team:      newEmp.Team,
		Position:  newEmp.Position,
		Level:     newEmp.Level,
		Status:    newEmp.Status,
		Photo:     newEmp.Photo,
		StartDate: newEmp.StartDate,
		Email:     newEmp.Email,
	}

	var id string
	err = s.write(ctx, "add employee", livestate.PendingAdd{Employee: pending}, func(ctx context.Context) error {
		created, err := s.repo.Insert(ctx, newEmp)
		if err != nil {
			return err
		}
		id = created
		return nil
	}, Notice{
		Kind:        NoticeSuccess,
		Title:       "Employee added",
		Description: fmt.Sprintf("%s joined the org", newEmp.Name),
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// ChangeStatus はメニューで選ばれた状態に変更します。
func (s *Service) ChangeStatus(ctx context.Context, e *employee.Employee, next employee.Status) error {
	if err := requireSynced(e); err != nil {
		return err
	}
	if !next.IsValid() {
		return employee.NewValidationError("status", employee.ErrInvalidStatus)
	}

	return s.write(ctx, "update status", livestate.StatusChange{ID: e.ID, Status: next}, func(ctx context.Context) error {
		return s.repo.UpdatePartial(ctx, e.ID, employee.UpdateFields{Status: &next})
	}, Notice{
		Kind:        NoticeSuccess,
		Title:       "Status updated",
		Description: fmt.Sprintf("%s is now %s", e.Name, next),
	})
}

// CycleStatus はカードのクリックで状態を巡回させ、書き込んだ状態を返します。
// ストアに新しい行があればその状態から次へ進めます。
func (s *Service) CycleStatus(ctx context.Context, e *employee.Employee) (employee.Status, error) {
	if err := requireSynced(e); err != nil {
		return "", err
	}
	if s.store != nil {
		if current, ok := s.store.Find(e.ID); ok {
			e = current
		}
	}
	next := employee.NextStatus(e.Status)
	if err := s.ChangeStatus(ctx, e, next); err != nil {
		return "", err
	}
	return next, nil
}

// MoveEmployee はドロップ先のチームへ社員を移します。
// 記録されたチームとドロップ先が同じなら何もしません。
func (s *Service) MoveEmployee(ctx context.Context, p DragPayload, targetTeam string) error {
	if strings.TrimSpace(p.EmployeeID) == "" || strings.HasPrefix(p.EmployeeID, pendingIDPrefix) {
		return employee.NewValidationError("id", employee.ErrInvalidID)
	}
	target := employee.NormalizeTeam(targetTeam)
	if target == "" {
		return employee.NewValidationError("team", employee.ErrInvalidTeam)
	}
	if employee.NormalizeTeam(p.Team) == target {
		return nil
	}

	return s.write(ctx, "move employee", livestate.TeamMove{ID: p.EmployeeID, Team: target}, func(ctx context.Context) error {
		return s.repo.UpdatePartial(ctx, p.EmployeeID, employee.UpdateFields{Team: &target})
	}, Notice{
		Kind:        NoticeSuccess,
		Title:       "Employee moved",
		Description: fmt.Sprintf("%s → %s", p.Name, target),
	})
}

// EditEmployee は名前・役職・レベルを部分更新します。
// 名前と役職は空にできず、レベルは空にすると未設定に戻ります。
func (s *Service) EditEmployee(ctx context.Context, e *employee.Employee, in EditInput) error {
	if err := requireSynced(e); err != nil {
		return err
	}

	var fields employee.UpdateFields
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return employee.NewValidationError("name", employee.ErrInvalidName)
		}
		fields.Name = &name
	}
	if in.Position != nil {
		position := strings.TrimSpace(*in.Position)
		if position == "" {
			return employee.NewValidationError("position", employee.ErrInvalidPosition)
		}
		fields.Position = &position
	}
	if in.Level != nil {
		level := strings.TrimSpace(*in.Level)
		fields.Level = &level
	}
	if fields.IsEmpty() {
		return nil
	}

	displayName := e.Name
	if fields.Name != nil {
		displayName = *fields.Name
	}

	return s.write(ctx, "update employee", livestate.FieldEdit{ID: e.ID, Fields: fields}, func(ctx context.Context) error {
		return s.repo.UpdatePartial(ctx, e.ID, fields)
	}, Notice{
		Kind:        NoticeSuccess,
		Title:       "Employee updated",
		Description: fmt.Sprintf("%s information updated", displayName),
	})
}

// DeleteEmployee は確認が取れた場合に社員を削除します。
// リモートに既に行がなくても成功として扱います。
func (s *Service) DeleteEmployee(ctx context.Context, e *employee.Employee, confirmer Confirmer) error {
	if err := requireSynced(e); err != nil {
		return err
	}
	if confirmer == nil {
		return employee.NewValidationError("confirmation", ErrConfirmationRequired)
	}

	ok, err := confirmer.Confirm(ctx, fmt.Sprintf("Are you sure you want to delete %s?", e.Name))
	if err != nil {
		return fmt.Errorf("mutation: confirm delete: %w", err)
	}
	if !ok {
		return nil
	}

	return s.write(ctx, "delete employee", livestate.Removal{ID: e.ID}, func(ctx context.Context) error {
		if err := s.repo.Remove(ctx, e.ID); err != nil && !errors.Is(err, employee.ErrEmployeeNotFound) {
			return err
		}
		return nil
	}, Notice{
		Kind:        NoticeSuccess,
		Title:       "Employee deleted",
		Description: fmt.Sprintf("%s has been removed from the system", e.Name),
	})
}

// ImportEmployees は取り込んだ行を 1 つのトランザクションで追加します。
// 途中で失敗した場合は全件がロールバックされます。
func (s *Service) ImportEmployees(ctx context.Context, rows []employee.NewEmployee) (ImportResult, error) {
	if len(rows) == 0 {
		return ImportResult{}, nil
	}

	var result ImportResult
	err := s.write(ctx, "import employees", nil, func(ctx context.Context) error {
		return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
			ids := make([]string, 0, len(rows))
			for i, row := range rows {
				row.Team = employee.NormalizeTeam(row.Team)
				row.Status = employee.NormalizeStatus(string(row.Status))
				id, err := s.repo.Insert(txCtx, row)
				if err != nil {
					return fmt.Errorf("row %d: %w", i+1, err)
				}
				ids = append(ids, id)
			}
			result = ImportResult{Inserted: len(ids), IDs: ids}
			return nil
		})
	}, Notice{
		Kind:        NoticeSuccess,
		Title:       "Employees imported",
		Description: fmt.Sprintf("%d employees imported", len(rows)),
	})
	if err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

func (s *Service) prepareNew(in AddEmployeeInput) (employee.NewEmployee, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return employee.NewEmployee{}, employee.NewValidationError("name", employee.ErrInvalidName)
	}

	team := employee.NormalizeTeam(in.Team)
	if s.opts.RequireTeam && team == "" {
		return employee.NewEmployee{}, employee.NewValidationError("team", employee.ErrInvalidTeam)
	}

	startDate, err := employee.ParseStartDate(in.StartDate)
	if err != nil {
		return employee.NewEmployee{}, employee.NewValidationError("start_date", err)
	}

	status := employee.StatusActive
	if strings.TrimSpace(in.Status) != "" {
		status = employee.NormalizeStatus(in.Status)
	}

	return employee.NewEmployee{
		Name:      name,
		Team:      team,
		Position:  strings.TrimSpace(in.Position),
		Level:     strings.TrimSpace(in.Level),
		Status:    status,
		Photo:     employee.PhotoOrAvatar(in.Photo, name),
		StartDate: employee.FormatStartDate(startDate),
		Email:     strings.TrimSpace(in.Email),
	}, nil
}

func (s *Service) write(ctx context.Context, op string, m livestate.Mutation, fn func(context.Context) error, success Notice) error {
	rollback := func() {}
	if s.store != nil && m != nil {
		rollback = s.store.ApplyOptimistic(m)
	}

	if err := fn(ctx); err != nil {
		rollback()
		s.logger.Error("remote write failed", zap.String("op", op), zap.Error(err))
		s.notifier.Notify(ctx, Notice{
			Kind:        NoticeError,
			Title:       "Could not " + op,
			Description: err.Error(),
		})
		return fmt.Errorf("mutation: %s: %w: %w", op, employee.ErrWriteFailed, err)
	}

	s.resync(ctx, op)
	s.notifier.Notify(ctx, success)
	return nil
}

func (s *Service) resync(ctx context.Context, op string) {
	if s.store == nil || !s.opts.RefetchAfterWrite {
		return
	}
	if err := s.store.Load(ctx); err != nil && !errors.Is(err, livestate.ErrTornDown) {
		s.logger.Warn("refetch after write failed", zap.String("op", op), zap.Error(err))
	}
}

func requireSynced(e *employee.Employee) error {
	if e == nil || strings.TrimSpace(e.ID) == "" || e.Unsynced || strings.HasPrefix(e.ID, pendingIDPrefix) {
		return employee.NewValidationError("id", employee.ErrInvalidID)
	}
	return nil
}
