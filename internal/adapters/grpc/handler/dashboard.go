package handler

import (
	"context"

	"github.com/ogurasousui/headcount-dashboard/internal/core/employee"
	"github.com/ogurasousui/headcount-dashboard/internal/core/livestate"
	"github.com/ogurasousui/headcount-dashboard/internal/core/mutation"
	"github.com/ogurasousui/headcount-dashboard/internal/core/view"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// DashboardState はハンドラーが参照するローカル一覧です。livestate.Store が満たします。
type DashboardState interface {
	Snapshot() livestate.Snapshot
	Find(id string) (*employee.Employee, bool)
	Load(ctx context.Context) error
}

// DashboardMutator は変更フローです。mutation.Service が満たします。
type DashboardMutator interface {
	AddEmployee(ctx context.Context, in mutation.AddEmployeeInput) (string, error)
	ChangeStatus(ctx context.Context, e *employee.Employee, next employee.Status) error
	CycleStatus(ctx context.Context, e *employee.Employee) (employee.Status, error)
	MoveEmployee(ctx context.Context, p mutation.DragPayload, targetTeam string) error
	EditEmployee(ctx context.Context, e *employee.Employee, in mutation.EditInput) error
	DeleteEmployee(ctx context.Context, e *employee.Employee, confirmer mutation.Confirmer) error
}

// DashboardGrpcHandler は DashboardService の gRPC 実装です。
type DashboardGrpcHandler struct {
	state DashboardState
	svc   DashboardMutator
}

var _ DashboardServer = (*DashboardGrpcHandler)(nil)

// NewDashboardGrpcHandler は DashboardGrpcHandler を生成します。
func NewDashboardGrpcHandler(state DashboardState, svc DashboardMutator) *DashboardGrpcHandler {
	return &DashboardGrpcHandler{state: state, svc: svc}
}

// GetDashboard は絞り込み条件を適用したダッシュボードを返します。
// ストアに接続できない場合も空の一覧で応答し、available=false で状態を伝えます。
func (h *DashboardGrpcHandler) GetDashboard(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := filterFromRequest(req)
	if err != nil {
		return nil, err
	}

	snap := h.state.Snapshot()
	return toStruct(dashboardValue(view.Build(snap.Employees, f), snap))
}

// AddEmployee は社員を追加し、採番された ID を返します。
func (h *DashboardGrpcHandler) AddEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := h.svc.AddEmployee(ctx, mutation.AddEmployeeInput{
		Name:      stringField(req, "name"),
		Team:      stringField(req, "team"),
		Position:  stringField(req, "position"),
		Level:     stringField(req, "level"),
		Status:    stringField(req, "status"),
		Photo:     stringField(req, "photo"),
		StartDate: stringField(req, "start_date"),
		Email:     stringField(req, "email"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"id": id})
}

// SetStatus は状態を指定した値に変更します。
func (h *DashboardGrpcHandler) SetStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	e, err := h.find(req)
	if err != nil {
		return nil, err
	}

	next, ok := employee.ParseStatus(stringField(req, "status"))
	if !ok {
		return nil, status.Error(codes.InvalidArgument, employee.ErrInvalidStatus.Error())
	}

	if err := h.svc.ChangeStatus(ctx, e, next); err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"id": e.ID, "status": string(next)})
}

// CycleStatus は状態を次の値へ進めます。
func (h *DashboardGrpcHandler) CycleStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	e, err := h.find(req)
	if err != nil {
		return nil, err
	}

	written, err := h.svc.CycleStatus(ctx, e)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"id": e.ID, "status": string(written)})
}

// MoveEmployee は社員を team へ移します。
func (h *DashboardGrpcHandler) MoveEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	e, err := h.find(req)
	if err != nil {
		return nil, err
	}

	target := stringField(req, "team")
	if err := h.svc.MoveEmployee(ctx, mutation.NewDragPayload(e), target); err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"id": e.ID, "team": employee.NormalizeTeam(target)})
}

// EditEmployee は name / position / level のうち指定された項目を更新します。
func (h *DashboardGrpcHandler) EditEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	e, err := h.find(req)
	if err != nil {
		return nil, err
	}

	if err := h.svc.EditEmployee(ctx, e, mutation.EditInput{
		Name:     optionalStringField(req, "name"),
		Position: optionalStringField(req, "position"),
		Level:    optionalStringField(req, "level"),
	}); err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"id": e.ID})
}

// DeleteEmployee は confirmed=true の場合に限り社員を削除します。
func (h *DashboardGrpcHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	e, err := h.find(req)
	if err != nil {
		return nil, err
	}
	if !boolField(req, "confirmed") {
		return nil, toStatusError(mutation.ErrConfirmationRequired)
	}

	if err := h.svc.DeleteEmployee(ctx, e, mutation.Confirmed(true)); err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"id": e.ID, "deleted": true})
}

// Refresh は全件を取り直し、反映後の同期状態を返します。
func (h *DashboardGrpcHandler) Refresh(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := h.state.Load(ctx); err != nil {
		return nil, toStatusError(err)
	}
	snap := h.state.Snapshot()
	return toStruct(map[string]any{
		"version":   float64(snap.Version),
		"loaded":    snap.Loaded,
		"available": snap.Available,
		"total":     len(snap.Employees),
	})
}

func (h *DashboardGrpcHandler) find(req *structpb.Struct) (*employee.Employee, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, err
	}

	e, ok := h.state.Find(id)
	if ok {
		return e, nil
	}
	if snap := h.state.Snapshot(); !snap.Available {
		return nil, status.Error(codes.Unavailable, employee.ErrStoreUnavailable.Error())
	}
	return nil, status.Error(codes.NotFound, employee.ErrEmployeeNotFound.Error())
}
