package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// DashboardServiceName は gRPC のサービス名です。
const DashboardServiceName = "headcount.v1.DashboardService"

const (
	methodGetDashboard   = "GetDashboard"
	methodAddEmployee    = "AddEmployee"
	methodSetStatus      = "SetStatus"
	methodCycleStatus    = "CycleStatus"
	methodMoveEmployee   = "MoveEmployee"
	methodEditEmployee   = "EditEmployee"
	methodDeleteEmployee = "DeleteEmployee"
	methodRefresh        = "Refresh"
)

// DashboardServer は DashboardService のサーバー側インターフェースです。
// メッセージはすべて google.protobuf.Struct でやり取りします。
type DashboardServer interface {
	GetDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CycleStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MoveEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Refresh(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(DashboardServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	fullMethod := "/" + DashboardServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DashboardServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(DashboardServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// DashboardServiceDesc は DashboardService の grpc.ServiceDesc です。
var DashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: DashboardServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(methodGetDashboard, DashboardServer.GetDashboard),
		unaryMethod(methodAddEmployee, DashboardServer.AddEmployee),
		unaryMethod(methodSetStatus, DashboardServer.SetStatus),
		unaryMethod(methodCycleStatus, DashboardServer.CycleStatus),
		unaryMethod(methodMoveEmployee, DashboardServer.MoveEmployee),
		unaryMethod(methodEditEmployee, DashboardServer.EditEmployee),
		unaryMethod(methodDeleteEmployee, DashboardServer.DeleteEmployee),
		unaryMethod(methodRefresh, DashboardServer.Refresh),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "headcount/v1/dashboard.proto",
}

// RegisterDashboardServer は srv を s に登録します。
func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&DashboardServiceDesc, srv)
}

// DashboardClient は DashboardService のクライアントです。
type DashboardClient struct {
	cc grpc.ClientConnInterface
}

// NewDashboardClient は DashboardClient を生成します。
func NewDashboardClient(cc grpc.ClientConnInterface) *DashboardClient {
	return &DashboardClient{cc: cc}
}

// Call は method を呼び出します。method は "GetDashboard" などのメソッド名です。
func (c *DashboardClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+DashboardServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
