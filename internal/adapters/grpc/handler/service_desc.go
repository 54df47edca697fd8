package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ReportingServiceName は報告ラインサービスの完全修飾名です。
	ReportingServiceName = "reporting.v1.ReportingService"
	// GetReportingStructureMethod は GetReportingStructure のフルメソッド名です。
	GetReportingStructureMethod = "/" + ReportingServiceName + "/GetReportingStructure"
)

// ReportingServiceServer は ReportingService のサーバー実装が満たすインターフェースです。
// 要求は社員 ID を表す StringValue、応答は HTTP と同じ形の Struct です。
type ReportingServiceServer interface {
	GetReportingStructure(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ReportingServiceDesc は well-known type のみで構成した ReportingService の定義です。
var ReportingServiceDesc = grpc.ServiceDesc{
	ServiceName: ReportingServiceName,
	HandlerType: (*ReportingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetReportingStructure",
			Handler:    getReportingStructureHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "reporting/v1/reporting_service.proto",
}

// RegisterReportingServiceServer は srv を s に登録します。
func RegisterReportingServiceServer(s grpc.ServiceRegistrar, srv ReportingServiceServer) {
	s.RegisterService(&ReportingServiceDesc, srv)
}

func getReportingStructureHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportingServiceServer).GetReportingStructure(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetReportingStructureMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReportingServiceServer).GetReportingStructure(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}
