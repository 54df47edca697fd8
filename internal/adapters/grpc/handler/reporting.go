package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ogurasousui/codex-reporting-api/internal/adapters/presenter"
	"github.com/ogurasousui/codex-reporting-api/internal/core/reporting"
)

// ReportingGrpcHandler は ReportingService の gRPC 実装です。
type ReportingGrpcHandler struct {
	svc reporting.UseCase
}

// NewReportingGrpcHandler は ReportingGrpcHandler を生成します。
func NewReportingGrpcHandler(svc reporting.UseCase) *ReportingGrpcHandler {
	return &ReportingGrpcHandler{svc: svc}
}

// GetReportingStructure は社員を起点とした部下ツリーと部下総数を返します。
func (h *ReportingGrpcHandler) GetReportingStructure(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := uuid.Parse(strings.TrimSpace(req.GetValue()))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "employee id must be a UUID")
	}

	result, err := h.svc.GetReportingStructure(ctx, reporting.GetReportingStructureInput{EmployeeID: id.String()})
	if err != nil {
		return nil, toStatusError(err)
	}
	if !result.Found() {
		return nil, status.Errorf(codes.NotFound, "employee %s not found", id)
	}

	out, err := toStruct(presenter.NewReportingStructureView(result))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return out, nil
}
