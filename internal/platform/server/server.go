package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/codex-reporting-api/internal/adapters/grpc/handler"
	"github.com/ogurasousui/codex-reporting-api/internal/core/reporting"
	"github.com/ogurasousui/codex-reporting-api/internal/platform/logging"
)

// Server は gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
	health     *health.Server
}

// New は報告ラインサービスとヘルスチェックを登録した gRPC サーバーを構築します。
func New(listenAddr string, reportingSvc reporting.UseCase, logger *logrus.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(loggingUnaryInterceptor(logger))}, opts...)
	srv := grpc.NewServer(opts...)

	handler.RegisterReportingServiceServer(srv, handler.NewReportingGrpcHandler(reportingSvc))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(handler.ReportingServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
		health:     hs,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は lis で待ち受けます。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop はヘルスチェックを NOT_SERVING にしてからサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func loggingUnaryInterceptor(logger *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		entry := logger.WithField("grpc_method", info.FullMethod)

		resp, err := next(logging.WithLogger(ctx, entry), req)

		entry.WithFields(logrus.Fields{
			"code":    status.Code(err).String(),
			"elapsed": time.Since(start),
		}).Info("grpc request")
		return resp, err
	}
}
