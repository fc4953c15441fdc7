package grpc

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Health — обёртка над стандартным gRPC health service.
// Бот не экспортирует своих RPC, gRPC сервер нужен только для liveness/readiness проб.
type Health struct {
	srv *health.Server
}

// New создаёт Health с начальным статусом.
// Для readiness стартуем с NOT_SERVING до проверки зависимостей.
func New(initialStatus grpc_health_v1.HealthCheckResponse_ServingStatus) *Health {
	srv := health.NewServer()
	srv.SetServingStatus("", initialStatus)
	return &Health{srv: srv}
}

// Register регистрирует health service на gRPC сервере (до Serve)
func (h *Health) Register(grpcSrv *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(grpcSrv, h.srv)
}

// SetServing переводит serviceName ("" — весь сервер) в SERVING
func (h *Health) SetServing(serviceName string) {
	h.srv.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
}

// SetNotServing переводит serviceName ("" — весь сервер) в NOT_SERVING
func (h *Health) SetNotServing(serviceName string) {
	h.srv.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
}

// Status возвращает текущий статус serviceName
func (h *Health) Status(ctx context.Context, serviceName string) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.srv.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: serviceName})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Serve слушает addr и блокируется до остановки grpcSrv
func Serve(logger *zap.Logger, grpcSrv *grpc.Server, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	logger.Info("gRPC health server listening", zap.String("addr", lis.Addr().String()))
	if err := grpcSrv.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}
