package main

import (
	"context"
	"log/slog"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/md-rashed-zaman/dayboard/libs/grpcx"
)

const healthService = "dayboard.Board"

type loadedReporter interface {
	Loaded() bool
}

// startGrpcServer serves the standard health protocol. The board service reports SERVING
// only while a board for the selected date is loaded.
func startGrpcServer(ctx context.Context, logger *slog.Logger, port string, desk loadedReporter) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcx.UnaryServerRequestIDInterceptor(),
			grpcx.UnaryServerLoggingInterceptor(logger),
		),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(healthService, healthpb.HealthCheckResponse_NOT_SERVING)

	go watchLoaded(ctx, hs, desk, time.Second)

	go func() {
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		hs.Shutdown()
		srv.GracefulStop()
	}()

	return nil
}

func watchLoaded(ctx context.Context, hs *health.Server, desk loadedReporter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		st := healthpb.HealthCheckResponse_NOT_SERVING
		if desk.Loaded() {
			st = healthpb.HealthCheckResponse_SERVING
		}
		hs.SetServingStatus(healthService, st)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
