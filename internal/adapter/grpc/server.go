package grpc

import (
	"sync"

	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// QuotesService is the health service name tracking quote refreshes
const QuotesService = "assetstracker.quotes"

// HealthReporter mirrors the outcome of every polling round into the gRPC health service
// The overall ("") status stays SERVING while the process runs; QuotesService flips with refreshes
type HealthReporter struct {
	Health *health.Server
	Logger *zap.Logger

	mu      sync.Mutex
	serving bool
}

// NewHealthReporter creates a reporter whose quote status starts as NOT_SERVING until the first refresh
func NewHealthReporter(logger *zap.Logger) *HealthReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := health.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.SetServingStatus(QuotesService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{
		Health: h,
		Logger: logger,
	}
}

// ReportRefresh implements market.StatusReporter
func (r *HealthReporter) ReportRefresh(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	serving := err == nil
	if serving == r.serving {
		return
	}
	r.serving = serving

	if serving {
		r.Health.SetServingStatus(QuotesService, healthpb.HealthCheckResponse_SERVING)
		r.Logger.Info("quote health changed", zap.String("status", "SERVING"))
		return
	}
	r.Health.SetServingStatus(QuotesService, healthpb.HealthCheckResponse_NOT_SERVING)
	r.Logger.Warn("quote health changed", zap.String("status", "NOT_SERVING"), zap.Error(err))
}

// Shutdown marks every service NOT_SERVING ahead of GracefulStop
func (r *HealthReporter) Shutdown() {
	r.Health.Shutdown()
}

// NewServer creates the gRPC server with auth and logging interceptors,
// health checking and reflection registered
func NewServer(apiToken string, reporter *HealthReporter, logger *zap.Logger) *grpclib.Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	server := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			LoggingInterceptor(logger.Named("grpc")),
			AuthInterceptor(apiToken),
		),
		grpclib.StreamInterceptor(StreamAuthInterceptor(apiToken)),
	)

	healthpb.RegisterHealthServer(server, reporter.Health)
	reflection.Register(server)

	return server
}
