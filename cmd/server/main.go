package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kaanzapkinus/assetstracker/internal/adapter/api"
	grpcadapter "github.com/kaanzapkinus/assetstracker/internal/adapter/grpc"
	"github.com/kaanzapkinus/assetstracker/internal/app"
	"github.com/kaanzapkinus/assetstracker/internal/config"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/market"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, toml or json)")
	flag.Parse()

	// 1. Configuration and logging
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Store, ledger, market and dashboard
	services, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer func() { _ = services.Close() }()

	if cfg.APIToken == "" {
		logger.Warn("api_token is empty, HTTP and gRPC endpoints are unauthenticated")
	}

	// 3. Servers and the quote poller
	reporter := grpcadapter.NewHealthReporter(logger.Named("health"))
	grpcServer := grpcadapter.NewServer(cfg.APIToken, reporter, logger.Named("grpc"))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewServer(services.Dashboard, api.Options{Token: cfg.APIToken, Logger: logger}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	poller := market.NewPoller(services.Market, cfg.RefreshInterval, cfg.RefreshMaxTries, reporter, logger.Named("poller"))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return poller.Run(gctx)
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
		}
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("failed to serve gRPC: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve HTTP: %w", err)
		}
		return nil
	})

	// 4. Graceful shutdown on signal or the first server failure
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down gracefully...")

		reporter.Shutdown()
		grpcServer.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
