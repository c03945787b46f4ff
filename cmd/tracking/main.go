package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/aoe-motors/lead-tracker/internal/bootstrap"
	"github.com/aoe-motors/lead-tracker/internal/config"
	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
	"github.com/aoe-motors/lead-tracker/internal/pkg/metrics"
	"github.com/aoe-motors/lead-tracker/internal/tracking"
)

func main() {
	defer logger.Sync()

	cfg, err := bootstrap.Load(bootstrap.ConfigPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := metrics.New()
	ingest, closeIngest, err := newIngester(ctx, cfg, rec)
	if err != nil {
		logger.Error("failed to initialise ingestion", "mode", cfg.Tracking.Mode, "error", err)
		os.Exit(1)
	}
	defer closeIngest()

	handler := tracking.NewHandler(ingest, tracking.NewResolver(cfg.Tracking.RedirectAllowlist), rec)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Tracking.Port),
		Handler:      handler.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("tracking service listening", "addr", srv.Addr, "mode", cfg.Tracking.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down tracking service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
}

// newIngester returns the ingester for the configured mode and a func that
// releases what it holds.
func newIngester(ctx context.Context, cfg *config.Config, rec *metrics.Recorder) (tracking.Ingester, func(), error) {
	if cfg.Tracking.Mode == config.ModeSQS {
		awsCfg, err := bootstrap.AWSConfig(ctx, cfg.AWS, 0)
		if err != nil {
			return nil, nil, err
		}
		pub := tracking.NewPublisher(sqs.NewFromConfig(awsCfg), cfg.SQS.QueueURL)
		return pub, pub.Close, nil
	}

	db, err := bootstrap.OpenDB(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis.URL)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	engine, err := bootstrap.NewEngine(cfg, db, rdb, rec)
	if err != nil {
		bootstrap.CloseStores(db, rdb)
		return nil, nil, err
	}
	return tracking.SyncIngester{Recorder: engine}, func() {
		if err := engine.Close(); err != nil {
			logger.Warn("close notifier", "error", err)
		}
		bootstrap.CloseStores(db, rdb)
	}, nil
}
