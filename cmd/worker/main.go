package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/aoe-motors/lead-tracker/internal/bootstrap"
	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
	"github.com/aoe-motors/lead-tracker/internal/pkg/metrics"
	"github.com/aoe-motors/lead-tracker/internal/tracking"
)

func main() {
	defer logger.Sync()
	logger.Info("starting tracking worker")

	cfg, err := bootstrap.Load(bootstrap.ConfigPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.SQS.QueueURL == "" {
		logger.Error("sqs.queue_url (SQS_TRACKING_QUEUE_URL) is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := bootstrap.OpenDB(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis.URL)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		bootstrap.CloseStores(db, nil)
		os.Exit(1)
	}
	defer bootstrap.CloseStores(db, rdb)

	engine, err := bootstrap.NewEngine(cfg, db, rdb, metrics.New())
	if err != nil {
		logger.Error("failed to build scoring engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	awsCfg, err := bootstrap.AWSConfig(ctx, cfg.AWS, 0)
	if err != nil {
		logger.Error("failed to load aws config", "error", err)
		os.Exit(1)
	}

	consumer := tracking.NewConsumer(sqs.NewFromConfig(awsCfg), cfg.SQS.QueueURL, engine, tracking.ConsumerOptions{
		MaxMessages:       cfg.SQS.MaxMessages,
		WaitTimeSeconds:   cfg.SQS.WaitTimeSeconds,
		VisibilityTimeout: cfg.SQS.VisibilityTimeout,
	})
	consumer.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker")
	stopped := make(chan struct{})
	go func() {
		consumer.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(30 * time.Second):
		logger.Warn("consumer did not stop in time")
	}
	cancel()
	logger.Info("worker stopped")
}
