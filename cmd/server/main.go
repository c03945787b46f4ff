package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/aoe-motors/lead-tracker/internal/advisor"
	"github.com/aoe-motors/lead-tracker/internal/api"
	"github.com/aoe-motors/lead-tracker/internal/bootstrap"
	"github.com/aoe-motors/lead-tracker/internal/config"
	"github.com/aoe-motors/lead-tracker/internal/mailing"
	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
	"github.com/aoe-motors/lead-tracker/internal/pkg/metrics"
	"github.com/aoe-motors/lead-tracker/internal/repository/postgres"
	"github.com/aoe-motors/lead-tracker/internal/service/leads"
	"github.com/aoe-motors/lead-tracker/internal/tracking"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %w", port, addr, err)
	}
	return ln.Close()
}

func main() {
	defer logger.Sync()

	cfg, err := bootstrap.Load(bootstrap.ConfigPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		logger.Error("pre-flight check failed", "error", err)
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
		logger.Warn("redis unavailable, health will report it down", "error", err)
	}
	defer bootstrap.CloseStores(db, rdb)

	leadSvc := leads.NewService(postgres.NewBookingRepo(db))

	var adv api.Advisor
	if cfg.Bedrock.Enabled {
		awsCfg, err := bootstrap.AWSConfig(ctx, cfg.AWS, cfg.Bedrock.Timeout())
		if err != nil {
			logger.Error("failed to load aws config for bedrock", "error", err)
			os.Exit(1)
		}
		llm := advisor.NewBedrockCompleter(bedrockruntime.NewFromConfig(awsCfg), cfg.Bedrock.ModelID, cfg.Bedrock.MaxTokens)
		adv = advisor.New(llm)
		logger.Info("bedrock advisor enabled", "model", cfg.Bedrock.ModelID)
	} else {
		logger.Info("bedrock advisor disabled")
	}

	var mail api.Mailer
	if m, err := newMailer(ctx, cfg); err != nil {
		logger.Warn("email disabled", "error", err)
	} else {
		mail = m
	}

	rec := metrics.New()
	server := api.NewServer(cfg.Server, api.NewHandlers(leadSvc, adv, mail), api.RouteOptions{
		AllowedOrigins: cfg.Dashboard.AllowedOrigins,
		Health:         api.NewHealthChecker(db, rdb),
		Metrics:        rec.Handler(),
	})

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)
		logger.Info("starting dashboard server", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}

// newMailer wires templates, tracked links and SES. Without SES the mailer
// still previews; Send reports ErrSendingDisabled.
func newMailer(ctx context.Context, cfg *config.Config) (*mailing.Mailer, error) {
	links, err := tracking.NewLinkBuilder(cfg.Tracking.BaseURL)
	if err != nil {
		return nil, err
	}

	var sender mailing.Sender
	if cfg.SES.Enabled {
		s, err := mailing.NewSESSender(ctx, mailing.SESOptions{
			Region:           cfg.AWS.Region,
			AccessKey:        cfg.AWS.AccessKey,
			SecretKey:        cfg.AWS.SecretKey,
			FromAddress:      cfg.SES.FromAddress,
			FromName:         cfg.SES.FromName,
			ConfigurationSet: cfg.SES.ConfigurationSet,
			Timeout:          cfg.SES.Timeout(),
		})
		if err != nil {
			return nil, err
		}
		sender = s
	}
	return mailing.NewMailer(mailing.NewTemplateService(), links, sender, cfg.Dashboard.BrochureURL, cfg.Dashboard.VideoURL)
}
