// Package bootstrap wires configuration into the runtime dependencies shared
// by the lead-tracker binaries.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/aoe-motors/lead-tracker/internal/config"
	"github.com/aoe-motors/lead-tracker/internal/notify"
	"github.com/aoe-motors/lead-tracker/internal/pkg/distlock"
	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
	"github.com/aoe-motors/lead-tracker/internal/pkg/metrics"
	"github.com/aoe-motors/lead-tracker/internal/repository/postgres"
	"github.com/aoe-motors/lead-tracker/internal/repository/redisclaims"
	"github.com/aoe-motors/lead-tracker/internal/service/scoring"
)

// Load reads the config file with env overrides, applies the log level and
// validates the result.
func Load(path string) (*config.Config, error) {
	cfg, err := config.LoadFromEnv(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	lvl, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: log_level: %v", config.ErrInvalidConfig, err)
	}
	logger.SetLevel(lvl)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenDB connects to PostgreSQL and verifies the connection.
func OpenDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: database.url is required", config.ErrInvalidConfig)
	}
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")
	return db, nil
}

// OpenRedis connects to Redis. An empty URL returns a nil client.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("connected to redis", "addr", opts.Addr)
	return client, nil
}

// AWSConfig loads the shared AWS config. Static keys are used when both are
// set, otherwise the default credential chain applies. A positive timeout
// bounds every HTTP call made by clients built from the config.
func AWSConfig(ctx context.Context, cfg config.AWSConfig, timeout time.Duration) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	if timeout > 0 {
		opts = append(opts, awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(timeout)))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// Deduper selects the first-occurrence strategy named by cfg.
func Deduper(strategy string, interactions *postgres.InteractionRepo, rdb *redis.Client) (scoring.Deduper, error) {
	switch strategy {
	case config.DedupeCount:
		return scoring.CountDeduper{Log: interactions}, nil
	case config.DedupePostgres:
		return scoring.ClaimDeduper{Claimer: interactions}, nil
	case config.DedupeRedis:
		if rdb == nil {
			return nil, fmt.Errorf("%w: redis dedupe needs redis.url", config.ErrInvalidConfig)
		}
		return scoring.ClaimDeduper{Claimer: redisclaims.New(rdb, interactions, 0)}, nil
	}
	return nil, fmt.Errorf("%w: scoring.dedupe %q", config.ErrInvalidConfig, strategy)
}

// Engine is a scoring engine plus the resources it owns.
type Engine struct {
	*scoring.Engine
	notifier *notify.KafkaNotifier
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	if e.notifier == nil {
		return nil
	}
	return e.notifier.Close()
}

// NewEngine builds the scoring engine described by cfg.
func NewEngine(cfg *config.Config, db *sql.DB, rdb *redis.Client, rec *metrics.Recorder) (*Engine, error) {
	interactions := postgres.NewInteractionRepo(db)
	dedupe, err := Deduper(cfg.Scoring.Dedupe, interactions, rdb)
	if err != nil {
		return nil, err
	}

	opts := []scoring.Option{
		scoring.WithDeduper(dedupe),
		scoring.WithAtomicUpdates(cfg.Scoring.Atomic()),
		scoring.WithStoreTimeout(cfg.Scoring.StoreTimeout()),
		scoring.WithMetrics(rec),
	}
	out := &Engine{}
	if cfg.Kafka.Enabled() {
		out.notifier = notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		opts = append(opts, scoring.WithNotifier(out.notifier))
		logger.Info("tier change notifications enabled", "topic", cfg.Kafka.Topic)
	}
	out.Engine = scoring.New(postgres.NewLeadRepo(db), interactions, opts...)

	logger.Info("scoring engine ready",
		"dedupe", cfg.Scoring.Dedupe,
		"atomic_updates", cfg.Scoring.Atomic(),
		"store_timeout", cfg.Scoring.StoreTimeout().String())
	return out, nil
}

// NewRescorer builds a Rescorer guarded by per-lead locks on Redis, or on
// PostgreSQL advisory locks when Redis is not configured.
func NewRescorer(cfg *config.Config, db *sql.DB, rdb *redis.Client) *scoring.Rescorer {
	ttl := cfg.Scoring.LockTTL()
	locks := func(key string) distlock.DistLock {
		return distlock.NewLock(rdb, db, key, ttl)
	}
	return scoring.NewRescorer(postgres.NewLeadRepo(db), postgres.NewInteractionRepo(db), locks)
}

// ConfigPath returns the config file path from CONFIG_PATH, defaulting to
// config/config.yaml.
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}

// CloseStores closes whichever of db and rdb are non-nil.
func CloseStores(db *sql.DB, rdb *redis.Client) {
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Warn("close redis", "error", err)
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Warn("close database", "error", err)
		}
	}
}
