package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Dedupe strategies for first-occurrence events.
const (
	DedupeCount    = "count"
	DedupePostgres = "postgres"
	DedupeRedis    = "redis"
)

// Tracking ingestion modes.
const (
	ModeSync = "sync"
	ModeSQS  = "sqs"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tracking  TrackingConfig  `yaml:"tracking"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	AWS       AWSConfig       `yaml:"aws"`
	Bedrock   BedrockConfig   `yaml:"bedrock"`
	SQS       SQSConfig       `yaml:"sqs"`
	SES       SESConfig       `yaml:"ses"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	LogLevel  string          `yaml:"log_level"`
}

// ServerConfig holds the dashboard API server configuration
type ServerConfig struct {
	Port                int    `yaml:"port"`
	Host                string `yaml:"host"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// ReadTimeout returns the configured read timeout as a duration
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the configured write timeout as a duration
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// TrackingConfig holds the tracking endpoint configuration.
type TrackingConfig struct {
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"` // public URL of the /track endpoint host
	Mode    string `yaml:"mode"`     // "sync" or "sqs"
	// RedirectAllowlist restricts redirect targets to these hosts when non-empty.
	RedirectAllowlist []string `yaml:"redirect_allowlist"`
}

// ScoringConfig holds score engine settings.
type ScoringConfig struct {
	Dedupe             string `yaml:"dedupe"`
	AtomicUpdates      *bool  `yaml:"atomic_updates"`
	StoreTimeoutMillis int    `yaml:"store_timeout_ms"`
	LockTTLSeconds     int    `yaml:"lock_ttl_seconds"`
}

// Atomic reports whether the single-statement score increment is enabled.
func (c ScoringConfig) Atomic() bool {
	return c.AtomicUpdates == nil || *c.AtomicUpdates
}

// StoreTimeout returns the per-call store timeout as a duration
func (c ScoringConfig) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMillis) * time.Millisecond
}

// LockTTL returns the rescore lock TTL as a duration
func (c ScoringConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds Redis connection settings. An empty URL disables Redis.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// AWSConfig holds shared AWS credentials. Empty keys fall back to the
// default credential chain.
type AWSConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// BedrockConfig holds LLM settings
type BedrockConfig struct {
	Enabled        bool   `yaml:"enabled"`
	ModelID        string `yaml:"model_id"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c BedrockConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SQSConfig holds the async tracking queue settings
type SQSConfig struct {
	QueueURL          string `yaml:"queue_url"`
	WaitTimeSeconds   int32  `yaml:"wait_time_seconds"`
	MaxMessages       int32  `yaml:"max_messages"`
	VisibilityTimeout int32  `yaml:"visibility_timeout"`
}

// SESConfig holds AWS SES sending configuration
type SESConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FromAddress      string `yaml:"from_address"`
	FromName         string `yaml:"from_name"`
	ConfigurationSet string `yaml:"configuration_set"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// KafkaConfig holds tier-change notification settings. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Enabled reports whether any broker is configured.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

// DashboardConfig holds dashboard API settings
type DashboardConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	// Liquid templates for the per-vehicle destinations of tracked email links.
	BrochureURL string `yaml:"brochure_url"`
	VideoURL    string `yaml:"video_url"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 60
	}
	if cfg.Tracking.Port == 0 {
		cfg.Tracking.Port = 8081
	}
	if cfg.Tracking.Mode == "" {
		cfg.Tracking.Mode = ModeSync
	}
	if cfg.Scoring.Dedupe == "" {
		cfg.Scoring.Dedupe = DedupePostgres
	}
	if cfg.Scoring.StoreTimeoutMillis == 0 {
		cfg.Scoring.StoreTimeoutMillis = 2000
	}
	if cfg.Scoring.LockTTLSeconds == 0 {
		cfg.Scoring.LockTTLSeconds = 60
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-west-2"
	}
	if cfg.Bedrock.ModelID == "" {
		cfg.Bedrock.ModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	}
	if cfg.Bedrock.MaxTokens == 0 {
		cfg.Bedrock.MaxTokens = 1024
	}
	if cfg.Bedrock.TimeoutSeconds == 0 {
		cfg.Bedrock.TimeoutSeconds = 30
	}
	if cfg.SQS.WaitTimeSeconds == 0 {
		cfg.SQS.WaitTimeSeconds = 20
	}
	if cfg.SQS.MaxMessages == 0 {
		cfg.SQS.MaxMessages = 10
	}
	if cfg.SQS.VisibilityTimeout == 0 {
		cfg.SQS.VisibilityTimeout = 60
	}
	if cfg.SES.FromName == "" {
		cfg.SES.FromName = "AOE Motors"
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "lead.tier_changed"
	}
	if cfg.Dashboard.BrochureURL == "" {
		cfg.Dashboard.BrochureURL = "https://www.aoemotors.com/brochures/{{ vehicle | slug }}.pdf"
	}
	if cfg.Dashboard.VideoURL == "" {
		cfg.Dashboard.VideoURL = "https://www.aoemotors.com/videos/{{ vehicle | slug }}"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("SQS_TRACKING_QUEUE_URL"); v != "" {
		cfg.SQS.QueueURL = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AWS.Region = v
	}
	if v := os.Getenv("BEDROCK_MODEL_ID"); v != "" {
		cfg.Bedrock.ModelID = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("TRACKING_BASE_URL"); v != "" {
		cfg.Tracking.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT %q: %v", ErrInvalidConfig, v, err)
		}
		cfg.Server.Port = port
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks settings that have no safe default.
func (cfg *Config) Validate() error {
	switch cfg.Scoring.Dedupe {
	case DedupeCount, DedupePostgres, DedupeRedis:
	default:
		return fmt.Errorf("%w: scoring.dedupe %q", ErrInvalidConfig, cfg.Scoring.Dedupe)
	}
	switch cfg.Tracking.Mode {
	case ModeSync, ModeSQS:
	default:
		return fmt.Errorf("%w: tracking.mode %q", ErrInvalidConfig, cfg.Tracking.Mode)
	}
	if cfg.Tracking.Mode == ModeSQS && cfg.SQS.QueueURL == "" {
		return fmt.Errorf("%w: tracking.mode sqs requires sqs.queue_url", ErrInvalidConfig)
	}
	if cfg.Scoring.Dedupe == DedupeRedis && cfg.Redis.URL == "" {
		return fmt.Errorf("%w: scoring.dedupe redis requires redis.url", ErrInvalidConfig)
	}
	return nil
}
