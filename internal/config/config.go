package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents runtime configuration derived from an optional YAML file
// and environment variables.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Oracle    OracleConfig
	Agent     AgentConfig
	Batch     BatchConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Telemetry TelemetryConfig
	Auth      AuthConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// OracleConfig selects and tunes the language model backend.
type OracleConfig struct {
	Provider        string
	Model           string
	BaseURL         string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	Timeout         time.Duration
	MaxRetries      int
	MaxTokens       int
	Temperature     float64
}

// AgentConfig bounds the reasoning loop.
type AgentConfig struct {
	MaxIterations    int
	MaxParseFailures int
}

// BatchConfig controls event-file processing.
type BatchConfig struct {
	Concurrency int
}

// StorageConfig points at the run and inference-log database. DatabaseURL
// wins; otherwise a Cloud SQL instance is reached over its unix socket.
// With neither set persistence is disabled.
type StorageConfig struct {
	DatabaseURL      string
	CloudSQLInstance string
	DBUser           string
	DBPassword       string
	DBName           string
}

// CacheConfig configures the oracle response cache. An empty URL disables it.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// TelemetryConfig configures trace export. An empty endpoint disables it.
type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

// AuthConfig holds admin credentials for the HTTP API.
type AuthConfig struct {
	JWTSecret     string
	AdminPassword string
	TokenDuration time.Duration
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Minute
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultOracleProvider   = "ollama"
	defaultOracleModel      = "mistral"
	defaultOllamaBaseURL    = "http://localhost:11434/v1"
	defaultOracleTimeout    = 120 * time.Second
	defaultOracleRetries    = 2
	defaultOracleMaxTokens  = 1024
	defaultMaxIterations    = 8
	defaultMaxParseFailures = 3
	defaultConcurrency      = 2
	defaultCacheTTL         = time.Hour
	defaultServiceName      = "fightintel"
	defaultJWTSecret        = "change-this-secret"
	defaultAdminPassword    = "admin"
	defaultTokenDuration    = 24 * time.Hour
)

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            defaultPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Oracle: OracleConfig{
			Provider:   defaultOracleProvider,
			Model:      defaultOracleModel,
			Timeout:    defaultOracleTimeout,
			MaxRetries: defaultOracleRetries,
			MaxTokens:  defaultOracleMaxTokens,
		},
		Agent: AgentConfig{
			MaxIterations:    defaultMaxIterations,
			MaxParseFailures: defaultMaxParseFailures,
		},
		Batch: BatchConfig{Concurrency: defaultConcurrency},
		Cache: CacheConfig{TTL: defaultCacheTTL},
		Telemetry: TelemetryConfig{
			ServiceName: defaultServiceName,
		},
		Auth: AuthConfig{
			JWTSecret:     defaultJWTSecret,
			AdminPassword: defaultAdminPassword,
			TokenDuration: defaultTokenDuration,
		},
	}
}

// Load layers defaults, the YAML file named by FIGHTINTEL_CONFIG,
// FIGHTINTEL_-prefixed variables and finally plain environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if err := applyLayered(&cfg); err != nil {
		return Config{}, err
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Oracle.BaseURL == "" && cfg.Oracle.Provider == "ollama" {
		cfg.Oracle.BaseURL = defaultOllamaBaseURL
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	// Cloud Run sets PORT, but allow SERVER_PORT override for local dev
	if port := getEnv("PORT", ""); port != "" {
		cfg.Server.Port = port
	} else if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"SERVER_READ_TIMEOUT_SECONDS", &cfg.Server.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT_SECONDS", &cfg.Server.WriteTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT_SECONDS", &cfg.Server.ShutdownTimeout},
		{"ORACLE_TIMEOUT_SECONDS", &cfg.Oracle.Timeout},
		{"ORACLE_CACHE_TTL_SECONDS", &cfg.Cache.TTL},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			parsed, err := parseSeconds(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", d.key, err)
			}
			*d.target = parsed
		}
	}

	ints := []struct {
		key    string
		min    int
		target *int
	}{
		{"ORACLE_MAX_RETRIES", 0, &cfg.Oracle.MaxRetries},
		{"ORACLE_MAX_TOKENS", 1, &cfg.Oracle.MaxTokens},
		{"AGENT_MAX_ITERATIONS", 1, &cfg.Agent.MaxIterations},
		{"AGENT_MAX_PARSE_FAILURES", 0, &cfg.Agent.MaxParseFailures},
		{"BATCH_CONCURRENCY", 1, &cfg.Batch.Concurrency},
	}
	for _, i := range ints {
		if v := os.Getenv(i.key); v != "" {
			parsed, err := parseInt(v, i.min)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", i.key, err)
			}
			*i.target = parsed
		}
	}

	if v := os.Getenv("ORACLE_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || t < 0 || t > 2 {
			return fmt.Errorf("invalid ORACLE_TEMPERATURE: must be between 0 and 2")
		}
		cfg.Oracle.Temperature = t
	}

	strs := []struct {
		key    string
		target *string
	}{
		{"ORACLE_PROVIDER", &cfg.Oracle.Provider},
		{"ORACLE_MODEL", &cfg.Oracle.Model},
		{"ORACLE_BASE_URL", &cfg.Oracle.BaseURL},
		{"OPENAI_API_KEY", &cfg.Oracle.OpenAIAPIKey},
		{"ANTHROPIC_API_KEY", &cfg.Oracle.AnthropicAPIKey},
		{"DATABASE_URL", &cfg.Storage.DatabaseURL},
		{"INSTANCE_CONNECTION_NAME", &cfg.Storage.CloudSQLInstance},
		{"DB_USER", &cfg.Storage.DBUser},
		{"DB_PASSWORD", &cfg.Storage.DBPassword},
		{"DB_NAME", &cfg.Storage.DBName},
		{"REDIS_URL", &cfg.Cache.RedisURL},
		{"OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Telemetry.OTLPEndpoint},
		{"OTEL_SERVICE_NAME", &cfg.Telemetry.ServiceName},
		{"ADMIN_JWT_SECRET", &cfg.Auth.JWTSecret},
		{"ADMIN_PASSWORD", &cfg.Auth.AdminPassword},
	}
	for _, s := range strs {
		if v := os.Getenv(s.key); v != "" {
			*s.target = v
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	return nil
}

func (c Config) validate() error {
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
	}

	switch c.Oracle.Provider {
	case "ollama", "openai", "anthropic":
	default:
		return fmt.Errorf("invalid ORACLE_PROVIDER: must be one of ollama, openai, anthropic")
	}

	if strings.TrimSpace(c.Oracle.Model) == "" {
		return fmt.Errorf("invalid ORACLE_MODEL: must not be empty")
	}
	if c.Agent.MaxIterations < 1 {
		return fmt.Errorf("invalid AGENT_MAX_ITERATIONS: must be at least 1")
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("invalid BATCH_CONCURRENCY: must be at least 1")
	}

	return nil
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func parseInt(raw string, min int) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return 0, fmt.Errorf("must be an integer >= %d", min)
	}
	return n, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
