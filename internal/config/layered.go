package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigFileEnv names the optional YAML config file.
const ConfigFileEnv = "FIGHTINTEL_CONFIG"

const envPrefix = "FIGHTINTEL_"

// fileConfig mirrors the YAML layout. Pointer fields distinguish an explicit
// zero from an absent key.
type fileConfig struct {
	Server struct {
		Port                   string `koanf:"port"`
		ReadTimeoutSeconds     int    `koanf:"read_timeout_seconds"`
		WriteTimeoutSeconds    int    `koanf:"write_timeout_seconds"`
		ShutdownTimeoutSeconds int    `koanf:"shutdown_timeout_seconds"`
	} `koanf:"server"`
	Logging struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"logging"`
	Oracle struct {
		Provider        string   `koanf:"provider"`
		Model           string   `koanf:"model"`
		BaseURL         string   `koanf:"base_url"`
		OpenAIAPIKey    string   `koanf:"openai_api_key"`
		AnthropicAPIKey string   `koanf:"anthropic_api_key"`
		TimeoutSeconds  int      `koanf:"timeout_seconds"`
		MaxRetries      *int     `koanf:"max_retries"`
		MaxTokens       int      `koanf:"max_tokens"`
		Temperature     *float64 `koanf:"temperature"`
	} `koanf:"oracle"`
	Agent struct {
		MaxIterations    int  `koanf:"max_iterations"`
		MaxParseFailures *int `koanf:"max_parse_failures"`
	} `koanf:"agent"`
	Batch struct {
		Concurrency int `koanf:"concurrency"`
	} `koanf:"batch"`
	Storage struct {
		DatabaseURL      string `koanf:"database_url"`
		CloudSQLInstance string `koanf:"cloudsql_instance"`
		DBUser           string `koanf:"db_user"`
		DBName           string `koanf:"db_name"`
	} `koanf:"storage"`
	Cache struct {
		RedisURL   string `koanf:"redis_url"`
		TTLSeconds int    `koanf:"ttl_seconds"`
	} `koanf:"cache"`
	Telemetry struct {
		OTLPEndpoint string `koanf:"otlp_endpoint"`
		ServiceName  string `koanf:"service_name"`
	} `koanf:"telemetry"`
	Auth struct {
		JWTSecret     string `koanf:"jwt_secret"`
		AdminPassword string `koanf:"admin_password"`
	} `koanf:"auth"`
}

// applyLayered loads the YAML file (if FIGHTINTEL_CONFIG is set) and then
// FIGHTINTEL_SECTION_KEY variables, e.g. FIGHTINTEL_ORACLE_MAX_TOKENS maps
// to oracle.max_tokens.
func applyLayered(cfg *Config) error {
	k := koanf.New(".")

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		if key == ConfigFileEnv || value == "" {
			return "", nil
		}
		return envKey(key), value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return fmt.Errorf("load %s environment: %w", envPrefix, err)
	}

	var fc fileConfig
	if err := k.UnmarshalWithConf("", &fc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return fc.apply(cfg)
}

// envKey maps FIGHTINTEL_ORACLE_BASE_URL to oracle.base_url.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func (fc fileConfig) apply(cfg *Config) error {
	setString(&cfg.Server.Port, fc.Server.Port)
	setSeconds(&cfg.Server.ReadTimeout, fc.Server.ReadTimeoutSeconds)
	setSeconds(&cfg.Server.WriteTimeout, fc.Server.WriteTimeoutSeconds)
	setSeconds(&cfg.Server.ShutdownTimeout, fc.Server.ShutdownTimeoutSeconds)

	if fc.Logging.Level != "" {
		level, err := parseLogLevel(fc.Logging.Level)
		if err != nil {
			return fmt.Errorf("invalid logging.level: %w", err)
		}
		cfg.Logging.Level = level
	}
	setString(&cfg.Logging.Format, fc.Logging.Format)

	setString(&cfg.Oracle.Provider, fc.Oracle.Provider)
	setString(&cfg.Oracle.Model, fc.Oracle.Model)
	setString(&cfg.Oracle.BaseURL, fc.Oracle.BaseURL)
	setString(&cfg.Oracle.OpenAIAPIKey, fc.Oracle.OpenAIAPIKey)
	setString(&cfg.Oracle.AnthropicAPIKey, fc.Oracle.AnthropicAPIKey)
	setSeconds(&cfg.Oracle.Timeout, fc.Oracle.TimeoutSeconds)
	if fc.Oracle.MaxRetries != nil {
		if *fc.Oracle.MaxRetries < 0 {
			return fmt.Errorf("invalid oracle.max_retries: must be >= 0")
		}
		cfg.Oracle.MaxRetries = *fc.Oracle.MaxRetries
	}
	setInt(&cfg.Oracle.MaxTokens, fc.Oracle.MaxTokens)
	if fc.Oracle.Temperature != nil {
		cfg.Oracle.Temperature = *fc.Oracle.Temperature
	}

	setInt(&cfg.Agent.MaxIterations, fc.Agent.MaxIterations)
	if fc.Agent.MaxParseFailures != nil {
		cfg.Agent.MaxParseFailures = *fc.Agent.MaxParseFailures
	}
	setInt(&cfg.Batch.Concurrency, fc.Batch.Concurrency)

	setString(&cfg.Storage.DatabaseURL, fc.Storage.DatabaseURL)
	setString(&cfg.Storage.CloudSQLInstance, fc.Storage.CloudSQLInstance)
	setString(&cfg.Storage.DBUser, fc.Storage.DBUser)
	setString(&cfg.Storage.DBName, fc.Storage.DBName)
	setString(&cfg.Cache.RedisURL, fc.Cache.RedisURL)
	setSeconds(&cfg.Cache.TTL, fc.Cache.TTLSeconds)
	setString(&cfg.Telemetry.OTLPEndpoint, fc.Telemetry.OTLPEndpoint)
	setString(&cfg.Telemetry.ServiceName, fc.Telemetry.ServiceName)
	setString(&cfg.Auth.JWTSecret, fc.Auth.JWTSecret)
	setString(&cfg.Auth.AdminPassword, fc.Auth.AdminPassword)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setSeconds(dst *time.Duration, v int) {
	if v > 0 {
		*dst = time.Duration(v) * time.Second
	}
}
