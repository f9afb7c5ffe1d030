package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr     = ":8000"
	defaultDatabaseURL  = "taskflow.db"
	defaultAlgorithm    = "HS256"
	defaultTokenTTL     = 30 * time.Minute
	defaultAIModel      = "gemini-2.5-flash"
	defaultAIBaseURL    = "https://generativelanguage.googleapis.com/v1beta/openai"
	defaultAITimeout    = 30 * time.Second
	defaultLogLevel     = "info"
	defaultListingLimit = 100
)

// Config keeps runtime settings for the API server. It is built once at
// startup and never mutated afterwards.
type Config struct {
	HTTPAddr    string `yaml:"http_addr"`
	DatabaseURL string `yaml:"database_url"`
	LogLevel    string `yaml:"log_level"`

	Auth AuthConfig `yaml:"auth"`
	AI   AIConfig   `yaml:"ai"`

	// DigestTime schedules the daily task digest at HH:MM local time.
	DigestTime string `yaml:"digest_time"`
	// DigestInterval schedules the digest periodically. Zero disables it.
	DigestInterval time.Duration `yaml:"-"`
	DigestHours    int           `yaml:"digest_interval_hours"`

	DefaultLimit int `yaml:"default_limit"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	SecretKey     string        `yaml:"secret_key"`
	Algorithm     string        `yaml:"algorithm"`
	TokenTTL      time.Duration `yaml:"-"`
	ExpireMinutes int           `yaml:"access_token_expire_minutes"`
}

// AIConfig holds the generative provider settings. An empty APIKey means
// the summary endpoint is unconfigured.
type AIConfig struct {
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"-"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and then
// from environment variables, which win over file values.
func Load() (Config, error) {
	var cfg Config

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = fileCfg
	}

	overrideString(&cfg.HTTPAddr, "HTTP_ADDR")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.Auth.SecretKey, "SECRET_KEY")
	overrideString(&cfg.Auth.Algorithm, "ALGORITHM")
	overrideString(&cfg.AI.APIKey, "GEMINI_API_KEY")
	overrideString(&cfg.AI.Model, "GEMINI_MODEL")
	overrideString(&cfg.AI.BaseURL, "GEMINI_BASE_URL")
	overrideString(&cfg.DigestTime, "DIGEST_TIME")

	for _, o := range []struct {
		dst *int
		env string
	}{
		{&cfg.Auth.ExpireMinutes, "ACCESS_TOKEN_EXPIRE_MINUTES"},
		{&cfg.AI.TimeoutSeconds, "AI_TIMEOUT_SECONDS"},
		{&cfg.DigestHours, "DIGEST_INTERVAL_HOURS"},
		{&cfg.DefaultLimit, "DEFAULT_LIMIT"},
	} {
		if err := overrideInt(o.dst, o.env); err != nil {
			return cfg, err
		}
	}

	applyDefaults(&cfg)

	if cfg.Auth.SecretKey == "" {
		return cfg, fmt.Errorf("SECRET_KEY is required")
	}
	switch cfg.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return cfg, fmt.Errorf("unsupported ALGORITHM %q, expected HS256, HS384 or HS512", cfg.Auth.Algorithm)
	}

	return cfg, nil
}

// AIConfigured reports whether the summary provider has credentials.
func (c Config) AIConfigured() bool {
	return c.AI.APIKey != ""
}

func applyDefaults(cfg *Config) {
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.Auth.Algorithm == "" {
		cfg.Auth.Algorithm = defaultAlgorithm
	}
	cfg.Auth.TokenTTL = time.Duration(cfg.Auth.ExpireMinutes) * time.Minute
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = defaultTokenTTL
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultAIModel
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = defaultAIBaseURL
	}
	cfg.AI.Timeout = time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = defaultAITimeout
	}
	if cfg.DigestHours > 0 {
		cfg.DigestInterval = time.Duration(cfg.DigestHours) * time.Hour
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaultListingLimit
	}
}

// loadFile parses a YAML config after replacing ${VAR} placeholders with
// values from the environment.
func loadFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	content := string(data)
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		content = strings.ReplaceAll(content, "${"+pair[0]+"}", pair[1])
	}

	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

func overrideString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, env string) error {
	raw := strings.TrimSpace(os.Getenv(env))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", env, raw, err)
	}
	*dst = n
	return nil
}
