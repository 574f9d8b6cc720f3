package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// EnvPrefix is prepended to every environment override, e.g. ASSETSTRACKER_HTTP_ADDR
const EnvPrefix = "ASSETSTRACKER"

// Config holds every runtime setting shared by the server, TUI and CLI
type Config struct {
	QuoteAPIURL     string        `mapstructure:"quote_api_url"`
	QuoteTimeout    time.Duration `mapstructure:"quote_timeout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RefreshMaxTries uint          `mapstructure:"refresh_max_tries"`
	Store           string        `mapstructure:"store"`
	DataDir         string        `mapstructure:"data_dir"`
	PostgresURL     string        `mapstructure:"postgres_url"`
	HTTPAddr        string        `mapstructure:"http_addr"`
	GRPCAddr        string        `mapstructure:"grpc_addr"`
	APIToken        string        `mapstructure:"api_token"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFile         string        `mapstructure:"log_file"`
	Development     bool          `mapstructure:"development"`
}

const (
	DefaultQuoteAPIURL     = "http://127.0.0.1:5050"
	DefaultQuoteTimeout    = 10 * time.Second
	DefaultRefreshInterval = 60 * time.Second
	DefaultRefreshMaxTries = 3
	DefaultDataDir         = ".assetstracker"
	DefaultHTTPAddr        = ":8888"
	DefaultGRPCAddr        = ":8080"
	DefaultLogLevel        = "info"
	DefaultLogFile         = "logs/assetstracker.log"
)

// Load reads configuration from defaults, an optional config file, a .env file and the environment
// An empty path skips the config file; a missing .env file is ignored
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	defaults := map[string]interface{}{
		"quote_api_url":     DefaultQuoteAPIURL,
		"quote_timeout":     DefaultQuoteTimeout,
		"refresh_interval":  DefaultRefreshInterval,
		"refresh_max_tries": DefaultRefreshMaxTries,
		"store":             StoreFile,
		"data_dir":          DefaultDataDir,
		"postgres_url":      "",
		"http_addr":         DefaultHTTPAddr,
		"grpc_addr":         DefaultGRPCAddr,
		"api_token":         "",
		"log_level":         DefaultLogLevel,
		"log_file":          DefaultLogFile,
		"development":       false,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.QuoteAPIURL = strings.TrimRight(cfg.QuoteAPIURL, "/")

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	parsed, err := url.Parse(cfg.QuoteAPIURL)
	if err != nil || parsed.Host == "" || !strings.HasPrefix(parsed.Scheme, "http") {
		return fmt.Errorf("invalid quote_api_url %q", cfg.QuoteAPIURL)
	}
	if cfg.QuoteTimeout <= 0 {
		return errors.New("invalid quote_timeout")
	}
	if cfg.RefreshInterval <= 0 {
		return errors.New("invalid refresh_interval")
	}
	if cfg.RefreshMaxTries == 0 {
		return errors.New("refresh_max_tries must be at least 1")
	}

	switch cfg.Store {
	case StoreFile:
		if cfg.DataDir == "" {
			return errors.New("data_dir is required for the file store")
		}
	case StoreMemory:
	case StorePostgres:
		if cfg.PostgresURL == "" {
			return errors.New("postgres_url is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store %q (want file, memory or postgres)", cfg.Store)
	}

	return nil
}
