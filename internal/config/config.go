package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Bing      BingConfig      `yaml:"bing" mapstructure:"bing"`
	Crawl     CrawlConfig     `yaml:"crawl" mapstructure:"crawl"`
	Resolve   ResolveConfig   `yaml:"resolve" mapstructure:"resolve"`
	Bulk      BulkConfig      `yaml:"bulk" mapstructure:"bulk"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// AnthropicConfig holds Anthropic API settings. An empty key disables the
// model-backed selector and extractor.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
}

// GoogleConfig holds Custom Search credentials.
type GoogleConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	CSEID   string `yaml:"cse_id" mapstructure:"cse_id"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// Enabled reports whether both credentials are set.
func (g GoogleConfig) Enabled() bool {
	return g.Key != "" && g.CSEID != ""
}

// BingConfig holds Bing Web Search credentials.
type BingConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Market  string `yaml:"market" mapstructure:"market"`
}

// CrawlConfig configures page fetching.
type CrawlConfig struct {
	DeepMaxPages     int     `yaml:"deep_max_pages" mapstructure:"deep_max_pages"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerHost      float64 `yaml:"rate_per_host" mapstructure:"rate_per_host"`
	RetryAttempts    int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	SoftBlockMinBody int     `yaml:"soft_block_min_body" mapstructure:"soft_block_min_body"`
}

// Timeout returns the per-request timeout.
func (c CrawlConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ResolveConfig configures site resolution from a company name.
type ResolveConfig struct {
	MaxProbeHosts     int `yaml:"max_probe_hosts" mapstructure:"max_probe_hosts"`
	ProbeConcurrency  int `yaml:"probe_concurrency" mapstructure:"probe_concurrency"`
	SearchTimeoutSecs int `yaml:"search_timeout_secs" mapstructure:"search_timeout_secs"`
	SearchRetries     int `yaml:"search_retries" mapstructure:"search_retries"`
}

// BulkConfig configures bulk uploads.
type BulkConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	MaxUploadMB int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// ExportConfig configures where reports are written.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	// .env values never override variables already set.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROFILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "profiler.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("google.key", "")
	v.SetDefault("google.cse_id", "")
	v.SetDefault("google.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("bing.key", "")
	v.SetDefault("bing.base_url", "https://api.bing.microsoft.com/v7.0/search")
	v.SetDefault("bing.market", "en-US")
	v.SetDefault("crawl.deep_max_pages", 10)
	v.SetDefault("crawl.timeout_secs", 15)
	v.SetDefault("crawl.user_agent", "")
	v.SetDefault("crawl.rate_per_host", 0)
	v.SetDefault("crawl.retry_attempts", 1)
	v.SetDefault("crawl.soft_block_min_body", 500)
	v.SetDefault("resolve.max_probe_hosts", 25)
	v.SetDefault("resolve.probe_concurrency", 4)
	v.SetDefault("resolve.search_timeout_secs", 12)
	v.SetDefault("resolve.search_retries", 1)
	v.SetDefault("bulk.concurrency", 4)
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("export.dir", "exports")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Every external
// API is optional, so only local settings are required.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
		errs = append(errs, c.validateStore()...)
	case "scrape", "bulk":
		errs = append(errs, c.validateStore()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Bulk.Concurrency < 1 || c.Bulk.Concurrency > 50 {
		errs = append(errs, "bulk.concurrency must be between 1 and 50")
	}
	if c.Crawl.DeepMaxPages < 1 || c.Crawl.DeepMaxPages > 500 {
		errs = append(errs, "crawl.deep_max_pages must be between 1 and 500")
	}
	if c.Crawl.TimeoutSecs <= 0 {
		errs = append(errs, "crawl.timeout_secs must be > 0")
	}
	if c.Export.Dir == "" {
		errs = append(errs, "export.dir is required")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateStore() []string {
	var errs []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
