package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from .env and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	BaseURL        string `mapstructure:"base_url"`
	NewsCategory   string `mapstructure:"news_category"`
	Country        string `mapstructure:"country"`
	StartPage      int    `mapstructure:"start_page"`
	EndPage        int    `mapstructure:"end_page"`
	UserAgent      string `mapstructure:"user_agent"`
	RequestDelayMs int64  `mapstructure:"request_delay_ms"`
	HTTPTimeoutSec int64  `mapstructure:"http_timeout_seconds"`

	CSVPath string `mapstructure:"csv_path"`

	TranslateEnabled     bool   `mapstructure:"translate_enabled"`
	TranslatorType       string `mapstructure:"translator_type"`
	TranslatorURL        string `mapstructure:"translator_url"`
	TranslatorAPIKey     string `mapstructure:"translator_api_key"`
	TranslatorTimeoutSec int64  `mapstructure:"translator_timeout_seconds"`
	TargetLang           string `mapstructure:"target_lang"`
	ChunkSize            int    `mapstructure:"chunk_size"`
	TranslateConcurrency int    `mapstructure:"translate_concurrency"`

	StorageType           string `mapstructure:"storage_type"`
	BBoltPath             string `mapstructure:"bbolt_path"`
	SQLitePath            string `mapstructure:"sqlite_path"`
	StorageTTLSeconds     int64  `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds int64  `mapstructure:"storage_cleanup_interval_seconds"`
	SkipSeen              bool   `mapstructure:"skip_seen"`

	PublishersFile       string `mapstructure:"publishers_file"`
	CrawlIntervalSeconds int64  `mapstructure:"crawl_interval"`

	// Archive uploads the CSV to an S3-compatible bucket after each pass.
	ArchiveEndpoint  string `mapstructure:"archive_endpoint"`
	ArchiveBucket    string `mapstructure:"archive_bucket"`
	ArchiveAccessKey string `mapstructure:"archive_access_key"`
	ArchiveSecretKey string `mapstructure:"archive_secret_key"`
	ArchiveUseSSL    bool   `mapstructure:"archive_use_ssl"`
	ArchivePrefix    string `mapstructure:"archive_prefix"`

	RequestDelay           time.Duration `mapstructure:"-"`
	HTTPTimeout            time.Duration `mapstructure:"-"`
	TranslatorTimeout      time.Duration `mapstructure:"-"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
	CrawlInterval          time.Duration `mapstructure:"-"`
}

// Load reads configuration from the .env file (if any) and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "briefing-harvester")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("base_url", "https://www.china-briefing.com")
	v.SetDefault("news_category", "economy-trade")
	v.SetDefault("country", "China")
	v.SetDefault("start_page", 1)
	v.SetDefault("end_page", 2)
	v.SetDefault("user_agent", "Mozilla/5.0 (compatible; briefing-harvester/1.0)")
	v.SetDefault("request_delay_ms", 0)
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("csv_path", "data/results.csv")
	v.SetDefault("translate_enabled", false)
	v.SetDefault("translator_type", "google")
	v.SetDefault("translator_url", "")
	v.SetDefault("translator_api_key", "")
	v.SetDefault("translator_timeout_seconds", 15)
	v.SetDefault("target_lang", "ru")
	v.SetDefault("chunk_size", 5000)
	v.SetDefault("translate_concurrency", 0) // articles translated at once; 0 means the whole page
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/seen.db")
	v.SetDefault("sqlite_path", "./data/seen.sqlite")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("skip_seen", true)
	v.SetDefault("publishers_file", "")
	v.SetDefault("crawl_interval", 0) // seconds; 0 runs a single pass
	v.SetDefault("archive_endpoint", "")
	v.SetDefault("archive_bucket", "")
	v.SetDefault("archive_access_key", "")
	v.SetDefault("archive_secret_key", "")
	v.SetDefault("archive_use_ssl", true)
	v.SetDefault("archive_prefix", "briefing-harvester")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.RequestDelay = time.Duration(cfg.RequestDelayMs) * time.Millisecond
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
	cfg.TranslatorTimeout = time.Duration(cfg.TranslatorTimeoutSec) * time.Second
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second
	cfg.CrawlInterval = time.Duration(cfg.CrawlIntervalSeconds) * time.Second

	return &cfg, nil
}

func (c *Config) validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.NewsCategory = strings.Trim(strings.TrimSpace(c.NewsCategory), "/")
	c.CSVPath = strings.TrimSpace(c.CSVPath)

	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.NewsCategory == "" {
		return fmt.Errorf("news_category is required")
	}
	if c.CSVPath == "" {
		return fmt.Errorf("csv_path is required")
	}
	if c.StartPage < 1 {
		return fmt.Errorf("invalid start_page %d (must be >= 1)", c.StartPage)
	}
	if c.EndPage <= c.StartPage {
		return fmt.Errorf("invalid end_page %d (must be greater than start_page %d)", c.EndPage, c.StartPage)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("invalid chunk_size (must be positive)")
	}
	if c.TranslateConcurrency < 0 {
		return fmt.Errorf("invalid translate_concurrency (must not be negative)")
	}
	if c.RequestDelayMs < 0 {
		return fmt.Errorf("invalid request_delay_ms (must not be negative)")
	}
	if c.HTTPTimeoutSec <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	if c.TranslatorTimeoutSec <= 0 {
		return fmt.Errorf("invalid translator_timeout_seconds (must be positive seconds)")
	}
	if c.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if c.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	if c.CrawlIntervalSeconds < 0 {
		return fmt.Errorf("invalid crawl_interval (must not be negative)")
	}
	c.ArchiveEndpoint = strings.TrimSpace(c.ArchiveEndpoint)
	if c.ArchiveEndpoint != "" && strings.TrimSpace(c.ArchiveBucket) == "" {
		return fmt.Errorf("archive_bucket is required when archive_endpoint is set")
	}
	return nil
}

// StoragePath returns the database path for the configured storage type.
func (c *Config) StoragePath() string {
	if strings.EqualFold(strings.TrimSpace(c.StorageType), "sqlite") {
		return c.SQLitePath
	}
	return c.BBoltPath
}

// ArchiveEnabled reports whether CSV archiving is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveEndpoint != ""
}

// Redacted returns a copy safe to log, with credentials masked.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	c.TranslatorAPIKey = mask(c.TranslatorAPIKey)
	c.ArchiveAccessKey = mask(c.ArchiveAccessKey)
	c.ArchiveSecretKey = mask(c.ArchiveSecretKey)
	return c
}
