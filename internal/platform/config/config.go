package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the dashboard backend
type Config struct {
	GoogleAds     GoogleAdsConfig     `mapstructure:"google_ads"`
	Accounts      AccountsConfig      `mapstructure:"accounts"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Alerts        AlertsConfig        `mapstructure:"alerts"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	HTTP          HTTPConfig          `mapstructure:"http"`
}

// GoogleAdsConfig holds Google Ads API connection configuration
type GoogleAdsConfig struct {
	BaseURL         string          `mapstructure:"base_url"`
	DeveloperToken  string          `mapstructure:"developer_token"`
	AccessToken     string          `mapstructure:"access_token"`
	LoginCustomerID string          `mapstructure:"login_customer_id"` // MCC account
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	Timeout         time.Duration   `mapstructure:"timeout"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// AccountsConfig holds the country -> customer ID mapping served by the
// dashboard. When empty, DefaultCountryAccounts applies.
type AccountsConfig struct {
	Countries map[string]string `mapstructure:"countries"`
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// AlertsConfig holds operator alerting configuration
type AlertsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	AWSRegion   string `mapstructure:"aws_region"`
	SNSTopicARN string `mapstructure:"sns_topic_arn"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// MetricsConfig holds metrics settings
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// TracingConfig holds tracing settings
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Credentials come from the environment in deployed setups
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not fatal if env vars are set
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Accounts.Countries) == 0 {
		cfg.Accounts.Countries = DefaultCountryAccounts()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Google Ads defaults
	v.SetDefault("google_ads.base_url", "https://googleads.googleapis.com")
	v.SetDefault("google_ads.rate_limit.requests_per_minute", 600)
	v.SetDefault("google_ads.rate_limit.burst", 20)
	v.SetDefault("google_ads.timeout", "30s")

	// Cache defaults
	v.SetDefault("cache.max_entries", 500)

	// Alert defaults
	v.SetDefault("alerts.enabled", false)
	v.SetDefault("alerts.aws_region", "eu-west-1")

	// Observability defaults
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")

	// HTTP defaults
	v.SetDefault("http.port", 8080)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.GoogleAds.DeveloperToken == "" {
		return fmt.Errorf("google ads developer token is required")
	}

	if c.GoogleAds.LoginCustomerID == "" {
		return fmt.Errorf("login customer ID (MCC account) is required")
	}

	if len(c.Accounts.Countries) == 0 {
		return fmt.Errorf("at least one country account is required")
	}
	for country, customerID := range c.Accounts.Countries {
		if err := ValidateCustomerID(customerID); err != nil {
			return fmt.Errorf("invalid customer ID for %s: %w", country, err)
		}
	}

	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache max entries must be >= 0")
	}

	if c.Alerts.Enabled && c.Alerts.SNSTopicARN == "" {
		return fmt.Errorf("SNS topic ARN is required when alerts are enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Observability.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Observability.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[c.Observability.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Observability.Logging.Format)
	}

	return nil
}
