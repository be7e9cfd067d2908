// Package config provides configuration management for the crypto advisor.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Market        MarketConfig       `mapstructure:"market"`
	Scheduler     SchedulerConfig    `mapstructure:"scheduler"`
	AI            AIConfig           `mapstructure:"ai"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Server        ServerConfig       `mapstructure:"server"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	UI            UIConfig           `mapstructure:"ui"`
	Credentials   Credentials        `mapstructure:"-"` // Loaded separately
}

// MarketConfig holds market data API configuration.
type MarketConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	SuggestionLimit int           `mapstructure:"suggestion_limit"`
}

// SchedulerConfig holds the background tick and gate timings.
type SchedulerConfig struct {
	DataRefreshInterval   time.Duration `mapstructure:"data_refresh_interval"`
	AdviceRefreshInterval time.Duration `mapstructure:"advice_refresh_interval"`
	CooldownDuration      time.Duration `mapstructure:"cooldown_duration"`
	DebounceQuietPeriod   time.Duration `mapstructure:"debounce_quiet_period"`
}

// AIConfig holds generative text API configuration.
type AIConfig struct {
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
}

// StorageConfig holds durable storage configuration.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Bell    bool          `mapstructure:"bell"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	Language     string `mapstructure:"language"`
}

// Credentials holds API credentials.
type Credentials struct {
	Gemini GeminiCredentials `mapstructure:"gemini"`
}

// GeminiCredentials holds the generative text API key.
type GeminiCredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/crypto-advisor"
	}
	return filepath.Join(home, ".config", "crypto-advisor")
}

// Default returns the configuration used when no file overrides a value.
func Default() *Config {
	return &Config{
		Market: MarketConfig{
			BaseURL:         "https://api.coingecko.com/api/v3",
			Timeout:         20 * time.Second,
			SuggestionLimit: 7,
		},
		Scheduler: SchedulerConfig{
			DataRefreshInterval:   7 * time.Minute,
			AdviceRefreshInterval: 2 * time.Hour,
			CooldownDuration:      90 * time.Second,
			DebounceQuietPeriod:   700 * time.Millisecond,
		},
		AI: AIConfig{
			Model:       "gemini-2.5-flash",
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta/openai/",
			Temperature: 0.5,
		},
		Storage: StorageConfig{
			Path: filepath.Join(DefaultConfigDir(), "advisor.db"),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Bell:    true,
		},
		UI: UIConfig{
			ColorEnabled: true,
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
// Missing files are created from templates and defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env in the working directory first, then the config directory.
	// Already-set variables are never overwritten.
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	cfg := Default()

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("market.base_url", d.Market.BaseURL)
	v.SetDefault("market.timeout", d.Market.Timeout)
	v.SetDefault("market.suggestion_limit", d.Market.SuggestionLimit)
	v.SetDefault("scheduler.data_refresh_interval", d.Scheduler.DataRefreshInterval)
	v.SetDefault("scheduler.advice_refresh_interval", d.Scheduler.AdviceRefreshInterval)
	v.SetDefault("scheduler.cooldown_duration", d.Scheduler.CooldownDuration)
	v.SetDefault("scheduler.debounce_quiet_period", d.Scheduler.DebounceQuietPeriod)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.base_url", d.AI.BaseURL)
	v.SetDefault("ai.temperature", d.AI.Temperature)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("notifications.enabled", d.Notifications.Enabled)
	v.SetDefault("notifications.bell", d.Notifications.Bell)
	v.SetDefault("ui.color_enabled", d.UI.ColorEnabled)
}

func loadConfigFile(configDir string, cfg *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := createTemplate(configDir, "config.toml", configTemplate, 0644); err != nil {
			return err
		}
	}

	return v.Unmarshal(cfg)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplate(configDir, "credentials.toml", credentialsTemplate, 0600)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	// API key: GEMINI_API_KEY wins over the generic API_KEY
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Credentials.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Credentials.Gemini.APIKey = v
	}

	if v := os.Getenv("ADVISOR_AI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("ADVISOR_AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("ADVISOR_LANGUAGE"); v != "" {
		cfg.UI.Language = v
	}
	if v := os.Getenv("ADVISOR_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Market.BaseURL, "http://") && !strings.HasPrefix(c.Market.BaseURL, "https://") {
		return fmt.Errorf("market.base_url must be an http(s) URL: %q", c.Market.BaseURL)
	}
	if c.Market.Timeout <= 0 {
		return fmt.Errorf("market.timeout must be positive")
	}
	if c.Market.SuggestionLimit < 1 || c.Market.SuggestionLimit > 25 {
		return fmt.Errorf("market.suggestion_limit must be between 1 and 25")
	}

	if c.Scheduler.DataRefreshInterval < time.Minute {
		return fmt.Errorf("scheduler.data_refresh_interval must be at least 1m")
	}
	if c.Scheduler.AdviceRefreshInterval < time.Minute {
		return fmt.Errorf("scheduler.advice_refresh_interval must be at least 1m")
	}
	if c.Scheduler.CooldownDuration < time.Second {
		return fmt.Errorf("scheduler.cooldown_duration must be at least 1s")
	}
	if c.Scheduler.DebounceQuietPeriod <= 0 {
		return fmt.Errorf("scheduler.debounce_quiet_period must be positive")
	}

	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2")
	}

	switch c.UI.Language {
	case "", "es", "en":
	default:
		return fmt.Errorf("invalid ui.language: %s (must be 'es' or 'en')", c.UI.Language)
	}

	if c.Notifications.Webhook.Enabled && c.Notifications.Webhook.URL == "" {
		return fmt.Errorf("notifications.webhook.url is required when the webhook is enabled")
	}

	return nil
}

// HasAIKey reports whether a generative text API key is configured.
func (c *Config) HasAIKey() bool {
	return strings.TrimSpace(c.Credentials.Gemini.APIKey) != ""
}
