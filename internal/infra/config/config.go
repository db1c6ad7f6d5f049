package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default endpoints for the hosted cloud. Overridable for testing against a
// local stand-in.
const (
	DefaultAPIBaseURL    = "https://webexapis.com/v1"
	DefaultDeviceBaseURL = "https://wdm-a.wbx2.com/wdm/api/v1"
)

// Config is the top-level application configuration.
type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	API       APIConfig       `yaml:"api"`
	Transport TransportConfig `yaml:"transport"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logger    LoggerConfig    `yaml:"logger"`
}

// BotConfig identifies the bot toward the cloud.
type BotConfig struct {
	// Token is the bearer credential. Environment references such as
	// ${WEBEX_TOKEN} are expanded at load time.
	Token string `yaml:"token"`
	// DeviceName is the fixed client name used for device provisioning.
	// Lookups match on exact string equality against this name.
	DeviceName string `yaml:"device_name"`
}

// APIConfig holds REST collaborator settings.
type APIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	DeviceURL   string        `yaml:"device_url"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`
	Breaker     BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the circuit breaker around REST calls.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit
	// opens. Zero selects the default.
	MaxFailures uint32 `yaml:"max_failures"`
	// Timeout is how long the circuit stays open before a half-open probe.
	Timeout time.Duration `yaml:"timeout"`
	// Interval is the cyclic period of the closed state for clearing failure
	// counts. If 0, failures never reset until the circuit opens.
	Interval time.Duration `yaml:"interval"`
}

// TransportConfig holds realtime transport settings.
type TransportConfig struct {
	// CloseTimeout bounds the wait for the peer's Close acknowledgement
	// during graceful shutdown.
	CloseTimeout time.Duration `yaml:"close_timeout"`
}

// WebhookConfig holds the HTTP front door settings.
type WebhookConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Addr           string `yaml:"addr"`
	Path           string `yaml:"path"`
	RequestsPerMin int    `yaml:"requests_per_min"`
	BurstSize      int    `yaml:"burst_size"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	Output string `yaml:"output"` // stdout, stderr, or a file path
}

// Load reads, expands, and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Bot.Token = os.ExpandEnv(cfg.Bot.Token)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Bot.DeviceName == "" {
		c.Bot.DeviceName = "go-spark-client"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	if c.API.DeviceURL == "" {
		c.API.DeviceURL = DefaultDeviceBaseURL
	}
	if c.API.ConnTimeout == 0 {
		c.API.ConnTimeout = 30 * time.Second
	}
	if c.API.RespTimeout == 0 {
		c.API.RespTimeout = 60 * time.Second
	}
	if c.Transport.CloseTimeout == 0 {
		c.Transport.CloseTimeout = 5 * time.Second
	}
	if c.Webhook.Addr == "" {
		c.Webhook.Addr = ":8080"
	}
	if c.Webhook.Path == "" {
		c.Webhook.Path = "/webhook"
	}
	if c.Webhook.RequestsPerMin == 0 {
		c.Webhook.RequestsPerMin = 100
	}
	if c.Webhook.BurstSize == 0 {
		c.Webhook.BurstSize = 20
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "text"
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("config: bot.token is required")
	}
	return nil
}
