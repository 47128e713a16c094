package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Auth modes for the outbound tracking-service session.
const (
	AuthModeToken = "token"
	AuthModeBasic = "basic"
)

// Config holds all runtime configuration for the resolver backend.
// Values come from the environment (optionally seeded from a .env file).
type Config struct {
	// Tracking service connection
	ServiceURL   string `mapstructure:"service_url" validate:"omitempty,url"`
	AuthMode     string `mapstructure:"auth_mode" validate:"required,oneof=token basic"`
	Token        string `mapstructure:"token"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	ProjectScope string `mapstructure:"project_scope"`

	// Cache / failure policy
	RefreshIntervalMinutes int `mapstructure:"refresh_interval_minutes" validate:"min=0"`
	RestartThreshold       int `mapstructure:"restart_threshold" validate:"min=0"`
	NotificationBudget     int `mapstructure:"notification_budget" validate:"min=0"`

	// HTTP
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"min=1"`
	Port                  string `mapstructure:"port"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is honored when present; real environment variables win.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; the environment may be fully populated already
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RESOLVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for _, key := range []string{
		"service_url", "auth_mode", "token", "username", "password",
		"project_scope", "refresh_interval_minutes", "restart_threshold",
		"notification_budget", "request_timeout_seconds", "port",
		"log_level", "log_json",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env key %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks structural constraints. Missing credentials are not fatal
// here; session initialization reports those as configuration errors so the
// server can still come up and surface them.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// TokenAuth reports whether token authentication mode is enabled.
func (c *Config) TokenAuth() bool {
	return c.AuthMode == AuthModeToken
}

// RefreshInterval returns the configured staleness window. Zero means
// cached values never expire.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMinutes) * time.Minute
}

// RequestTimeout returns the per-request network timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("auth_mode", AuthModeBasic)
	v.SetDefault("refresh_interval_minutes", 10)
	v.SetDefault("restart_threshold", 5)
	v.SetDefault("notification_budget", 3)
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}
