package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, AuthModeBasic, cfg.AuthMode)
	assert.Equal(t, 10, cfg.RefreshIntervalMinutes)
	assert.Equal(t, 5, cfg.RestartThreshold)
	assert.Equal(t, 3, cfg.NotificationBudget)
	assert.Equal(t, 30, cfg.RequestTimeoutSeconds)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
	assert.False(t, cfg.TokenAuth())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("RESOLVER_SERVICE_URL", "https://polarion.example.com/polarion")
	t.Setenv("RESOLVER_AUTH_MODE", "token")
	t.Setenv("RESOLVER_TOKEN", "secret-token")
	t.Setenv("RESOLVER_PROJECT_SCOPE", "MYPROJ")
	t.Setenv("RESOLVER_REFRESH_INTERVAL_MINUTES", "0")
	t.Setenv("RESOLVER_RESTART_THRESHOLD", "2")
	t.Setenv("RESOLVER_PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://polarion.example.com/polarion", cfg.ServiceURL)
	assert.True(t, cfg.TokenAuth())
	assert.Equal(t, "secret-token", cfg.Token)
	assert.Equal(t, "MYPROJ", cfg.ProjectScope)
	assert.Equal(t, 0, cfg.RefreshIntervalMinutes)
	assert.Equal(t, 2, cfg.RestartThreshold)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoadConfig_InvalidAuthMode(t *testing.T) {
	t.Setenv("RESOLVER_AUTH_MODE", "kerberos")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidServiceURL(t *testing.T) {
	t.Setenv("RESOLVER_SERVICE_URL", "not a url")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestRefreshInterval(t *testing.T) {
	cfg := &Config{RefreshIntervalMinutes: 15}
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval())

	// Zero disables expiry entirely
	cfg = &Config{}
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval())
}

func TestRequestTimeout(t *testing.T) {
	cfg := &Config{RequestTimeoutSeconds: 45}
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout())
}
