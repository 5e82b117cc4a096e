package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CLIENTDIR_PRIMARY__ENV", "local")
	t.Setenv("CLIENTDIR_DATABASE__USER", "postgres")
	t.Setenv("CLIENTDIR_DATABASE__NAME", "clients_db")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Primary.Env)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 20.0, cfg.Server.RateLimit)
	assert.False(t, cfg.Redis.Enabled())

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "local", cfg.Observability.Environment)
	assert.Equal(t, 100*time.Millisecond, cfg.Observability.Logging.SlowQueryThreshold)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLIENTDIR_DATABASE__HOST", "db.internal")
	t.Setenv("CLIENTDIR_DATABASE__PORT", "6543")
	t.Setenv("CLIENTDIR_DATABASE__PASSWORD", "pa:ss@word")
	t.Setenv("CLIENTDIR_REDIS__ADDRESS", "localhost:6379")
	t.Setenv("CLIENTDIR_SERVER__CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("CLIENTDIR_OBSERVABILITY__LOGGING__LEVEL", "debug")
	t.Setenv("CLIENTDIR_OBSERVABILITY__LOGGING__SLOW_QUERY_THRESHOLD", "250ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "pa:ss@word", cfg.Database.Password)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSAllowedOrigins)

	// Partial observability overrides keep the remaining defaults.
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
	assert.Equal(t, 250*time.Millisecond, cfg.Observability.Logging.SlowQueryThreshold)
	assert.True(t, cfg.Observability.HealthChecks.Enabled)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	t.Setenv("CLIENTDIR_PRIMARY__ENV", "local")
	t.Setenv("CLIENTDIR_DATABASE__NAME", "clients_db")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "User")
}

func TestLoadConfig_InvalidSSLMode(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLIENTDIR_DATABASE__SSL_MODE", "sometimes")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestObservabilityConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ObservabilityConfig)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *ObservabilityConfig) {}},
		{
			name:    "unknown level",
			mutate:  func(c *ObservabilityConfig) { c.Logging.Level = "inf" },
			wantErr: "invalid logging level",
		},
		{
			name:    "unknown format",
			mutate:  func(c *ObservabilityConfig) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format",
		},
		{
			name:    "negative threshold",
			mutate:  func(c *ObservabilityConfig) { c.Logging.SlowQueryThreshold = -time.Second },
			wantErr: "non-negative",
		},
		{
			name:    "missing service name",
			mutate:  func(c *ObservabilityConfig) { c.ServiceName = "" },
			wantErr: "service_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultObservabilityConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestObservabilityConfig_GetLogLevel(t *testing.T) {
	c := DefaultObservabilityConfig()
	c.Logging.Level = ""

	c.Environment = "production"
	assert.Equal(t, "info", c.GetLogLevel())

	c.Environment = "local"
	assert.Equal(t, "debug", c.GetLogLevel())

	c.Logging.Level = "warn"
	assert.Equal(t, "warn", c.GetLogLevel())
}

func TestObservabilityConfig_HasCheck(t *testing.T) {
	c := DefaultObservabilityConfig()
	assert.True(t, c.HasCheck("database"))
	assert.False(t, c.HasCheck("s3"))

	c.HealthChecks.Enabled = false
	assert.False(t, c.HasCheck("database"))
}
