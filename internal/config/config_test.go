package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Security.EnableCORS)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxSizeBytes)
	assert.Equal(t, "reports", cfg.Reports.Dir)
	assert.NoError(t, cfg.validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ATTEND_SERVER_PORT", "9090")
	t.Setenv("ATTEND_LOGGING_LEVEL", "debug")
	t.Setenv("ATTEND_UPLOAD_MAX_SIZE_BYTES", "1048576")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, int64(1<<20), cfg.Upload.MaxSizeBytes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout must be positive",
		},
		{
			name:    "no allowed origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name:    "zero upload size",
			mutate:  func(c *Config) { c.Upload.MaxSizeBytes = 0 },
			wantErr: "upload max size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestMergeConfigsEnvWins(t *testing.T) {
	file := *Default()
	file.Server.Port = 7070
	file.Logging.Level = "warn"

	env := Config{}
	env.Server.Port = 9090

	merged := mergeConfigs(file, env)
	assert.Equal(t, 9090, merged.Server.Port) // env value kept
	assert.Equal(t, "warn", merged.Logging.Level)
}
