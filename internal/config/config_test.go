package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "D.M.YYYY", cfg.DateFormat)
	assert.Equal(t, 4*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, 5*time.Minute, cfg.Reminder.CheckInterval)
	assert.Equal(t, 30, cfg.Reminder.DefaultLeadDays)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATE_FORMAT", "YYYY-MM-DD")
	t.Setenv("REMINDER_DEFAULT_LEAD_DAYS", "14")
	t.Setenv("SESSION_MAX_AGE", "3600")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "YYYY-MM-DD", cfg.DateFormat)
	assert.Equal(t, 14, cfg.Reminder.DefaultLeadDays)
	assert.Equal(t, time.Hour, cfg.Session.MaxAge)
}
