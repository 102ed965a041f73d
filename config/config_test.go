package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("SCHOOLS_BASE_URL", "https://gymn1.schools.by")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "daybook-bot", cfg.App.Name)
	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.Equal(t, SessionBackendFile, cfg.Session.Backend)
	assert.Equal(t, "sessions.json", cfg.Session.FilePath)
	assert.Equal(t, 15*time.Second, cfg.Schools.Timeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Zero(t, cfg.Telegram.AdminChatID)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("SCHOOLS_BASE_URL", "https://gymn1.schools.by")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestLoadRejectsBareHost(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("SCHOOLS_BASE_URL", "gymn1.schools.by")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http(s)")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_BACKEND", "etcd")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_BACKEND")
}

func TestLoadRejectsShortSealKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_FILE_KEY", "deadbeef")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_FILE_KEY")
}

func TestLoadParsesOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "-1001234")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("SCHOOLS_TIMEOUT", "5s")
	t.Setenv("SESSION_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://bot:pw@db:5432/daybook")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, int64(-1001234), cfg.Telegram.AdminChatID)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Schools.Timeout)
	assert.Equal(t, SessionBackendPostgres, cfg.Session.Backend)
}
