package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", ":memory:")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8091", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 8*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "Asia/Bangkok", cfg.Location.String())
	assert.Equal(t, 2026, cfg.TargetEpoch.Year())
	assert.Equal(t, 2025, cfg.CampaignEpoch.Year())
	assert.Equal(t, "web", cfg.MusicDir)
	assert.Equal(t, "theme-cute", cfg.DefaultTheme)
	assert.Empty(t, cfg.AdminAPIKeys)
}

func TestFromEnvPostgresNeedsURL(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := FromEnv()
	assert.EqualError(t, err, "missing DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/hny?sslmode=disable")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/hny?sslmode=disable", cfg.DatabaseURL)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "TIMEZONE")

	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("TARGET_EPOCH", "2024-01-01T00:00:00")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "TARGET_EPOCH")
}

func TestAdminKeys(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ADMIN_API_KEYS", " a, ,b ")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Len(t, cfg.AdminAPIKeys, 2)
	assert.Contains(t, cfg.AdminAPIKeys, "a")
	assert.Contains(t, cfg.AdminAPIKeys, "b")
}
