package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "mock", cfg.Positioning.Provider)
	assert.True(t, cfg.Positioning.EnableHighAccuracy)
	assert.Equal(t, 10*time.Second, cfg.Positioning.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Positioning.MaxCachedAge)
	assert.Equal(t, 3, cfg.Reports.FlagMinNegative)
	assert.Equal(t, 3, cfg.Verification.ReviewThreshold)
	assert.Equal(t, 30*24*time.Hour, cfg.Verification.MaxAge)
}

func TestLoad_ThresholdsAreIndependent(t *testing.T) {
	t.Setenv("REPORT_FLAG_MIN_NEGATIVE", "5")
	t.Setenv("VERIFICATION_REVIEW_THRESHOLD", "2")
	t.Setenv("VERIFICATION_MAX_AGE_DAYS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Reports.FlagMinNegative)
	assert.Equal(t, 2, cfg.Verification.ReviewThreshold)
	assert.Equal(t, 7*24*time.Hour, cfg.Verification.MaxAge)
}

func TestLoad_Positioning(t *testing.T) {
	t.Setenv("POSITIONING_PROVIDER", "google")
	t.Setenv("POSITIONING_API_KEY", "test-key")
	t.Setenv("POSITIONING_TIMEOUT", "3s")
	t.Setenv("POSITIONING_HIGH_ACCURACY", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "google", cfg.Positioning.Provider)
	assert.Equal(t, "test-key", cfg.Positioning.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Positioning.Timeout)
	assert.False(t, cfg.Positioning.EnableHighAccuracy)
}

func TestLoad_RejectsInvalidThreshold(t *testing.T) {
	t.Setenv("REPORT_FLAG_MIN_NEGATIVE", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Storage(t *testing.T) {
	t.Run("memory driver with seed", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "memory")
		t.Setenv("SEED_FILE", "configs/seed.yaml")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "memory", cfg.Storage.Driver)
		assert.Equal(t, "configs/seed.yaml", cfg.Storage.SeedFile)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=disable", cfg.DatabaseDSN())
}
