package database

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/rentroll/internal/config"
	"github.com/stwalsh4118/rentroll/internal/logger"
)

// Test configuration for local PostgreSQL
func getTestConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "rentroll"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		PoolMin:  2,
		PoolMax:  5,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// openOrSkip connects to the integration database, skipping when it is unreachable.
func openOrSkip(t *testing.T, cfg config.DatabaseConfig) *Database {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewPostgresPool(ctx, cfg, logger.Nop())
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	return db
}

func TestBuildDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db.internal",
		Port:     "5433",
		Name:     "rentroll",
		User:     "app",
		Password: "p@ss:word/1",
	}

	dsn := BuildDSN(cfg)

	assert.True(t, strings.HasPrefix(dsn, "postgres://app:"))
	assert.Contains(t, dsn, "@db.internal:5433/rentroll")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.NotContains(t, dsn, "p@ss:word/1", "password must be escaped")
}

func TestGormConfig(t *testing.T) {
	cfg := GormConfig(logger.Nop())
	assert.True(t, cfg.TranslateError)
	assert.NotNil(t, cfg.Logger)
	assert.Equal(t, time.UTC, cfg.NowFunc().Location())

	bare := GormConfig(nil)
	assert.Nil(t, bare.Logger)
}

func TestNewPostgresPool_Success(t *testing.T) {
	cfg := getTestConfig()
	db := openOrSkip(t, cfg)
	defer db.Close()

	assert.NotNil(t, db.Pool, "Expected Pool to be initialized")
	assert.NotNil(t, db.DB, "Expected gorm handle to be initialized")
	assert.NotNil(t, db.Stats())
}

func TestNewPostgresPool_InvalidHost(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	cfg := getTestConfig()
	cfg.Host = "invalid-host-that-does-not-exist"

	_, err := NewPostgresPool(ctx, cfg, logger.Nop())
	assert.Error(t, err, "Expected error when connecting to invalid host")
}

func TestPing_AfterClose(t *testing.T) {
	db := openOrSkip(t, getTestConfig())

	db.Close()

	err := db.Ping(context.Background())
	assert.Error(t, err, "Expected ping to fail after pool is closed")
}

func TestClose_MultipleCalls(t *testing.T) {
	db := openOrSkip(t, getTestConfig())

	// Close multiple times should not panic
	db.Close()
	db.Close()
}

func TestMigrate_Postgres(t *testing.T) {
	db := openOrSkip(t, getTestConfig())
	defer db.Close()

	require.NoError(t, Migrate(db.DB))
	// Running twice is a no-op
	require.NoError(t, Migrate(db.DB))
	assert.True(t, db.DB.Migrator().HasIndex("leases", ActiveLeaseIndex))
}

func TestStats_PoolConfiguration(t *testing.T) {
	cfg := getTestConfig()
	cfg.PoolMin = 3
	cfg.PoolMax = 8

	db := openOrSkip(t, cfg)
	defer db.Close()

	stats := db.Stats()
	require.NotNil(t, stats)
	assert.Equal(t, int32(8), stats.MaxConns())
}
