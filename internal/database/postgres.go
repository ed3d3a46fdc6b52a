package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stwalsh4118/rentroll/internal/config"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Database owns the pgx connection pool and the gorm handle layered on it.
type Database struct {
	Pool  *pgxpool.Pool
	DB    *gorm.DB
	sqlDB *sql.DB
}

// NewPostgresPool creates a PostgreSQL connection pool using pgx, tests the
// connection and opens gorm over the same pool.
func NewPostgresPool(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*Database, error) {
	// Parse connection string and create pool config
	poolConfig, err := pgxpool.ParseConfig(BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Configure connection pool settings
	poolConfig.MinConns = int32(cfg.PoolMin)
	poolConfig.MaxConns = int32(cfg.PoolMax)

	// Set connection timeouts
	poolConfig.ConnConfig.ConnectTimeout = 5 * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Second
	poolConfig.MaxConnLifetime = 1 * time.Hour

	// Health check period (how often to check idle connections)
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// Create the connection pool
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection immediately
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), GormConfig(log))
	if err != nil {
		_ = sqlDB.Close()
		pool.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return &Database{Pool: pool, DB: gdb, sqlDB: sqlDB}, nil
}

// FromGorm wraps an already opened gorm handle, such as an in-memory SQLite
// database. Pool is nil in that case.
func FromGorm(gdb *gorm.DB) (*Database, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	return &Database{DB: gdb, sqlDB: sqlDB}, nil
}

// GormConfig returns the gorm settings shared by every dialect.
// Driver errors are translated so unique violations surface as
// gorm.ErrDuplicatedKey.
func GormConfig(log *logger.Logger) *gorm.Config {
	cfg := &gorm.Config{
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
	if log != nil {
		cfg.Logger = NewGormLogger(log)
	}
	return cfg
}

// BuildDSN renders a postgres URL with credentials escaped.
func BuildDSN(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Ping checks if the database connection is alive.
func (db *Database) Ping(ctx context.Context) error {
	if db.Pool != nil {
		return db.Pool.Ping(ctx)
	}
	if db.sqlDB == nil {
		return fmt.Errorf("database not initialized")
	}
	return db.sqlDB.PingContext(ctx)
}

// Close releases the gorm handle and then the pool.
// Safe to call more than once.
func (db *Database) Close() {
	if db.sqlDB != nil {
		_ = db.sqlDB.Close()
	}
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Stats returns statistics about the connection pool.
func (db *Database) Stats() *pgxpool.Stat {
	if db.Pool == nil {
		return nil
	}
	return db.Pool.Stat()
}
