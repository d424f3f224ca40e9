// internal/db/postgres.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresDB carries both handles used by the repositories: the pgx pool for most tables and
// a database/sql handle (pgx stdlib driver) for activity logs and the sqlx-backed VDCR store.
type PostgresDB struct {
	Pool *pgxpool.Pool
	DB   *sql.DB
}

// PoolSize bounds the pgx pool. The database/sql handle gets half of MaxConns.
type PoolSize struct {
	MaxConns int
	MinConns int
}

func NewPostgresDB(databaseURL string, size PoolSize) (*PostgresDB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = int32(size.MaxConns)
	config.MinConns = int32(size.MinConns)
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to open sql DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(max(size.MaxConns/2, 1))
	sqlDB.SetMaxIdleConns(max(size.MinConns, 1))
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		pool.Close()
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sql DB: %w", err)
	}

	log.Printf("[DB] ✅ Connected to PostgreSQL (pool %d-%d)", size.MinConns, size.MaxConns)
	return &PostgresDB{Pool: pool, DB: sqlDB}, nil
}

// Ping checks both handles. The health endpoint reports the result.
func (db *PostgresDB) Ping(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return err
	}
	return db.DB.PingContext(ctx)
}

func (db *PostgresDB) Close() {
	if db.DB != nil {
		db.DB.Close()
	}
	if db.Pool != nil {
		db.Pool.Close()
		log.Println("[DB] PostgreSQL connection closed")
	}
}
