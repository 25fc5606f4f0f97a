package builder

import (
	"context"
	"fmt"

	"github.com/futig/mini-rag/internal/config"
	"github.com/futig/mini-rag/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// setupRegistry picks the document registry: PostgreSQL when DATABASE_URL is set, memory otherwise.
// The returned pool is nil for the in-memory registry
func setupRegistry(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.DocumentRepository, *pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL is empty, keeping the document registry in memory")
		return repository.NewDocumentMemory(), nil, nil
	}

	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("setup database: %w", err)
	}

	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	return repository.NewDocumentPostgres(db), db, nil
}

func setupDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MinConns = int32(cfg.DBMinConns)
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.DBHealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection pool established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
		zap.Duration("max_conn_lifetime", poolConfig.MaxConnLifetime),
	)

	return pool, nil
}
