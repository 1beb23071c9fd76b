package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tuncerburak97/iskele/internal/audit"
	"github.com/tuncerburak97/iskele/internal/config"
	"github.com/tuncerburak97/iskele/internal/repository/couchbase"
	"github.com/tuncerburak97/iskele/internal/repository/mongo"
	"github.com/tuncerburak97/iskele/internal/repository/oracle"
	"github.com/tuncerburak97/iskele/internal/repository/postgres"
)

// NewRepository builds the audit repository selected by config and runs
// its migrations.
func NewRepository(cfg *config.DBConfig, logger zerolog.Logger) (audit.Repository, error) {
	logger.Info().
		Str("type", cfg.Type).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Connecting to database")

	var (
		repo audit.Repository
		err  error
	)

	switch cfg.Type {
	case "postgres":
		connStr := fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?pool_max_conns=%d&pool_min_conns=%d",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
			cfg.Pool.MaxConns, cfg.Pool.MinConns,
		)
		repo, err = postgres.NewRepository(connStr, logger)

	case "mongodb":
		uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.User, cfg.Password, cfg.Host, cfg.Port)
		repo, err = mongo.NewRepository(uri, cfg.Database)

	case "couchbase":
		connStr := fmt.Sprintf("couchbase://%s:%d", cfg.Host, cfg.Port)
		repo, err = couchbase.NewRepository(connStr, cfg.Database, cfg.User, cfg.Password)

	case "oracle":
		repo, err = oracle.NewRepository(cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	if err != nil {
		return nil, err
	}

	if err := repo.Migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}
