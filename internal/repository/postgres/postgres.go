package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"github.com/tuncerburak97/iskele/internal/audit"
	"github.com/tuncerburak97/iskele/internal/repository/migrations"
)

type Repository struct {
	Pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewRepository(connStr string, logger zerolog.Logger) (*Repository, error) {
	pool, err := pgxpool.Connect(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	return &Repository{Pool: pool, logger: logger}, nil
}

func (r *Repository) SaveEntries(ctx context.Context, entries []*audit.Entry) error {
	batch := &pgx.Batch{}

	for _, entry := range entries {
		headers, err := json.Marshal(entry.Headers)
		if err != nil {
			r.logger.Error().Err(err).Msg("Failed to marshal headers")
			return err
		}
		batch.Queue(
			`INSERT INTO audit_log (
				id, request_id, stage, timestamp, method, url, path,
				path_params, query_params, headers, body, client_ip,
				user_agent, status_code, duration, content_length, error
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			entry.ID, entry.RequestID, entry.Stage, entry.Timestamp, entry.Method,
			entry.URL, entry.Path, entry.PathParams, entry.QueryParams, headers,
			entry.Body, entry.ClientIP, entry.UserAgent, entry.StatusCode,
			entry.Duration, entry.ContentLength, entry.Error,
		)
	}

	br := r.Pool.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		r.logger.Error().Err(err).Int("count", len(entries)).Msg("Failed to save audit entries")
		return err
	}

	return nil
}

func (r *Repository) Migrate(ctx context.Context) error {
	r.logger.Info().Msg("Starting PostgreSQL migrations")

	if _, err := r.Pool.Exec(ctx, migrations.PostgresSchema); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	r.logger.Info().Msg("PostgreSQL migrations completed")
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.Pool.Ping(ctx)
}

func (r *Repository) Close() error {
	r.Pool.Close()
	return nil
}
