package oracle

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	ora "github.com/sijms/go-ora/v2"

	"github.com/tuncerburak97/iskele/internal/audit"
	"github.com/tuncerburak97/iskele/internal/repository/migrations"
)

type Repository struct {
	DB *sql.DB
}

func NewRepository(host string, port int, service, user, password string) (*Repository, error) {
	connStr := ora.BuildUrl(host, port, service, user, password, nil)

	db, err := sql.Open("oracle", connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to Oracle: %w", err)
	}

	return &Repository{DB: db}, nil
}

func (r *Repository) SaveEntries(ctx context.Context, entries []*audit.Entry) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO audit_log (
			id, request_id, stage, timestamp, method, url, path,
			headers, body, client_ip, user_agent, status_code,
			duration_ms, content_length, error
		) VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11, :12, :13, :14, :15)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		headers, err := json.Marshal(entry.Headers)
		if err != nil {
			return err
		}

		_, err = stmt.ExecContext(ctx,
			entry.ID, entry.RequestID, entry.Stage, entry.Timestamp,
			entry.Method, entry.URL, entry.Path, headers,
			string(entry.Body), entry.ClientIP, entry.UserAgent,
			entry.StatusCode, entry.Duration.Milliseconds(),
			entry.ContentLength, entry.Error,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, migrations.OracleSchema); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.DB.Close()
}
