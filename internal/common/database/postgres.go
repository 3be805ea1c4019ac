package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"voice-command-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// VoiceCommandLogDDL creates the audit table written by record-voice-command.
const VoiceCommandLogDDL = `
CREATE TABLE IF NOT EXISTS voice_command_log (
	command_id  TEXT PRIMARY KEY,
	action      TEXT NOT NULL,
	target      TEXT NOT NULL DEFAULT '',
	payload     JSONB,
	result_kind TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	host_url    TEXT NOT NULL DEFAULT '',
	feedback    TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// EnsureSchema creates the tables the workers write to.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, VoiceCommandLogDDL); err != nil {
		return fmt.Errorf("create voice_command_log: %w", err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
