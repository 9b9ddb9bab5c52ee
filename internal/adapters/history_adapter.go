package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"puter4image-web/internal/domain"

	_ "github.com/lib/pq"
)

const createGenerationsTable = `
CREATE TABLE IF NOT EXISTS image_generations (
	id          BIGSERIAL PRIMARY KEY,
	prompt      TEXT        NOT NULL,
	model       TEXT        NOT NULL,
	outcome     TEXT        NOT NULL,
	image_url   TEXT        NOT NULL DEFAULT '',
	error       TEXT        NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)`

const insertGeneration = `
INSERT INTO image_generations (prompt, model, outcome, image_url, error, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// maxStoredURLLength を超える URL (主に data: URL) は保存しません。
const maxStoredURLLength = 2048

// HistoryRecorder は生成結果を永続化します。
type HistoryRecorder interface {
	Record(ctx context.Context, g domain.Generation) error
	Close() error
}

// PostgresHistory は生成履歴を PostgreSQL に保存します。
type PostgresHistory struct {
	db *sql.DB
}

// NewPostgresHistory は接続を確認し、テーブルが無ければ作成します。
func NewPostgresHistory(ctx context.Context, dsn string) (*PostgresHistory, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createGenerationsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create image_generations table: %w", err)
	}
	return &PostgresHistory{db: db}, nil
}

func (h *PostgresHistory) Record(ctx context.Context, g domain.Generation) error {
	_, err := h.db.ExecContext(ctx, insertGeneration,
		g.Prompt, g.Model, string(g.Outcome), storableURL(g.ImageURL), g.Error, g.StartedAt, g.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert generation: %w", err)
	}
	return nil
}

func (h *PostgresHistory) Close() error {
	return h.db.Close()
}

func storableURL(u string) string {
	if len(u) > maxStoredURLLength {
		return ""
	}
	return u
}

// NopHistory は DATABASE_URL が未設定の場合に使われ、ログ出力のみを行います。
type NopHistory struct{}

func (NopHistory) Record(ctx context.Context, g domain.Generation) error {
	slog.DebugContext(ctx, "History disabled, skipping record", "outcome", g.Outcome)
	return nil
}

func (NopHistory) Close() error { return nil }
