package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema はパイプラインが使用するテーブル定義です
const schema = `
CREATE TABLE IF NOT EXISTS datasets (
    id         UUID PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS examples (
    id         UUID PRIMARY KEY,
    dataset_id UUID NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
    position   INT NOT NULL,
    text       TEXT NOT NULL,
    label      INT NOT NULL,
    split_kind TEXT,
    UNIQUE (dataset_id, position)
);

CREATE INDEX IF NOT EXISTS idx_examples_dataset_split
    ON examples (dataset_id, split_kind);

CREATE TABLE IF NOT EXISTS training_runs (
    id            UUID PRIMARY KEY,
    dataset_id    UUID NOT NULL REFERENCES datasets(id),
    model         TEXT NOT NULL,
    learning_rate DOUBLE PRECISION NOT NULL,
    batch_size    INT NOT NULL,
    epochs        INT NOT NULL,
    weight_decay  DOUBLE PRECISION NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS epoch_metrics (
    run_id   UUID NOT NULL REFERENCES training_runs(id) ON DELETE CASCADE,
    epoch    INT NOT NULL,
    accuracy DOUBLE PRECISION NOT NULL,
    f1       DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (run_id, epoch)
);
`

// EnsureSchema はテーブルが存在しない場合に作成します（冪等）
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("スキーマの作成に失敗: %w", err)
	}
	return nil
}
