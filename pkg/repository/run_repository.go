package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jinford/sns-sentiment/pkg/models"
)

// ErrRunNotFound は指定された学習実行が存在しない場合のエラー
var ErrRunNotFound = errors.New("training run not found")

// RunRepository は学習実行とエポックメトリクスの永続化を提供します
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository は新しい RunRepository を作成します
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// Create は学習実行を登録します
func (r *RunRepository) Create(ctx context.Context, run *models.TrainingRun) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO training_runs (id, dataset_id, model, learning_rate, batch_size, epochs, weight_decay)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.DatasetID, run.Model,
		run.Hyperparams.LearningRate, run.Hyperparams.BatchSize,
		run.Hyperparams.Epochs, run.Hyperparams.WeightDecay,
	)
	if err != nil {
		return fmt.Errorf("学習実行の登録に失敗: %w", err)
	}
	return nil
}

// Get はIDで学習実行を取得します
func (r *RunRepository) Get(ctx context.Context, id uuid.UUID) (*models.TrainingRun, error) {
	run := &models.TrainingRun{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, dataset_id, model, learning_rate, batch_size, epochs, weight_decay, created_at
		 FROM training_runs WHERE id = $1`,
		id,
	).Scan(
		&run.ID, &run.DatasetID, &run.Model,
		&run.Hyperparams.LearningRate, &run.Hyperparams.BatchSize,
		&run.Hyperparams.Epochs, &run.Hyperparams.WeightDecay,
		&run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("学習実行の取得に失敗: %w", err)
	}
	return run, nil
}

// Latest はデータセットに対する最新の学習実行を取得します
func (r *RunRepository) Latest(ctx context.Context, datasetID uuid.UUID) (*models.TrainingRun, error) {
	run := &models.TrainingRun{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, dataset_id, model, learning_rate, batch_size, epochs, weight_decay, created_at
		 FROM training_runs WHERE dataset_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		datasetID,
	).Scan(
		&run.ID, &run.DatasetID, &run.Model,
		&run.Hyperparams.LearningRate, &run.Hyperparams.BatchSize,
		&run.Hyperparams.Epochs, &run.Hyperparams.WeightDecay,
		&run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: dataset %s", ErrRunNotFound, datasetID)
		}
		return nil, fmt.Errorf("学習実行の取得に失敗: %w", err)
	}
	return run, nil
}

// AppendEpochMetrics は1エポック分の検証メトリクスを追記します
func (r *RunRepository) AppendEpochMetrics(ctx context.Context, m *models.EpochMetrics) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO epoch_metrics (run_id, epoch, accuracy, f1) VALUES ($1, $2, $3, $4)`,
		m.RunID, m.Epoch, m.Accuracy, m.F1,
	)
	if err != nil {
		return fmt.Errorf("エポックメトリクスの保存に失敗: %w", err)
	}
	return nil
}

// ListEpochMetrics は学習実行のメトリクスをエポック順に返します
func (r *RunRepository) ListEpochMetrics(ctx context.Context, runID uuid.UUID) ([]models.EpochMetrics, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT run_id, epoch, accuracy, f1 FROM epoch_metrics
		 WHERE run_id = $1 ORDER BY epoch`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("エポックメトリクスの取得に失敗: %w", err)
	}
	defer rows.Close()

	var list []models.EpochMetrics
	for rows.Next() {
		var m models.EpochMetrics
		if err := rows.Scan(&m.RunID, &m.Epoch, &m.Accuracy, &m.F1); err != nil {
			return nil, fmt.Errorf("メトリクス行のスキャンに失敗: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("メトリクスの走査に失敗: %w", err)
	}
	return list, nil
}
