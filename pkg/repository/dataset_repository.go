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

// ErrDatasetNotFound は指定されたデータセットが存在しない場合のエラー
var ErrDatasetNotFound = errors.New("dataset not found")

// DatasetRepository はデータセットとサンプルの永続化を提供します
type DatasetRepository struct {
	pool *pgxpool.Pool
}

// NewDatasetRepository は新しい DatasetRepository を作成します
func NewDatasetRepository(pool *pgxpool.Pool) *DatasetRepository {
	return &DatasetRepository{pool: pool}
}

// Create はデータセットを登録します
func (r *DatasetRepository) Create(ctx context.Context, ds *models.Dataset) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO datasets (id, name) VALUES ($1, $2)`,
		ds.ID, ds.Name,
	)
	if err != nil {
		return fmt.Errorf("データセットの登録に失敗: %w", err)
	}
	return nil
}

// GetByName は名前でデータセットを取得します（サンプルは含まない）
func (r *DatasetRepository) GetByName(ctx context.Context, name string) (*models.Dataset, error) {
	ds := &models.Dataset{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM datasets WHERE name = $1`,
		name,
	).Scan(&ds.ID, &ds.Name, &ds.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
		}
		return nil, fmt.Errorf("データセットの取得に失敗: %w", err)
	}
	return ds, nil
}

// InsertExamples はサンプル列を分割種別付きで一括挿入します
// position は入力順をそのまま保存する
func (r *DatasetRepository) InsertExamples(ctx context.Context, datasetID uuid.UUID, examples []models.LabeledExample, kind models.SplitKind, offset int) error {
	batch := &pgx.Batch{}
	for i, ex := range examples {
		batch.Queue(
			`INSERT INTO examples (id, dataset_id, position, text, label, split_kind)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			ex.ID, datasetID, offset+i, ex.Text, ex.Label, string(kind),
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range examples {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("サンプルの挿入に失敗: %w", err)
		}
	}
	return nil
}

// SaveSplit はデータセット本体と3分割のサンプルをまとめて保存します
func (r *DatasetRepository) SaveSplit(ctx context.Context, ds *models.Dataset, split *models.Split) error {
	if err := r.Create(ctx, ds); err != nil {
		return err
	}

	offset := 0
	for _, part := range []struct {
		kind models.SplitKind
		data *models.Dataset
	}{
		{models.SplitTrain, split.Train},
		{models.SplitValidation, split.Validation},
		{models.SplitTest, split.Test},
	} {
		if err := r.InsertExamples(ctx, ds.ID, part.data.Examples, part.kind, offset); err != nil {
			return err
		}
		offset += part.data.Len()
	}
	return nil
}

// ListExamples はデータセットの指定分割のサンプルを position 順に返します
func (r *DatasetRepository) ListExamples(ctx context.Context, datasetID uuid.UUID, kind models.SplitKind) ([]models.LabeledExample, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, text, label FROM examples
		 WHERE dataset_id = $1 AND split_kind = $2
		 ORDER BY position`,
		datasetID, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("サンプルの取得に失敗: %w", err)
	}
	defer rows.Close()

	var examples []models.LabeledExample
	for rows.Next() {
		var ex models.LabeledExample
		if err := rows.Scan(&ex.ID, &ex.Text, &ex.Label); err != nil {
			return nil, fmt.Errorf("サンプル行のスキャンに失敗: %w", err)
		}
		examples = append(examples, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("サンプルの走査に失敗: %w", err)
	}
	return examples, nil
}
