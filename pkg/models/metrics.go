package models

import (
	"time"

	"github.com/google/uuid"
)

// MetricsResult は評価指標の計算結果です
// Accuracy・F1 ともに常に [0,1] の範囲に収まります
type MetricsResult struct {
	Accuracy float64 `json:"accuracy"`
	F1       float64 `json:"f1"`
}

// Hyperparams は学習ジョブのハイパーパラメータです
type Hyperparams struct {
	LearningRate float64 `json:"learning_rate"`
	BatchSize    int     `json:"batch_size"`
	Epochs       int     `json:"epochs"`
	WeightDecay  float64 `json:"weight_decay"`
}

// TrainingRun は1回のファインチューニング実行を表します
type TrainingRun struct {
	ID          uuid.UUID   `json:"id"`
	DatasetID   uuid.UUID   `json:"datasetId"`
	Model       string      `json:"model"`
	Hyperparams Hyperparams `json:"hyperparams"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// EpochMetrics は1エポック分の検証メトリクスです
type EpochMetrics struct {
	RunID    uuid.UUID `json:"runId"`
	Epoch    int       `json:"epoch"`
	Accuracy float64   `json:"accuracy"`
	F1       float64   `json:"f1"`
}
