// Package trainer は外部ファインチューニングサービスとの境界を定義します
//
// 最適化・チェックポイント・学習ループ本体はすべて外部サービス側にあり、
// Go側はエンコード済みバッチの送信と、検証スコアに対するメトリクス計算
// だけを担います
package trainer

import (
	"context"

	"github.com/jinford/sns-sentiment/pkg/models"
)

// EpochResult は1エポックの学習結果です
// ValidationScores は検証セットに対するクラス別スコア行列（N × クラス数）で、
// メトリクスの計算はGo側（pkg/metrics）で行う
type EpochResult struct {
	Epoch            int         `json:"epoch"`
	ValidationScores [][]float64 `json:"validation_scores"`
}

// Trainer は学習サービスが満たすべき狭いインターフェースです
type Trainer interface {
	// Health はサービスの稼働状態を確認します
	Health(ctx context.Context) error

	// CreateRun は学習ジョブを作成し、サービス側のジョブIDを返します
	CreateRun(ctx context.Context, model string, hp models.Hyperparams) (string, error)

	// UploadBatch はエンコード済みバッチを指定分割としてアップロードします
	UploadBatch(ctx context.Context, jobID string, kind models.SplitKind, batch *models.EncodedBatch) error

	// Train は学習を実行し、エポックごとの検証スコアを返します
	Train(ctx context.Context, jobID string) ([]EpochResult, error)

	// Predict は学習済みモデルでバッチのクラス別スコアを推論します
	Predict(ctx context.Context, jobID string, batch *models.EncodedBatch) ([][]float64, error)
}
