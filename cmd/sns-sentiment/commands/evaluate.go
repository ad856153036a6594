package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jinford/sns-sentiment/pkg/metrics"
	"github.com/jinford/sns-sentiment/pkg/models"
	"github.com/jinford/sns-sentiment/pkg/repository"
	"github.com/jinford/sns-sentiment/pkg/trainer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

// EvaluateRunAction はテスト分割でモデルを評価するコマンドのアクション
func EvaluateRunAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	datasetName := cmd.String("dataset")
	jobID := cmd.String("job")
	outputPath := cmd.String("output")

	appCtx, err := NewAppContext(envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	database, err := appCtx.Database(ctx)
	if err != nil {
		return err
	}
	datasetRepo := repository.NewDatasetRepository(database.Pool)

	ds, err := datasetRepo.GetByName(ctx, datasetName)
	if err != nil {
		return err
	}

	testBatch, testLabels, err := loadEncodedSplit(ctx, appCtx, datasetRepo, ds.ID, models.SplitTest)
	if err != nil {
		return err
	}

	cfg := appCtx.Config.Trainer
	remote := trainer.NewRemoteTrainer(cfg.BaseURL)
	if err := remote.Health(ctx); err != nil {
		return fmt.Errorf("学習サービスの疎通確認に失敗: %w", err)
	}

	scores, err := remote.Predict(ctx, jobID, testBatch)
	if err != nil {
		return fmt.Errorf("推論の実行に失敗: %w", err)
	}

	result, err := metrics.Evaluate(scores, testLabels)
	if err != nil {
		return fmt.Errorf("メトリクスの計算に失敗: %w", err)
	}

	fmt.Printf("\n=== 評価結果（dataset: %s / job: %s）===\n", ds.Name, jobID)
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("指標", "値")
	table.Append("テスト件数", fmt.Sprintf("%d", len(testLabels)))
	table.Append("Accuracy", fmt.Sprintf("%.4f", result.Accuracy))
	table.Append("加重F1", fmt.Sprintf("%.4f", result.F1))
	table.Render()

	if outputPath != "" {
		if err := exportMetricsJSON(outputPath, jobID, ds.Name, len(testLabels), result); err != nil {
			return err
		}
		fmt.Printf("✓ 評価結果を %s に出力しました\n", outputPath)
	}
	return nil
}

// exportMetricsJSON は評価結果をJSONファイルに書き出します
func exportMetricsJSON(path, jobID, datasetName string, testSize int, result *models.MetricsResult) error {
	payload := struct {
		JobID    string  `json:"job_id"`
		Dataset  string  `json:"dataset"`
		TestSize int     `json:"test_size"`
		Accuracy float64 `json:"accuracy"`
		F1       float64 `json:"f1"`
	}{
		JobID:    jobID,
		Dataset:  datasetName,
		TestSize: testSize,
		Accuracy: result.Accuracy,
		F1:       result.F1,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("評価結果のシリアライズに失敗: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("評価結果の書き込みに失敗: %w", err)
	}
	return nil
}
