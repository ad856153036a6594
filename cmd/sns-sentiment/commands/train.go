package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jinford/sns-sentiment/pkg/encoder"
	"github.com/jinford/sns-sentiment/pkg/metrics"
	"github.com/jinford/sns-sentiment/pkg/models"
	"github.com/jinford/sns-sentiment/pkg/repository"
	"github.com/jinford/sns-sentiment/pkg/trainer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

// TrainRunAction は外部サービスでファインチューニングを実行するコマンドのアクション
//
// 保存済みの分割を読み出してエンコードし、学習サービスにアップロードする
// エポックごとの検証スコアはGo側で accuracy / 加重F1 に変換して保存する
func TrainRunAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	datasetName := cmd.String("dataset")

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
	runRepo := repository.NewRunRepository(database.Pool)

	ds, err := datasetRepo.GetByName(ctx, datasetName)
	if err != nil {
		return err
	}

	trainBatch, _, err := loadEncodedSplit(ctx, appCtx, datasetRepo, ds.ID, models.SplitTrain)
	if err != nil {
		return err
	}
	valBatch, valLabels, err := loadEncodedSplit(ctx, appCtx, datasetRepo, ds.ID, models.SplitValidation)
	if err != nil {
		return err
	}

	cfg := appCtx.Config.Trainer
	hp := models.Hyperparams{
		LearningRate: cfg.LearningRate,
		BatchSize:    cfg.BatchSize,
		Epochs:       cfg.Epochs,
		WeightDecay:  cfg.WeightDecay,
	}

	remote := trainer.NewRemoteTrainer(cfg.BaseURL)
	if err := remote.Health(ctx); err != nil {
		return fmt.Errorf("学習サービスの疎通確認に失敗: %w", err)
	}

	jobID, err := remote.CreateRun(ctx, cfg.Model, hp)
	if err != nil {
		return fmt.Errorf("学習ジョブの作成に失敗: %w", err)
	}
	appCtx.Logger.Info("学習ジョブを作成しました", "jobId", jobID, "model", cfg.Model)

	if err := remote.UploadBatch(ctx, jobID, models.SplitTrain, trainBatch); err != nil {
		return fmt.Errorf("学習データのアップロードに失敗: %w", err)
	}
	if err := remote.UploadBatch(ctx, jobID, models.SplitValidation, valBatch); err != nil {
		return fmt.Errorf("検証データのアップロードに失敗: %w", err)
	}

	epochs, err := remote.Train(ctx, jobID)
	if err != nil {
		return fmt.Errorf("学習の実行に失敗: %w", err)
	}

	run := &models.TrainingRun{
		ID:          uuid.New(),
		DatasetID:   ds.ID,
		Model:       cfg.Model,
		Hyperparams: hp,
	}
	if err := runRepo.Create(ctx, run); err != nil {
		return err
	}

	fmt.Printf("\n=== 学習結果（run: %s / job: %s）===\n", run.ID, jobID)
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("エポック", "検証Accuracy", "検証F1")

	for _, epoch := range epochs {
		result, err := metrics.Evaluate(epoch.ValidationScores, valLabels)
		if err != nil {
			return fmt.Errorf("エポック%dのメトリクス計算に失敗: %w", epoch.Epoch, err)
		}

		if err := runRepo.AppendEpochMetrics(ctx, &models.EpochMetrics{
			RunID:    run.ID,
			Epoch:    epoch.Epoch,
			Accuracy: result.Accuracy,
			F1:       result.F1,
		}); err != nil {
			return err
		}

		table.Append(
			fmt.Sprintf("%d", epoch.Epoch),
			fmt.Sprintf("%.4f", result.Accuracy),
			fmt.Sprintf("%.4f", result.F1),
		)
	}
	table.Render()

	fmt.Printf("✓ 学習実行 %s を保存しました（ジョブID: %s）\n", run.ID, jobID)
	return nil
}

// TrainHistoryAction はデータセットの最新学習実行のエポック推移を表示するアクション
func TrainHistoryAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	datasetName := cmd.String("dataset")

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
	runRepo := repository.NewRunRepository(database.Pool)

	ds, err := datasetRepo.GetByName(ctx, datasetName)
	if err != nil {
		return err
	}

	run, err := runRepo.Latest(ctx, ds.ID)
	if err != nil {
		return err
	}

	epochMetrics, err := runRepo.ListEpochMetrics(ctx, run.ID)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== 学習履歴（run: %s / model: %s / %s）===\n",
		run.ID, run.Model, run.CreatedAt.Format("2006-01-02 15:04:05"))
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("エポック", "検証Accuracy", "検証F1")
	for _, m := range epochMetrics {
		table.Append(
			fmt.Sprintf("%d", m.Epoch),
			fmt.Sprintf("%.4f", m.Accuracy),
			fmt.Sprintf("%.4f", m.F1),
		)
	}
	table.Render()
	return nil
}

// loadEncodedSplit は指定分割のサンプルを読み出してエンコードします
func loadEncodedSplit(ctx context.Context, appCtx *AppContext, repo *repository.DatasetRepository, datasetID uuid.UUID, kind models.SplitKind) (*models.EncodedBatch, []int, error) {
	examples, err := repo.ListExamples(ctx, datasetID, kind)
	if err != nil {
		return nil, nil, err
	}
	if len(examples) == 0 {
		return nil, nil, fmt.Errorf("分割 %s にサンプルがありません", kind)
	}

	enc, err := encoder.NewTiktokenEncoder(encoder.Options{
		MaxLength: appCtx.Config.Dataset.MaxLength,
		PadToMax:  true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("エンコーダの初期化に失敗: %w", err)
	}

	texts := make([]string, len(examples))
	labels := make([]int, len(examples))
	for i, ex := range examples {
		texts[i] = ex.Text
		labels[i] = ex.Label
	}

	batch, err := enc.Encode(texts, labels)
	if err != nil {
		return nil, nil, fmt.Errorf("分割 %s のエンコードに失敗: %w", kind, err)
	}
	return batch, labels, nil
}
