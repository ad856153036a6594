package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/jinford/sns-sentiment/pkg/annotator"
	"github.com/jinford/sns-sentiment/pkg/collector"
	"github.com/jinford/sns-sentiment/pkg/models"
	"github.com/urfave/cli/v3"
)

// AnnotateRunAction は収集済み投稿にLLMで感情ラベルを付与するコマンドのアクション
func AnnotateRunAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	inputFile := cmd.String("input")
	outputFile := cmd.String("output")

	appCtx, err := NewAppContext(envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	posts, err := collector.LoadPosts(inputFile)
	if err != nil {
		return err
	}

	// テキストが欠損した投稿はアノテーション対象から外す
	texts := make([]string, 0, len(posts))
	for _, post := range posts {
		if post.Text == nil || *post.Text == "" {
			continue
		}
		texts = append(texts, *post.Text)
	}
	if len(texts) == 0 {
		return fmt.Errorf("アノテーション対象の投稿がありません: %s", inputFile)
	}

	a, err := annotator.New(
		appCtx.Config.OpenAI.APIKey,
		appCtx.Config.OpenAI.Model,
		appCtx.Config.Dataset.LabelMapping,
	)
	if err != nil {
		return fmt.Errorf("アノテータの初期化に失敗: %w", err)
	}

	records, err := a.Annotate(ctx, texts)
	if err != nil {
		return fmt.Errorf("アノテーションに失敗: %w", err)
	}

	rows := make([]models.AnnotatedRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.AnnotatedRow{Text: rec.Text, Sentiment: rec.Sentiment})
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("出力ファイルの作成に失敗: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("出力ファイルの書き込みに失敗: %w", err)
	}

	fmt.Printf("✓ %d件の投稿を %s にアノテーション出力しました\n", len(rows), outputFile)
	return nil
}
