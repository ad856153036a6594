package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/jinford/sns-sentiment/pkg/dataset"
	"github.com/jinford/sns-sentiment/pkg/models"
	"github.com/jinford/sns-sentiment/pkg/repository"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

// DatasetLoadAction はCSVデータセットを読み込んで統計を表示するコマンドのアクション
func DatasetLoadAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	inputFile := cmd.String("input")
	name := cmd.String("name")

	appCtx, err := NewAppContext(envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	loader := appCtx.newLoader(cmd.Bool("strict"))
	result, err := loader.LoadCSVFile(inputFile, name)
	if err != nil {
		return fmt.Errorf("データセットの読み込みに失敗: %w", err)
	}

	displayDatasetStats(result, appCtx.Config.Dataset.LabelMapping)
	return nil
}

// DatasetSplitAction はデータセットを層化分割するコマンドのアクション
func DatasetSplitAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	inputFile := cmd.String("input")
	name := cmd.String("name")
	outDir := cmd.String("out")
	store := cmd.Bool("store")

	appCtx, err := NewAppContext(envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	seed := appCtx.Config.Dataset.Seed
	if cmd.IsSet("seed") {
		seed = int64(cmd.Int("seed"))
	}

	loader := appCtx.newLoader(cmd.Bool("strict"))
	result, err := loader.LoadCSVFile(inputFile, name)
	if err != nil {
		return fmt.Errorf("データセットの読み込みに失敗: %w", err)
	}

	splitter := dataset.NewSplitter(appCtx.Config.Dataset.TrainRatio)
	split, err := splitter.Split(result.Dataset, seed)
	if err != nil {
		return fmt.Errorf("データセットの分割に失敗: %w", err)
	}

	displaySplitTable(result.Dataset, split)

	if outDir != "" {
		if err := exportSplit(split, outDir); err != nil {
			return err
		}
		fmt.Printf("✓ 分割済みCSVを %s に出力しました\n", outDir)
	}

	if store {
		database, err := appCtx.Database(ctx)
		if err != nil {
			return err
		}
		repo := repository.NewDatasetRepository(database.Pool)
		if err := repo.SaveSplit(ctx, result.Dataset, split); err != nil {
			return err
		}
		fmt.Printf("✓ データセット %s（ID: %s）を保存しました\n", result.Dataset.Name, result.Dataset.ID)
	}

	return nil
}

// displayDatasetStats は読み込み結果をテーブル形式で表示します
func displayDatasetStats(result *dataset.LoadResult, labelMapping map[string]int) {
	fmt.Println("\n=== データセット統計 ===")

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("項目", "値")
	table.Append("有効サンプル数", fmt.Sprintf("%d", result.Dataset.Len()))
	table.Append("除外レコード数", fmt.Sprintf("%d", result.Skipped))

	counts := result.Dataset.LabelCounts()
	for _, name := range sortedLabelNames(labelMapping) {
		id := labelMapping[name]
		table.Append(fmt.Sprintf("ラベル %s (%d)", name, id), fmt.Sprintf("%d", counts[id]))
	}
	table.Render()

	if len(result.UnknownLabels) > 0 {
		fmt.Println("\n=== 未知ラベルの内訳 ===")
		unknownTable := tablewriter.NewWriter(os.Stdout)
		unknownTable.Header("ラベル", "件数")
		for label, count := range result.UnknownLabels {
			unknownTable.Append(label, fmt.Sprintf("%d", count))
		}
		unknownTable.Render()
	}
}

// displaySplitTable は分割ごとのサンプル数とラベル比率を表示します
func displaySplitTable(full *models.Dataset, split *models.Split) {
	fmt.Println("\n=== 層化分割の結果 ===")

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("分割", "サンプル数", "ラベル比率")

	for _, part := range []struct {
		name string
		ds   *models.Dataset
	}{
		{"full", full},
		{"train", split.Train},
		{"validation", split.Validation},
		{"test", split.Test},
	} {
		table.Append(part.name, fmt.Sprintf("%d", part.ds.Len()), formatRatios(part.ds))
	}
	table.Render()
}

// formatRatios はラベルごとの比率を "0:60.0% 1:40.0%" 形式にします
func formatRatios(ds *models.Dataset) string {
	if ds.Len() == 0 {
		return "-"
	}

	counts := ds.LabelCounts()
	labels := make([]int, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	s := ""
	for i, label := range labels {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d:%.1f%%", label, float64(counts[label])/float64(ds.Len())*100)
	}
	return s
}

// exportSplit は3分割をそれぞれCSVファイルに出力します
func exportSplit(split *models.Split, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗: %w", err)
	}

	for _, part := range []struct {
		name string
		ds   *models.Dataset
	}{
		{"train", split.Train},
		{"validation", split.Validation},
		{"test", split.Test},
	} {
		rows := make([]models.SplitExportRow, 0, part.ds.Len())
		for _, ex := range part.ds.Examples {
			rows = append(rows, models.SplitExportRow{Text: ex.Text, Label: ex.Label})
		}

		path := filepath.Join(outDir, part.name+".csv")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("%s の作成に失敗: %w", path, err)
		}
		if err := gocsv.MarshalFile(&rows, f); err != nil {
			f.Close()
			return fmt.Errorf("%s の書き込みに失敗: %w", path, err)
		}
		f.Close()
	}
	return nil
}

func sortedLabelNames(mapping map[string]int) []string {
	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return mapping[names[i]] < mapping[names[j]] })
	return names
}
