package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/jinford/sns-sentiment/pkg/report"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

// ReportWeeklyAction は週ごとのネガティブ率を集計して比較するコマンドのアクション
//
// 複数の結果CSVを同じ週軸に揃えて並べる。ラベル未指定時はファイルパスを使う
func ReportWeeklyAction(ctx context.Context, cmd *cli.Command) error {
	files := cmd.StringSlice("file")
	labels := cmd.StringSlice("label")
	marker := cmd.String("negative-marker")
	outputPath := cmd.String("output")

	if len(files) == 0 {
		return fmt.Errorf("結果CSVファイルを1つ以上指定してください")
	}
	if len(labels) == 0 {
		labels = files
	}
	if len(labels) != len(files) {
		return fmt.Errorf("ラベル数(%d)とファイル数(%d)が一致しません", len(labels), len(files))
	}

	series, err := report.Compare(files, labels, marker)
	if err != nil {
		return err
	}

	weeks := report.AllWeeks(series)

	fmt.Println("\n=== 週別ネガティブ率 ===")
	table := tablewriter.NewWriter(os.Stdout)
	header := []any{"週"}
	for _, s := range series {
		header = append(header, s.Label)
	}
	table.Header(header...)

	for _, week := range weeks {
		row := []any{fmt.Sprintf("Week %d", week)}
		for _, s := range series {
			row = append(row, formatWeekCell(s, week))
		}
		table.Append(row...)
	}
	table.Render()

	if outputPath != "" {
		if err := report.WriteHTML(series, outputPath); err != nil {
			return err
		}
		fmt.Printf("✓ レポートを %s に出力しました\n", outputPath)
	}
	return nil
}

func formatWeekCell(s report.Series, week int) string {
	for _, w := range s.Weeks {
		if w.Week == week {
			return fmt.Sprintf("%.1f%% (%d/%d)", w.Percentage, w.Negative, w.Total)
		}
	}
	return "-"
}
