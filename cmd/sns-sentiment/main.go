package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jinford/sns-sentiment/cmd/sns-sentiment/commands"
	"github.com/jinford/sns-sentiment/pkg/report"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	app := &cli.Command{
		Name:  "sns-sentiment",
		Usage: "SNS投稿の感情分類データセット作成・学習・評価パイプライン",
		Commands: []*cli.Command{
			{
				Name:  "dataset",
				Usage: "データセット管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "load",
						Usage: "CSVを読み込んで前処理し統計を表示",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "input",
								Usage:    "入力CSVファイルパス",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "name",
								Usage: "データセット名",
								Value: "default",
							},
							&cli.BoolFlag{
								Name:  "strict",
								Usage: "未知ラベルをエラーとして扱う",
							},
						},
						Action: commands.DatasetLoadAction,
					},
					{
						Name:  "split",
						Usage: "層化抽出でtrain/validation/testに分割",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "input",
								Usage:    "入力CSVファイルパス",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "name",
								Usage: "データセット名",
								Value: "default",
							},
							&cli.StringFlag{
								Name:  "out",
								Usage: "分割CSVの出力先ディレクトリ（省略時は出力しない）",
							},
							&cli.IntFlag{
								Name:  "seed",
								Usage: "分割の乱数シード（省略時は設定値）",
							},
							&cli.BoolFlag{
								Name:  "strict",
								Usage: "未知ラベルをエラーとして扱う",
							},
							&cli.BoolFlag{
								Name:  "store",
								Usage: "分割結果をデータベースに保存",
							},
						},
						Action: commands.DatasetSplitAction,
					},
				},
			},
			{
				Name:  "collect",
				Usage: "投稿収集コマンド",
				Commands: []*cli.Command{
					{
						Name:  "run",
						Usage: "週単位のウィンドウで検索結果を収集",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:  "query",
								Usage: "検索クエリ（省略時は COLLECTOR_QUERY）",
							},
							&cli.StringFlag{
								Name:  "ranges",
								Usage: "日付範囲を列挙したJSONファイルパス",
							},
							&cli.StringFlag{
								Name:  "start",
								Usage: "収集開始日（YYYY-MM-DD、--weeks と併用）",
							},
							&cli.IntFlag{
								Name:  "weeks",
								Usage: "収集する週の数",
								Value: 12,
							},
							&cli.DurationFlag{
								Name:  "login-wait",
								Usage: "手動ログインの待機時間（例: 60s、0で省略）",
								Value: 0,
							},
						},
						Action: commands.CollectRunAction,
					},
				},
			},
			{
				Name:  "annotate",
				Usage: "アノテーションコマンド",
				Commands: []*cli.Command{
					{
						Name:  "run",
						Usage: "収集済み投稿にLLMで感情ラベルを付与",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "input",
								Usage:    "収集済み投稿のJSONファイルパス",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "output",
								Usage:    "出力CSVファイルパス",
								Required: true,
							},
						},
						Action: commands.AnnotateRunAction,
					},
				},
			},
			{
				Name:  "train",
				Usage: "学習コマンド",
				Commands: []*cli.Command{
					{
						Name:  "run",
						Usage: "外部サービスでファインチューニングを実行",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "dataset",
								Usage:    "保存済みデータセット名",
								Required: true,
							},
						},
						Action: commands.TrainRunAction,
					},
					{
						Name:  "history",
						Usage: "最新の学習実行のエポック推移を表示",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "dataset",
								Usage:    "保存済みデータセット名",
								Required: true,
							},
						},
						Action: commands.TrainHistoryAction,
					},
				},
			},
			{
				Name:  "evaluate",
				Usage: "評価コマンド",
				Commands: []*cli.Command{
					{
						Name:  "run",
						Usage: "テスト分割でモデルを評価",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "dataset",
								Usage:    "保存済みデータセット名",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "job",
								Usage:    "学習サービスのジョブID",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "output",
								Usage: "評価結果JSONの出力先（省略時は出力しない）",
							},
						},
						Action: commands.EvaluateRunAction,
					},
				},
			},
			{
				Name:  "report",
				Usage: "レポートコマンド",
				Commands: []*cli.Command{
					{
						Name:  "weekly",
						Usage: "週別ネガティブ率の集計と比較レポートを生成",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringSliceFlag{
								Name:     "file",
								Usage:    "結果CSVファイルパス（複数指定可）",
								Required: true,
							},
							&cli.StringSliceFlag{
								Name:  "label",
								Usage: "系列ラベル（--file と同数）",
							},
							&cli.StringFlag{
								Name:  "negative-marker",
								Usage: "ネガティブ判定に使うラベル値",
								Value: report.DefaultNegativeMarker,
							},
							&cli.StringFlag{
								Name:  "output",
								Usage: "HTMLレポートの出力先（省略時は表のみ）",
							},
						},
						Action: commands.ReportWeeklyAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
