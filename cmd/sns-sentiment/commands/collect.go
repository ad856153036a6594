package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jinford/sns-sentiment/pkg/collector"
	"github.com/urfave/cli/v3"
)

// loginURL は手動ログインに使う画面
const loginURL = "https://twitter.com/login"

// CollectRunAction は週単位のウィンドウで投稿を収集するコマンドのアクション
func CollectRunAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	rangesFile := cmd.String("ranges")
	startDate := cmd.String("start")
	weeks := cmd.Int("weeks")
	loginWait := cmd.Duration("login-wait")

	appCtx, err := NewAppContext(envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	query := cmd.String("query")
	if query == "" {
		query = appCtx.Config.Collector.Query
	}
	if query == "" {
		return fmt.Errorf("--query または COLLECTOR_QUERY の指定が必要です")
	}

	var windows []collector.DateRange
	switch {
	case rangesFile != "":
		windows, err = collector.LoadRanges(rangesFile)
		if err != nil {
			return err
		}
	case startDate != "":
		start, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return fmt.Errorf("開始日のパースに失敗: %w", err)
		}
		windows = collector.WeekRanges(start, weeks)
	default:
		return fmt.Errorf("--ranges または --start の指定が必要です")
	}

	progress, err := collector.LoadProgress(appCtx.Config.Collector.ProgressFile)
	if err != nil {
		return err
	}

	c, err := collector.New(appCtx.Config.Collector.Headless)
	if err != nil {
		return fmt.Errorf("ブラウザの初期化に失敗: %w", err)
	}
	defer c.Close()

	if loginWait > 0 {
		if err := c.WaitForLogin(loginURL, loginWait); err != nil {
			return err
		}
	}

	if err := c.Run(ctx, query, windows, appCtx.Config.Collector.OutputDir, progress); err != nil {
		return err
	}

	fmt.Printf("✓ %d個のウィンドウの収集が完了しました\n", len(windows))
	return nil
}
