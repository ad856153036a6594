// Package collector はSNSの検索結果を週単位のウィンドウで収集します
//
// 各ウィンドウの投稿は weekN.json に保存され、progress.json に完了済み
// ウィンドウが記録されるため、中断しても再実行で続きから収集できます
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/jinford/sns-sentiment/pkg/models"
)

const (
	// maxScrolls は1ウィンドウあたりのスクロール回数の上限
	maxScrolls = 20

	// scrollInterval はスクロール間の待機時間
	scrollInterval = 3 * time.Second

	// pageLoadWait は検索ページ読み込み後の待機時間
	pageLoadWait = 5 * time.Second
)

// postTextJS は表示中の投稿テキストをすべて取り出すスクリプト
const postTextJS = `Array.from(document.querySelectorAll('[data-testid="tweetText"]')).map(e => e.innerText)`

// Collector はヘッドレスブラウザを管理し、検索結果を収集します
type Collector struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// New は新しい Collector を作成し、ブラウザを初期化します
func New(headless bool) (*Collector, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	return &Collector{
		ctx: ctx,
		cancel: func() {
			cancelCtx()
			cancelAlloc()
		},
		logger: slog.Default(),
	}, nil
}

// Close はブラウザを終了してリソースを解放します
func (c *Collector) Close() {
	c.cancel()
}

// WaitForLogin はログインページを開き、手動ログインを待ちます
func (c *Collector) WaitForLogin(loginURL string, wait time.Duration) error {
	if err := chromedp.Run(c.ctx, chromedp.Navigate(loginURL)); err != nil {
		return fmt.Errorf("ログインページへの遷移に失敗: %w", err)
	}
	c.logger.Info("手動ログインを待機しています", slog.Duration("wait", wait))

	select {
	case <-c.ctx.Done():
		return c.ctx.Err()
	case <-time.After(wait):
	}
	return nil
}

// CollectWindow は1つの日付ウィンドウの検索結果を収集します
// スクロールしながら投稿テキストを集め、重複を除いて返す
func (c *Collector) CollectWindow(ctx context.Context, query string, window DateRange, week int) ([]models.CollectedPost, error) {
	searchURL := buildSearchURL(query, window)

	runCtx, cancel := context.WithCancel(c.ctx)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	if err := chromedp.Run(runCtx,
		chromedp.Navigate(searchURL),
		chromedp.Sleep(pageLoadWait),
	); err != nil {
		return nil, fmt.Errorf("検索ページの読み込みに失敗: %w", err)
	}

	seen := make(map[string]bool)
	var posts []models.CollectedPost

	for i := 0; i < maxScrolls; i++ {
		var texts []string
		if err := chromedp.Run(runCtx,
			chromedp.Evaluate(postTextJS, &texts),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(scrollInterval),
		); err != nil {
			return nil, fmt.Errorf("スクロール中の投稿抽出に失敗: %w", err)
		}

		added := 0
		for _, text := range texts {
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			t := text
			posts = append(posts, models.CollectedPost{Text: &t, Week: week})
			added++
		}

		// 新規投稿が出なくなったらウィンドウを打ち切る
		if added == 0 && i > 0 {
			break
		}
	}

	c.logger.Info("ウィンドウの収集が完了しました",
		slog.Int("week", week),
		slog.String("start", window.Start),
		slog.String("end", window.End),
		slog.Int("posts", len(posts)),
	)

	return posts, nil
}

// Run は全ウィンドウを順に収集し、週ごとのJSONファイルに保存します
// progress に記録済みのウィンドウはスキップする
func (c *Collector) Run(ctx context.Context, query string, windows []DateRange, outputDir string, progress *Progress) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗: %w", err)
	}

	for i, window := range windows {
		week := i + 1
		if progress.Done(window) {
			c.logger.Info("収集済みのウィンドウをスキップします", slog.String("window", window.Key()))
			continue
		}

		posts, err := c.CollectWindow(ctx, query, window, week)
		if err != nil {
			return fmt.Errorf("week%d の収集に失敗: %w", week, err)
		}

		path := filepath.Join(outputDir, fmt.Sprintf("week%d.json", week))
		if err := writePosts(path, posts); err != nil {
			return err
		}

		progress.MarkDone(window)
		if err := progress.Save(); err != nil {
			return err
		}
	}

	return nil
}

func buildSearchURL(query string, window DateRange) string {
	q := fmt.Sprintf("%s since:%s until:%s", query, window.Start, window.End)
	return "https://twitter.com/search?q=" + url.QueryEscape(q) + "&src=typed_query&f=live"
}

func writePosts(path string, posts []models.CollectedPost) error {
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("投稿のエンコードに失敗: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("投稿ファイルの書き込みに失敗: %w", err)
	}
	return nil
}

// LoadPosts は weekN.json を読み込みます
func LoadPosts(path string) ([]models.CollectedPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("投稿ファイルの読み込みに失敗: %w", err)
	}
	var posts []models.CollectedPost
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("投稿ファイルのデコードに失敗: %w", err)
	}
	return posts, nil
}
