// Package annotator は未ラベルの投稿にLLMで感情ラベルを付与します
//
// 収集した投稿をデータセット化する前段として使う補助機能であり、
// ラベル語彙は設定されたラベル対応表と同一のものに制約される
package annotator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jinford/sns-sentiment/pkg/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	// DefaultModel はデフォルトで使用するOpenAIモデル
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout はAPI呼び出しのデフォルトタイムアウト
	DefaultTimeout = 60 * time.Second

	// DefaultBatchSize は1回のAPI呼び出しで処理する投稿数
	DefaultBatchSize = 20

	// MaxRetries はレート制限エラー時の最大リトライ回数
	MaxRetries = 3

	// BaseBackoff はExponential Backoffの基底時間
	BaseBackoff = 2 * time.Second

	// MaxBackoff はExponential Backoffの最大待機時間
	MaxBackoff = 32 * time.Second
)

var (
	// ErrAPIKeyNotSet はAPIキーが設定されていない場合のエラー
	ErrAPIKeyNotSet = errors.New("OpenAI API key not set")

	// ErrInvalidResponseFormat はレスポンスが期待する形式でない場合のエラー
	ErrInvalidResponseFormat = errors.New("invalid annotation response format")
)

// Annotator はOpenAI APIで投稿に感情ラベルを付与します
type Annotator struct {
	client  openai.Client
	model   string
	labels  []string
	timeout time.Duration
}

// New は新しい Annotator を作成します
// labelMapping のキーが付与可能なラベル語彙になる
func New(apiKey, model string, labelMapping map[string]int) (*Annotator, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	if model == "" {
		model = DefaultModel
	}

	labels := make([]string, 0, len(labelMapping))
	for label := range labelMapping {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	return &Annotator{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		labels:  labels,
		timeout: DefaultTimeout,
	}, nil
}

// annotationResponse はLLMに要求するJSONレスポンスの形式です
type annotationResponse struct {
	Labels []string `json:"labels"`
}

// Annotate はテキスト列に感情ラベルを付与し、Record 列として返します
// 入力順序は保持される
func (a *Annotator) Annotate(ctx context.Context, texts []string) ([]models.Record, error) {
	records := make([]models.Record, 0, len(texts))

	for start := 0; start < len(texts); start += DefaultBatchSize {
		end := start + DefaultBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		labels, err := a.annotateBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("バッチ %d-%d のアノテーションに失敗: %w", start, end, err)
		}

		for i, text := range texts[start:end] {
			records = append(records, models.Record{
				Text:      text,
				Sentiment: labels[i],
			})
		}
	}

	return records, nil
}

func (a *Annotator) annotateBatch(ctx context.Context, texts []string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := a.buildPrompt(texts)

	content, err := a.completeWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var resp annotationResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponseFormat, err)
	}
	if len(resp.Labels) != len(texts) {
		return nil, fmt.Errorf("%w: %d件の入力に対して%d件のラベル", ErrInvalidResponseFormat, len(texts), len(resp.Labels))
	}

	for i, label := range resp.Labels {
		if !a.isKnownLabel(label) {
			return nil, fmt.Errorf("%w: 未知のラベル %q（%d番目）", ErrInvalidResponseFormat, label, i)
		}
	}

	return resp.Labels, nil
}

func (a *Annotator) buildPrompt(texts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "以下の%d件のSNS投稿の感情を分類してください。\n", len(texts))
	fmt.Fprintf(&b, "使用可能なラベル: %s\n", strings.Join(a.labels, ", "))
	b.WriteString("JSONオブジェクト {\"labels\": [...]} の形式で、入力と同じ順序・同じ件数のラベル配列のみを返してください。\n\n")
	for i, text := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, text)
	}
	return b.String()
}

func (a *Annotator) isKnownLabel(label string) bool {
	for _, l := range a.labels {
		if l == label {
			return true
		}
	}
	return false
}

func (a *Annotator) completeWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * BaseBackoff
			if backoff > MaxBackoff {
				backoff = MaxBackoff
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: shared.ChatModel(a.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Temperature: openai.Float(0),
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{
					Type: "json_object",
				},
			},
		})
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				continue
			}
			return "", fmt.Errorf("OpenAI API呼び出しに失敗: %w", err)
		}

		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("OpenAI APIが空のレスポンスを返しました")
		}

		return completion.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("リトライ上限を超過しました: %w", lastErr)
}

// isRateLimitError はレート制限エラーかどうかを判定します
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
