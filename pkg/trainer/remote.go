package trainer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/jinford/sns-sentiment/pkg/models"
)

const (
	// DefaultTimeout はAPI呼び出しのデフォルトタイムアウト
	// 学習・推論エンドポイントは長時間かかるため長めに取る
	DefaultTimeout = 10 * time.Minute

	// MaxRetries は一時的エラー時の最大リトライ回数
	MaxRetries = 3

	// BaseBackoff はExponential Backoffの基底時間
	BaseBackoff = 2 * time.Second

	// MaxBackoff はExponential Backoffの最大待機時間
	MaxBackoff = 32 * time.Second
)

// RemoteTrainer は学習サービスのJSON-over-HTTPクライアントです
type RemoteTrainer struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteTrainer は新しい RemoteTrainer を作成します
func NewRemoteTrainer(baseURL string) *RemoteTrainer {
	return &RemoteTrainer{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

type createRunRequest struct {
	Model       string             `json:"model"`
	Hyperparams models.Hyperparams `json:"hyperparams"`
}

type createRunResponse struct {
	JobID string `json:"job_id"`
}

type uploadBatchRequest struct {
	Split string `json:"split"`
	*models.EncodedBatch
}

type trainResponse struct {
	Epochs []EpochResult `json:"epochs"`
}

type predictRequest struct {
	TokenIDs      [][]int `json:"token_ids"`
	AttentionMask [][]int `json:"attention_mask"`
}

type predictResponse struct {
	Scores [][]float64 `json:"scores"`
}

// Health は学習サービスの稼働状態を確認します
func (t *RemoteTrainer) Health(ctx context.Context) error {
	var resp healthResponse
	if err := t.do(ctx, http.MethodGet, "/api/v1/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("学習サービスが異常状態です: %s", resp.Status)
	}
	return nil
}

// CreateRun は学習ジョブを作成します
func (t *RemoteTrainer) CreateRun(ctx context.Context, model string, hp models.Hyperparams) (string, error) {
	var resp createRunResponse
	req := createRunRequest{Model: model, Hyperparams: hp}
	if err := t.do(ctx, http.MethodPost, "/api/v1/runs", req, &resp); err != nil {
		return "", err
	}
	if resp.JobID == "" {
		return "", fmt.Errorf("学習サービスがジョブIDを返しませんでした")
	}
	return resp.JobID, nil
}

// UploadBatch はエンコード済みバッチをアップロードします
func (t *RemoteTrainer) UploadBatch(ctx context.Context, jobID string, kind models.SplitKind, batch *models.EncodedBatch) error {
	if err := batch.Validate(); err != nil {
		return fmt.Errorf("アップロード前のバッチ検証に失敗: %w", err)
	}
	req := uploadBatchRequest{Split: string(kind), EncodedBatch: batch}
	return t.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/runs/%s/batches", jobID), req, nil)
}

// Train は学習を実行し、エポックごとの検証スコアを受け取ります
func (t *RemoteTrainer) Train(ctx context.Context, jobID string) ([]EpochResult, error) {
	var resp trainResponse
	if err := t.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/runs/%s/train", jobID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Epochs, nil
}

// Predict は学習済みモデルでスコアを推論します
func (t *RemoteTrainer) Predict(ctx context.Context, jobID string, batch *models.EncodedBatch) ([][]float64, error) {
	if err := batch.Validate(); err != nil {
		return nil, fmt.Errorf("推論前のバッチ検証に失敗: %w", err)
	}
	req := predictRequest{TokenIDs: batch.TokenIDs, AttentionMask: batch.AttentionMask}
	var resp predictResponse
	if err := t.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/runs/%s/predict", jobID), req, &resp); err != nil {
		return nil, err
	}
	return resp.Scores, nil
}

// do はリクエストを送信し、429/5xx に対してExponential Backoffでリトライします
func (t *RemoteTrainer) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("リクエストのエンコードに失敗: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * BaseBackoff
			if backoff > MaxBackoff {
				backoff = MaxBackoff
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("リクエストの作成に失敗: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := t.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("リクエストの送信に失敗: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("学習サービスがステータス %d を返しました: %s", resp.StatusCode, string(b))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("学習サービスがステータス %d を返しました: %s", resp.StatusCode, string(b))
		}

		if respBody != nil {
			if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
				resp.Body.Close()
				return fmt.Errorf("レスポンスのデコードに失敗: %w", err)
			}
		}
		resp.Body.Close()
		return nil
	}

	return fmt.Errorf("リトライ上限を超過しました: %w", lastErr)
}
