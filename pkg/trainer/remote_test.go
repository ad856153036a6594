package trainer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jinford/sns-sentiment/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBatch() *models.EncodedBatch {
	return &models.EncodedBatch{
		TokenIDs:      [][]int{{1, 2, 0}, {3, 4, 5}},
		AttentionMask: [][]int{{1, 1, 0}, {1, 1, 1}},
		Labels:        []int{0, 1},
	}
}

func TestRemoteTrainer_Health(t *testing.T) {
	t.Run("正常応答", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/v1/health", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		}))
		defer server.Close()

		trainer := NewRemoteTrainer(server.URL)
		assert.NoError(t, trainer.Health(context.Background()))
	})

	t.Run("異常ステータス", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"status": "degraded"})
		}))
		defer server.Close()

		trainer := NewRemoteTrainer(server.URL)
		err := trainer.Health(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "degraded")
	})
}

func TestRemoteTrainer_CreateRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/runs", r.URL.Path)

		var req createRunRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dbmdz/bert-base-turkish-cased", req.Model)
		assert.Equal(t, 16, req.Hyperparams.BatchSize)

		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-123"})
	}))
	defer server.Close()

	trainer := NewRemoteTrainer(server.URL)

	jobID, err := trainer.CreateRun(context.Background(), "dbmdz/bert-base-turkish-cased", models.Hyperparams{
		LearningRate: 2e-5,
		BatchSize:    16,
		Epochs:       3,
		WeightDecay:  0.01,
	})
	require.NoError(t, err)
	assert.Equal(t, "job-123", jobID)
}

func TestRemoteTrainer_CreateRun_EmptyJobID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	trainer := NewRemoteTrainer(server.URL)
	_, err := trainer.CreateRun(context.Background(), "model", models.Hyperparams{})
	assert.Error(t, err)
}

func TestRemoteTrainer_UploadBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/runs/job-123/batches", r.URL.Path)

		var req struct {
			Split    string  `json:"split"`
			TokenIDs [][]int `json:"token_ids"`
			Labels   []int   `json:"labels"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "train", req.Split)
		assert.Len(t, req.TokenIDs, 2)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	trainer := NewRemoteTrainer(server.URL)
	err := trainer.UploadBatch(context.Background(), "job-123", models.SplitTrain, testBatch())
	assert.NoError(t, err)
}

// TestRemoteTrainer_UploadBatch_InvalidBatch は形状不正のバッチを送信前に弾くことを確認します
func TestRemoteTrainer_UploadBatch_InvalidBatch(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	batch := testBatch()
	batch.Labels = []int{0}

	trainer := NewRemoteTrainer(server.URL)
	err := trainer.UploadBatch(context.Background(), "job-123", models.SplitTrain, batch)
	require.Error(t, err)
	assert.False(t, called)
}

func TestRemoteTrainer_Train(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/runs/job-123/train", r.URL.Path)
		json.NewEncoder(w).Encode(trainResponse{
			Epochs: []EpochResult{
				{Epoch: 1, ValidationScores: [][]float64{{0.6, 0.4}, {0.3, 0.7}}},
				{Epoch: 2, ValidationScores: [][]float64{{0.8, 0.2}, {0.1, 0.9}}},
			},
		})
	}))
	defer server.Close()

	trainer := NewRemoteTrainer(server.URL)

	epochs, err := trainer.Train(context.Background(), "job-123")
	require.NoError(t, err)
	require.Len(t, epochs, 2)
	assert.Equal(t, 1, epochs[0].Epoch)
	assert.Len(t, epochs[0].ValidationScores, 2)
}

func TestRemoteTrainer_Predict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/runs/job-123/predict", r.URL.Path)
		json.NewEncoder(w).Encode(predictResponse{
			Scores: [][]float64{{0.9, 0.1}, {0.2, 0.8}},
		})
	}))
	defer server.Close()

	trainer := NewRemoteTrainer(server.URL)

	scores, err := trainer.Predict(context.Background(), "job-123", testBatch())
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.InDelta(t, 0.9, scores[0][0], 1e-9)
}

// TestRemoteTrainer_RetryOn500 は一時的な5xxエラー後にリトライして成功することを確認します
func TestRemoteTrainer_RetryOn500(t *testing.T) {
	if testing.Short() {
		t.Skip("バックオフ待機を含むためshortモードではスキップ")
	}

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "temporary failure", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	trainer := NewRemoteTrainer(server.URL)
	assert.NoError(t, trainer.Health(context.Background()))
	assert.Equal(t, int32(2), calls.Load())
}

// TestRemoteTrainer_NoRetryOn400 はクライアントエラーを即座に返すことを確認します
func TestRemoteTrainer_NoRetryOn400(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	trainer := NewRemoteTrainer(server.URL)
	err := trainer.Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "400")
}
