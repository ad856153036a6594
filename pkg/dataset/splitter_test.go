package dataset

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jinford/sns-sentiment/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDataset はクラスごとの件数を指定してテスト用データセットを作成します
func buildDataset(counts map[int]int) *models.Dataset {
	ds := &models.Dataset{
		ID:   uuid.New(),
		Name: "test",
	}
	// 決定的な順序で混ぜる（ラベル0,1,0,1,...の繰り返し）
	remaining := make(map[int]int, len(counts))
	total := 0
	for label, n := range counts {
		remaining[label] = n
		total += n
	}
	i := 0
	for len(ds.Examples) < total {
		label := i % 2
		if remaining[label] > 0 {
			remaining[label]--
			ds.Examples = append(ds.Examples, models.LabeledExample{
				ID:    uuid.New(),
				Text:  fmt.Sprintf("example %d", len(ds.Examples)),
				Label: label,
			})
		}
		i++
	}
	return ds
}

func TestSplitter_Split_Partition(t *testing.T) {
	ds := buildDataset(map[int]int{0: 40, 1: 60})
	splitter := NewSplitter(0.8)

	split, err := splitter.Split(ds, 42)
	require.NoError(t, err)

	// 全サンプルがちょうど1つの分割に属する
	assert.Equal(t, ds.Len(), split.Total())

	seen := make(map[uuid.UUID]int)
	for _, part := range []*models.Dataset{split.Train, split.Validation, split.Test} {
		for _, ex := range part.Examples {
			seen[ex.ID]++
		}
	}
	require.Len(t, seen, ds.Len())
	for id, n := range seen {
		assert.Equal(t, 1, n, "example %s appears %d times", id, n)
	}
}

func TestSplitter_Split_Sizes(t *testing.T) {
	// round(0.8*60)=48, round(0.8*40)=32 -> train は 80 件ちょうど
	ds := buildDataset(map[int]int{0: 60, 1: 40})
	splitter := NewSplitter(0.8)

	split, err := splitter.Split(ds, 42)
	require.NoError(t, err)

	assert.Equal(t, 80, split.Train.Len())
	assert.Equal(t, 10, split.Validation.Len())
	assert.Equal(t, 10, split.Test.Len())
}

func TestSplitter_Split_Stratified(t *testing.T) {
	ds := buildDataset(map[int]int{0: 60, 1: 40})
	splitter := NewSplitter(0.8)

	split, err := splitter.Split(ds, 42)
	require.NoError(t, err)

	trainCounts := split.Train.LabelCounts()
	assert.Equal(t, 48, trainCounts[0])
	assert.Equal(t, 32, trainCounts[1])

	// ホールドアウト側もクラス比率を保つ
	valCounts := split.Validation.LabelCounts()
	testCounts := split.Test.LabelCounts()
	assert.Equal(t, 6, valCounts[0])
	assert.Equal(t, 4, valCounts[1])
	assert.Equal(t, 6, testCounts[0])
	assert.Equal(t, 4, testCounts[1])
}

func TestSplitter_Split_Deterministic(t *testing.T) {
	ds := buildDataset(map[int]int{0: 30, 1: 30})
	splitter := NewSplitter(0.8)

	first, err := splitter.Split(ds, 42)
	require.NoError(t, err)
	second, err := splitter.Split(ds, 42)
	require.NoError(t, err)

	assert.Equal(t, idsOf(first.Train), idsOf(second.Train))
	assert.Equal(t, idsOf(first.Validation), idsOf(second.Validation))
	assert.Equal(t, idsOf(first.Test), idsOf(second.Test))

	// 異なるシードでは異なる分割になる
	other, err := splitter.Split(ds, 43)
	require.NoError(t, err)
	assert.NotEqual(t, idsOf(first.Train), idsOf(other.Train))
}

// TestSplitter_Split_PreservesOrder は各分割が入力順序を保持することを確認します
func TestSplitter_Split_PreservesOrder(t *testing.T) {
	ds := buildDataset(map[int]int{0: 20, 1: 20})
	splitter := NewSplitter(0.8)

	split, err := splitter.Split(ds, 1)
	require.NoError(t, err)

	position := make(map[uuid.UUID]int, ds.Len())
	for i, ex := range ds.Examples {
		position[ex.ID] = i
	}

	for _, part := range []*models.Dataset{split.Train, split.Validation, split.Test} {
		prev := -1
		for _, ex := range part.Examples {
			assert.Greater(t, position[ex.ID], prev)
			prev = position[ex.ID]
		}
	}
}

func TestSplitter_Split_InsufficientData(t *testing.T) {
	ds := &models.Dataset{
		ID:   uuid.New(),
		Name: "tiny",
		Examples: []models.LabeledExample{
			{ID: uuid.New(), Text: "only one", Label: 0},
			{ID: uuid.New(), Text: "a", Label: 1},
			{ID: uuid.New(), Text: "b", Label: 1},
		},
	}
	splitter := NewSplitter(0.8)

	_, err := splitter.Split(ds, 42)
	require.Error(t, err)

	var insufficientErr *InsufficientDataError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 0, insufficientErr.Label)
	assert.Equal(t, 1, insufficientErr.Count)
}

func TestNewSplitter_RatioFallback(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
	}{
		{name: "0はデフォルトに戻る", ratio: 0},
		{name: "1はデフォルトに戻る", ratio: 1},
		{name: "負数はデフォルトに戻る", ratio: -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSplitter(tt.ratio)
			assert.Equal(t, DefaultTrainRatio, s.trainRatio)
		})
	}
}

func idsOf(ds *models.Dataset) []uuid.UUID {
	ids := make([]uuid.UUID, 0, ds.Len())
	for _, ex := range ds.Examples {
		ids = append(ids, ex.ID)
	}
	return ids
}
