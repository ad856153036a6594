package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodedBatch_Validate(t *testing.T) {
	tests := []struct {
		name      string
		batch     EncodedBatch
		expectErr bool
	}{
		{
			name: "正常な形状",
			batch: EncodedBatch{
				TokenIDs:      [][]int{{1, 2, 0}, {3, 4, 5}},
				AttentionMask: [][]int{{1, 1, 0}, {1, 1, 1}},
				Labels:        []int{0, 1},
			},
		},
		{
			name:      "空のバッチ",
			batch:     EncodedBatch{},
			expectErr: true,
		},
		{
			name: "ラベル数の不一致",
			batch: EncodedBatch{
				TokenIDs:      [][]int{{1, 2}, {3, 4}},
				AttentionMask: [][]int{{1, 1}, {1, 1}},
				Labels:        []int{0},
			},
			expectErr: true,
		},
		{
			name: "マスク行数の不一致",
			batch: EncodedBatch{
				TokenIDs:      [][]int{{1, 2}, {3, 4}},
				AttentionMask: [][]int{{1, 1}},
				Labels:        []int{0, 1},
			},
			expectErr: true,
		},
		{
			name: "トークンID行の長さ不揃い",
			batch: EncodedBatch{
				TokenIDs:      [][]int{{1, 2, 3}, {4, 5}},
				AttentionMask: [][]int{{1, 1, 1}, {1, 1, 0}},
				Labels:        []int{0, 1},
			},
			expectErr: true,
		},
		{
			name: "マスク行の長さ不揃い",
			batch: EncodedBatch{
				TokenIDs:      [][]int{{1, 2}, {3, 4}},
				AttentionMask: [][]int{{1, 1}, {1}},
				Labels:        []int{0, 1},
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.batch.Validate()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEncodedBatch_Shape(t *testing.T) {
	batch := EncodedBatch{
		TokenIDs:      [][]int{{1, 2, 0}, {3, 4, 5}},
		AttentionMask: [][]int{{1, 1, 0}, {1, 1, 1}},
		Labels:        []int{0, 1},
	}

	assert.Equal(t, 2, batch.BatchSize())
	assert.Equal(t, 3, batch.SeqLength())

	empty := EncodedBatch{}
	assert.Equal(t, 0, empty.BatchSize())
	assert.Equal(t, 0, empty.SeqLength())
}
