package models

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch は空のバッチを表すエラー
var ErrEmptyBatch = errors.New("encoded batch is empty")

// EncodedBatch はエンコーダが出力する固定形状のテンソル表現です
// TokenIDs と AttentionMask は batch × max_length の2次元配列で、
// Labels を含む3つの配列は先頭次元（バッチサイズ）を共有します
type EncodedBatch struct {
	TokenIDs      [][]int `json:"token_ids"`
	AttentionMask [][]int `json:"attention_mask"`
	Labels        []int   `json:"labels"`
}

// BatchSize はバッチサイズ（先頭次元）を返します
func (b *EncodedBatch) BatchSize() int {
	return len(b.TokenIDs)
}

// SeqLength は系列長（第2次元）を返します
// 空のバッチでは0を返します
func (b *EncodedBatch) SeqLength() int {
	if len(b.TokenIDs) == 0 {
		return 0
	}
	return len(b.TokenIDs[0])
}

// Validate は形状不変条件を検証します
//   - 3配列の先頭次元が一致すること
//   - TokenIDs と AttentionMask の全行が同じ長さであること
func (b *EncodedBatch) Validate() error {
	n := len(b.TokenIDs)
	if n == 0 {
		return ErrEmptyBatch
	}
	if len(b.AttentionMask) != n || len(b.Labels) != n {
		return fmt.Errorf("batch dimension mismatch: token_ids=%d attention_mask=%d labels=%d",
			n, len(b.AttentionMask), len(b.Labels))
	}

	seqLen := len(b.TokenIDs[0])
	for i := 0; i < n; i++ {
		if len(b.TokenIDs[i]) != seqLen {
			return fmt.Errorf("token_ids row %d has length %d, want %d", i, len(b.TokenIDs[i]), seqLen)
		}
		if len(b.AttentionMask[i]) != seqLen {
			return fmt.Errorf("attention_mask row %d has length %d, want %d", i, len(b.AttentionMask[i]), seqLen)
		}
	}

	return nil
}
