// Package encoder はクリーニング済みテキストを固定形状の数値表現に変換する
// エンコーダの契約と、tiktoken ベースの実装を提供します
//
// パイプラインの他の部分はこの契約にのみ依存し、特定のトークナイザ実装には
// 依存しません
package encoder

import (
	"errors"
	"fmt"

	"github.com/jinford/sns-sentiment/pkg/models"
)

// DefaultMaxLength は系列長の既定の上限です
const DefaultMaxLength = 128

// ErrLengthMismatch はテキスト数とラベル数の不一致を表すエラー
var ErrLengthMismatch = errors.New("texts and labels must have the same length")

// Options はエンコードの設定です
type Options struct {
	// MaxLength は系列長の上限（超過分は切り詰め）
	MaxLength int

	// PadToMax が true の場合は常に MaxLength までパディングする
	// false の場合はバッチ内の最長系列に揃える
	PadToMax bool
}

// Encoder はテキスト列を EncodedBatch に変換する契約です
//
// 実装は (texts, labels, Options, エンコーダ自身の語彙) のみの純粋関数で
// なければならず、呼び出し間で隠れた状態を持ち越してはならない
type Encoder interface {
	// Encode はテキストとラベルの組をエンコードします
	// 返されるバッチは models.EncodedBatch の形状不変条件を満たす
	Encode(texts []string, labels []int) (*models.EncodedBatch, error)

	// Name はエンコーダの識別子（語彙・モデルの同一性）を返します
	Name() string
}

// validateInput は Encode 実装共通の入力検証です
func validateInput(texts []string, labels []int, opts Options) error {
	if len(texts) != len(labels) {
		return fmt.Errorf("%w: texts=%d labels=%d", ErrLengthMismatch, len(texts), len(labels))
	}
	if opts.MaxLength <= 0 {
		return fmt.Errorf("max_length must be positive, got %d", opts.MaxLength)
	}
	return nil
}
