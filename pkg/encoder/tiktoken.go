package encoder

import (
	"fmt"

	"github.com/jinford/sns-sentiment/pkg/models"
	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultEncoding は既定の tiktoken エンコーディング名
	DefaultEncoding = "cl100k_base"

	// padTokenID はパディングに使うトークンID
	padTokenID = 0
)

// TiktokenEncoder は tiktoken の BPE 語彙でテキストをトークンID列に変換します
type TiktokenEncoder struct {
	encoding *tiktoken.Tiktoken
	name     string
	opts     Options
}

// NewTiktokenEncoder は既定のエンコーディングで TiktokenEncoder を作成します
func NewTiktokenEncoder(opts Options) (*TiktokenEncoder, error) {
	return NewTiktokenEncoderWithName(DefaultEncoding, opts)
}

// NewTiktokenEncoderWithName はエンコーディング名を指定して作成します
func NewTiktokenEncoderWithName(name string, opts Options) (*TiktokenEncoder, error) {
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}

	encoding, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("tiktokenエンコーディングの取得に失敗: %w", err)
	}

	return &TiktokenEncoder{
		encoding: encoding,
		name:     name,
		opts:     opts,
	}, nil
}

// Name はエンコーディング名を返します
func (e *TiktokenEncoder) Name() string {
	return e.name
}

// Encode はテキスト列をトークン化し、切り詰めとパディングを適用した
// EncodedBatch を返します
func (e *TiktokenEncoder) Encode(texts []string, labels []int) (*models.EncodedBatch, error) {
	if err := validateInput(texts, labels, e.opts); err != nil {
		return nil, err
	}

	// トークン化と切り詰め
	sequences := make([][]int, len(texts))
	longest := 0
	for i, text := range texts {
		ids := e.encoding.Encode(text, nil, nil)
		if len(ids) > e.opts.MaxLength {
			ids = ids[:e.opts.MaxLength]
		}
		sequences[i] = ids
		if len(ids) > longest {
			longest = len(ids)
		}
	}

	padTo := longest
	if e.opts.PadToMax {
		padTo = e.opts.MaxLength
	}

	batch := &models.EncodedBatch{
		TokenIDs:      make([][]int, len(sequences)),
		AttentionMask: make([][]int, len(sequences)),
		Labels:        append([]int(nil), labels...),
	}

	for i, ids := range sequences {
		row := make([]int, padTo)
		mask := make([]int, padTo)
		for j, id := range ids {
			row[j] = id
			mask[j] = 1
		}
		for j := len(ids); j < padTo; j++ {
			row[j] = padTokenID
		}
		batch.TokenIDs[i] = row
		batch.AttentionMask[i] = mask
	}

	if err := batch.Validate(); err != nil {
		return nil, fmt.Errorf("エンコード結果の形状検証に失敗: %w", err)
	}

	return batch, nil
}
