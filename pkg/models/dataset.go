package models

import (
	"time"

	"github.com/google/uuid"
)

// Record はCSV/JSONから読み込んだ生の1レコードを表します
// Text は欠損セル・null の場合に空文字列になる
type Record struct {
	Text      string
	Sentiment string
}

// LabeledExample はクリーニング・ラベル変換済みの1サンプルです
type LabeledExample struct {
	ID    uuid.UUID `json:"id"`
	Text  string    `json:"text"`
	Label int       `json:"label"`
}

// Dataset は順序付きの LabeledExample 列です
// 各パイプラインステージは新しい Dataset を生成し、入力を変更しません
type Dataset struct {
	ID        uuid.UUID
	Name      string
	Examples  []LabeledExample
	CreatedAt time.Time
}

// Len はサンプル数を返します
func (d *Dataset) Len() int {
	return len(d.Examples)
}

// Labels は各サンプルのラベルを出現順に返します
func (d *Dataset) Labels() []int {
	labels := make([]int, len(d.Examples))
	for i, ex := range d.Examples {
		labels[i] = ex.Label
	}
	return labels
}

// Texts は各サンプルのテキストを出現順に返します
func (d *Dataset) Texts() []string {
	texts := make([]string, len(d.Examples))
	for i, ex := range d.Examples {
		texts[i] = ex.Text
	}
	return texts
}

// LabelCounts はラベルごとの件数を返します
func (d *Dataset) LabelCounts() map[int]int {
	counts := make(map[int]int)
	for _, ex := range d.Examples {
		counts[ex.Label]++
	}
	return counts
}

// SplitKind は分割の種別を表します
type SplitKind string

const (
	SplitTrain      SplitKind = "train"
	SplitValidation SplitKind = "validation"
	SplitTest       SplitKind = "test"
)

// Split は train/validation/test の3分割を保持します
// 3つは互いに素で、和集合は入力データセットと一致します
type Split struct {
	Train      *Dataset
	Validation *Dataset
	Test       *Dataset
}

// Total は3分割の合計サンプル数を返します
func (s *Split) Total() int {
	return s.Train.Len() + s.Validation.Len() + s.Test.Len()
}
