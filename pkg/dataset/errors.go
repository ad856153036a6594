package dataset

import "fmt"

// UnknownLabelError は設定されたラベル表に存在しない感情ラベルを表します
// strictモードのロード時に返される（lenientモードでは件数集計のみ）
type UnknownLabelError struct {
	Label string
	Row   int
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown sentiment label %q at row %d", e.Label, e.Row)
}

// InsufficientDataError は層化分割に必要なサンプル数が足りないクラスを表します
// 部分的な結果は返さず、呼び出し側に即座に伝搬する
type InsufficientDataError struct {
	Label int
	Count int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("label %d has only %d example(s): stratified split requires at least 2 per class", e.Label, e.Count)
}
