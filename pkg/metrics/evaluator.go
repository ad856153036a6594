// Package metrics は予測スコアと正解ラベルから評価指標を計算します
package metrics

import (
	"fmt"

	"github.com/jinford/sns-sentiment/pkg/models"
)

// DimensionMismatchError は予測とラベルの件数不一致・空入力を表します
type DimensionMismatchError struct {
	Predictions int
	Labels      int
	Reason      string
}

func (e *DimensionMismatchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("dimension mismatch: %s", e.Reason)
	}
	return fmt.Sprintf("dimension mismatch: %d predictions vs %d labels", e.Predictions, e.Labels)
}

// Evaluate は予測スコア行列（N × クラス数）と正解ラベルから
// accuracy と加重F1を計算します
//
// 予測クラスはクラス次元の arg-max で決まり、同点の場合は
// 最小のクラスインデックスが選ばれる
// F1 はクラスごとのF1を正解ラベルの出現数（サポート）で重み付けした
// 加重平均であり、macro/micro 平均ではない
func Evaluate(scores [][]float64, labels []int) (*models.MetricsResult, error) {
	n := len(scores)
	if n == 0 || len(labels) == 0 {
		return nil, &DimensionMismatchError{Reason: "empty input"}
	}
	if n != len(labels) {
		return nil, &DimensionMismatchError{Predictions: n, Labels: len(labels)}
	}

	predictions := make([]int, n)
	for i, row := range scores {
		if len(row) == 0 {
			return nil, &DimensionMismatchError{Reason: fmt.Sprintf("score row %d is empty", i)}
		}
		predictions[i] = argmax(row)
	}

	correct := 0
	for i, pred := range predictions {
		if pred == labels[i] {
			correct++
		}
	}

	return &models.MetricsResult{
		Accuracy: float64(correct) / float64(n),
		F1:       weightedF1(predictions, labels),
	}, nil
}

// argmax は最大スコアのインデックスを返します
// 同点の場合は走査順により最小インデックスが勝つ
func argmax(row []float64) int {
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}

// weightedF1 はサポート加重F1を計算します
// サポート0のクラスは重みを持たないため寄与しない
func weightedF1(predictions, labels []int) float64 {
	classes := make(map[int]bool)
	for _, l := range labels {
		classes[l] = true
	}
	for _, p := range predictions {
		classes[p] = true
	}

	total := float64(len(labels))
	sum := 0.0

	for class := range classes {
		tp, fp, fn, support := 0, 0, 0, 0
		for i := range labels {
			if labels[i] == class {
				support++
				if predictions[i] == class {
					tp++
				} else {
					fn++
				}
			} else if predictions[i] == class {
				fp++
			}
		}
		if support == 0 {
			continue
		}

		var precision, recall, f1 float64
		if tp+fp > 0 {
			precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			recall = float64(tp) / float64(tp+fn)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}

		sum += f1 * float64(support)
	}

	return sum / total
}
