package dataset

import (
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/jinford/sns-sentiment/pkg/models"
)

// DefaultTrainRatio は学習データの既定の割合です
const DefaultTrainRatio = 0.8

// Splitter はデータセットを層化サンプリングで分割します
type Splitter struct {
	trainRatio float64
}

// NewSplitter は新しい Splitter を作成します
// trainRatio が (0,1) の範囲外の場合はデフォルト値にフォールバックする
func NewSplitter(trainRatio float64) *Splitter {
	if trainRatio <= 0 || trainRatio >= 1 {
		trainRatio = DefaultTrainRatio
	}
	return &Splitter{trainRatio: trainRatio}
}

// Split はデータセットを train/validation/test に分割します
//
// 1段目: trainRatio（既定80%）を train、残りをホールドアウトに層化分割
// 2段目: ホールドアウトを50/50で validation と test に層化分割
//
// 同じ入力順序と同じシードに対して常に同一の分割を返す
// いずれかのクラスのサンプル数が2未満の場合は InsufficientDataError を返す
func (s *Splitter) Split(ds *models.Dataset, seed int64) (*models.Split, error) {
	rng := rand.New(rand.NewSource(seed))

	train, holdout, err := stratifiedPartition(ds.Examples, s.trainRatio, rng)
	if err != nil {
		return nil, err
	}

	validation, test, err := stratifiedPartition(holdout, 0.5, rng)
	if err != nil {
		return nil, err
	}

	return &models.Split{
		Train:      derive(ds, "train", train),
		Validation: derive(ds, "validation", validation),
		Test:       derive(ds, "test", test),
	}, nil
}

// stratifiedPartition はサンプル列を ratio : 1-ratio の2つに層化分割します
// クラスごとの比率はクラス内サンプル数の丸め誤差の範囲で保存される
// 両出力とも元の入力順序を保つ
func stratifiedPartition(examples []models.LabeledExample, ratio float64, rng *rand.Rand) (first, second []models.LabeledExample, err error) {
	byLabel := make(map[int][]int)
	for i, ex := range examples {
		byLabel[ex.Label] = append(byLabel[ex.Label], i)
	}

	// 乱数消費順を固定するためラベル昇順で処理する
	labels := make([]int, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	for _, label := range labels {
		if n := len(byLabel[label]); n < 2 {
			return nil, nil, &InsufficientDataError{Label: label, Count: n}
		}
	}

	inFirst := make(map[int]bool)
	for _, label := range labels {
		indices := append([]int(nil), byLabel[label]...)
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		nFirst := int(math.Round(ratio * float64(len(indices))))
		for _, idx := range indices[:nFirst] {
			inFirst[idx] = true
		}
	}

	for i, ex := range examples {
		if inFirst[i] {
			first = append(first, ex)
		} else {
			second = append(second, ex)
		}
	}

	return first, second, nil
}

func derive(parent *models.Dataset, suffix string, examples []models.LabeledExample) *models.Dataset {
	return &models.Dataset{
		ID:       uuid.New(),
		Name:     parent.Name + "/" + suffix,
		Examples: examples,
	}
}
