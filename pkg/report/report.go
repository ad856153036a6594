// Package report は週ごとのネガティブ率を集計し、複数の結果ファイルを
// 比較するレポートを生成します
package report

import (
	"fmt"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/jinford/sns-sentiment/pkg/models"
)

// DefaultNegativeMarker は「ネガティブ」と判定するラベルの既定値
const DefaultNegativeMarker = "negative"

// Series は1つの結果ファイルから集計した週次系列です
type Series struct {
	Label string
	Weeks []models.WeeklyNegativity
}

// LoadResults は結果CSVファイル（week, sentiment 列）を読み込みます
func LoadResults(path string) ([]models.ResultRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("結果ファイルのオープンに失敗: %w", err)
	}
	defer f.Close()

	var rows []models.ResultRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("結果ファイルの解析に失敗: %w", err)
	}
	return rows, nil
}

// Aggregate は週ごとにネガティブ率（%）を計算します
// 結果は週番号の昇順に並ぶ
func Aggregate(rows []models.ResultRow, negativeMarker string) []models.WeeklyNegativity {
	if negativeMarker == "" {
		negativeMarker = DefaultNegativeMarker
	}

	totals := make(map[int]int)
	negatives := make(map[int]int)
	for _, row := range rows {
		totals[row.Week]++
		if row.Sentiment == negativeMarker {
			negatives[row.Week]++
		}
	}

	weeks := make([]int, 0, len(totals))
	for week := range totals {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)

	result := make([]models.WeeklyNegativity, 0, len(weeks))
	for _, week := range weeks {
		total := totals[week]
		neg := negatives[week]
		result = append(result, models.WeeklyNegativity{
			Week:       week,
			Total:      total,
			Negative:   neg,
			Percentage: float64(neg) / float64(total) * 100,
		})
	}
	return result
}

// Compare は複数の結果ファイルを読み込み、系列ごとに集計します
// labels が空の場合はファイルパスを系列名に使う
func Compare(paths []string, labels []string, negativeMarker string) ([]Series, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("結果ファイルが指定されていません")
	}
	if len(labels) > 0 && len(labels) != len(paths) {
		return nil, fmt.Errorf("系列名の数（%d）がファイル数（%d）と一致しません", len(labels), len(paths))
	}

	series := make([]Series, 0, len(paths))
	for i, path := range paths {
		rows, err := LoadResults(path)
		if err != nil {
			return nil, err
		}

		label := path
		if len(labels) > 0 {
			label = labels[i]
		}

		series = append(series, Series{
			Label: label,
			Weeks: Aggregate(rows, negativeMarker),
		})
	}
	return series, nil
}

// AllWeeks は全系列に出現する週番号の和集合を昇順で返します
func AllWeeks(series []Series) []int {
	seen := make(map[int]bool)
	for _, s := range series {
		for _, w := range s.Weeks {
			seen[w.Week] = true
		}
	}
	weeks := make([]int, 0, len(seen))
	for week := range seen {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)
	return weeks
}

// percentageFor は系列の指定週のネガティブ率を返します（データなしは0）
func percentageFor(s Series, week int) float64 {
	for _, w := range s.Weeks {
		if w.Week == week {
			return w.Percentage
		}
	}
	return 0
}
