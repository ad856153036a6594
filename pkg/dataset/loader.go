package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jinford/sns-sentiment/pkg/models"
)

// DefaultLabelMapping は感情ラベルからクラスIDへの既定の対応表です
func DefaultLabelMapping() map[string]int {
	return map[string]int{
		"negative": 0,
		"positive": 1,
	}
}

// LoaderConfig はデータセット読み込みの設定です
// 列名は契約ではなく設定として扱う
type LoaderConfig struct {
	// TextColumn はテキスト列の列名（デフォルト: "text"）
	TextColumn string

	// LabelColumn は感情ラベル列の列名（デフォルト: "sentiment"）
	LabelColumn string

	// LabelMapping はラベル文字列からクラスIDへの対応表
	LabelMapping map[string]int

	// Strict が true の場合、未知のラベルで読み込み全体を失敗させる
	// false の場合は該当レコードを除外し、件数を集計して警告ログを出す
	Strict bool
}

// Loader はCSVレコードを Dataset に変換します
type Loader struct {
	cfg    LoaderConfig
	logger *slog.Logger
}

// NewLoader は新しい Loader を作成します
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.TextColumn == "" {
		cfg.TextColumn = "text"
	}
	if cfg.LabelColumn == "" {
		cfg.LabelColumn = "sentiment"
	}
	if cfg.LabelMapping == nil {
		cfg.LabelMapping = DefaultLabelMapping()
	}
	return &Loader{
		cfg:    cfg,
		logger: slog.Default(),
	}
}

// LoadResult は読み込み結果と除外レコードの集計です
type LoadResult struct {
	Dataset *models.Dataset

	// Skipped は未知ラベルで除外されたレコード数
	Skipped int

	// UnknownLabels は未知ラベル文字列ごとの出現回数
	UnknownLabels map[string]int
}

// LoadCSVFile はCSVファイルを読み込んで Dataset を作成します
func (l *Loader) LoadCSVFile(path, name string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("CSVファイルのオープンに失敗: %w", err)
	}
	defer f.Close()

	return l.LoadCSV(f, name)
}

// LoadCSV はCSVストリームを読み込んで Dataset を作成します
// 1行目をヘッダとして列位置を解決し、以降の行を入力順のまま変換する
func (l *Loader) LoadCSV(r io.Reader, name string) (*LoadResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("CSVヘッダの読み込みに失敗: %w", err)
	}

	textIdx, labelIdx := -1, -1
	for i, col := range header {
		switch col {
		case l.cfg.TextColumn:
			textIdx = i
		case l.cfg.LabelColumn:
			labelIdx = i
		}
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("テキスト列 %q がCSVヘッダに存在しません", l.cfg.TextColumn)
	}
	if labelIdx < 0 {
		return nil, fmt.Errorf("ラベル列 %q がCSVヘッダに存在しません", l.cfg.LabelColumn)
	}

	var records []models.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV行の読み込みに失敗: %w", err)
		}

		// 欠損セルは空文字列として扱う
		rec := models.Record{}
		if textIdx < len(row) {
			rec.Text = row[textIdx]
		}
		if labelIdx < len(row) {
			rec.Sentiment = row[labelIdx]
		}
		records = append(records, rec)
	}

	return l.LoadRecords(records, name)
}

// LoadRecords は生レコード列を Dataset に変換します
// 出力は入力レコードの順序を保持する（固定シードでの分割再現性のため）
func (l *Loader) LoadRecords(records []models.Record, name string) (*LoadResult, error) {
	result := &LoadResult{
		Dataset: &models.Dataset{
			ID:   uuid.New(),
			Name: name,
		},
		UnknownLabels: make(map[string]int),
	}

	for i, rec := range records {
		label, ok := l.cfg.LabelMapping[rec.Sentiment]
		if !ok {
			if l.cfg.Strict {
				return nil, &UnknownLabelError{Label: rec.Sentiment, Row: i}
			}
			result.Skipped++
			result.UnknownLabels[rec.Sentiment]++
			continue
		}

		result.Dataset.Examples = append(result.Dataset.Examples, models.LabeledExample{
			ID:    uuid.New(),
			Text:  Clean(rec.Text),
			Label: label,
		})
	}

	if result.Skipped > 0 {
		l.logger.Warn("未知の感情ラベルを持つレコードを除外しました",
			slog.Int("skipped", result.Skipped),
			slog.Any("labels", result.UnknownLabels),
		)
	}

	return result, nil
}
