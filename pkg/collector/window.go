package collector

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// dateLayout はウィンドウ境界の日付形式
const dateLayout = "2006-01-02"

// DateRange は収集対象の日付ウィンドウです（両端とも日付文字列）
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Key は進捗記録に使うウィンドウの識別子を返します
func (r DateRange) Key() string {
	return r.Start + "_to_" + r.End
}

// WeekRanges は開始日から weeks 週分の7日ウィンドウを生成します
func WeekRanges(start time.Time, weeks int) []DateRange {
	ranges := make([]DateRange, 0, weeks)
	for i := 0; i < weeks; i++ {
		s := start.AddDate(0, 0, i*7)
		e := s.AddDate(0, 0, 6)
		ranges = append(ranges, DateRange{
			Start: s.Format(dateLayout),
			End:   e.Format(dateLayout),
		})
	}
	return ranges
}

// LoadRanges はウィンドウ定義のJSONファイルを読み込みます
// 形式: [{"start": "2024-08-09", "end": "2024-08-15"}, ...]
func LoadRanges(path string) ([]DateRange, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ウィンドウ定義の読み込みに失敗: %w", err)
	}
	var ranges []DateRange
	if err := json.Unmarshal(data, &ranges); err != nil {
		return nil, fmt.Errorf("ウィンドウ定義のデコードに失敗: %w", err)
	}
	for _, r := range ranges {
		if _, err := time.Parse(dateLayout, r.Start); err != nil {
			return nil, fmt.Errorf("不正な開始日 %q: %w", r.Start, err)
		}
		if _, err := time.Parse(dateLayout, r.End); err != nil {
			return nil, fmt.Errorf("不正な終了日 %q: %w", r.End, err)
		}
	}
	return ranges, nil
}

// Progress は完了済みウィンドウの記録です
type Progress struct {
	path    string
	checked map[string]bool
}

// LoadProgress は進捗ファイルを読み込みます（存在しない場合は空の進捗）
func LoadProgress(path string) (*Progress, error) {
	p := &Progress{
		path:    path,
		checked: make(map[string]bool),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return nil, fmt.Errorf("進捗ファイルの読み込みに失敗: %w", err)
	}

	if err := json.Unmarshal(data, &p.checked); err != nil {
		return nil, fmt.Errorf("進捗ファイルのデコードに失敗: %w", err)
	}
	return p, nil
}

// Done はウィンドウが収集済みかどうかを返します
func (p *Progress) Done(r DateRange) bool {
	return p.checked[r.Key()]
}

// MarkDone はウィンドウを収集済みとして記録します
func (p *Progress) MarkDone(r DateRange) {
	p.checked[r.Key()] = true
}

// Save は進捗をファイルに書き出します
func (p *Progress) Save() error {
	data, err := json.MarshalIndent(p.checked, "", "  ")
	if err != nil {
		return fmt.Errorf("進捗のエンコードに失敗: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0644); err != nil {
		return fmt.Errorf("進捗ファイルの書き込みに失敗: %w", err)
	}
	return nil
}
