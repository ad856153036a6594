package collector

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekRanges(t *testing.T) {
	start := time.Date(2024, 8, 9, 0, 0, 0, 0, time.UTC)

	ranges := WeekRanges(start, 3)
	require.Len(t, ranges, 3)

	assert.Equal(t, DateRange{Start: "2024-08-09", End: "2024-08-15"}, ranges[0])
	assert.Equal(t, DateRange{Start: "2024-08-16", End: "2024-08-22"}, ranges[1])
	assert.Equal(t, DateRange{Start: "2024-08-23", End: "2024-08-29"}, ranges[2])
}

func TestWeekRanges_MonthBoundary(t *testing.T) {
	start := time.Date(2024, 12, 28, 0, 0, 0, 0, time.UTC)

	ranges := WeekRanges(start, 2)
	require.Len(t, ranges, 2)

	// 年またぎでも連続した7日ウィンドウになる
	assert.Equal(t, DateRange{Start: "2024-12-28", End: "2025-01-03"}, ranges[0])
	assert.Equal(t, DateRange{Start: "2025-01-04", End: "2025-01-10"}, ranges[1])
}

func TestDateRange_Key(t *testing.T) {
	r := DateRange{Start: "2024-08-09", End: "2024-08-15"}
	assert.Equal(t, "2024-08-09_to_2024-08-15", r.Key())
}

func TestLoadRanges(t *testing.T) {
	dir := t.TempDir()

	t.Run("正常なウィンドウ定義", func(t *testing.T) {
		path := filepath.Join(dir, "ranges.json")
		content := `[{"start": "2024-08-09", "end": "2024-08-15"}, {"start": "2024-08-16", "end": "2024-08-22"}]`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		ranges, err := LoadRanges(path)
		require.NoError(t, err)
		require.Len(t, ranges, 2)
		assert.Equal(t, "2024-08-09", ranges[0].Start)
	})

	t.Run("不正な日付形式", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		content := `[{"start": "09/08/2024", "end": "2024-08-15"}]`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		_, err := LoadRanges(path)
		assert.Error(t, err)
	})

	t.Run("存在しないファイル", func(t *testing.T) {
		_, err := LoadRanges(filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
	})
}

func TestProgress(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "progress.json")

	// 存在しないファイルは空の進捗として扱う
	progress, err := LoadProgress(path)
	require.NoError(t, err)

	window := DateRange{Start: "2024-08-09", End: "2024-08-15"}
	assert.False(t, progress.Done(window))

	progress.MarkDone(window)
	assert.True(t, progress.Done(window))
	require.NoError(t, progress.Save())

	// 再読み込みしても完了状態が残る
	reloaded, err := LoadProgress(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Done(window))
	assert.False(t, reloaded.Done(DateRange{Start: "2024-08-16", End: "2024-08-22"}))
}

func TestBuildSearchURL(t *testing.T) {
	url := buildSearchURL("deprem", DateRange{Start: "2024-08-09", End: "2024-08-15"})

	assert.Contains(t, url, "https://twitter.com/search?q=")
	assert.Contains(t, url, "deprem")
	assert.Contains(t, url, "since%3A2024-08-09")
	assert.Contains(t, url, "until%3A2024-08-15")
	assert.Contains(t, url, "f=live")
}
