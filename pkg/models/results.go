package models

// ResultRow は結果CSVファイル（week, sentiment 列）の1行です
type ResultRow struct {
	Week      int    `csv:"week"`
	Sentiment string `csv:"sentiment"`
}

// WeeklyNegativity は1週分のネガティブ率の集計結果です
type WeeklyNegativity struct {
	Week       int     `json:"week"`
	Total      int     `json:"total"`
	Negative   int     `json:"negative"`
	Percentage float64 `json:"percentage"`
}

// SplitExportRow は分割済みデータセットのCSVエクスポート用の行です
type SplitExportRow struct {
	Text  string `csv:"text"`
	Label int    `csv:"label"`
}

// AnnotatedRow はLLMアノテーション結果のCSVエクスポート用の行です
// dataset load がそのまま読める列構成にしてある
type AnnotatedRow struct {
	Text      string `csv:"text"`
	Sentiment string `csv:"sentiment"`
}

// CollectedPost は収集した投稿1件です（weekN.json の要素）
// Text はスクレイピング結果が欠損した場合に null になりうる
type CollectedPost struct {
	Text *string `json:"text"`
	Week int     `json:"week"`
}
