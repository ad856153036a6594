package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"time"
)

// chartColors はグループ棒グラフの系列ごとの色（最大3系列の比較を想定）
var chartColors = []string{
	"rgba(220, 53, 69, 0.8)",
	"rgba(13, 110, 253, 0.8)",
	"rgba(40, 167, 69, 0.8)",
}

// reportData はHTMLレポートに表示するデータを表します
type reportData struct {
	GeneratedAt  string
	Summaries    []seriesSummary
	LabelsJSON   template.JS // Chart.js に渡すJSON
	DatasetsJSON template.JS // Chart.js に渡すJSON
}

// seriesSummary はテーブル表示用の系列サマリです
type seriesSummary struct {
	Label     string
	WeekCount int
	Total     int
	Negative  int
}

type chartDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor string    `json:"backgroundColor"`
}

// WriteHTML は週次ネガティブ率の比較レポートをHTMLファイルに出力します
func WriteHTML(series []Series, outputPath string) error {
	html, err := renderHTML(series)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("HTMLファイルの書き込みに失敗: %w", err)
	}
	return nil
}

// renderHTML はHTMLテンプレートをレンダリングします
func renderHTML(series []Series) (string, error) {
	weeks := AllWeeks(series)

	labels := make([]string, 0, len(weeks))
	for _, week := range weeks {
		labels = append(labels, fmt.Sprintf("Week %d", week))
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("ラベルのエンコードに失敗: %w", err)
	}

	datasets := make([]chartDataset, 0, len(series))
	for i, s := range series {
		data := make([]float64, 0, len(weeks))
		for _, week := range weeks {
			data = append(data, percentageFor(s, week))
		}
		datasets = append(datasets, chartDataset{
			Label:           s.Label,
			Data:            data,
			BackgroundColor: chartColors[i%len(chartColors)],
		})
	}
	datasetsJSON, err := json.Marshal(datasets)
	if err != nil {
		return "", fmt.Errorf("系列データのエンコードに失敗: %w", err)
	}

	summaries := make([]seriesSummary, 0, len(series))
	for _, s := range series {
		sum := seriesSummary{Label: s.Label, WeekCount: len(s.Weeks)}
		for _, w := range s.Weeks {
			sum.Total += w.Total
			sum.Negative += w.Negative
		}
		summaries = append(summaries, sum)
	}

	data := &reportData{
		GeneratedAt:  time.Now().Format("2006-01-02 15:04:05"),
		Summaries:    summaries,
		LabelsJSON:   template.JS(labelsJSON),
		DatasetsJSON: template.JS(datasetsJSON),
	}

	t, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return "", fmt.Errorf("テンプレートの解析に失敗: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("テンプレートの実行に失敗: %w", err)
	}

	return buf.String(), nil
}

const reportTemplate = `<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <title>週次ネガティブ率レポート</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.0/dist/chart.umd.min.js"></script>
    <style>
        body { font-family: sans-serif; margin: 2rem; background: #f8f9fa; }
        h1 { font-size: 1.5rem; }
        .meta { color: #6c757d; margin-bottom: 1.5rem; }
        .chart-container { position: relative; height: 400px; background: #fff; padding: 1rem; border-radius: 8px; }
        table { border-collapse: collapse; margin-top: 2rem; background: #fff; }
        th, td { border: 1px solid #dee2e6; padding: 0.4rem 0.8rem; text-align: right; }
        th { background: #e9ecef; }
    </style>
</head>
<body>
    <h1>週次ネガティブ率の比較</h1>
    <div class="meta">生成日時: {{.GeneratedAt}}</div>

    <div class="chart-container">
        <canvas id="weeklyChart"></canvas>
    </div>

    <table>
        <thead>
            <tr><th>系列</th><th>週数</th><th>総投稿数</th><th>ネガティブ数</th></tr>
        </thead>
        <tbody>
            {{range .Summaries}}
            <tr>
                <td>{{.Label}}</td>
                <td>{{.WeekCount}}</td>
                <td>{{.Total}}</td>
                <td>{{.Negative}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <script>
        // 週ごとのネガティブ率グループ棒グラフ
        new Chart(document.getElementById('weeklyChart'), {
            type: 'bar',
            data: {
                labels: {{.LabelsJSON}},
                datasets: {{.DatasetsJSON}}
            },
            options: {
                responsive: true,
                maintainAspectRatio: false,
                plugins: {
                    legend: { position: 'bottom' }
                },
                scales: {
                    y: {
                        beginAtZero: true,
                        max: 100,
                        title: { display: true, text: 'ネガティブ率 (%)' }
                    }
                }
            }
        });
    </script>
</body>
</html>`
