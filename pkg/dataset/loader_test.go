package dataset

import (
	"strings"
	"testing"

	"github.com/jinford/sns-sentiment/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_LoadRecords(t *testing.T) {
	loader := NewLoader(LoaderConfig{})

	records := []models.Record{
		{Text: "Great!", Sentiment: "positive"},
		{Text: "Bad.", Sentiment: "negative"},
	}

	result, err := loader.LoadRecords(records, "test")
	require.NoError(t, err)

	require.Equal(t, 2, result.Dataset.Len())
	assert.Equal(t, "great", result.Dataset.Examples[0].Text)
	assert.Equal(t, 1, result.Dataset.Examples[0].Label)
	assert.Equal(t, "bad", result.Dataset.Examples[1].Text)
	assert.Equal(t, 0, result.Dataset.Examples[1].Label)
	assert.Equal(t, 0, result.Skipped)
}

func TestLoader_LoadRecords_UnknownLabel(t *testing.T) {
	records := []models.Record{
		{Text: "good", Sentiment: "positive"},
		{Text: "meh", Sentiment: "neutral"},
		{Text: "bad", Sentiment: "negative"},
		{Text: "hmm", Sentiment: "neutral"},
	}

	t.Run("lenientモードでは除外して集計する", func(t *testing.T) {
		loader := NewLoader(LoaderConfig{})

		result, err := loader.LoadRecords(records, "test")
		require.NoError(t, err)

		assert.Equal(t, 2, result.Dataset.Len())
		assert.Equal(t, 2, result.Skipped)
		assert.Equal(t, 2, result.UnknownLabels["neutral"])

		// 除外後も入力順序を保持する
		assert.Equal(t, []int{1, 0}, result.Dataset.Labels())
	})

	t.Run("strictモードではエラーを返す", func(t *testing.T) {
		loader := NewLoader(LoaderConfig{Strict: true})

		_, err := loader.LoadRecords(records, "test")
		require.Error(t, err)

		var unknownErr *UnknownLabelError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, "neutral", unknownErr.Label)
		assert.Equal(t, 1, unknownErr.Row)
	})
}

func TestLoader_LoadCSV(t *testing.T) {
	csvData := `id,text,sentiment,extra
1,"Great day! http://example.com",positive,x
2,"@someone terrible...",negative,y
3,"unknown one",neutral,z
`

	loader := NewLoader(LoaderConfig{})

	result, err := loader.LoadCSV(strings.NewReader(csvData), "tweets")
	require.NoError(t, err)

	require.Equal(t, 2, result.Dataset.Len())
	assert.Equal(t, "great day", result.Dataset.Examples[0].Text)
	assert.Equal(t, 1, result.Dataset.Examples[0].Label)
	assert.Equal(t, "terrible", result.Dataset.Examples[1].Text)
	assert.Equal(t, 0, result.Dataset.Examples[1].Label)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "tweets", result.Dataset.Name)
}

func TestLoader_LoadCSV_CustomColumns(t *testing.T) {
	csvData := `tweet,label
"Nice!",pos
"Awful!",neg
`

	loader := NewLoader(LoaderConfig{
		TextColumn:  "tweet",
		LabelColumn: "label",
		LabelMapping: map[string]int{
			"neg": 0,
			"pos": 1,
		},
	})

	result, err := loader.LoadCSV(strings.NewReader(csvData), "custom")
	require.NoError(t, err)

	require.Equal(t, 2, result.Dataset.Len())
	assert.Equal(t, []int{1, 0}, result.Dataset.Labels())
}

func TestLoader_LoadCSV_MissingColumn(t *testing.T) {
	tests := []struct {
		name    string
		csvData string
	}{
		{
			name:    "テキスト列がない",
			csvData: "id,sentiment\n1,positive\n",
		},
		{
			name:    "ラベル列がない",
			csvData: "id,text\n1,hello\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(LoaderConfig{})
			_, err := loader.LoadCSV(strings.NewReader(tt.csvData), "test")
			assert.Error(t, err)
		})
	}
}

// TestLoader_LoadCSV_ShortRow は欠損セルを空文字列として扱うことを確認します
func TestLoader_LoadCSV_ShortRow(t *testing.T) {
	csvData := "text,sentiment\nhello\n"

	loader := NewLoader(LoaderConfig{})

	result, err := loader.LoadCSV(strings.NewReader(csvData), "test")
	require.NoError(t, err)

	// ラベルセルがない行は空文字ラベル扱いとなり lenient では除外される
	assert.Equal(t, 0, result.Dataset.Len())
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.UnknownLabels[""])
}
