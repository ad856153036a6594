package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "URL・メンション・記号を含むテキスト",
			input:    "Check this out! http://example.com @john #cool",
			expected: "check this out cool",
		},
		{
			name:     "URLとメンションのみ",
			input:    "@user1 https://t.co/abc123",
			expected: "",
		},
		{
			name:     "wwwで始まるURL",
			input:    "visit www.example.com today",
			expected: "visit today",
		},
		{
			name:     "大文字の小文字化",
			input:    "HELLO World",
			expected: "hello world",
		},
		{
			name:     "前後の空白の除去",
			input:    "  hello  ",
			expected: "hello",
		},
		{
			name:     "連続する空白の圧縮",
			input:    "hello    world",
			expected: "hello world",
		},
		{
			name:     "トルコ語の文字を保持する",
			input:    "Güzel bir gün! Çok iyi",
			expected: "güzel bir gün çok iyi",
		},
		{
			name:     "アンダースコアは単語文字として残る",
			input:    "snake_case text",
			expected: "snake_case text",
		},
		{
			name:     "数字を保持する",
			input:    "price is 100 TL!",
			expected: "price is 100 tl",
		},
		{
			name:     "絵文字の除去",
			input:    "great day 😀🎉",
			expected: "great day",
		},
		{
			name:     "空文字列",
			input:    "",
			expected: "",
		},
		{
			name:     "記号のみ",
			input:    "!!! ??? ...",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.input))
		})
	}
}

// TestClean_Idempotent は正規化済みテキストに再適用しても変化しないことを確認します
func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"Check this out! http://example.com @john #cool",
		"Güzel bir gün! Çok iyi",
		"  MIXED   case  @mention  ",
		"",
	}

	for _, input := range inputs {
		once := Clean(input)
		twice := Clean(once)
		assert.Equal(t, once, twice, "input: %q", input)
	}
}
