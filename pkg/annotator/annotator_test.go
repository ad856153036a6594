package annotator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("APIキーなしはエラー", func(t *testing.T) {
		_, err := New("", "gpt-4o-mini", map[string]int{"negative": 0, "positive": 1})
		assert.ErrorIs(t, err, ErrAPIKeyNotSet)
	})

	t.Run("モデル省略時はデフォルト", func(t *testing.T) {
		a, err := New("test-key", "", map[string]int{"negative": 0, "positive": 1})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, a.model)
	})

	t.Run("ラベル語彙は対応表のキーを昇順で持つ", func(t *testing.T) {
		a, err := New("test-key", "gpt-4o-mini", map[string]int{"positive": 1, "negative": 0, "neutral": 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"negative", "neutral", "positive"}, a.labels)
	})
}

func TestAnnotator_BuildPrompt(t *testing.T) {
	a, err := New("test-key", "gpt-4o-mini", map[string]int{"negative": 0, "positive": 1})
	require.NoError(t, err)

	prompt := a.buildPrompt([]string{"harika bir gün", "berbat"})

	assert.Contains(t, prompt, "2件")
	assert.Contains(t, prompt, "negative, positive")
	assert.Contains(t, prompt, "1. harika bir gün")
	assert.Contains(t, prompt, "2. berbat")
}

func TestAnnotator_IsKnownLabel(t *testing.T) {
	a, err := New("test-key", "gpt-4o-mini", map[string]int{"negative": 0, "positive": 1})
	require.NoError(t, err)

	assert.True(t, a.isKnownLabel("negative"))
	assert.True(t, a.isKnownLabel("positive"))
	assert.False(t, a.isKnownLabel("neutral"))
	assert.False(t, a.isKnownLabel(""))
}
