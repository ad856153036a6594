package dataset

import (
	"regexp"
	"strings"
)

var (
	// URLトークン（スキームから空白まで）を丸ごと削除する
	reURL = regexp.MustCompile(`(?:https?://|www\.)\S+`)

	// @メンション（@ + 単語文字の連続）
	reMention = regexp.MustCompile(`@\w+`)

	// 単語文字（Unicode文字・数字・アンダースコア）でも空白でもない文字
	// 句読点・絵文字・記号がここで落ちる
	reSymbol = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

	// 連続する空白を1つに潰す
	reSpace = regexp.MustCompile(`\s+`)
)

// Clean は生テキストを正規化された小文字の形に変換します
// 冪等: Clean(Clean(x)) == Clean(x)
//
// 処理順序は固定: URL除去とメンション除去は記号除去より先に行う
// （先に記号を落とすと URL やメンションの断片が残ってしまうため）
func Clean(text string) string {
	if text == "" {
		return ""
	}

	s := reURL.ReplaceAllString(text, "")
	s = reMention.ReplaceAllString(s, "")
	s = reSymbol.ReplaceAllString(s, "")
	s = reSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	return strings.ToLower(s)
}
