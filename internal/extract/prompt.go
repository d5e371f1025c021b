package extract

import (
	"fmt"
	"strings"

	"github.com/araroot/kotomine/internal/model"
)

// BuildPrompt constructs the vocabulary-extraction prompt for one subtitle.
// deletedWords are items the user marked as not useful; they go into the
// skip section so the model stops suggesting them.
func BuildPrompt(subtitle string, platform model.Platform, deletedWords []string) string {
	deletedSection := ""
	if len(deletedWords) > 0 {
		deletedSection = fmt.Sprintf("\n✗ SKIP these words the user marked as not useful: %s",
			strings.Join(deletedWords, ", "))
	}

	return fmt.Sprintf(`Analyze this Japanese subtitle from %s: "%s"

You are helping an N2 level learner. Extract vocabulary and expressions that would be useful for learning:

INCLUDE (be generous):
✓ Any word/expression above N3 level (N2, N1, or beyond JLPT)
✓ Honorifics and keigo: いらっしゃる, おっしゃる, 申す, 伺う
✓ Useful verbs and adjectives beyond basic ones
✓ Slang and colloquial expressions: やばい, マジで, ぶっちゃけ
✓ Idiomatic expressions: 気が利く, 腹が立つ
✓ Polite expressions: しょうがない, 構わない
✓ Common conversational words: 懐かしい, 相応しい, ややこしい, もったいない, 微妙
✓ Extract COMPLETE expressions with okurigana

SKIP (be strict here):
✗ Only these VERY basic words: です, ます, する, いる, ある, 行く, 来る, 見る, 食べる, 飲む, 今日, 明日, 時間, 人, 何, これ, それ, あれ
✗ Particles alone: は, が, を, に, で, と
✗ Basic adjectives: 良い, 悪い, 大きい, 小さい%s

Be VERY INCLUSIVE - extract as many useful words as possible (aim for 40-50 words if available). Include variations and related terms. Better to show more words than miss useful vocabulary

Format as JSON:
{
  "translation": "English translation of the full sentence",
  "words": [
    {
      "word": "しょうがない",
      "reading": "しょうがない",
      "meaning": "it can't be helped"
    }
  ]
}

IMPORTANT: Always include "translation" with the English translation of the full subtitle.
If there are NO suitable expressions, return: {"translation": "...", "words":[]}
Return ONLY the JSON, no other text.`, platform, subtitle, deletedSection)
}
