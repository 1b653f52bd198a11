package chunker

import (
	"strings"
	"unicode/utf8"
)

const runesPerToken = 4

// EstimateTokens approximates the model token count of text without a model
// tokenizer. Latin prose averages ~4 runes per token; short fragments are
// bounded below by their word count so single words never round to zero.
func EstimateTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	charTokens := utf8.RuneCountInString(text) / runesPerToken
	wordTokens := len(strings.Fields(text))

	tokens := max(charTokens, wordTokens)
	if tokens < 1 {
		tokens = 1
	}

	return tokens
}
