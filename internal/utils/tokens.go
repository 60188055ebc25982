package utils

// Token estimation for chat history budgeting. The heuristic is about four
// characters per token, which is close enough for trimming context.

// CountTokens estimates the number of tokens in the given text.
func CountTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := len([]rune(text)) / 4
	if tokens == 0 {
		return 1
	}
	return tokens
}

// TruncateToTokenLimit truncates text to roughly fit within a token limit.
func TruncateToTokenLimit(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	charLimit := limit * 4
	if charLimit >= len(runes) {
		return text
	}
	return string(runes[:charLimit])
}

// KeepNewest returns the index of the oldest entry that still fits when
// texts are kept newest-first within budget tokens. The newest entry is
// always kept, so the result is at most len(texts)-1.
func KeepNewest(texts []string, budget int) int {
	if len(texts) == 0 {
		return 0
	}
	used := 0
	for i := len(texts) - 1; i >= 0; i-- {
		used += CountTokens(texts[i])
		if used > budget && i < len(texts)-1 {
			return i + 1
		}
	}
	return 0
}
