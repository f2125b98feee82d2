package utils

import "strings"

func breakWord(breakWords []string) string {
	if len(breakWords) == 0 {
		return "..."
	}
	return strings.Join(breakWords, "")
}

// RightWrap truncates a string from the left side, keeping the rightmost characters up to the specified limit.
// If no break words are provided, it defaults to using "..." as the truncation indicator.
func RightWrap(str string, limit int, breakWords ...string) string {
	if len(str) > limit {
		return breakWord(breakWords) + str[len(str)-limit:]
	}
	return str
}
