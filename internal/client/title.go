package client

import (
	"regexp"
	"strings"
)

const (
	defaultChatTitle = "New Chat"
	maxTitleRunes    = 50
)

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// GenerateChatTitle derives a session title from the first user message:
// punctuation stripped, trimmed, truncated to 50 runes with an ellipsis.
func GenerateChatTitle(firstMessage string) string {
	clean := nonWordRe.ReplaceAllString(strings.TrimSpace(firstMessage), "")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return defaultChatTitle
	}
	runes := []rune(clean)
	if len(runes) > maxTitleRunes {
		return string(runes[:maxTitleRunes]) + "..."
	}
	return clean
}
