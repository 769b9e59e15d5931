package predict

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxInputLength caps the text accepted by the prediction endpoint, in runes.
const MaxInputLength = 500

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	suspiciousRe = regexp.MustCompile(`(?i)<script|javascript:|data:|vbscript:`)
)

// Sanitize strips tags, collapses whitespace and truncates to MaxInputLength
// runes.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	text = tagRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if utf8.RuneCountInString(text) > MaxInputLength {
		text = string([]rune(text)[:MaxInputLength])
	}
	return text
}

// Validate reports whether raw endpoint input is worth predicting from: non
// blank, not over MaxInputLength and free of script-like payloads.
func Validate(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if utf8.RuneCountInString(text) > MaxInputLength {
		return false
	}
	return !suspiciousRe.MatchString(text)
}
