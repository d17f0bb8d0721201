// Package reply cleans chat-model output into text a robot can speak
// and decides when to prefix the one-time session greeting.
package reply

import (
	"regexp"
	"strings"
)

var (
	newlineRunPattern    = regexp.MustCompile(`\n+`)
	whitespaceRunPattern = regexp.MustCompile(`\s{2,}`)
	boldPattern          = regexp.MustCompile(`\*\*(.*?)\*\*`)
	underlinePattern     = regexp.MustCompile(`__(.*?)__`)
)

// emojiRanges lists the pictograph blocks stripped from replies.
// The last range is intentionally broad and covers enclosed
// alphanumerics through the supplemental symbol planes.
var emojiRanges = [...]struct{ lo, hi rune }{
	{0x1F300, 0x1F5FF},
	{0x1F600, 0x1F64F},
	{0x1F680, 0x1F6FF},
	{0x1F700, 0x1F77F},
	{0x1F780, 0x1F7FF},
	{0x1F800, 0x1F8FF},
	{0x1F900, 0x1F9FF},
	{0x1FA00, 0x1FA6F},
	{0x1FA70, 0x1FAFF},
	{0x2702, 0x27B0},
	{0x24C2, 0x1F251},
}

// Normalize cleans raw chat-model output into a single presentable
// line: line breaks and whitespace runs collapse to single spaces,
// bold/emphasis markers are stripped keeping the inner text, and emoji
// are removed. Pure and idempotent; never fails. May return the empty
// string when the input is only whitespace or emoji.
func Normalize(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = newlineRunPattern.ReplaceAllString(text, " ")
	text = whitespaceRunPattern.ReplaceAllString(text, " ")
	text = boldPattern.ReplaceAllString(text, "$1")
	text = underlinePattern.ReplaceAllString(text, "$1")
	text = stripEmoji(text)
	// Emoji removal can leave adjacent spaces behind; collapse once
	// more so Normalize(Normalize(s)) == Normalize(s).
	text = whitespaceRunPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func stripEmoji(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isEmoji(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isEmoji(r rune) bool {
	for _, rng := range emojiRanges {
		if r >= rng.lo && r <= rng.hi {
			return true
		}
	}
	return false
}
