package textprovider

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reFormFeed   = regexp.MustCompile(`\s*\f\s*`)
)

// Normalize collapses noisy whitespace but keeps line breaks, which the
// field patterns use as terminators. Page breaks become a blank line.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reFormFeed.ReplaceAllString(s, "\n\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Snapshot returns the first maxLength runes of text, with "..." appended when clipped.
func Snapshot(text string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "..."
}

// VisibleLen counts non-whitespace runes.
func VisibleLen(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ', '\n', '\t', '\r', '\f', '\v':
		default:
			n++
		}
	}
	return n
}
