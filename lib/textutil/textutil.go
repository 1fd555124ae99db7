package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanCell normalizes text scraped out of a table cell: drops
// non-printable runes, trims, and collapses runs of whitespace.
func CleanCell(s string) string {
	kept := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || c == '\n' {
			kept.WriteRune(c)
		}
	}
	s = strings.Trim(kept.String(), " \t\n")
	return innerWhitespace.ReplaceAllString(s, " ")
}

// FoldLines replaces newlines with `sep`, the way multi-line cells
// (e.g. document label lists) are flattened for display.
func FoldLines(s, sep string) string {
	lines := strings.Split(s, "\n")
	trimmed := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		trimmed = append(trimmed, l)
	}
	return strings.Join(trimmed, sep)
}

// JoinLines joins a list into one newline-separated spreadsheet cell.
func JoinLines(items []string) string {
	return strings.Join(items, "\n")
}
