// Package dump renders a document as annotated source: each line of
// input followed by caret underlines naming the kind of every
// occurrence that starts on it.
package dump

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"occlight/internal/occurrence"
)

// Document formats doc against the source it was generated from.
// Underlines are aligned by display width, so wide characters (CJK,
// emoji) keep the carets under the text they label.
func Document(doc *occurrence.Document, source string) string {
	lines := splitLines(source)

	byRow := make(map[int][]occurrence.Occurrence)
	for _, occ := range doc.Occurrences {
		byRow[occ.Range.Start.Row] = append(byRow[occ.Range.Start.Row], occ)
	}

	var b strings.Builder
	for row, line := range lines {
		fmt.Fprintf(&b, "%4d: %s\n", row, line)
		for _, occ := range byRow[row] {
			writeUnderline(&b, line, occ)
		}
	}
	return b.String()
}

// writeUnderline emits one caret row for occ. A range that continues
// onto later lines is underlined to the end of its first line.
func writeUnderline(b *strings.Builder, line string, occ occurrence.Occurrence) {
	runes := []rune(line)
	start := occ.Range.Start.Col
	if start > len(runes) {
		start = len(runes)
	}
	end := occ.Range.End.Col
	if occ.Range.End.Row > occ.Range.Start.Row || end > len(runes) {
		end = len(runes)
	}

	pad := runewidth.StringWidth(string(runes[:start]))
	width := runewidth.StringWidth(string(runes[start:end]))
	if width < 1 {
		width = 1
	}

	b.WriteString("      ")
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(strings.Repeat("^", width))
	b.WriteString(" ")
	b.WriteString(occ.Kind.String())
	b.WriteString("\n")
}

func splitLines(source string) []string {
	var lines []string
	for len(source) > 0 {
		n := strings.IndexByte(source, '\n')
		if n < 0 {
			lines = append(lines, source)
			break
		}
		lines = append(lines, strings.TrimSuffix(source[:n], "\r"))
		source = source[n+1:]
	}
	return lines
}
