// Package position converts between byte offsets and line/column coordinates
// in buffer text, and extracts token spans for diagnostics that only carry a
// start location.
package position

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Place is a line/character coordinate. Whether it is 0- or 1-based depends
// on the producer; the checker's output is 1-based, LSP is 0-based.
type Place struct {
	Line      int
	Character int
}

// Range is a half-open span between two places.
type Range struct {
	Start Place
	End   Place
}

// RawPosition represents a position in the source text.
type RawPosition struct {
	// Offset is the byte offset in the source text.
	Offset int
	// Text is the actual text at this position.
	Text string
}

// NewBasicPosition builds a RawPosition from text and offset.
func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

// ID returns a unique identifier for this position based on offset and text.
func (p RawPosition) ID() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

// Length returns the length of the text at this position.
func (p RawPosition) Length() int {
	return len(p.Text)
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

// GetLineAndColumn calculates the line and column number for the position in
// text. Returns zero-based line and column numbers.
func (p RawPosition) GetLineAndColumn(text string) (line, col int) {
	if p.Offset == 0 {
		return 0, 0
	}

	lastNewline := -1
	for i := 0; i < p.Offset && i < len(text); i++ {
		if text[i] == '\n' {
			line++
			lastNewline = i
		}
	}
	col = p.Offset - lastNewline - 1
	return line, col
}

// GetEndPosition returns the zero-length position just past this one.
func (p RawPosition) GetEndPosition() RawPosition {
	return RawPosition{Offset: p.Offset + p.Length()}
}

// GetRange calculates the zero-based line/column range covered by p.
func (p RawPosition) GetRange(fileText string) Range {
	startLine, startCol := p.GetLineAndColumn(fileText)
	endLine, endCol := p.GetEndPosition().GetLineAndColumn(fileText)
	return Range{
		Start: Place{Line: startLine, Character: startCol},
		End:   Place{Line: endLine, Character: endCol},
	}
}

// OffsetFromPlace converts a 1-based line/column place to a byte offset in
// text. Out-of-range lines clamp to the end of the text, out-of-range
// columns to the end of their line.
func OffsetFromPlace(place Place, text string) int {
	if place.Line < 1 {
		return 0
	}
	offset := 0
	lines := strings.SplitAfter(text, "\n")
	for i := 0; i < place.Line-1; i++ {
		if i >= len(lines) {
			return len(text)
		}
		offset += len(lines[i])
	}
	col := place.Character - 1
	if col < 0 {
		col = 0
	}
	lineLen := 0
	if place.Line-1 < len(lines) {
		lineLen = len(strings.TrimRight(lines[place.Line-1], "\n"))
	}
	if col > lineLen {
		col = lineLen
	}
	return offset + col
}

// TokenRange returns the 1-based range covering the token that starts at the
// given 1-based place in text. A token extends to the next whitespace rune
// or end of line. If the place points at whitespace or past the end of the
// buffer, the range covers a single column, so the diagnostic still lands
// somewhere visible.
func TokenRange(place Place, text string) Range {
	start := OffsetFromPlace(place, text)
	end := start
	for end < len(text) {
		r, size := utf8.DecodeRuneInString(text[end:])
		if unicode.IsSpace(r) {
			break
		}
		end += size
	}
	if end == start {
		return Range{
			Start: place,
			End:   Place{Line: place.Line, Character: place.Character + 1},
		}
	}
	return Range{
		Start: place,
		End:   Place{Line: place.Line, Character: place.Character + (end - start)},
	}
}
