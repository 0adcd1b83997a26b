package mjml

import (
	"fmt"
	"unicode/utf8"
)

// Span represents a source location in a file
type Span struct {
	Offset int // Byte offset in the file
	Line   int // 1-based line number
	Column int // 1-based column number (in runes, not bytes)
	Length int // Length in bytes
}

// IsZero returns true if the span is uninitialized
func (s Span) IsZero() bool {
	return s.Offset == 0 && s.Line == 0 && s.Column == 0 && s.Length == 0
}

// End returns the end offset of the span
func (s Span) End() int {
	return s.Offset + s.Length
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// lineIndex converts byte offsets of a source text to line and column numbers.
type lineIndex struct {
	src   string
	lines []int // byte offsets of line starts
}

func newLineIndex(src string) *lineIndex {
	li := &lineIndex{src: src, lines: []int{0}}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			li.lines = append(li.lines, i+1)
		}
	}
	return li
}

// span builds a Span for the byte range [offset, offset+length).
func (li *lineIndex) span(offset, length int) Span {
	if offset > len(li.src) {
		offset = len(li.src)
	}
	lo, hi := 0, len(li.lines)
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if li.lines[mid] <= offset {
			lo = mid
		} else {
			hi = mid
		}
	}
	col := utf8.RuneCountInString(li.src[li.lines[lo]:offset]) + 1
	return Span{Offset: offset, Line: lo + 1, Column: col, Length: length}
}
