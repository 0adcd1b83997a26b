package pages

import (
	"strings"

	"github.com/dpotapov/go-mjml/mjml"
)

// sourceLine is a template line shown on the error page.
type sourceLine struct {
	Number int
	Text   string
}

// sourceContext is an excerpt of a template around an error location.
type sourceContext struct {
	Lines       []sourceLine
	ErrorLine   int
	ErrorColumn int
	ErrorLength int
}

// newSourceContext cuts radius lines before and after the line of span out of src. It returns
// nil when span does not point into src.
func newSourceContext(src string, span mjml.Span, radius int) *sourceContext {
	if span.Line <= 0 {
		return nil
	}
	lines := strings.Split(src, "\n")
	if span.Line > len(lines) {
		return nil
	}

	from := max(1, span.Line-radius)
	to := min(len(lines), span.Line+radius)

	ctx := &sourceContext{
		ErrorLine:   span.Line,
		ErrorColumn: span.Column,
		ErrorLength: span.Length,
	}
	for n := from; n <= to; n++ {
		ctx.Lines = append(ctx.Lines, sourceLine{Number: n, Text: strings.TrimRight(lines[n-1], "\r")})
	}
	return ctx
}

// marker underlines the error on its line. Errors spanning several lines are underlined up to
// the end of the first one.
func (c *sourceContext) marker() string {
	var line string
	for _, l := range c.Lines {
		if l.Number == c.ErrorLine {
			line = l.Text
		}
	}
	col := max(c.ErrorColumn, 1)
	rest := len([]rune(line)) - (col - 1)
	n := min(max(c.ErrorLength, 1), max(rest, 1))
	return strings.Repeat(" ", col-1) + "^" + strings.Repeat("~", n-1)
}
