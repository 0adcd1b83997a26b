package mjml

import (
	"golang.org/x/net/html"
)

// skipElement consumes the element whose start tag is the current token together with all of
// its content and records an ErrUnknownElement warning spanning the whole element. Nested
// elements are tracked by depth; void and self-closing tags do not nest. Reaching the end of
// input before the element is closed is fatal.
func (p *parser) skipElement() error {
	tag := p.tok.Data
	start := p.off
	startSpan := p.span()

	if p.tt == html.SelfClosingTagToken || isVoid(tag) {
		p.warn(ErrUnknownElement, tag, startSpan)
		return nil
	}

	for depth := 1; depth > 0; {
		switch p.next() {
		case html.ErrorToken:
			err := p.eofError(tag)
			err.Span = startSpan
			return err
		case html.StartTagToken:
			if !isVoid(p.tok.Data) {
				depth++
			}
		case html.EndTagToken:
			depth--
		}
	}

	p.warn(ErrUnknownElement, tag, p.lines.span(start, p.consumed()-start))
	return nil
}
