package mjml

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// msoMode tells which clients see the markup being written.
type msoMode int

const (
	modeAll    msoMode = iota
	modeMSO            // <!--[if mso | IE]> ... <![endif]-->
	modeNotMSO         // <!--[if !mso]><!--> ... <!--<![endif]-->
)

func (m msoMode) String() string {
	switch m {
	case modeMSO:
		return "mso"
	case modeNotMSO:
		return "!mso"
	}
	return "all"
}

type openTag struct {
	name string
	mode msoMode
}

// htmlWriter accumulates the output document. It tracks every tag it opens together with the
// conditional block the tag was opened in: a tag opened for Outlook only must be closed for
// Outlook only (possibly in a later conditional block), and a tag visible to every client must
// be closed outside of any conditional. The first violation is kept in err.
type htmlWriter struct {
	sb   strings.Builder
	mode msoMode
	open []openTag
	err  error
}

func (w *htmlWriter) fail(format string, args ...any) {
	if w.err == nil {
		w.err = fmt.Errorf(format, args...)
	}
}

func (w *htmlWriter) startMSO() {
	if w.mode != modeAll {
		w.fail("conditional block opened inside %s block", w.mode)
	}
	w.sb.WriteString("<!--[if mso | IE]>")
	w.mode = modeMSO
}

func (w *htmlWriter) endMSO() {
	if w.mode != modeMSO {
		w.fail("closing mso block while in %s block", w.mode)
	}
	w.sb.WriteString("<![endif]-->")
	w.mode = modeAll
}

func (w *htmlWriter) startNotMSO() {
	if w.mode != modeAll {
		w.fail("conditional block opened inside %s block", w.mode)
	}
	w.sb.WriteString("<!--[if !mso]><!-->")
	w.mode = modeNotMSO
}

func (w *htmlWriter) endNotMSO() {
	if w.mode != modeNotMSO {
		w.fail("closing !mso block while in %s block", w.mode)
	}
	w.sb.WriteString("<!--<![endif]-->")
	w.mode = modeAll
}

// mso writes the output of f for Outlook only.
func (w *htmlWriter) mso(f func()) {
	w.startMSO()
	f()
	w.endMSO()
}

// notMSO writes the output of f for every client except Outlook.
func (w *htmlWriter) notMSO(f func()) {
	w.startNotMSO()
	f()
	w.endNotMSO()
}

func (w *htmlWriter) openTag(name string, attrs ...attr) {
	w.sb.WriteByte('<')
	w.sb.WriteString(name)
	writeAttrs(&w.sb, attrs)
	w.sb.WriteByte('>')
	w.open = append(w.open, openTag{name: name, mode: w.mode})
}

func (w *htmlWriter) closeTag(name string) {
	n := len(w.open)
	switch {
	case n == 0:
		w.fail("closing </%s> with no open tags", name)
	case w.open[n-1].name != name:
		w.fail("closing </%s> while <%s> is open", name, w.open[n-1].name)
	case w.open[n-1].mode != w.mode:
		w.fail("<%s> opened in %s block is closed in %s block", name, w.open[n-1].mode, w.mode)
	}
	if n > 0 {
		w.open = w.open[:n-1]
	}
	w.sb.WriteString("</")
	w.sb.WriteString(name)
	w.sb.WriteByte('>')
}

// voidTag writes a self-closing tag.
func (w *htmlWriter) voidTag(name string, attrs ...attr) {
	w.sb.WriteByte('<')
	w.sb.WriteString(name)
	writeAttrs(&w.sb, attrs)
	w.sb.WriteString(" />")
}

// raw writes s as is. Raw content is not tracked.
func (w *htmlWriter) raw(s string) {
	w.sb.WriteString(s)
}

func (w *htmlWriter) text(s string) {
	w.sb.WriteString(html.EscapeString(s))
}

func (w *htmlWriter) finish() error {
	if w.err != nil {
		return w.err
	}
	if w.mode != modeAll {
		return fmt.Errorf("%s block is not closed", w.mode)
	}
	if n := len(w.open); n > 0 {
		return fmt.Errorf("<%s> is not closed", w.open[n-1].name)
	}
	return nil
}

func (w *htmlWriter) String() string {
	return w.sb.String()
}

// attr is an output attribute. Attributes with an empty value are omitted unless keep is set.
type attr struct {
	key, val string
	keep     bool
}

func a(key, val string) attr { return attr{key: key, val: val} }

// ak keeps the attribute even when val is empty (alt="").
func ak(key, val string) attr { return attr{key: key, val: val, keep: true} }

func writeAttrs(sb *strings.Builder, attrs []attr) {
	for _, at := range attrs {
		if at.val == "" && !at.keep {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(at.key)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(at.val))
		sb.WriteByte('"')
	}
}

// css builds a style attribute value from key/value pairs, skipping empty values.
func css(kv ...string) string {
	var sb strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		sb.WriteString(kv[i])
		sb.WriteByte(':')
		sb.WriteString(kv[i+1])
		sb.WriteByte(';')
	}
	return sb.String()
}

// adjacentConditionals matches the end of an Outlook block followed by the start of another.
// The end of a !mso block (<!--<![endif]-->) is left alone.
var adjacentConditionals = regexp.MustCompile(`([^-])<!\[endif\]-->\s*<!--\[if mso \| IE\]>`)

// mergeConditionals joins conditional blocks that follow each other.
func mergeConditionals(s string) string {
	return adjacentConditionals.ReplaceAllString(s, "${1}")
}
