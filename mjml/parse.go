package mjml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ParserOptions configures Parse.
type ParserOptions struct {
	// Loader resolves mj-include paths. Nil fails every include.
	Loader Loader
	// File is the name of the document. Relative include paths resolve against it.
	File string
	Logger *zap.Logger
}

// Parse parses MJML markup. Unknown elements outside of the <mjml> root are skipped and
// reported as warnings; any other problem aborts parsing with a *ParseError.
func Parse(markup string, opts *ParserOptions) (*Document, []ParseWarning, error) {
	return ParseContext(context.Background(), markup, opts)
}

// ParseContext is like Parse, ctx is passed to the include loader.
func ParseContext(ctx context.Context, markup string, opts *ParserOptions) (*Document, []ParseWarning, error) {
	if opts == nil {
		opts = &ParserOptions{}
	}
	st := &parseState{ctx: ctx, loader: opts.Loader, log: opts.Logger}
	if st.loader == nil {
		st.loader = NoopLoader{}
	}
	if st.log == nil {
		st.log = zap.NewNop()
	}
	st.log = st.log.Named("parser")

	p := newParser(st, markup, opts.File)
	root, err := p.parseDocument()
	if err != nil {
		// Structural errors in a document that is cut in the middle of a tag are reported as
		// truncation, with the structural error attached.
		if !errors.Is(err, ErrUnexpectedEOF) {
			if span, ok := p.truncatedTag(); ok {
				err = &ParseError{Kind: ErrUnexpectedEOF, File: p.file, Span: span, Msg: "input ends inside a tag", Err: err}
			}
		}
		return nil, st.warnings, err
	}
	return &Document{Root: root}, st.warnings, nil
}

// parseState is shared by the parser of the main document and the parsers of its includes.
type parseState struct {
	ctx      context.Context
	loader   Loader
	log      *zap.Logger
	warnings []ParseWarning
}

// A parser builds the element tree of one source text. It uses the tokenizer from the
// golang.org/x/net/html package; the grammar of every element lives in elementSpecs.
type parser struct {
	*parseState

	z     *html.Tokenizer
	file  string
	lines *lineIndex
	// stack is the chain of files including this one, used for cycle detection.
	stack []string

	// tt, tok and raw describe the current token, off is its byte offset.
	tt  html.TokenType
	tok html.Token
	raw string
	off int
	// pending is set when the current token has been pushed back with unread.
	pending bool
}

func newParser(st *parseState, src, file string) *parser {
	return &parser{
		parseState: st,
		z:          html.NewTokenizer(strings.NewReader(src)),
		file:       file,
		lines:      newLineIndex(src),
	}
}

func (p *parser) next() html.TokenType {
	if p.pending {
		p.pending = false
		return p.tt
	}
	p.off += len(p.raw)
	p.tt = p.z.Next()
	// Raw must be copied before Token, which unescapes the buffer in place.
	p.raw = string(p.z.Raw())
	if p.tt == html.ErrorToken {
		p.tok = html.Token{}
	} else {
		p.tok = p.z.Token()
	}
	return p.tt
}

func (p *parser) unread() {
	p.pending = true
}

// consumed returns the offset right after the last consumed token.
func (p *parser) consumed() int {
	if p.pending {
		return p.off
	}
	return p.off + len(p.raw)
}

func (p *parser) span() Span {
	return p.lines.span(p.off, len(p.raw))
}

func (p *parser) errorf(kind error, tag string, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Tag: tag, File: p.file, Span: p.span(), Msg: fmt.Sprintf(format, args...)}
}

// eofError reports the end of input (or a tokenizer failure) while tag is still open.
func (p *parser) eofError(tag string) *ParseError {
	if err := p.z.Err(); err != nil && err != io.EOF {
		e := p.errorf(ErrUnexpectedToken, tag, "")
		e.Err = err
		return e
	}
	return p.errorf(ErrUnexpectedEOF, tag, "element is not closed")
}

func (p *parser) warn(kind error, tag string, span Span) {
	p.log.Debug("Skipped element", zap.String("tag", tag), zap.String("file", p.file), zap.Stringer("at", span))
	p.warnings = append(p.warnings, ParseWarning{Kind: kind, Tag: tag, File: p.file, Span: span})
}

// truncatedTag drains the tokenizer and reports whether the input ends in the middle of a tag.
func (p *parser) truncatedTag() (Span, bool) {
	p.pending = false
	for p.tt != html.ErrorToken {
		p.next()
	}
	if p.z.Err() == io.EOF && strings.HasPrefix(p.raw, "<") {
		return p.span(), true
	}
	return Span{}, false
}

func isBlank(s string) bool {
	return strings.TrimLeft(s, whitespace) == ""
}

// isConditional reports whether comment data is an Outlook conditional comment marker.
func isConditional(data string) bool {
	d := strings.TrimSpace(data)
	return strings.HasPrefix(d, "[if") || strings.HasPrefix(d, "<![endif]") || strings.HasPrefix(d, "[endif]")
}

func (p *parser) parseDocument() (*Element, error) {
	var root *Element
	for {
		switch p.next() {
		case html.ErrorToken:
			if err := p.z.Err(); err != io.EOF {
				return nil, p.eofError("")
			}
			if strings.HasPrefix(p.raw, "<") {
				return nil, p.errorf(ErrUnexpectedEOF, "", "input ends inside a tag")
			}
			if root == nil {
				return nil, p.errorf(ErrUnexpectedEOF, "mjml", "missing root element")
			}
			return root, nil
		case html.TextToken:
			if !isBlank(p.raw) {
				return nil, p.errorf(ErrUnexpectedToken, "", "text outside of the root element")
			}
		case html.CommentToken, html.DoctypeToken:
		case html.StartTagToken, html.SelfClosingTagToken:
			if p.tok.Data == "mjml" && root == nil {
				el, err := p.parseElement(KindMJML)
				if err != nil {
					return nil, err
				}
				root = el
				continue
			}
			if err := p.skipElement(); err != nil {
				return nil, err
			}
		case html.EndTagToken:
			return nil, p.errorf(ErrUnexpectedToken, p.tok.Data, "unexpected closing tag")
		}
	}
}

// parseElement parses the element whose start tag is the current token.
func (p *parser) parseElement(kind Kind) (*Element, error) {
	spec := elementSpecs[kind]
	tag := p.tok.Data
	start := p.off

	attrs, err := p.attrs(tag, spec.attrs)
	if err != nil {
		return nil, err
	}
	el := &Element{Kind: kind, Tag: tag, Attrs: attrs, File: p.file}

	if p.tt != html.SelfClosingTagToken {
		switch spec.content {
		case contentNone:
			err = p.parseEmpty(el)
		case contentElements:
			err = p.parseChildren(el, spec, false)
		case contentRaw:
			el.Children, err = p.parseRaw(tag, false)
		case contentText:
			err = p.parseText(el)
		}
		if err != nil {
			return nil, err
		}
	}
	if kind == KindMJML {
		el.Children = mergeRootParts(el.Children)
	}

	el.Span = p.lines.span(start, p.consumed()-start)
	return el, nil
}

func (p *parser) attrs(tag string, pol attrPolicy) (Attrs, error) {
	as := make(Attrs, 0, len(p.tok.Attr))
	for _, a := range p.tok.Attr {
		if pol.strict && !slices.Contains(pol.allowed, a.Key) {
			return nil, p.errorf(ErrUnexpectedAttribute, tag, "attribute %q", a.Key)
		}
		as = append(as, Attr{Key: a.Key, Val: a.Val})
	}
	for _, r := range pol.required {
		if _, ok := as.Get(r); !ok {
			return nil, p.errorf(ErrMissingAttribute, tag, "attribute %q is required", r)
		}
	}
	return as, nil
}

// parseEmpty consumes the content of an element that has no children. A start tag or a
// foreign end tag closes the element implicitly and is left for the parent.
func (p *parser) parseEmpty(el *Element) error {
	for {
		switch p.next() {
		case html.ErrorToken:
			return p.eofError(el.Tag)
		case html.TextToken:
			if !isBlank(p.raw) {
				return p.errorf(ErrUnexpectedToken, el.Tag, "unexpected text %q", strings.TrimSpace(p.raw))
			}
		case html.CommentToken:
		case html.EndTagToken:
			if p.tok.Data != el.Tag {
				p.unread()
			}
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			p.unread()
			return nil
		default:
			return p.errorf(ErrUnexpectedToken, el.Tag, "unexpected %s", p.tt)
		}
	}
}

// parseChildren parses component children of el until its end tag, or until the end of input
// when untilEOF is set (fragments pulled in by mj-include).
func (p *parser) parseChildren(el *Element, spec elementSpec, untilEOF bool) error {
	// mj-head and mj-body written directly in mjml, included ones are merged later
	var parts []Kind
	for {
		switch p.next() {
		case html.ErrorToken:
			if untilEOF && p.z.Err() == io.EOF {
				return nil
			}
			return p.eofError(el.Tag)
		case html.TextToken:
			if !isBlank(p.raw) {
				return p.errorf(ErrUnexpectedToken, el.Tag, "unexpected text %q", strings.TrimSpace(p.raw))
			}
		case html.CommentToken:
			if isConditional(p.tok.Data) {
				return p.errorf(ErrConditionalComment, el.Tag, "")
			}
			el.Children = append(el.Children, &Comment{Data: p.tok.Data, Span: p.span()})
		case html.StartTagToken, html.SelfClosingTagToken:
			tag := p.tok.Data
			if tag == "mj-include" {
				nodes, err := p.parseInclude(el, spec)
				if err != nil {
					return err
				}
				el.Children = append(el.Children, nodes...)
				continue
			}

			var kind Kind
			if el.Kind == KindAttributes {
				kind = attributeRuleKind(tag)
			} else {
				kind = KindOf(tag)
				if kind != KindUnknown && !spec.allows(kind) {
					return p.errorf(ErrUnexpectedToken, tag, "not allowed in <%s>", el.Tag)
				}
			}
			if kind == KindUnknown {
				return p.errorf(ErrUnknownElement, tag, "in <%s>", el.Tag)
			}
			if el.Kind == KindMJML && (kind == KindHead || kind == KindBody) {
				if slices.Contains(parts, kind) {
					return p.errorf(ErrUnexpectedToken, tag, "duplicate <%s>", tag)
				}
				parts = append(parts, kind)
			}

			child, err := p.parseElement(kind)
			if err != nil {
				return err
			}
			el.Children = append(el.Children, child)
		case html.EndTagToken:
			if !untilEOF && p.tok.Data == el.Tag {
				return nil
			}
			return p.errorf(ErrUnexpectedToken, p.tok.Data, "unexpected closing tag in <%s>", el.Tag)
		default:
			return p.errorf(ErrUnexpectedToken, el.Tag, "unexpected %s", p.tt)
		}
	}
}

// mergeRootParts folds the mj-head and mj-body elements of the root, inline or included, into
// one element each at the position of the first one. Children keep document order and a later
// mj-body attribute overrides an earlier one.
func mergeRootParts(children []Node) []Node {
	var head, body *Element
	out := make([]Node, 0, len(children))
	for _, n := range children {
		el, ok := n.(*Element)
		if !ok {
			out = append(out, n)
			continue
		}
		var first **Element
		switch el.Kind {
		case KindHead:
			first = &head
		case KindBody:
			first = &body
		default:
			out = append(out, n)
			continue
		}
		if *first == nil {
			*first = el
			out = append(out, el)
			continue
		}
		(*first).Children = append((*first).Children, el.Children...)
		(*first).Attrs = append((*first).Attrs, el.Attrs...)
	}
	return out
}

// parseRaw collects HTML content until the end tag of owner. With untilEOF the content runs to
// the end of input instead.
func (p *parser) parseRaw(owner string, untilEOF bool) ([]Node, error) {
	var (
		root  []Node
		stack []*RawElement
	)
	add := func(n Node) {
		if len(stack) == 0 {
			root = append(root, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	for {
		switch p.next() {
		case html.ErrorToken:
			if untilEOF && p.z.Err() == io.EOF {
				return root, nil
			}
			return nil, p.eofError(owner)
		case html.TextToken, html.DoctypeToken:
			add(&Text{Data: p.raw, Span: p.span()})
		case html.CommentToken:
			if isConditional(p.tok.Data) {
				add(&ConditionalComment{Data: p.raw, Span: p.span()})
			} else {
				add(&Comment{Data: p.tok.Data, Span: p.span()})
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			attrs := make(Attrs, 0, len(p.tok.Attr))
			for _, a := range p.tok.Attr {
				attrs = append(attrs, Attr{Key: a.Key, Val: a.Val})
			}
			re := &RawElement{
				Tag:         p.tok.Data,
				Open:        p.raw,
				Attrs:       attrs,
				SelfClosing: p.tt == html.SelfClosingTagToken || isVoid(p.tok.Data),
				Span:        p.span(),
			}
			add(re)
			if !re.SelfClosing {
				stack = append(stack, re)
			}
		case html.EndTagToken:
			name := p.tok.Data
			i := len(stack) - 1
			for i >= 0 && stack[i].Tag != name {
				i--
			}
			if i >= 0 {
				stack[i].Close = p.raw
				stack = stack[:i]
				continue
			}
			if !untilEOF && name == owner {
				return root, nil
			}
			// stray closing tag, kept as written
			add(&Text{Data: p.raw, Span: p.span()})
		}
	}
}

// parseText collects character data of mj-title, mj-preview and mj-style.
func (p *parser) parseText(el *Element) error {
	var (
		sb    strings.Builder
		start = -1
		end   int
	)
	for {
		switch p.next() {
		case html.ErrorToken:
			return p.eofError(el.Tag)
		case html.TextToken:
			if start < 0 {
				start = p.off
			}
			sb.WriteString(p.tok.Data)
			end = p.consumed()
		case html.CommentToken:
		case html.EndTagToken:
			if p.tok.Data != el.Tag {
				return p.errorf(ErrUnexpectedToken, p.tok.Data, "unexpected closing tag in <%s>", el.Tag)
			}
			if start >= 0 {
				el.Children = []Node{&Text{Data: sb.String(), Span: p.lines.span(start, end-start)}}
			}
			return nil
		default:
			return p.errorf(ErrUnexpectedToken, p.tok.Data, "markup is not allowed in <%s>", el.Tag)
		}
	}
}
