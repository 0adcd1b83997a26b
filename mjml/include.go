package mjml

import (
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// parseInclude resolves the mj-include element at the current token and returns the nodes that
// replace it in parent. The included text is parsed with the grammar of parent, so included
// content is subject to the same nesting rules as inline content.
func (p *parser) parseInclude(parent *Element, spec elementSpec) ([]Node, error) {
	start := p.off
	attrs, err := p.attrs("mj-include", includeAttrs)
	if err != nil {
		return nil, err
	}
	if p.tt != html.SelfClosingTagToken {
		if err := p.parseEmpty(&Element{Kind: kindInclude, Tag: "mj-include"}); err != nil {
			return nil, err
		}
	}
	span := p.lines.span(start, p.consumed()-start)

	ipath, _ := attrs.Get("path")
	typ, _ := attrs.Get("type")
	full := joinIncludePath(p.file, ipath)

	if full == p.file || slices.Contains(p.stack, full) {
		return nil, &ParseError{Kind: ErrIncludeCycle, Tag: "mj-include", File: p.file, Span: span, Msg: full}
	}

	switch typ {
	case "", "mjml", "html":
	case "css":
		if parent.Kind != KindHead {
			return nil, &ParseError{Kind: ErrUnexpectedToken, Tag: "mj-include", File: p.file, Span: span,
				Msg: "css include outside of mj-head"}
		}
	default:
		return nil, &ParseError{Kind: ErrUnexpectedAttribute, Tag: "mj-include", File: p.file, Span: span,
			Msg: "unsupported include type " + typ}
	}
	if typ == "html" && !spec.allows(KindRaw) {
		return nil, &ParseError{Kind: ErrUnexpectedToken, Tag: "mj-include", File: p.file, Span: span,
			Msg: "html include is not allowed in <" + parent.Tag + ">"}
	}

	if err := p.ctx.Err(); err != nil {
		return nil, &ParseError{Kind: ErrInclude, Tag: "mj-include", File: p.file, Span: span, Msg: full, Err: err}
	}
	p.log.Debug("Resolving include", zap.String("path", full), zap.String("type", typ))
	content, err := p.loader.Resolve(p.ctx, full)
	if err != nil {
		return nil, &ParseError{Kind: ErrInclude, Tag: "mj-include", File: p.file, Span: span, Msg: full, Err: err}
	}

	switch typ {
	case "css":
		st := &Element{Kind: KindStyle, Tag: "mj-style", Span: span, File: full}
		if v, _ := attrs.Get("css-inline"); v == "inline" {
			st.Attrs = Attrs{{Key: "inline", Val: "inline"}}
		}
		st.Children = []Node{&Text{Data: content}}
		return []Node{st}, nil
	case "html":
		sub := p.include(content, full)
		nodes, err := sub.parseRaw("", true)
		if err != nil {
			return nil, err
		}
		return []Node{&Element{Kind: KindRaw, Tag: "mj-raw", Span: span, File: full, Children: nodes}}, nil
	}

	sub := p.include(content, full)
	if isDocument(content) {
		root, err := sub.parseDocument()
		if err != nil {
			return nil, err
		}
		return includedPart(root, parent), nil
	}
	frag := &Element{Kind: parent.Kind, Tag: parent.Tag}
	if err := sub.parseChildren(frag, spec, true); err != nil {
		return nil, err
	}
	return frag.Children, nil
}

// include creates the parser of an included text.
func (p *parser) include(src, file string) *parser {
	q := newParser(p.parseState, src, file)
	q.stack = append(slices.Clip(p.stack), p.file)
	return q
}

// includedPart picks the nodes of an included full document that belong to parent: head
// children for mj-head, root children for mjml, body children for everything else.
func includedPart(root *Element, parent *Element) []Node {
	switch parent.Kind {
	case KindMJML:
		return root.Children
	case KindHead:
		if h := root.child(KindHead); h != nil {
			return h.Children
		}
		return nil
	}
	if b := root.child(KindBody); b != nil {
		return b.Children
	}
	return nil
}

// isDocument reports whether the first tag of src is <mjml>.
func isDocument(src string) bool {
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			return string(name) == "mjml"
		case html.EndTagToken:
			return false
		}
	}
}
