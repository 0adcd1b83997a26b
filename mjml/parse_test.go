package mjml

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseSkipsUnknownOutsideRoot(t *testing.T) {
	src := "<foo><bar>x</bar></foo>\n<mjml><mj-body></mj-body></mjml>"
	doc, warnings, err := Parse(src, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []ParseWarning{{
		Kind: ErrUnknownElement,
		Tag:  "foo",
		Span: Span{Offset: 0, Line: 1, Column: 1, Length: 23},
	}}
	if diff := cmp.Diff(warnings, want, cmpopts.EquateErrors()); diff != "" {
		t.Errorf("warnings mismatch (-got +want):\n%s", diff)
	}
	if doc.Body() == nil {
		t.Errorf("Body() = nil")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
		tag  string
	}{
		{
			name: "unknown element in body",
			src:  `<mjml><mj-body><mj-foo></mj-foo></mj-body></mjml>`,
			want: ErrUnknownElement,
			tag:  "mj-foo",
		},
		{
			name: "component in wrong parent",
			src:  `<mjml><mj-head><mj-text>x</mj-text></mj-head></mjml>`,
			want: ErrUnexpectedToken,
			tag:  "mj-text",
		},
		{
			name: "strict attributes",
			src:  `<mjml><mj-head><mj-breakpoint width="320px" foo="1" /></mj-head></mjml>`,
			want: ErrUnexpectedAttribute,
			tag:  "mj-breakpoint",
		},
		{
			name: "missing attribute",
			src:  `<mjml><mj-head><mj-font name="Raleway" /></mj-head></mjml>`,
			want: ErrMissingAttribute,
			tag:  "mj-font",
		},
		{
			name: "conditional comment in body",
			src:  `<mjml><mj-body><!--[if mso]><p>x</p><![endif]--></mj-body></mjml>`,
			want: ErrConditionalComment,
			tag:  "mj-body",
		},
		{
			name: "unclosed element",
			src:  `<mjml><mj-body><mj-section>`,
			want: ErrUnexpectedEOF,
			tag:  "mj-section",
		},
		{
			name: "text in body",
			src:  `<mjml><mj-body>hello</mj-body></mjml>`,
			want: ErrUnexpectedToken,
			tag:  "mj-body",
		},
		{
			name: "missing root",
			src:  `<foo></foo>`,
			want: ErrUnexpectedEOF,
			tag:  "mjml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.src, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.want)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse() error is %T, want *ParseError", err)
			}
			if pe.Tag != tt.tag {
				t.Errorf("ParseError.Tag = %q, want %q", pe.Tag, tt.tag)
			}
		})
	}
}

func TestParseTruncatedInput(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"inside a component", `<mjml><mj-body><mj-section><mj-colu`},
		{"tag after the root", `<mjml><mj-body><mj-text>hi</mj-text></mj-body></mjml><mj-foo`},
		{"attribute after the root", `<mjml><mj-body><mj-text>hi</mj-text></mj-body></mjml><mj-foo attr="x`},
		{"skipped element not closed", `<mj-x><mj-y></mj-x><mjml><mj-body></mj-body></mjml>`},
		{"root start tag", `<mjml`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, _, err := Parse(tt.src, nil)
			if !errors.Is(err, ErrUnexpectedEOF) {
				t.Fatalf("Parse() error = %v, want %v", err, ErrUnexpectedEOF)
			}
			if doc != nil {
				t.Errorf("Parse() document = %v, want nil", doc)
			}
		})
	}
}

func TestParseDuplicateRootParts(t *testing.T) {
	tests := []struct {
		name string
		src  string
		tag  string
	}{
		{"head", `<mjml><mj-head></mj-head><mj-head></mj-head></mjml>`, "mj-head"},
		{"body", `<mjml><mj-body></mj-body><mj-body></mj-body></mjml>`, "mj-body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.src, nil)
			if !errors.Is(err, ErrUnexpectedToken) {
				t.Fatalf("Parse() error = %v, want %v", err, ErrUnexpectedToken)
			}
			var pe *ParseError
			if errors.As(err, &pe) && pe.Tag != tt.tag {
				t.Errorf("ParseError.Tag = %q, want %q", pe.Tag, tt.tag)
			}
		})
	}
}

func TestParseRawContent(t *testing.T) {
	src := `<mjml><mj-body><mj-raw><!--[if mso]><b>x</b><![endif]--><br></mj-raw></mj-body></mjml>`
	doc, _, err := Parse(src, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	raw := doc.Body().child(KindRaw)
	if raw == nil {
		t.Fatal("mj-raw not found")
	}
	want := []Node{
		&ConditionalComment{Data: "<!--[if mso]><b>x</b><![endif]-->"},
		&RawElement{Tag: "br", Open: "<br>", Attrs: Attrs{}, SelfClosing: true},
	}
	if diff := cmp.Diff(raw.Children, want, cmpopts.IgnoreTypes(Span{})); diff != "" {
		t.Errorf("children mismatch (-got +want):\n%s", diff)
	}
}

func TestParseAttributesKeepOrder(t *testing.T) {
	src := `<mjml><mj-body><mj-text align="right" css-class="a">x</mj-text></mj-body></mjml>`
	doc, _, err := Parse(src, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	text := doc.Body().child(KindText)
	want := Attrs{{Key: "align", Val: "right"}, {Key: "css-class", Val: "a"}}
	if diff := cmp.Diff(text.Attrs, want); diff != "" {
		t.Errorf("attrs mismatch (-got +want):\n%s", diff)
	}
}

func TestParseInclude(t *testing.T) {
	loader := NewMemoryLoader(map[string]string{
		"parts/header.mjml": `<mj-section><mj-column><mj-text>Hi</mj-text></mj-column></mj-section>`,
		"parts/style.css":   `.red { color: red; }`,
	})
	src := `<mjml>
  <mj-head><mj-include path="style.css" type="css" /></mj-head>
  <mj-body>
    <mj-include path="header.mjml" />
    <mj-section></mj-section>
  </mj-body>
</mjml>`
	doc, _, err := Parse(src, &ParserOptions{Loader: loader, File: "parts/index.mjml"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var kinds []Kind
	var files []string
	for _, n := range doc.Body().Children {
		if el, ok := n.(*Element); ok {
			kinds = append(kinds, el.Kind)
			files = append(files, el.File)
		}
	}
	if diff := cmp.Diff(kinds, []Kind{KindSection, KindSection}); diff != "" {
		t.Errorf("body kinds mismatch (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(files, []string{"parts/header.mjml", "parts/index.mjml"}); diff != "" {
		t.Errorf("body files mismatch (-got +want):\n%s", diff)
	}

	style := doc.Head().child(KindStyle)
	if style == nil {
		t.Fatal("css include did not produce mj-style")
	}
	if got := textContent(style); got != `.red { color: red; }` {
		t.Errorf("style content = %q", got)
	}
}

func TestParseIncludeFullDocument(t *testing.T) {
	loader := NewMemoryLoader(map[string]string{
		"footer.mjml": `<mjml><mj-body><mj-section></mj-section><mj-wrapper></mj-wrapper></mj-body></mjml>`,
	})
	src := `<mjml><mj-body><mj-include path="footer.mjml" /></mj-body></mjml>`
	doc, _, err := Parse(src, &ParserOptions{Loader: loader})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if n := len(doc.Body().Children); n != 2 {
		t.Errorf("body has %d children, want 2", n)
	}
}

func TestParseIncludeDocumentInRoot(t *testing.T) {
	loader := NewMemoryLoader(map[string]string{
		"base.mjml": `<mjml>
  <mj-head><mj-attributes><mj-all font-size="20px" /></mj-attributes></mj-head>
  <mj-body background-color="#eeeeee"><mj-section css-class="base"></mj-section></mj-body>
</mjml>`,
	})
	src := `<mjml>
  <mj-include path="base.mjml" />
  <mj-head><mj-attributes><mj-all color="red" /></mj-attributes></mj-head>
  <mj-body width="500px"><mj-section css-class="own"></mj-section></mj-body>
</mjml>`
	doc, _, err := Parse(src, &ParserOptions{Loader: loader})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var kinds []Kind
	for _, n := range doc.Root.Children {
		if el, ok := n.(*Element); ok {
			kinds = append(kinds, el.Kind)
		}
	}
	if diff := cmp.Diff(kinds, []Kind{KindHead, KindBody}); diff != "" {
		t.Errorf("root kinds mismatch (-got +want):\n%s", diff)
	}

	if n := len(doc.Head().Children); n != 2 {
		t.Errorf("head has %d children, want 2", n)
	}
	var classes []string
	for _, n := range doc.Body().Children {
		if el, ok := n.(*Element); ok {
			v, _ := el.Attrs.Get("css-class")
			classes = append(classes, v)
		}
	}
	if diff := cmp.Diff(classes, []string{"base", "own"}); diff != "" {
		t.Errorf("body sections mismatch (-got +want):\n%s", diff)
	}
	for key, want := range map[string]string{"background-color": "#eeeeee", "width": "500px"} {
		if got, _ := doc.Body().Attrs.Get(key); got != want {
			t.Errorf("body %s = %q, want %q", key, got, want)
		}
	}

	res := NewResolver(doc)
	text := &Element{Kind: KindText, Tag: "mj-text"}
	for key, want := range map[string]string{"color": "red", "font-size": "20px"} {
		if got, _ := res.Attribute(text, key); got != want {
			t.Errorf("Attribute(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestParseIncludeCycle(t *testing.T) {
	loader := NewMemoryLoader(map[string]string{
		"a.mjml": `<mj-include path="b.mjml" />`,
		"b.mjml": `<mj-include path="a.mjml" />`,
	})
	tests := []struct {
		name string
		src  string
	}{
		{"self", `<mjml><mj-body><mj-include path="main.mjml" /></mj-body></mjml>`},
		{"indirect", `<mjml><mj-body><mj-include path="a.mjml" /></mj-body></mjml>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.src, &ParserOptions{Loader: loader, File: "main.mjml"})
			if !errors.Is(err, ErrIncludeCycle) {
				t.Errorf("Parse() error = %v, want %v", err, ErrIncludeCycle)
			}
		})
	}
}

func TestParseIncludeFailure(t *testing.T) {
	src := `<mjml><mj-body><mj-include path="missing.mjml" /></mj-body></mjml>`
	_, _, err := Parse(src, nil)
	if !errors.Is(err, ErrInclude) {
		t.Fatalf("Parse() error = %v, want %v", err, ErrInclude)
	}
}

func TestParseContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loader := NewMemoryLoader(map[string]string{"a.mjml": `<mj-section></mj-section>`})
	src := `<mjml><mj-body><mj-include path="a.mjml" /></mj-body></mjml>`
	_, _, err := ParseContext(ctx, src, &ParserOptions{Loader: loader})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ParseContext() error = %v, want %v", err, context.Canceled)
	}
}
