package mjml

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, src string, opts *ParserOptions) *Document {
	t.Helper()
	doc, _, err := Parse(src, opts)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func mustRender(t *testing.T, src string, opts *RenderOptions) string {
	t.Helper()
	out, err := Render(mustParse(t, src, nil), opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return out
}

func TestRenderDocumentShell(t *testing.T) {
	src := `<mjml lang="en">
  <mj-head>
    <mj-title>Hello &amp; welcome</mj-title>
    <mj-preview>Preview text</mj-preview>
  </mj-head>
  <mj-body background-color="#eeeeee">
    <mj-section><mj-column><mj-text>Hi</mj-text></mj-column></mj-section>
  </mj-body>
</mjml>`
	out := mustRender(t, src, nil)

	for _, want := range []string{
		"<!doctype html>\n",
		`<html lang="en" xmlns="http://www.w3.org/1999/xhtml"`,
		"<title>Hello &amp; welcome</title>",
		`<meta name="viewport" content="width=device-width, initial-scale=1" />`,
		"#outlook a { padding:0; }",
		"<o:PixelsPerInch>96</o:PixelsPerInch>",
		`<body style="word-spacing:normal;background-color:#eeeeee;">`,
		">Preview text</div>",
		"Hi</div>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q", want)
		}
	}
	if !strings.HasSuffix(out, "</body></html>\n") {
		t.Errorf("output does not end the document: %q", out[len(out)-40:])
	}
}

func TestRenderColumnWidths(t *testing.T) {
	tests := []struct {
		name  string
		cols  string
		want  []string
		wantH []string
	}{
		{
			name: "fixed and shared",
			cols: `<mj-column width="200px"><mj-text>a</mj-text></mj-column><mj-column><mj-text>b</mj-text></mj-column>`,
			want: []string{`class="mj-column-px-200 mj-outlook-group-fix"`, `class="mj-column-per-50 mj-outlook-group-fix"`},
			wantH: []string{
				".mj-column-px-200 { width:200px !important; max-width: 200px; }",
				".mj-column-per-50 { width:50% !important; max-width: 50%; }",
			},
		},
		{
			name: "three equal columns",
			cols: `<mj-column></mj-column><mj-column></mj-column><mj-column></mj-column>`,
			want: []string{`class="mj-column-per-33-3333333333 mj-outlook-group-fix"`},
			wantH: []string{
				".mj-column-per-33-3333333333 { width:33.3333333333% !important; max-width: 33.3333333333%; }",
			},
		},
		{
			name:  "raw siblings take no width",
			cols:  `<mj-raw><p>x</p></mj-raw><mj-column></mj-column>`,
			want:  []string{`class="mj-column-per-100 mj-outlook-group-fix"`},
			wantH: []string{"@media only screen and (min-width:480px) {"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustRender(t, `<mjml><mj-body><mj-section>`+tt.cols+`</mj-section></mj-body></mjml>`, nil)
			for _, want := range append(tt.want, tt.wantH...) {
				if !strings.Contains(out, want) {
					t.Errorf("output does not contain %q", want)
				}
			}
		})
	}
}

func TestRenderColumnPixelWidths(t *testing.T) {
	tests := []struct {
		name      string
		column    string
		wantCell  string
		wantImage string
	}{
		{
			name:      "equal share",
			column:    `<mj-column>`,
			wantCell:  `<td style="vertical-align:top;width:200px;">`,
			wantImage: `<td style="width:150px;">`,
		},
		{
			name:      "fractional paddings",
			column:    `<mj-column padding-left="10.5px" padding-right="10.5px">`,
			wantCell:  `<td style="vertical-align:top;width:200px;">`,
			wantImage: `<td style="width:129px;">`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := tt.column + `<mj-image src="a.png" /></mj-column>`
			out := mustRender(t, `<mjml><mj-body><mj-section>`+col+col+col+`</mj-section></mj-body></mjml>`, nil)
			if n := strings.Count(out, tt.wantCell); n != 3 {
				t.Errorf("output contains %q %d times, want 3", tt.wantCell, n)
			}
			if n := strings.Count(out, tt.wantImage); n != 3 {
				t.Errorf("output contains %q %d times, want 3", tt.wantImage, n)
			}
		})
	}
}

func TestRenderColumnClassRegisteredOnce(t *testing.T) {
	src := `<mjml><mj-body>
<mj-section><mj-column><mj-text>a</mj-text></mj-column><mj-column></mj-column></mj-section>
<mj-section><mj-column></mj-column><mj-column></mj-column></mj-section>
</mj-body></mjml>`
	out := mustRender(t, src, nil)
	// once in the media query and once in the Thunderbird stylesheet
	if n := strings.Count(out, ".mj-column-per-50 { width:50% !important; max-width: 50%; }"); n != 2 {
		t.Errorf("rule appears %d times, want 2", n)
	}
}

func TestRenderBreakpoint(t *testing.T) {
	src := `<mjml><mj-head><mj-breakpoint width="320px" /></mj-head><mj-body><mj-section><mj-column></mj-column></mj-section></mj-body></mjml>`
	out := mustRender(t, src, &RenderOptions{Breakpoint: Pixel(600)})
	if !strings.Contains(out, "@media only screen and (min-width:320px) {") {
		t.Error("document breakpoint was not applied")
	}

	out = mustRender(t, `<mjml><mj-body><mj-section><mj-column></mj-column></mj-section></mj-body></mjml>`,
		&RenderOptions{Breakpoint: Pixel(600)})
	if !strings.Contains(out, "@media only screen and (min-width:600px) {") {
		t.Error("option breakpoint was not applied")
	}
}

func TestRenderCascade(t *testing.T) {
	loader := NewMemoryLoader(map[string]string{
		"attrs.mjml": `<mj-attributes><mj-text font-size="21px" /></mj-attributes>`,
	})
	src := `<mjml>
  <mj-head>
    <mj-attributes>
      <mj-all color="#111111" />
      <mj-class name="blue" color="blue" />
      <mj-class name="big" font-size="30px" />
      <mj-text font-size="42px" />
    </mj-attributes>
    <mj-include path="attrs.mjml" />
  </mj-head>
  <mj-body>
    <mj-text>plain</mj-text>
    <mj-text mj-class="blue">blue</mj-text>
    <mj-text mj-class="blue big" font-size="10px">inline</mj-text>
    <mj-button>button</mj-button>
  </mj-body>
</mjml>`
	doc := mustParse(t, src, &ParserOptions{Loader: loader})
	res := NewResolver(doc)

	var got [][2]string
	for _, n := range doc.Body().Children {
		el := n.(*Element)
		color, _ := res.Attribute(el, "color")
		size, _ := res.Attribute(el, "font-size")
		got = append(got, [2]string{color, size})
	}
	want := [][2]string{
		{"#111111", "21px"},
		{"blue", "21px"},
		{"blue", "10px"},
		{"#111111", "13px"},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("resolved attributes mismatch (-got +want):\n%s", diff)
	}
}

func TestRenderCascadeInterleavedIncludes(t *testing.T) {
	loader := NewMemoryLoader(map[string]string{
		"first.mjml":  `<mj-attributes><mj-all font-size="10px" color="#111111" /></mj-attributes>`,
		"second.mjml": `<mj-attributes><mj-all font-size="30px" /></mj-attributes>`,
	})
	inline := `<mj-attributes><mj-all font-size="20px" color="#222222" /></mj-attributes>`
	tests := []struct {
		name      string
		head      string
		wantSize  string
		wantColor string
	}{
		{
			name:      "include inline include",
			head:      `<mj-include path="first.mjml" />` + inline + `<mj-include path="second.mjml" />`,
			wantSize:  "30px",
			wantColor: "#222222",
		},
		{
			name:      "include then inline",
			head:      `<mj-include path="first.mjml" />` + inline,
			wantSize:  "20px",
			wantColor: "#222222",
		},
		{
			name:      "inline then include",
			head:      inline + `<mj-include path="first.mjml" />`,
			wantSize:  "10px",
			wantColor: "#111111",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `<mjml><mj-head>` + tt.head + `</mj-head><mj-body><mj-text>x</mj-text></mj-body></mjml>`
			doc := mustParse(t, src, &ParserOptions{Loader: loader})
			res := NewResolver(doc)
			text := doc.Body().child(KindText)
			size, _ := res.Attribute(text, "font-size")
			color, _ := res.Attribute(text, "color")
			if diff := cmp.Diff([2]string{size, color}, [2]string{tt.wantSize, tt.wantColor}); diff != "" {
				t.Errorf("resolved attributes mismatch (-got +want):\n%s", diff)
			}
		})
	}
}

func TestRenderIncludedDocumentInRoot(t *testing.T) {
	loader := NewMemoryLoader(map[string]string{
		"base.mjml": `<mjml><mj-head><mj-attributes><mj-all font-size="21px" /></mj-attributes></mj-head>
<mj-body><mj-section><mj-column><mj-text>from base</mj-text></mj-column></mj-section></mj-body></mjml>`,
	})
	src := `<mjml>
  <mj-include path="base.mjml" />
  <mj-head><mj-attributes><mj-all color="red" /></mj-attributes></mj-head>
  <mj-body><mj-section><mj-column><mj-text>own</mj-text></mj-column></mj-section></mj-body>
</mjml>`
	doc := mustParse(t, src, &ParserOptions{Loader: loader})
	out, err := Render(doc, nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"from base</div>", "own</div>", "font-size:21px;", "color:red;"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q", want)
		}
	}
	if i, j := strings.Index(out, "from base"), strings.Index(out, "own</div>"); i > j {
		t.Error("included body is not rendered before the document body")
	}
}

func TestRenderInheritedAttributes(t *testing.T) {
	src := `<mjml><mj-body><mj-section><mj-column>
<mj-social font-size="20px" icon-size="30px" mode="vertical">
  <mj-social-element name="facebook" href="https://example.com">Share</mj-social-element>
  <mj-social-element name="github-noshare" icon-size="10px" href="https://github.com/x">Star</mj-social-element>
</mj-social>
</mj-column></mj-section></mj-body></mjml>`
	out := mustRender(t, src, nil)
	for _, want := range []string{
		`href="https://www.facebook.com/sharer/sharer.php?u=https://example.com"`,
		`href="https://github.com/x"`,
		`font-size:20px;`,
		`width="30"`,
		`width="10"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q", want)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	src := `<mjml><mj-body>
<mj-navbar hamburger="hamburger"><mj-navbar-link href="/a">A</mj-navbar-link></mj-navbar>
<mj-carousel><mj-carousel-image src="a.png" /><mj-carousel-image src="b.png" /></mj-carousel>
<mj-section><mj-column width="25%"><mj-text font-family="Lato">x</mj-text></mj-column></mj-section>
</mj-body></mjml>`
	doc := mustParse(t, src, nil)
	first, err := Render(doc, nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		out, err := Render(doc, nil)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if out != first {
			t.Fatalf("render %d differs from the first one", i+2)
		}
	}
}

func TestRenderConditionalsBalanced(t *testing.T) {
	src := `<mjml><mj-body>
<mj-wrapper background-url="https://example.com/bg.png" background-size="cover">
  <mj-section background-url="https://example.com/s.png" background-repeat="no-repeat">
    <mj-group><mj-column><mj-image src="a.png" /></mj-column><mj-column><mj-divider /></mj-column></mj-group>
  </mj-section>
  <mj-section full-width="full-width" background-url="https://example.com/f.png"><mj-column><mj-button href="#">Go</mj-button></mj-column></mj-section>
</mj-wrapper>
<mj-hero background-url="https://example.com/h.png" background-height="300px" background-width="600px" mode="fluid-height">
  <mj-text>hero</mj-text>
</mj-hero>
<mj-section><mj-column>
  <mj-accordion><mj-accordion-element><mj-accordion-title>Q</mj-accordion-title><mj-accordion-text>A</mj-accordion-text></mj-accordion-element></mj-accordion>
  <mj-spacer height="30px" />
  <mj-social><mj-social-element name="x">X</mj-social-element></mj-social>
</mj-column></mj-section>
</mj-body></mjml>`
	out := mustRender(t, src, nil)

	pairs := [][2]string{
		{"<v:rect", "</v:rect>"},
		{"<v:textbox", "</v:textbox>"},
		{"<!--[if mso | IE]>", "<![endif]-->"},
		{"<table", "</table>"},
		{"<td", "</td>"},
	}
	for _, p := range pairs {
		open, closing := strings.Count(out, p[0]), strings.Count(out, p[1])
		if p[0] == "<!--[if mso | IE]>" {
			// <![endif]--> also ends the !mso blocks and the head conditionals
			closing -= strings.Count(out, "<!--<![endif]-->") + strings.Count(out, "<!--[if mso]>") + strings.Count(out, "<!--[if lte mso 11]>")
		}
		if open != closing {
			t.Errorf("%s opened %d times, %s closed %d times", p[0], open, p[1], closing)
		}
	}
	if strings.Count(out, "<v:rect") != 3 {
		t.Errorf("want a v:rect per background, got %d", strings.Count(out, "<v:rect"))
	}
	if strings.Contains(out, "><![endif]--><!--[if mso | IE]>") {
		t.Error("adjacent conditionals were not merged")
	}
}

func TestRenderMissingBody(t *testing.T) {
	out := mustRender(t, `<mjml><mj-head><mj-title>t</mj-title></mj-head></mjml>`, nil)
	if !strings.Contains(out, "<title>t</title>") {
		t.Error("title missing")
	}
}

func TestRenderEmptyDocument(t *testing.T) {
	_, err := Render(&Document{}, nil)
	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("Render() error = %v, want *RenderError", err)
	}
}

func TestRenderFonts(t *testing.T) {
	src := `<mjml>
  <mj-head><mj-font name="Raleway" href="https://fonts.example.com/raleway.css" /></mj-head>
  <mj-body><mj-section><mj-column>
    <mj-text font-family="Raleway, Arial">a</mj-text>
    <mj-text font-family="'Open Sans', sans-serif">b</mj-text>
    <mj-text font-family="Unknown Font">c</mj-text>
  </mj-column></mj-section></mj-body>
</mjml>`
	out := mustRender(t, src, nil)
	for _, want := range []string{
		`<link href="https://fonts.example.com/raleway.css" rel="stylesheet" type="text/css" />`,
		"@import url(https://fonts.googleapis.com/css?family=Open+Sans:300,400,500,700);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q", want)
		}
	}
	if strings.Contains(out, "Ubuntu:300") {
		t.Error("unused font was imported")
	}
}

func TestRenderRawFileStart(t *testing.T) {
	src := `<mjml><mj-head><mj-raw position="file-start">{{ template }}</mj-raw></mj-head><mj-body></mj-body></mjml>`
	out := mustRender(t, src, nil)
	if !strings.HasPrefix(out, "{{ template }}<!doctype html>") {
		t.Errorf("file-start content is not at the start: %q", out[:40])
	}
}

func TestRenderComments(t *testing.T) {
	src := `<mjml><mj-body><!-- keep me --><mj-section><mj-column><mj-text>a<!-- inner --></mj-text></mj-column></mj-section></mj-body></mjml>`
	out := mustRender(t, src, nil)
	if !strings.Contains(out, "<!-- keep me -->") || !strings.Contains(out, "<!-- inner -->") {
		t.Error("comments were dropped")
	}
	out = mustRender(t, src, &RenderOptions{DisableComments: true})
	if strings.Contains(out, "keep me") || strings.Contains(out, "inner") {
		t.Error("comments were kept")
	}
}

func TestRenderVars(t *testing.T) {
	src := `<mjml><mj-body><mj-section><mj-column>
<mj-button href="${url}">${name}</mj-button>
</mj-column></mj-section></mj-body></mjml>`
	out := mustRender(t, src, &RenderOptions{Vars: map[string]any{"url": "https://x.test/?a=1&b=2", "name": "<Bob>"}})
	if !strings.Contains(out, `href="https://x.test/?a=1&amp;b=2"`) {
		t.Error("attribute was not interpolated")
	}
	if !strings.Contains(out, "&lt;Bob&gt;") {
		t.Error("content was not interpolated and escaped")
	}

	doc := mustParse(t, `<mjml><mj-body><mj-text>${</mj-text></mj-body></mjml>`, nil)
	if _, err := Render(doc, &RenderOptions{Vars: map[string]any{}}); err == nil {
		t.Error("Render() succeeded with an unclosed expression")
	}
}

func TestRenderInlineStyles(t *testing.T) {
	src := `<mjml>
  <mj-head><mj-style inline="inline">.red { color: red; } .red:hover { color: blue; }</mj-style></mj-head>
  <mj-body><mj-section><mj-column><mj-text css-class="red">x</mj-text></mj-column></mj-section></mj-body>
</mjml>`
	out := mustRender(t, src, nil)
	if !strings.Contains(out, `class="red" style="`) {
		t.Fatal("css-class missing")
	}
	if !strings.Contains(out, "color:red;") {
		t.Error("rule was not inlined")
	}
	if !strings.Contains(out, ".red:hover {color:blue;}") {
		t.Error("pseudo class rule was not kept in the head")
	}
}

func TestCompile(t *testing.T) {
	out, warnings, err := Compile(context.Background(), `<x/><mjml><mj-body></mj-body></mjml>`, nil, nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("got %d warnings, want 1", len(warnings))
	}
	if !strings.Contains(out, "<body") {
		t.Error("no body in output")
	}
}
