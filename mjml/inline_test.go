package mjml

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in     string
		want   []compound
		wantOK bool
	}{
		{"p", []compound{{tag: "p"}}, true},
		{"div.a.b#x", []compound{{tag: "div", ids: []string{"x"}, classes: []string{"a", "b"}}}, true},
		{"table td", []compound{{tag: "table"}, {tag: "td"}}, true},
		{"div>.a", []compound{{tag: "div"}, {classes: []string{"a"}, child: true}}, true},
		{"*", []compound{{}}, true},
		{"a:hover", nil, false},
		{"a + b", nil, false},
		{"[href]", nil, false},
		{"> p", nil, false},
		{"p >", nil, false},
		{"p.", nil, false},
	}
	for _, tt := range tests {
		got, ok := parseSelector(tt.in)
		if ok != tt.wantOK {
			t.Errorf("parseSelector(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if diff := cmp.Diff(got, tt.want, cmp.AllowUnexported(compound{})); diff != "" {
			t.Errorf("parseSelector(%q) mismatch (-got +want):\n%s", tt.in, diff)
		}
	}
}

func TestSpecificity(t *testing.T) {
	sel, _ := parseSelector("div.a #x p")
	if got, want := specificity(sel), [3]int{1, 1, 2}; got != want {
		t.Errorf("specificity() = %v, want %v", got, want)
	}
}

func TestInlineStyles(t *testing.T) {
	doc := `<html><head></head><body><div class="a" style="color:green"><p id="x">t</p></div><p>u</p></body></html>`
	sheet := `
.a { color: red; }
div { color: blue !important; }
div > p { margin: 0; }
#x { margin: 1px; }
p:hover { color: red; }
@media (max-width:480px) { .a { color: red; } }
`
	out, err := inlineStyles(doc, sheet, zap.NewNop())
	if err != nil {
		t.Fatalf("inlineStyles() error = %v", err)
	}
	for _, want := range []string{
		`<div class="a" style="color:blue !important;">`,
		`<p id="x" style="margin:1px;">`,
		`<p>u</p>`,
		`p:hover {color:red;}`,
		`@media`,
		`.a {color:red;}`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
	head, _, _ := strings.Cut(out, "</head>")
	if !strings.Contains(head, `<style type="text/css">`) {
		t.Errorf("unsupported rules are not kept in the head:\n%s", head)
	}
}

func TestInlineStylesKeepsElementStyle(t *testing.T) {
	doc := `<html><head></head><body><span class="c" style="padding:4px">x</span></body></html>`
	out, err := inlineStyles(doc, `.c { padding: 0; color: red }`, zap.NewNop())
	if err != nil {
		t.Fatalf("inlineStyles() error = %v", err)
	}
	if !strings.Contains(out, `style="padding:4px;color:red;"`) {
		t.Errorf("unexpected style in:\n%s", out)
	}
}
