package mjml

import (
	"testing"
)

func TestInterpolatorExpand(t *testing.T) {
	vars := map[string]any{
		"name":  "Ann",
		"count": 3,
		"user":  map[string]any{"email": "ann@example.com"},
		"html":  "<b>&</b>",
		"none":  nil,
	}
	tests := []struct {
		name   string
		in     string
		escape bool
		want   string
	}{
		{"plain text", "Hello", false, "Hello"},
		{"variable", "Hello ${name}!", false, "Hello Ann!"},
		{"arithmetic", "${count * 2} items", false, "6 items"},
		{"member", "${user.email}", false, "ann@example.com"},
		{"string with brace", `${name + "}"}`, false, "Ann}"},
		{"ternary", `${count > 2 ? "many" : "few"}`, false, "many"},
		{"nil value", "[${none}]", false, "[]"},
		{"undefined variable", "[${missing}]", false, "[]"},
		{"escaped", "${html}", true, "&lt;b&gt;&amp;&lt;/b&gt;"},
		{"not escaped", "${html}", false, "<b>&</b>"},
		{"two expressions", "${name}-${count}", false, "Ann-3"},
	}
	in := newInterpolator(vars)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := in.expand(tt.in, tt.escape)
			if err != nil {
				t.Fatalf("expand(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("expand(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestInterpolatorErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unclosed", "Hello ${name"},
		{"unterminated string", `${"abc}`},
		{"empty", "${ }"},
		{"syntax", "${name +}"},
	}
	in := newInterpolator(map[string]any{"name": "Ann"})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := in.expand(tt.in, false); err == nil {
				t.Errorf("expand(%q) error = nil, want error", tt.in)
			}
		})
	}
}
