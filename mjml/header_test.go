package mjml

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHeaderResponsiveClasses(t *testing.T) {
	h := NewHeader(Pixel(480), nil, nil)
	h.RegisterResponsiveClass("mj-column-per-50", Percent(50))
	h.RegisterResponsiveClass("mj-column-px-200", Pixel(200))
	h.RegisterResponsiveClass("mj-column-per-50", Percent(50))

	want := []ResponsiveClass{
		{Name: "mj-column-per-50", Size: Percent(50)},
		{Name: "mj-column-px-200", Size: Pixel(200)},
	}
	if diff := cmp.Diff(h.ResponsiveClasses(), want); diff != "" {
		t.Errorf("ResponsiveClasses() mismatch (-got +want):\n%s", diff)
	}
}

func TestHeaderFonts(t *testing.T) {
	h := NewHeader(Pixel(480), map[string]string{
		"Roboto":  "https://fonts.example/roboto",
		"Raleway": "https://fonts.example/raleway-registry",
	}, nil)
	h.DeclareFont("Raleway", "https://fonts.example/raleway")
	h.registerFontFamily(`Raleway, "Roboto", Helvetica, sans-serif`)
	h.RegisterFont("Roboto")

	want := []Font{
		{Name: "Raleway", Href: "https://fonts.example/raleway"},
		{Name: "Roboto", Href: "https://fonts.example/roboto"},
	}
	if diff := cmp.Diff(h.Fonts(), want); diff != "" {
		t.Errorf("Fonts() mismatch (-got +want):\n%s", diff)
	}
}

func TestHeaderComponentStyleOnce(t *testing.T) {
	h := NewHeader(Pixel(480), nil, nil)
	h.AddComponentStyle("mj-navbar", "a {}")
	h.AddComponentStyle("mj-navbar", "a {}")
	h.AddComponentStyle("mj-accordion", "b {}")
	if diff := cmp.Diff(h.compStyles, []string{"a {}", "b {}"}); diff != "" {
		t.Errorf("component styles mismatch (-got +want):\n%s", diff)
	}
}

func TestHeaderIDs(t *testing.T) {
	h1 := NewHeader(Pixel(480), nil, nil)
	h2 := NewHeader(Pixel(480), nil, nil)
	a1, b1 := h1.nextID(), h1.nextID()
	a2, b2 := h2.nextID(), h2.nextID()
	if a1 == b1 {
		t.Errorf("nextID() returned %q twice", a1)
	}
	if a1 != a2 || b1 != b2 {
		t.Errorf("ids differ between renders: %q %q vs %q %q", a1, b1, a2, b2)
	}
	if len(a1) != 16 {
		t.Errorf("id %q has length %d, want 16", a1, len(a1))
	}
}

func TestHeaderLowerBreakpoint(t *testing.T) {
	if got := NewHeader(Pixel(480), nil, nil).lowerBreakpoint(); got != "479px" {
		t.Errorf("lowerBreakpoint() = %q, want 479px", got)
	}
}
