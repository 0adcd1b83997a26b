package mjml

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in     string
		want   Size
		wantOK bool
	}{
		{"600px", Pixel(600), true},
		{" 12.5px ", Pixel(12.5), true},
		{"50%", Percent(50), true},
		{"320", Pixel(320), true},
		{"auto", RawSize("auto"), false},
		{"10em", RawSize("10em"), false},
		{"", Size{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSize(tt.in)
			if ok != tt.wantOK {
				t.Errorf("ParseSize(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if diff := cmp.Diff(got, tt.want); diff != "" {
				t.Errorf("ParseSize(%q) mismatch (-got +want):\n%s", tt.in, diff)
			}
		})
	}
}

func TestSizeFormatting(t *testing.T) {
	tests := []struct {
		size  Size
		str   string
		class string
	}{
		{Pixel(200), "200px", "200"},
		{Percent(50), "50%", "50"},
		{Percent(100.0 / 3), "33.3333333333%", "33-3333333333"},
		{Percent(100.0 / 7), "14.2857142857%", "14-2857142857"},
		{Pixel(137.5), "137.5px", "137-5"},
	}
	for _, tt := range tests {
		if got := tt.size.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if got := tt.size.classSuffix(); got != tt.class {
			t.Errorf("classSuffix() = %q, want %q", got, tt.class)
		}
	}
}

func TestSizeOf(t *testing.T) {
	if got := Percent(25).Of(600); got != 150 {
		t.Errorf("Percent(25).Of(600) = %v", got)
	}
	if got := Pixel(90).Of(600); got != 90 {
		t.Errorf("Pixel(90).Of(600) = %v", got)
	}
	if got := RawSize("auto").Of(600); got != 600 {
		t.Errorf("RawSize.Of(600) = %v", got)
	}
}

func TestParseBox(t *testing.T) {
	tests := []struct {
		in   string
		want Box
	}{
		{"10px", Box{10, 10, 10, 10}},
		{"10px 25px", Box{10, 25, 10, 25}},
		{"1px 2px 3px", Box{1, 2, 3, 2}},
		{"1px 2px 3px 4px", Box{1, 2, 3, 4}},
		{"", Box{}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(ParseBox(tt.in), tt.want); diff != "" {
			t.Errorf("ParseBox(%q) mismatch (-got +want):\n%s", tt.in, diff)
		}
	}
}

func TestBorderWidth(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1px solid #000", 1},
		{"solid 3px red", 3},
		{"none", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := borderWidth(tt.in); got != tt.want {
			t.Errorf("borderWidth(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"600px", 600, true},
		{" 20 ", 20, true},
		{"-4px", -4, true},
		{"px", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseInt(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseInt(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
