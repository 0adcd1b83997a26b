package mjml

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseBackgroundPosition(t *testing.T) {
	tests := []struct {
		in   string
		x, y string
	}{
		{"top", "center", "top"},
		{"left", "left", "center"},
		{"center top", "center", "top"},
		{"top center", "center", "top"},
		{"bottom right", "right", "bottom"},
		{"center left", "left", "center"},
		{"25% 75%", "25%", "75%"},
		{"", "center", "top"},
	}
	for _, tt := range tests {
		x, y := parseBackgroundPosition(tt.in)
		if x != tt.x || y != tt.y {
			t.Errorf("parseBackgroundPosition(%q) = %q, %q; want %q, %q", tt.in, x, y, tt.x, tt.y)
		}
	}
}

func TestBackgroundFill(t *testing.T) {
	tests := []struct {
		name string
		bg   background
		want vmlFill
	}{
		{
			name: "cover no-repeat",
			bg:   background{url: "a.png", repeat: "no-repeat", size: "cover", posX: "center", posY: "top"},
			want: vmlFill{typ: "frame", origin: "0, -0.5", position: "0, -0.5", size: "1,1", aspect: "atleast"},
		},
		{
			name: "contain",
			bg:   background{url: "a.png", repeat: "no-repeat", size: "contain", posX: "left", posY: "bottom"},
			want: vmlFill{typ: "frame", origin: "-0.5, 0.5", position: "-0.5, 0.5", size: "1,1", aspect: "atmost"},
		},
		{
			name: "repeat auto",
			bg:   background{url: "a.png", repeat: "repeat", size: "auto", posX: "center", posY: "top"},
			want: vmlFill{typ: "tile", origin: "0.5, 0", position: "0.5, 0"},
		},
		{
			name: "repeat with width",
			bg:   background{url: "a.png", repeat: "repeat", size: "100px", posX: "right", posY: "center"},
			want: vmlFill{typ: "tile", origin: "1, 0.5", position: "1, 0.5", size: "100px", aspect: "atmost"},
		},
		{
			name: "two values",
			bg:   background{url: "a.png", repeat: "no-repeat", size: "100px 50px", posX: "50%", posY: "50%"},
			want: vmlFill{typ: "frame", origin: "0, 0", position: "0, 0", size: "100px,50px"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.bg.fill(), tt.want, cmp.AllowUnexported(vmlFill{})); diff != "" {
				t.Errorf("fill() mismatch (-got +want):\n%s", diff)
			}
		})
	}
}

func TestBackgroundCSS(t *testing.T) {
	b := background{color: "#fff", url: "a.png", repeat: "no-repeat", size: "cover", posX: "center", posY: "top"}
	if got, want := b.css(), "#fff url('a.png') center top / cover no-repeat"; got != want {
		t.Errorf("css() = %q, want %q", got, want)
	}
	if got := (background{color: "red"}).css(); got != "red" {
		t.Errorf("css() = %q, want red", got)
	}
}
