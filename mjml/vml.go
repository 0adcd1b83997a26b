package mjml

import (
	"strconv"
	"strings"
)

// background describes the CSS background of a section or wrapper.
type background struct {
	color    string
	url      string
	repeat   string
	size     string
	posX     string
	posY     string
	position string // background-position as written
}

// parseBackgroundPosition splits a background-position value into its horizontal and vertical
// parts. Keywords may come in any order; unsupported forms fall back to "center top".
func parseBackgroundPosition(s string) (x, y string) {
	f := strings.Fields(s)
	switch len(f) {
	case 1:
		if f[0] == "top" || f[0] == "bottom" {
			return "center", f[0]
		}
		return f[0], "center"
	case 2:
		if f[0] == "top" || f[0] == "bottom" || f[0] == "center" && (f[1] == "left" || f[1] == "right") {
			return f[1], f[0]
		}
		return f[0], f[1]
	}
	return "center", "top"
}

// css is the shorthand used for the background property.
func (b background) css() string {
	parts := []string{b.color}
	if b.url != "" {
		parts = append(parts, "url('"+b.url+"')", b.posX+" "+b.posY, "/ "+b.size, b.repeat)
	}
	return joinNonEmpty(parts, " ")
}

func joinNonEmpty(parts []string, sep string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// percentOf returns the numeric value of a plain percentage like "25%".
func percentOf(s string) (float64, bool) {
	if !strings.HasSuffix(s, "%") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:len(s)-1], 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// vmlFill holds the attributes of the v:fill element that replaces a CSS background in Outlook.
type vmlFill struct {
	typ      string
	origin   string
	position string
	size     string
	aspect   string
}

func (b background) fill() vmlFill {
	x := keywordPercent(b.posX, map[string]string{"left": "0%", "center": "50%", "right": "100%"}, "50%")
	y := keywordPercent(b.posY, map[string]string{"top": "0%", "center": "50%", "bottom": "100%"}, "0%")

	repeat := b.repeat == "repeat"
	coord := func(pos string) string {
		v, _ := percentOf(pos)
		// the fractional part of the percentage is ignored
		d := float64(int(v)) / 100
		if repeat {
			return formatFloat(d)
		}
		return formatFloat((-50 + d*100) / 100)
	}
	vx, vy := coord(x), coord(y)

	f := vmlFill{typ: "tile"}
	if b.repeat == "no-repeat" {
		f.typ = "frame"
	}
	switch b.size {
	case "cover", "contain":
		f.size = "1,1"
		f.aspect = "atmost"
		if b.size == "cover" {
			f.aspect = "atleast"
		}
	case "auto":
		f.typ = "tile"
		vx, vy = "0.5", "0"
	default:
		if parts := strings.Fields(b.size); len(parts) == 1 {
			f.size = b.size
			f.aspect = "atmost"
		} else {
			f.size = strings.Join(parts, ",")
		}
	}
	f.origin = vx + ", " + vy
	f.position = vx + ", " + vy
	return f
}

func keywordPercent(v string, keywords map[string]string, fallback string) string {
	if p, ok := keywords[v]; ok {
		return p
	}
	if _, ok := percentOf(v); ok {
		return v
	}
	return fallback
}

// openVML starts the VML shape that carries the background in Outlook. The content written
// until closeVML is placed in the shape's text box.
func openVML(w *htmlWriter, b background, fullWidth bool, containerWidth float64) {
	style := css("width", formatFloat(containerWidth)+"px")
	if fullWidth {
		style = css("mso-width-percent", "1000")
	}
	f := b.fill()
	w.mso(func() {
		w.openTag("v:rect", a("style", style), a("xmlns:v", "urn:schemas-microsoft-com:vml"), a("fill", "true"), a("stroke", "false"))
		w.voidTag("v:fill",
			a("origin", f.origin),
			a("position", f.position),
			a("src", b.url),
			a("color", b.color),
			a("type", f.typ),
			a("size", f.size),
			a("aspect", f.aspect),
		)
		w.openTag("v:textbox", a("style", "mso-fit-shape-to-text:true"), a("inset", "0,0,0,0"))
	})
}

func closeVML(w *htmlWriter) {
	w.mso(func() {
		w.closeTag("v:textbox")
		w.closeTag("v:rect")
	})
}
