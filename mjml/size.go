package mjml

import (
	"math"
	"strconv"
	"strings"
)

// Unit is the unit of a Size value.
type Unit int

const (
	UnitRaw Unit = iota
	UnitPixel
	UnitPercent
)

// Size is a length value: pixels, percents or an unparsed raw string (e.g. "auto").
type Size struct {
	Unit  Unit
	Value float64
	Raw   string
}

func Pixel(v float64) Size   { return Size{Unit: UnitPixel, Value: v} }
func Percent(v float64) Size { return Size{Unit: UnitPercent, Value: v} }
func RawSize(s string) Size  { return Size{Unit: UnitRaw, Raw: s} }

// ParseSize parses "600px", "50%" or a bare number (treated as pixels). Values with any other
// unit are returned as raw sizes with ok == false.
func ParseSize(s string) (Size, bool) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Size{}, false
	case strings.HasSuffix(s, "px"):
		v, err := strconv.ParseFloat(strings.TrimSpace(s[:len(s)-2]), 64)
		if err != nil {
			return RawSize(s), false
		}
		return Pixel(v), true
	case strings.HasSuffix(s, "%"):
		v, err := strconv.ParseFloat(strings.TrimSpace(s[:len(s)-1]), 64)
		if err != nil {
			return RawSize(s), false
		}
		return Percent(v), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return RawSize(s), false
	}
	return Pixel(v), true
}

func (s Size) IsPixel() bool   { return s.Unit == UnitPixel }
func (s Size) IsPercent() bool { return s.Unit == UnitPercent }
func (s Size) IsRaw() bool     { return s.Unit == UnitRaw }

// Of returns the pixel value of s relative to the container width. Raw sizes resolve to the
// whole container.
func (s Size) Of(container float64) float64 {
	switch s.Unit {
	case UnitPixel:
		return s.Value
	case UnitPercent:
		return container * s.Value / 100
	}
	return container
}

func (s Size) String() string {
	switch s.Unit {
	case UnitPixel:
		return formatFloat(s.Value) + "px"
	case UnitPercent:
		return formatFloat(s.Value) + "%"
	}
	return s.Raw
}

// classSuffix renders the numeric part of s as a valid CSS identifier fragment.
func (s Size) classSuffix() string {
	return strings.ReplaceAll(formatFloat(s.Value), ".", "-")
}

const significantDigits = 12

// formatFloat prints v rounded to a fixed number of significant digits, so that values
// produced by division (100/3) format the same way on every platform.
func formatFloat(v float64) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', significantDigits, 64), 64)
	if err != nil {
		r = v
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// formatInt truncates v toward zero, the way width attributes on table cells are written.
func formatInt(v float64) string {
	return strconv.Itoa(int(v))
}

// parseInt reads a leading integer from s ("600px" -> 600). It returns ok == false when s does
// not start with a number.
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Box holds pixel values of the four sides of a padding-like shorthand.
type Box struct {
	Top, Right, Bottom, Left float64
}

func (b Box) Horizontal() float64 { return b.Left + b.Right }
func (b Box) Vertical() float64   { return b.Top + b.Bottom }

// ParseBox expands a 1 to 4 value shorthand ("10px 25px") into its sides. Non-pixel values count
// as zero.
func ParseBox(s string) Box {
	var v []float64
	for _, f := range strings.Fields(s) {
		sz, ok := ParseSize(f)
		if !ok || !sz.IsPixel() {
			v = append(v, 0)
			continue
		}
		v = append(v, sz.Value)
	}
	switch len(v) {
	case 1:
		return Box{v[0], v[0], v[0], v[0]}
	case 2:
		return Box{v[0], v[1], v[0], v[1]}
	case 3:
		return Box{v[0], v[1], v[2], v[1]}
	case 4:
		return Box{v[0], v[1], v[2], v[3]}
	}
	return Box{}
}

// borderWidth extracts the width from a border shorthand ("2px solid #000").
func borderWidth(s string) float64 {
	for _, f := range strings.Fields(s) {
		if f == "none" {
			return 0
		}
		if n, ok := parseInt(f); ok {
			return float64(n)
		}
	}
	return 0
}
