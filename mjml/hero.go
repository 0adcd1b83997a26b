package mjml

import "math"

func (c *component) heroBackground() string {
	parts := []string{c.attr("background-color")}
	if u := c.attr("background-url"); u != "" {
		parts = append(parts, "url('"+u+"')", "no-repeat", c.attr("background-position")+" / cover")
	}
	return joinNonEmpty(parts, " ")
}

func (c *component) renderHero(w *htmlWriter) {
	width := c.frame.containerWidth
	bgWidth := c.attr("background-width")
	if bgWidth == "" {
		bgWidth = px(width)
	}

	w.mso(func() {
		w.openTag("table",
			a("align", "center"),
			a("border", "0"),
			a("cellpadding", "0"),
			a("cellspacing", "0"),
			a("role", "presentation"),
			a("style", css("width", px(width))),
			a("width", formatInt(width)),
		)
		w.openTag("tr")
		w.openTag("td", a("style", "line-height:0;font-size:0;mso-line-height-rule:exactly;"))
		w.voidTag("v:image",
			a("style", css(
				"border", "0",
				"height", c.attr("background-height"),
				"mso-position-horizontal", "center",
				"position", "absolute",
				"top", "0",
				"width", bgWidth,
				"z-index", "-3",
			)),
			a("src", c.attr("background-url")),
			a("xmlns:v", "urn:schemas-microsoft-com:vml"),
		)
	})
	w.openTag("div",
		a("align", c.attr("align")),
		a("class", c.attr("css-class")),
		a("style", css("margin", "0 auto", "max-width", px(width))),
	)
	w.openTag("table", a("border", "0"), a("cellpadding", "0"), a("cellspacing", "0"), a("role", "presentation"), a("style", "width:100%;"))
	w.openTag("tbody")
	w.openTag("tr", a("style", "vertical-align:top;"))

	heroStyle := css(
		"background", c.heroBackground(),
		"background-position", c.attr("background-position"),
		"background-repeat", "no-repeat",
		"border-radius", c.attr("border-radius"),
		"padding", c.attr("padding"),
		"padding-top", c.attr("padding-top"),
		"padding-left", c.attr("padding-left"),
		"padding-right", c.attr("padding-right"),
		"padding-bottom", c.attr("padding-bottom"),
		"vertical-align", c.attr("vertical-align"),
	)
	if c.attr("mode") == "fluid-height" {
		fluid := c.heroFluidStyle()
		w.openTag("td", a("style", fluid))
		w.closeTag("td")
		w.openTag("td", a("background", c.attr("background-url")), a("style", heroStyle))
		c.heroContent(w)
		w.closeTag("td")
		w.openTag("td", a("style", fluid))
		w.closeTag("td")
	} else {
		height := 0.0
		if n, ok := parseInt(c.attr("height")); ok {
			height = float64(n)
		}
		height -= c.side("padding", "top") + c.side("padding", "bottom")
		w.openTag("td", a("background", c.attr("background-url")), a("style", heroStyle), a("height", formatInt(height)))
		c.heroContent(w)
		w.closeTag("td")
	}

	w.closeTag("tr")
	w.closeTag("tbody")
	w.closeTag("table")
	w.closeTag("div")
	w.mso(func() {
		w.closeTag("td")
		w.closeTag("tr")
		w.closeTag("table")
	})
}

// heroFluidStyle keeps the hero at the aspect ratio of its background image.
func (c *component) heroFluidStyle() string {
	ratio := ""
	h, okh := parseInt(c.attr("background-height"))
	bw, okw := parseInt(c.attr("background-width"))
	if okh && okw && bw != 0 {
		ratio = formatFloat(math.Round(float64(h)/float64(bw)*10000)/100) + "%"
	}
	return css("width", "0.01%", "padding-bottom", ratio, "mso-padding-bottom-alt", "0")
}

func (c *component) heroContent(w *htmlWriter) {
	width := c.frame.containerWidth
	inner := css(
		"background-color", c.attr("inner-background-color"),
		"padding", c.attr("inner-padding"),
		"padding-top", c.attr("inner-padding-top"),
		"padding-left", c.attr("inner-padding-left"),
		"padding-right", c.attr("inner-padding-right"),
		"padding-bottom", c.attr("inner-padding-bottom"),
	)
	w.mso(func() {
		w.openTag("table",
			a("align", c.attr("align")),
			a("border", "0"),
			a("cellpadding", "0"),
			a("cellspacing", "0"),
			a("style", css("width", px(width))),
			a("width", formatInt(width)),
		)
		w.openTag("tr")
		w.openTag("td", a("style", inner))
	})
	w.openTag("div",
		a("align", c.attr("align")),
		a("class", "mj-hero-content"),
		a("style", css(
			"background-color", c.attr("inner-background-color"),
			"float", c.attr("align"),
			"margin", "0px auto",
			"width", c.attr("width"),
		)),
	)
	innerTable := func() {
		w.openTag("table", a("border", "0"), a("cellpadding", "0"), a("cellspacing", "0"), a("role", "presentation"), a("style", "width:100%;margin:0px;"))
		w.openTag("tbody")
	}
	innerTable()
	w.openTag("tr")
	w.openTag("td", a("style", inner))
	innerTable()
	childWidth := width - c.side("padding", "left") - c.side("padding", "right")
	for _, ch := range c.children(childWidth, nil) {
		renderCell(w, ch, true)
	}
	w.closeTag("tbody")
	w.closeTag("table")
	w.closeTag("td")
	w.closeTag("tr")
	w.closeTag("tbody")
	w.closeTag("table")
	w.closeTag("div")
	w.mso(func() {
		w.closeTag("td")
		w.closeTag("tr")
		w.closeTag("table")
	})
}
