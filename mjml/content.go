package mjml

import (
	"math"
	"strings"
)

func (c *component) renderText(w *htmlWriter) {
	c.useFont()
	height := c.attr("height")
	if height != "" {
		w.mso(func() {
			w.openTag("table", a("role", "presentation"), a("border", "0"), a("cellpadding", "0"), a("cellspacing", "0"))
			w.openTag("tr")
			w.openTag("td", a("height", height), a("style", css("vertical-align", "top", "height", height)))
		})
	}
	w.openTag("div", a("style", css(
		"font-family", c.attr("font-family"),
		"font-size", c.attr("font-size"),
		"font-style", c.attr("font-style"),
		"font-weight", c.attr("font-weight"),
		"letter-spacing", c.attr("letter-spacing"),
		"line-height", c.attr("line-height"),
		"text-align", c.attr("align"),
		"text-decoration", c.attr("text-decoration"),
		"text-transform", c.attr("text-transform"),
		"color", c.attr("color"),
		"height", height,
	)))
	w.raw(c.content())
	w.closeTag("div")
	if height != "" {
		w.mso(func() {
			w.closeTag("td")
			w.closeTag("tr")
			w.closeTag("table")
		})
	}
}

// buttonLinkWidth is the width of the button link: the button width minus its inner padding and
// borders. Percent widths cannot be translated and are left out.
func (c *component) buttonLinkWidth() string {
	s, ok := c.size("width")
	if !ok || !s.IsPixel() {
		return ""
	}
	_, borders, _ := c.boxWidths()
	inner := c.side("inner-padding", "left") + c.side("inner-padding", "right")
	return px(float64(int(s.Value)) - inner - borders)
}

func (c *component) renderButton(w *htmlWriter) {
	c.useFont()
	tag := "p"
	href := c.attr("href")
	if href != "" {
		tag = "a"
	}
	bg := c.attr("background-color")
	bgAttr := bg
	if bgAttr == "none" {
		bgAttr = ""
	}

	w.openTag("table",
		a("border", "0"),
		a("cellpadding", "0"),
		a("cellspacing", "0"),
		a("role", "presentation"),
		a("style", css("border-collapse", "separate", "width", c.attr("width"), "line-height", "100%")),
	)
	w.openTag("tbody")
	w.openTag("tr")
	w.openTag("td",
		a("align", "center"),
		a("bgcolor", bgAttr),
		a("role", "presentation"),
		a("style", css(
			"border", c.attr("border"),
			"border-bottom", c.attr("border-bottom"),
			"border-left", c.attr("border-left"),
			"border-radius", c.attr("border-radius"),
			"border-right", c.attr("border-right"),
			"border-top", c.attr("border-top"),
			"cursor", "auto",
			"font-style", c.attr("font-style"),
			"height", c.attr("height"),
			"mso-padding-alt", c.attr("inner-padding"),
			"text-align", c.attr("text-align"),
			"background", bg,
		)),
		a("valign", c.attr("vertical-align")),
	)
	target := ""
	if tag == "a" {
		target = c.attr("target")
	}
	w.openTag(tag,
		a("href", href),
		a("name", c.attr("name")),
		a("rel", c.attr("rel")),
		a("title", c.attr("title")),
		a("style", css(
			"display", "inline-block",
			"width", c.buttonLinkWidth(),
			"background", bg,
			"color", c.attr("color"),
			"font-family", c.attr("font-family"),
			"font-size", c.attr("font-size"),
			"font-style", c.attr("font-style"),
			"font-weight", c.attr("font-weight"),
			"line-height", c.attr("line-height"),
			"letter-spacing", c.attr("letter-spacing"),
			"margin", "0",
			"text-decoration", c.attr("text-decoration"),
			"text-transform", c.attr("text-transform"),
			"padding", c.attr("inner-padding"),
			"mso-padding-alt", "0px",
			"border-radius", c.attr("border-radius"),
		)),
		a("target", target),
	)
	w.raw(c.content())
	w.closeTag(tag)
	w.closeTag("td")
	w.closeTag("tr")
	w.closeTag("tbody")
	w.closeTag("table")
}

// imageWidth is the rendered width of an image: its width attribute capped by the box.
func (c *component) imageWidth() float64 {
	_, _, box := c.boxWidths()
	width := math.Inf(1)
	if n, ok := parseInt(c.attr("width")); ok {
		width = float64(n)
	}
	return math.Min(box, width)
}

const fluidImageCSS = `@media only screen and (max-width:%s) {
table.mj-full-width-mobile { width: 100% !important; }
td.mj-full-width-mobile { width: auto !important; }
}
`

func (c *component) renderImage(w *htmlWriter) {
	width := c.imageWidth()
	full := c.attr("full-width") == "full-width"
	fluid := c.attr("fluid-on-mobile") != ""
	fluidClass := ""
	if fluid {
		fluidClass = "mj-full-width-mobile"
		c.r.head.AddComponentStyle("mj-image", strings.Replace(fluidImageCSS, "%s", c.r.head.lowerBreakpoint(), 1))
	}

	var tableStyle, tdStyle, imgMin, imgMax string
	if full {
		tableStyle = css("min-width", "100%", "max-width", "100%", "width", px(width), "border-collapse", "collapse", "border-spacing", "0px")
		imgMin, imgMax = "100%", "100%"
	} else {
		tableStyle = css("border-collapse", "collapse", "border-spacing", "0px")
		tdStyle = css("width", px(width))
	}

	w.openTag("table",
		a("border", "0"),
		a("cellpadding", "0"),
		a("cellspacing", "0"),
		a("role", "presentation"),
		a("style", tableStyle),
		a("class", fluidClass),
	)
	w.openTag("tbody")
	w.openTag("tr")
	w.openTag("td", a("style", tdStyle), a("class", fluidClass))

	href := c.attr("href")
	if href != "" {
		w.openTag("a",
			a("href", href),
			a("target", c.attr("target")),
			a("rel", c.attr("rel")),
			a("name", c.attr("name")),
			a("title", c.attr("title")),
		)
	}
	height := c.attr("height")
	heightAttr := height
	if n, ok := parseInt(height); ok {
		heightAttr = formatInt(float64(n))
	}
	w.voidTag("img",
		ak("alt", c.attr("alt")),
		a("src", c.attr("src")),
		a("srcset", c.attr("srcset")),
		a("sizes", c.attr("sizes")),
		a("style", css(
			"border", c.attr("border"),
			"border-left", c.attr("border-left"),
			"border-right", c.attr("border-right"),
			"border-top", c.attr("border-top"),
			"border-bottom", c.attr("border-bottom"),
			"border-radius", c.attr("border-radius"),
			"display", "block",
			"outline", "none",
			"text-decoration", "none",
			"height", height,
			"max-height", c.attr("max-height"),
			"min-width", imgMin,
			"width", "100%",
			"max-width", imgMax,
			"font-size", c.attr("font-size"),
		)),
		a("title", c.attr("title")),
		a("width", formatInt(width)),
		a("height", heightAttr),
		a("usemap", c.attr("usemap")),
	)
	if href != "" {
		w.closeTag("a")
	}
	w.closeTag("td")
	w.closeTag("tr")
	w.closeTag("tbody")
	w.closeTag("table")
}

// dividerOutlookWidth is the pixel width of the divider in Outlook, which ignores percent widths
// on paragraphs.
func (c *component) dividerOutlookWidth() float64 {
	paddings := c.side("padding", "left") + c.side("padding", "right")
	avail := c.frame.containerWidth - paddings
	s, ok := c.size("width")
	switch {
	case !ok:
		return avail
	case s.IsPercent():
		return avail * float64(int(s.Value)) / 100
	}
	return s.Value
}

func (c *component) renderDivider(w *htmlWriter) {
	margin := "0px auto"
	switch c.attr("align") {
	case "left":
		margin = "0px"
	case "right":
		margin = "0px 0px 0px auto"
	}
	border := joinNonEmpty([]string{c.attr("border-style"), c.attr("border-width"), c.attr("border-color")}, " ")
	style := func(width string) string {
		return css("border-top", border, "font-size", "1px", "margin", margin, "width", width)
	}
	w.openTag("p", a("style", style(c.attr("width"))))
	w.closeTag("p")

	ow := c.dividerOutlookWidth()
	w.mso(func() {
		w.openTag("table",
			a("align", c.attr("align")),
			a("border", "0"),
			a("cellpadding", "0"),
			a("cellspacing", "0"),
			a("style", style(px(ow))),
			a("role", "presentation"),
			a("width", formatInt(ow)),
		)
		w.openTag("tr")
		w.openTag("td", a("style", "height:0;line-height:0;"))
		w.raw(" &nbsp;\n")
		w.closeTag("td")
		w.closeTag("tr")
		w.closeTag("table")
	})
}

func (c *component) renderSpacer(w *htmlWriter) {
	height := c.attr("height")
	width := c.frame.containerWidth - c.side("padding", "left") - c.side("padding", "right")
	msoHeight := height
	if s, ok := c.size("height"); ok && s.IsPixel() {
		msoHeight = formatInt(s.Value)
	}
	w.mso(func() {
		w.openTag("table", a("role", "presentation"), a("border", "0"), a("cellpadding", "0"), a("cellspacing", "0"), a("width", formatInt(width)))
		w.openTag("tr")
		w.openTag("td", a("height", msoHeight), a("style", css("vertical-align", "top", "height", height)))
	})
	w.openTag("div", a("style", css("height", height, "line-height", height)))
	w.raw("&#8202;")
	w.closeTag("div")
	w.mso(func() {
		w.closeTag("td")
		w.closeTag("tr")
		w.closeTag("table")
	})
}

func (c *component) renderTable(w *htmlWriter) {
	c.useFont()
	width := c.attr("width")
	widthAttr := width
	if s, ok := ParseSize(width); ok && s.IsPixel() {
		widthAttr = formatInt(s.Value)
	}
	w.openTag("table",
		a("cellpadding", c.attr("cellpadding")),
		a("cellspacing", c.attr("cellspacing")),
		a("role", c.attr("role")),
		a("width", widthAttr),
		a("border", "0"),
		a("style", css(
			"color", c.attr("color"),
			"font-family", c.attr("font-family"),
			"font-size", c.attr("font-size"),
			"line-height", c.attr("line-height"),
			"table-layout", c.attr("table-layout"),
			"width", width,
			"border", c.attr("border"),
		)),
	)
	w.raw(c.content())
	w.closeTag("table")
}
