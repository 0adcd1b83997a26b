package mjml

func (c *component) background() background {
	b := background{
		color:    c.attr("background-color"),
		url:      c.attr("background-url"),
		repeat:   c.attr("background-repeat"),
		size:     c.attr("background-size"),
		position: c.attr("background-position"),
	}
	x, y := parseBackgroundPosition(b.position)
	b.posX, b.posY = x, y
	if v := c.attr("background-position-x"); v != "" {
		b.posX = v
	}
	if v := c.attr("background-position-y"); v != "" {
		b.posY = v
	}
	return b
}

// style returns the CSS declarations of a background as key/value pairs.
func (b background) style() []string {
	if b.url == "" {
		return []string{"background", b.color, "background-color", b.color}
	}
	return []string{
		"background", b.css(),
		"background-position", b.posX + " " + b.posY,
		"background-repeat", b.repeat,
		"background-size", b.size,
	}
}

func (c *component) fullWidth() bool {
	return c.attr("full-width") == "full-width"
}

func (c *component) renderSection(w *htmlWriter) {
	c.renderSectionLike(w, c.sectionChildren)
}

func (c *component) renderWrapper(w *htmlWriter) {
	c.renderSectionLike(w, c.wrapperChildren)
}

// renderSectionLike writes a section or a wrapper. Both are a centered block with an optional
// background; they differ in how their children are laid out for Outlook.
func (c *component) renderSectionLike(w *htmlWriter, children func(*htmlWriter, float64)) {
	full := c.fullWidth()
	bg := c.background()
	hasBg := bg.url != ""
	width := c.frame.containerWidth

	if !full {
		c.sectionBefore(w)
		if hasBg {
			openVML(w, bg, false, width)
		}
		c.sectionContent(w, full, bg, children)
		if hasBg {
			closeVML(w)
		}
		c.sectionAfter(w)
		return
	}

	style := append(bg.style(), "width", "100%", "border-radius", c.attr("border-radius"))
	w.openTag("table",
		a("align", "center"),
		a("class", c.attr("css-class")),
		a("background", bg.url),
		a("border", "0"),
		a("cellpadding", "0"),
		a("cellspacing", "0"),
		a("role", "presentation"),
		a("style", css(style...)),
	)
	w.openTag("tbody")
	w.openTag("tr")
	w.openTag("td")
	if hasBg {
		openVML(w, bg, true, width)
	}
	c.sectionBefore(w)
	c.sectionContent(w, full, bg, children)
	c.sectionAfter(w)
	if hasBg {
		closeVML(w)
	}
	w.closeTag("td")
	w.closeTag("tr")
	w.closeTag("tbody")
	w.closeTag("table")
}

// sectionBefore opens the fixed width Outlook table that centers the section.
func (c *component) sectionBefore(w *htmlWriter) {
	width := c.frame.containerWidth
	w.mso(func() {
		w.openTag("table",
			a("align", "center"),
			a("border", "0"),
			a("cellpadding", "0"),
			a("cellspacing", "0"),
			a("class", suffixClasses(c.attr("css-class"), "outlook")),
			a("role", "presentation"),
			a("style", css("width", px(width))),
			a("width", formatInt(width)),
			a("bgcolor", c.attr("background-color")),
		)
		w.openTag("tr")
		w.openTag("td", a("style", "line-height:0px;font-size:0px;mso-line-height-rule:exactly;"))
	})
}

func (c *component) sectionAfter(w *htmlWriter) {
	w.mso(func() {
		w.closeTag("td")
		w.closeTag("tr")
		w.closeTag("table")
	})
}

func (c *component) sectionContent(w *htmlWriter, full bool, bg background, children func(*htmlWriter, float64)) {
	hasBg := bg.url != ""
	_, _, box := c.boxWidths()

	var bgStyle []string
	tableBackground := bg.url
	if !full {
		bgStyle = bg.style()
	} else {
		tableBackground = ""
	}

	divStyle := append(append([]string{}, bgStyle...),
		"margin", "0px auto",
		"border-radius", c.attr("border-radius"),
		"max-width", px(c.frame.containerWidth),
	)
	divClass := c.attr("css-class")
	if full {
		divClass = ""
	}
	w.openTag("div", a("class", divClass), a("style", css(divStyle...)))
	if hasBg {
		w.openTag("div", a("style", "line-height:0;font-size:0;"))
	}

	tableStyle := append(append([]string{}, bgStyle...),
		"width", "100%",
		"border-radius", c.attr("border-radius"),
	)
	w.openTag("table",
		a("align", "center"),
		a("background", tableBackground),
		a("border", "0"),
		a("cellpadding", "0"),
		a("cellspacing", "0"),
		a("role", "presentation"),
		a("style", css(tableStyle...)),
	)
	w.openTag("tbody")
	w.openTag("tr")
	w.openTag("td", a("style", css(
		"border", c.attr("border"),
		"border-bottom", c.attr("border-bottom"),
		"border-left", c.attr("border-left"),
		"border-right", c.attr("border-right"),
		"border-top", c.attr("border-top"),
		"direction", c.attr("direction"),
		"font-size", "0px",
		"padding", c.attr("padding"),
		"padding-bottom", c.attr("padding-bottom"),
		"padding-left", c.attr("padding-left"),
		"padding-right", c.attr("padding-right"),
		"padding-top", c.attr("padding-top"),
		"text-align", c.attr("text-align"),
	)))
	w.mso(func() {
		w.openTag("table", a("role", "presentation"), a("border", "0"), a("cellpadding", "0"), a("cellspacing", "0"))
	})
	children(w, box)
	w.mso(func() {
		w.closeTag("table")
	})
	w.closeTag("td")
	w.closeTag("tr")
	w.closeTag("tbody")
	w.closeTag("table")
	if hasBg {
		w.closeTag("div")
	}
	w.closeTag("div")
}

// sectionChildren lays the columns of a section out in one Outlook table row.
func (c *component) sectionChildren(w *htmlWriter, width float64) {
	w.mso(func() { w.openTag("tr") })
	for _, ch := range c.children(width, nil) {
		if ch.raw() {
			ch.render(w)
			continue
		}
		w.mso(func() {
			w.openTag("td",
				a("align", ch.attr("align")),
				a("class", suffixClasses(ch.attr("css-class"), "outlook")),
				a("style", ch.tdOutlook()),
			)
		})
		ch.render(w)
		w.mso(func() { w.closeTag("td") })
	}
	w.mso(func() { w.closeTag("tr") })
}

// wrapperChildren puts every section of a wrapper in its own Outlook table row.
func (c *component) wrapperChildren(w *htmlWriter, width float64) {
	for _, ch := range c.children(width, nil) {
		if ch.raw() {
			ch.render(w)
			continue
		}
		w.mso(func() {
			w.openTag("tr")
			w.openTag("td",
				a("align", ch.attr("align")),
				a("class", suffixClasses(ch.attr("css-class"), "outlook")),
				a("width", formatInt(c.frame.containerWidth)),
			)
		})
		ch.render(w)
		w.mso(func() {
			w.closeTag("td")
			w.closeTag("tr")
		})
	}
}

// tdOutlook is the style of the Outlook table cell that holds a column or a group.
func (c *component) tdOutlook() string {
	switch c.el.Kind {
	case KindColumn, KindGroup:
		return css("vertical-align", c.attr("vertical-align"), "width", px(c.widthAsPixel()))
	}
	return ""
}
