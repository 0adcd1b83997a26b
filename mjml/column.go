package mjml

// columnWidth is the desktop width of a column or group: the width attribute, or an equal share
// of the container.
func (c *component) columnWidth() Size {
	if s, ok := c.size("width"); ok {
		return s
	}
	return Percent(100 / float64(c.frame.layoutSiblings()))
}

func (c *component) widthAsPixel() float64 {
	return c.columnWidth().Of(c.frame.containerWidth)
}

// columnClass registers and returns the responsive class of a column or group.
func (c *component) columnClass() string {
	s := c.columnWidth()
	name := "mj-column-px-" + s.classSuffix()
	if s.IsPercent() {
		name = "mj-column-per-" + s.classSuffix()
	}
	c.r.head.RegisterResponsiveClass(name, s)
	return name
}

// mobileWidth is the column width below the breakpoint.
func (c *component) mobileWidth() string {
	if !c.frame.mobileWidth {
		return "100%"
	}
	s, ok := c.size("width")
	switch {
	case !ok:
		return formatInt(100/float64(c.frame.layoutSiblings())) + "%"
	case s.IsPercent():
		return s.String()
	case c.frame.containerWidth > 0:
		return formatFloat(s.Value/c.frame.containerWidth*100) + "%"
	}
	return "100%"
}

// columnChildWidth is the width left for the content of a column.
func (c *component) columnChildWidth() float64 {
	paddings, borders, _ := c.boxWidths()
	inner := c.borderSide("inner-border", "left") + c.borderSide("inner-border", "right")
	return c.widthAsPixel() - paddings - borders - inner
}

func (c *component) hasGutter() bool {
	for _, name := range []string{"padding", "padding-bottom", "padding-left", "padding-right", "padding-top"} {
		if c.has(name) {
			return true
		}
	}
	return false
}

func (c *component) columnClasses() string {
	classes := c.columnClass() + " mj-outlook-group-fix"
	if cls := c.attr("css-class"); cls != "" {
		classes += " " + cls
	}
	return classes
}

func (c *component) renderColumn(w *htmlWriter) {
	w.openTag("div",
		a("class", c.columnClasses()),
		a("style", css(
			"font-size", "0px",
			"text-align", "left",
			"direction", c.attr("direction"),
			"display", "inline-block",
			"vertical-align", c.attr("vertical-align"),
			"width", c.mobileWidth(),
		)),
	)
	if c.hasGutter() {
		w.openTag("table", a("border", "0"), a("cellpadding", "0"), a("cellspacing", "0"), a("role", "presentation"), a("width", "100%"))
		w.openTag("tbody")
		w.openTag("tr")
		w.openTag("td", a("style", css(append(c.columnTableStyle(),
			"padding", c.attr("padding"),
			"padding-top", c.attr("padding-top"),
			"padding-right", c.attr("padding-right"),
			"padding-bottom", c.attr("padding-bottom"),
			"padding-left", c.attr("padding-left"),
		)...)))
		c.columnContent(w, css(
			"background-color", c.attr("inner-background-color"),
			"border", c.attr("inner-border"),
			"border-bottom", c.attr("inner-border-bottom"),
			"border-left", c.attr("inner-border-left"),
			"border-radius", c.attr("inner-border-radius"),
			"border-right", c.attr("inner-border-right"),
			"border-top", c.attr("inner-border-top"),
		))
		w.closeTag("td")
		w.closeTag("tr")
		w.closeTag("tbody")
		w.closeTag("table")
	} else {
		c.columnContent(w, css(c.columnTableStyle()...))
	}
	w.closeTag("div")
}

func (c *component) columnTableStyle() []string {
	return []string{
		"background-color", c.attr("background-color"),
		"border", c.attr("border"),
		"border-bottom", c.attr("border-bottom"),
		"border-left", c.attr("border-left"),
		"border-radius", c.attr("border-radius"),
		"border-right", c.attr("border-right"),
		"border-top", c.attr("border-top"),
		"vertical-align", c.attr("vertical-align"),
	}
}

func (c *component) columnContent(w *htmlWriter, style string) {
	w.openTag("table",
		a("border", "0"),
		a("cellpadding", "0"),
		a("cellspacing", "0"),
		a("role", "presentation"),
		a("style", style),
		a("width", "100%"),
	)
	w.openTag("tbody")
	for _, ch := range c.children(c.columnChildWidth(), nil) {
		renderCell(w, ch, false)
	}
	w.closeTag("tbody")
	w.closeTag("table")
}

// groupChildWidth is the width a group shares among its columns.
func (c *component) groupChildWidth() float64 {
	return c.widthAsPixel() - c.side("padding", "left") - c.side("padding", "right")
}

func (c *component) renderGroup(w *htmlWriter) {
	bg := c.attr("background-color")
	w.openTag("div",
		a("class", c.columnClasses()),
		a("style", css(
			"font-size", "0",
			"line-height", "0",
			"text-align", "left",
			"display", "inline-block",
			"width", "100%",
			"direction", c.attr("direction"),
			"vertical-align", c.attr("vertical-align"),
			"background-color", bg,
		)),
	)
	msoBg := bg
	if msoBg == "none" {
		msoBg = ""
	}
	w.mso(func() {
		w.openTag("table", a("bgcolor", msoBg), a("border", "0"), a("cellpadding", "0"), a("cellspacing", "0"), a("role", "presentation"))
		w.openTag("tr")
	})
	for _, ch := range c.children(c.groupChildWidth(), nil) {
		if ch.raw() {
			ch.render(w)
			continue
		}
		ch.frame.mobileWidth = true
		w.mso(func() {
			w.openTag("td", a("style", css(
				"vertical-align", ch.attr("vertical-align"),
				"width", px(ch.widthAsPixel()),
			)))
		})
		ch.render(w)
		w.mso(func() { w.closeTag("td") })
	}
	w.mso(func() {
		w.closeTag("tr")
		w.closeTag("table")
	})
	w.closeTag("div")
}
