package mjml

const accordionCSS = `noinput.mj-accordion-checkbox { display:block!important; }
@media yahoo, only screen and (min-width:0) {
.mj-accordion-element { display:block; }
input.mj-accordion-checkbox, .mj-accordion-less { display:none!important; }
input.mj-accordion-checkbox + * .mj-accordion-title { cursor:pointer; touch-action:manipulation; -webkit-user-select:none; -moz-user-select:none; user-select:none; }
input.mj-accordion-checkbox + * .mj-accordion-content { overflow:hidden; display:none; }
input.mj-accordion-checkbox + * .mj-accordion-more { display:block!important; }
input.mj-accordion-checkbox:checked + * .mj-accordion-content { display:block; }
input.mj-accordion-checkbox:checked + * .mj-accordion-more { display:none!important; }
input.mj-accordion-checkbox:checked + * .mj-accordion-less { display:block!important; }
}
.moz-text-html input.mj-accordion-checkbox + * .mj-accordion-title { cursor:auto; touch-action:auto; -webkit-user-select:auto; -moz-user-select:auto; user-select:auto; }
.moz-text-html input.mj-accordion-checkbox + * .mj-accordion-content { overflow:hidden; display:block; }
.moz-text-html input.mj-accordion-checkbox + * .mj-accordion-ico { display:none; }
@goodbye { @gmail }
`

// accordionInherited lists the attributes passed from an accordion to its elements, and from
// an element to its title and text.
var accordionInherited = []string{
	"border", "font-family",
	"icon-align", "icon-width", "icon-height", "icon-position",
	"icon-wrapped-url", "icon-wrapped-alt", "icon-unwrapped-url", "icon-unwrapped-alt",
}

func (c *component) inheritable(names []string) map[string]string {
	m := make(map[string]string, len(names))
	for _, name := range names {
		if v := c.attr(name); v != "" {
			m[name] = v
		}
	}
	return m
}

func (c *component) renderAccordion(w *htmlWriter) {
	c.r.head.AddComponentStyle("mj-accordion", accordionCSS)
	c.useFont()
	w.openTag("table",
		a("cellspacing", "0"),
		a("cellpadding", "0"),
		a("class", "mj-accordion"),
		a("style", css(
			"width", "100%",
			"border-collapse", "collapse",
			"border", c.attr("border"),
			"border-bottom", "none",
			"font-family", c.attr("font-family"),
		)),
	)
	w.openTag("tbody")
	for _, ch := range c.children(c.frame.containerWidth, c.inheritable(accordionInherited)) {
		ch.render(w)
	}
	w.closeTag("tbody")
	w.closeTag("table")
}

func (c *component) renderAccordionElement(w *htmlWriter) {
	inherited := c.inheritable(accordionInherited)
	if bg := c.attr("background-color"); bg != "" {
		inherited["background-color"] = bg
	}

	var title, text *component
	var rest []*component
	for _, ch := range c.children(c.frame.containerWidth, inherited) {
		switch {
		case ch.el != nil && ch.el.Kind == KindAccordionTitle && title == nil:
			title = ch
		case ch.el != nil && ch.el.Kind == KindAccordionText && text == nil:
			text = ch
		default:
			rest = append(rest, ch)
		}
	}
	if title == nil {
		title = c.synthetic(KindAccordionTitle, inherited)
	}
	if text == nil {
		text = c.synthetic(KindAccordionText, inherited)
	}

	w.openTag("tr", a("class", c.attr("css-class")))
	w.openTag("td", a("style", css("padding", "0px", "background-color", c.attr("background-color"))))
	w.openTag("label",
		a("class", "mj-accordion-element"),
		a("style", css("font-size", "13px", "font-family", c.attr("font-family"))),
	)
	w.notMSO(func() {
		w.voidTag("input", a("class", "mj-accordion-checkbox"), a("type", "checkbox"), a("style", "display:none;"))
	})
	w.openTag("div")
	title.render(w)
	text.render(w)
	for _, ch := range rest {
		ch.render(w)
	}
	w.closeTag("div")
	w.closeTag("label")
	w.closeTag("td")
	w.closeTag("tr")
}

// synthetic makes an empty child component of the given kind, standing in for one the
// document left out.
func (c *component) synthetic(kind Kind, inherited map[string]string) *component {
	el := &Element{Kind: kind, Tag: kindTags[kind]}
	return &component{r: c.r, el: el, inherited: inherited, frame: frame{containerWidth: c.frame.containerWidth, siblings: 1}}
}

func (c *component) renderAccordionTitle(w *htmlWriter) {
	c.useFont()
	w.openTag("div", a("class", "mj-accordion-title"))
	w.openTag("table",
		a("cellspacing", "0"),
		a("cellpadding", "0"),
		a("style", css("width", "100%", "border-bottom", c.attr("border"))),
	)
	w.openTag("tbody")
	w.openTag("tr")
	if c.attr("icon-position") == "left" {
		c.accordionIcon(w)
	}
	w.openTag("td",
		a("class", c.attr("css-class")),
		a("style", css(
			"width", "100%",
			"background-color", c.attr("background-color"),
			"color", c.attr("color"),
			"font-size", c.attr("font-size"),
			"font-family", c.attr("font-family"),
			"font-weight", c.attr("font-weight"),
			"padding", c.attr("padding"),
			"padding-top", c.attr("padding-top"),
			"padding-right", c.attr("padding-right"),
			"padding-bottom", c.attr("padding-bottom"),
			"padding-left", c.attr("padding-left"),
		)),
	)
	w.raw(c.content())
	w.closeTag("td")
	if c.attr("icon-position") != "left" {
		c.accordionIcon(w)
	}
	w.closeTag("tr")
	w.closeTag("tbody")
	w.closeTag("table")
	w.closeTag("div")
}

func (c *component) accordionIcon(w *htmlWriter) {
	img := func(src, alt, class string) {
		w.voidTag("img",
			a("src", src),
			ak("alt", alt),
			a("class", class),
			a("style", css("display", "none", "width", c.attr("icon-width"), "height", c.attr("icon-height"))),
		)
	}
	w.notMSO(func() {
		w.openTag("td",
			a("class", "mj-accordion-ico"),
			a("style", css(
				"padding", "16px",
				"background", c.attr("background-color"),
				"vertical-align", c.attr("icon-align"),
			)),
		)
		img(c.attr("icon-wrapped-url"), c.attr("icon-wrapped-alt"), "mj-accordion-more")
		img(c.attr("icon-unwrapped-url"), c.attr("icon-unwrapped-alt"), "mj-accordion-less")
		w.closeTag("td")
	})
}

func (c *component) renderAccordionText(w *htmlWriter) {
	c.useFont()
	w.openTag("div", a("class", "mj-accordion-content"))
	w.openTag("table",
		a("cellspacing", "0"),
		a("cellpadding", "0"),
		a("style", css("width", "100%", "border-bottom", c.attr("border"))),
	)
	w.openTag("tbody")
	w.openTag("tr")
	w.openTag("td",
		a("class", c.attr("css-class")),
		a("style", css(
			"line-height", c.attr("line-height"),
			"font-size", c.attr("font-size"),
			"font-family", c.attr("font-family"),
			"font-weight", c.attr("font-weight"),
			"letter-spacing", c.attr("letter-spacing"),
			"color", c.attr("color"),
			"background", c.attr("background-color"),
			"padding", c.attr("padding"),
			"padding-top", c.attr("padding-top"),
			"padding-right", c.attr("padding-right"),
			"padding-bottom", c.attr("padding-bottom"),
			"padding-left", c.attr("padding-left"),
		)),
	)
	w.raw(c.content())
	w.closeTag("td")
	w.closeTag("tr")
	w.closeTag("tbody")
	w.closeTag("table")
	w.closeTag("div")
}
