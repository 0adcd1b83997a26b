package mjml

import (
	"net/url"
	"strings"
)

const navbarCSS = `noinput.mj-menu-checkbox { display:block!important; max-height:none!important; visibility:visible!important; }
@media only screen and (max-width:%s) {
.mj-menu-checkbox[type="checkbox"] ~ .mj-inline-links { display:none!important; }
.mj-menu-checkbox[type="checkbox"]:checked ~ .mj-inline-links,
.mj-menu-checkbox[type="checkbox"] ~ .mj-menu-trigger { display:block!important; max-width:none!important; max-height:none!important; font-size:inherit!important; }
.mj-menu-checkbox[type="checkbox"] ~ .mj-inline-links > a { display:block!important; }
.mj-menu-checkbox[type="checkbox"]:checked ~ .mj-menu-trigger .mj-menu-icon-close { display:block!important; }
.mj-menu-checkbox[type="checkbox"]:checked ~ .mj-menu-trigger .mj-menu-icon-open { display:none!important; }
}
`

// navbarBaseURL is the attribute a navbar passes to its links.
const navbarBaseURL = "navbar-base-url"

func (c *component) renderNavbar(w *htmlWriter) {
	if c.attr("hamburger") == "hamburger" {
		c.renderHamburger(w)
	}
	w.openTag("div", a("class", "mj-inline-links"))
	w.mso(func() {
		w.openTag("table", a("role", "presentation"), a("border", "0"), a("cellpadding", "0"), a("cellspacing", "0"), a("align", c.attr("align")))
		w.openTag("tr")
	})
	var inherited map[string]string
	if base := c.attr("base-url"); base != "" {
		inherited = map[string]string{navbarBaseURL: base}
	}
	for _, ch := range c.children(c.frame.containerWidth, inherited) {
		ch.render(w)
	}
	w.mso(func() {
		w.closeTag("tr")
		w.closeTag("table")
	})
	w.closeTag("div")
}

func (c *component) renderHamburger(w *htmlWriter) {
	c.r.head.AddComponentStyle("mj-navbar", strings.Replace(navbarCSS, "%s", c.r.head.lowerBreakpoint(), 1))
	id := c.r.head.nextID()
	w.notMSO(func() {
		w.voidTag("input",
			a("type", "checkbox"),
			a("id", id),
			a("class", "mj-menu-checkbox"),
			a("style", "display:none !important; max-height:0; visibility:hidden;"),
		)
	})
	w.openTag("div",
		a("class", "mj-menu-trigger"),
		a("style", "display:none;max-height:0px;max-width:0px;font-size:0px;overflow:hidden;"),
	)
	w.openTag("label",
		a("for", id),
		a("class", "mj-menu-label"),
		a("style", css(
			"display", "block",
			"cursor", "pointer",
			"mso-hide", "all",
			"-moz-user-select", "none",
			"user-select", "none",
			"color", c.attr("ico-color"),
			"font-size", c.attr("ico-font-size"),
			"font-family", c.attr("ico-font-family"),
			"text-transform", c.attr("ico-text-transform"),
			"text-decoration", c.attr("ico-text-decoration"),
			"line-height", c.attr("ico-line-height"),
			"padding-top", c.attr("ico-padding-top"),
			"padding-right", c.attr("ico-padding-right"),
			"padding-bottom", c.attr("ico-padding-bottom"),
			"padding-left", c.attr("ico-padding-left"),
			"padding", c.attr("ico-padding"),
		)),
		a("align", c.attr("ico-align")),
	)
	w.openTag("span", a("class", "mj-menu-icon-open"), a("style", "mso-hide:all;"))
	w.raw(c.attr("ico-open"))
	w.closeTag("span")
	w.openTag("span", a("class", "mj-menu-icon-close"), a("style", "display:none;mso-hide:all;"))
	w.raw(c.attr("ico-close"))
	w.closeTag("span")
	w.closeTag("label")
	w.closeTag("div")
}

// navbarLinkHref resolves the link against the base URL of the navbar.
func (c *component) navbarLinkHref() string {
	href := c.attr("href")
	base := c.attr(navbarBaseURL)
	if base == "" {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return base + href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return base + href
	}
	return b.ResolveReference(ref).String()
}

func (c *component) renderNavbarLink(w *htmlWriter) {
	c.useFont()
	padding := []string{
		"padding", c.attr("padding"),
		"padding-top", c.attr("padding-top"),
		"padding-left", c.attr("padding-left"),
		"padding-right", c.attr("padding-right"),
		"padding-bottom", c.attr("padding-bottom"),
	}
	w.mso(func() {
		w.openTag("td",
			a("style", css(padding...)),
			a("class", suffixClasses(c.attr("css-class"), "outlook")),
		)
	})
	class := "mj-link"
	if cls := c.attr("css-class"); cls != "" {
		class += " " + cls
	}
	w.openTag("a",
		a("class", class),
		a("href", c.navbarLinkHref()),
		a("rel", c.attr("rel")),
		a("target", c.attr("target")),
		a("name", c.attr("name")),
		a("style", css(append([]string{
			"display", "inline-block",
			"color", c.attr("color"),
			"font-family", c.attr("font-family"),
			"font-size", c.attr("font-size"),
			"font-style", c.attr("font-style"),
			"font-weight", c.attr("font-weight"),
			"letter-spacing", c.attr("letter-spacing"),
			"line-height", c.attr("line-height"),
			"text-decoration", c.attr("text-decoration"),
			"text-transform", c.attr("text-transform"),
		}, padding...)...)),
	)
	w.raw(c.content())
	w.closeTag("a")
	w.mso(func() { w.closeTag("td") })
}
