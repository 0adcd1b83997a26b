package mjml

import (
	"strings"
)

const socialIconBase = "https://www.mailjet.com/images/theme/v1/icons/ico-social/"

type socialNetwork struct {
	shareURL   string
	background string
	src        string
}

var socialNetworks = func() map[string]socialNetwork {
	m := map[string]socialNetwork{
		"facebook":   {"https://www.facebook.com/sharer/sharer.php?u=[[URL]]", "#3b5998", socialIconBase + "facebook.png"},
		"twitter":    {"https://twitter.com/intent/tweet?url=[[URL]]", "#55acee", socialIconBase + "twitter.png"},
		"x":          {"https://twitter.com/intent/tweet?url=[[URL]]", "#000000", socialIconBase + "twitter-x.png"},
		"google":     {"https://plus.google.com/share?url=[[URL]]", "#dc4e41", socialIconBase + "google-plus.png"},
		"pinterest":  {"https://pinterest.com/pin/create/button/?url=[[URL]]&media=&description=", "#bd081c", socialIconBase + "pinterest.png"},
		"linkedin":   {"https://www.linkedin.com/shareArticle?mini=true&url=[[URL]]&title=&summary=&source=", "#0077b5", socialIconBase + "linkedin.png"},
		"instagram":  {"", "#3f729b", socialIconBase + "instagram.png"},
		"web":        {"", "#4BADE9", socialIconBase + "web.png"},
		"snapchat":   {"", "#FFFA54", socialIconBase + "snapchat.png"},
		"youtube":    {"", "#EB3323", socialIconBase + "youtube.png"},
		"tumblr":     {"https://www.tumblr.com/widgets/share/tool?canonicalUrl=[[URL]]", "#344356", socialIconBase + "tumblr.png"},
		"github":     {"", "#000000", socialIconBase + "github.png"},
		"xing":       {"https://www.xing.com/app/user?op=share&url=[[URL]]", "#296366", socialIconBase + "xing.png"},
		"vimeo":      {"", "#53B4E7", socialIconBase + "vimeo.png"},
		"medium":     {"", "#000000", socialIconBase + "medium.png"},
		"soundcloud": {"", "#EF7F31", socialIconBase + "soundcloud.png"},
		"dribbble":   {"", "#D95988", socialIconBase + "dribbble.png"},
	}
	for name, n := range m {
		n.shareURL = ""
		m[name+"-noshare"] = n
	}
	return m
}()

// socialInherited lists the attributes a social block passes to its elements.
var socialInherited = []string{
	"border-radius", "color", "font-family", "font-size", "font-weight", "font-style",
	"icon-size", "icon-height", "icon-padding", "text-padding", "line-height", "text-decoration",
}

func (c *component) renderSocial(w *htmlWriter) {
	inherited := map[string]string{}
	if v := c.attr("inner-padding"); v != "" {
		inherited["padding"] = v
	}
	for _, name := range socialInherited {
		if v := c.attr(name); v != "" {
			inherited[name] = v
		}
	}
	children := c.children(c.frame.containerWidth, inherited)

	if c.attr("mode") != "horizontal" {
		w.openTag("table", a("border", "0"), a("cellpadding", "0"), a("cellspacing", "0"), a("role", "presentation"), a("style", "margin:0px;"))
		w.openTag("tbody")
		for _, ch := range children {
			ch.render(w)
		}
		w.closeTag("tbody")
		w.closeTag("table")
		return
	}

	align := c.attr("align")
	w.mso(func() {
		w.openTag("table", a("align", align), a("border", "0"), a("cellpadding", "0"), a("cellspacing", "0"), a("role", "presentation"))
		w.openTag("tr")
	})
	for _, ch := range children {
		if ch.raw() {
			ch.render(w)
			continue
		}
		w.mso(func() { w.openTag("td") })
		w.openTag("table",
			a("align", align),
			a("border", "0"),
			a("cellpadding", "0"),
			a("cellspacing", "0"),
			a("role", "presentation"),
			a("style", "float:none;display:inline-table;"),
		)
		w.openTag("tbody")
		ch.render(w)
		w.closeTag("tbody")
		w.closeTag("table")
		w.mso(func() { w.closeTag("td") })
	}
	w.mso(func() {
		w.closeTag("tr")
		w.closeTag("table")
	})
}

func (c *component) renderSocialElement(w *htmlWriter) {
	c.useFont()
	network := socialNetworks[c.attr("name")]
	href := c.attr("href")
	hasLink := href != ""
	if network.shareURL != "" {
		href = strings.Replace(network.shareURL, "[[URL]]", href, 1)
	}
	pick := func(name, fallback string) string {
		if v := c.attr(name); v != "" {
			return v
		}
		return fallback
	}
	iconSize := c.attr("icon-size")
	iconHeight := pick("icon-height", iconSize)
	src := pick("src", network.src)
	bg := pick("background-color", network.background)

	padding := []string{
		"padding", c.attr("padding"),
		"padding-top", c.attr("padding-top"),
		"padding-right", c.attr("padding-right"),
		"padding-bottom", c.attr("padding-bottom"),
		"padding-left", c.attr("padding-left"),
	}

	icon := func() {
		w.openTag("td", a("style", css(append(padding, "vertical-align", c.attr("vertical-align"))...)))
		w.openTag("table",
			a("border", "0"),
			a("cellpadding", "0"),
			a("cellspacing", "0"),
			a("role", "presentation"),
			a("style", css("background", bg, "border-radius", c.attr("border-radius"), "width", iconSize)),
		)
		w.openTag("tbody")
		w.openTag("tr")
		w.openTag("td", a("style", css(
			"padding", c.attr("icon-padding"),
			"font-size", "0",
			"height", iconHeight,
			"vertical-align", "middle",
			"width", iconSize,
		)))
		if hasLink {
			w.openTag("a", a("href", href), a("rel", c.attr("rel")), a("target", c.attr("target")))
		}
		width := ""
		if n, ok := parseInt(iconSize); ok {
			width = formatInt(float64(n))
		}
		w.voidTag("img",
			ak("alt", c.attr("alt")),
			a("title", c.attr("title")),
			a("src", src),
			a("style", css("border-radius", c.attr("border-radius"), "display", "block")),
			a("width", width),
			a("sizes", c.attr("sizes")),
			a("srcset", c.attr("srcset")),
		)
		if hasLink {
			w.closeTag("a")
		}
		w.closeTag("td")
		w.closeTag("tr")
		w.closeTag("tbody")
		w.closeTag("table")
		w.closeTag("td")
	}

	content := c.content()
	text := func() {
		if content == "" {
			return
		}
		w.openTag("td", a("style", css(
			"vertical-align", "middle",
			"padding", c.attr("text-padding"),
			"text-align", c.attr("align"),
		)))
		tag := "span"
		linkHref := ""
		if hasLink {
			tag, linkHref = "a", href
		}
		w.openTag(tag,
			a("href", linkHref),
			a("style", css(
				"color", c.attr("color"),
				"font-size", c.attr("font-size"),
				"font-weight", c.attr("font-weight"),
				"font-style", c.attr("font-style"),
				"font-family", c.attr("font-family"),
				"line-height", c.attr("line-height"),
				"text-decoration", c.attr("text-decoration"),
			)),
			a("rel", c.attr("rel")),
			a("target", c.attr("target")),
		)
		w.raw(content)
		w.closeTag(tag)
		w.closeTag("td")
	}

	w.openTag("tr", a("class", c.attr("css-class")))
	if c.attr("icon-position") == "right" {
		text()
		icon()
	} else {
		icon()
		text()
	}
	w.closeTag("tr")
}
