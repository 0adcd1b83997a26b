package mjml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// carouselCSS generates the rules switching images of carousel id with n images.
func carouselCSS(id string, n int, attr func(string) string) string {
	var sb strings.Builder
	rules := func(f func(i int) string) string {
		sel := make([]string, n)
		for i := range sel {
			sel[i] = f(i)
		}
		return strings.Join(sel, ",\n")
	}
	skip := func(k int) string { return strings.Repeat("+ * ", k) }
	radio := func(i int) string {
		return fmt.Sprintf(".mj-carousel-%s-radio-%d:checked %s+ .mj-carousel-content", id, i+1, skip(n-i-1))
	}

	fmt.Fprintf(&sb, `.mj-carousel { -webkit-user-select:none; -moz-user-select:none; user-select:none; }
.mj-carousel-%s-icons-cell { display:table-cell !important; width:%s !important; }
.mj-carousel-radio, .mj-carousel-next, .mj-carousel-previous { display:none !important; }
.mj-carousel-thumbnail, .mj-carousel-next, .mj-carousel-previous { touch-action:manipulation; }
`, id, attr("icon-width"))
	fmt.Fprintf(&sb, "%s {\ndisplay:none !important;\n}\n", rules(func(i int) string {
		return fmt.Sprintf(".mj-carousel-%s-radio:checked %s+ .mj-carousel-content .mj-carousel-image", id, skip(i))
	}))
	fmt.Fprintf(&sb, "%s {\ndisplay:block !important;\n}\n", rules(func(i int) string {
		return fmt.Sprintf("%s .mj-carousel-image-%d", radio(i), i+1)
	}))
	fmt.Fprintf(&sb, ".mj-carousel-previous-icons,\n.mj-carousel-next-icons,\n%s,\n%s {\ndisplay:block !important;\n}\n",
		rules(func(i int) string { return fmt.Sprintf("%s .mj-carousel-next-%d", radio(i), (i+1)%n+1) }),
		rules(func(i int) string { return fmt.Sprintf("%s .mj-carousel-previous-%d", radio(i), (i-1+n)%n+1) }),
	)
	fmt.Fprintf(&sb, "%s {\nborder-color:%s !important;\n}\n", rules(func(i int) string {
		return fmt.Sprintf("%s .mj-carousel-%s-thumbnail-%d", radio(i), id, i+1)
	}), attr("tb-selected-border-color"))
	sb.WriteString(".mj-carousel-image img + div, .mj-carousel-thumbnail img + div { display:none !important; }\n")
	fmt.Fprintf(&sb, "%s {\ndisplay:none !important;\n}\n", rules(func(i int) string {
		return fmt.Sprintf(".mj-carousel-%s-thumbnail:hover %s+ .mj-carousel-main .mj-carousel-image", id, skip(n-i-1))
	}))
	fmt.Fprintf(&sb, ".mj-carousel-thumbnail:hover { border-color:%s !important; }\n", attr("tb-hover-border-color"))
	fmt.Fprintf(&sb, "%s {\ndisplay:block !important;\n}\n", rules(func(i int) string {
		return fmt.Sprintf(".mj-carousel-%s-thumbnail-%d:hover %s+ .mj-carousel-main .mj-carousel-image-%d", id, i+1, skip(n-i-1), i+1)
	}))
	fmt.Fprintf(&sb, `.mj-carousel noinput { display:block !important; }
.mj-carousel noinput .mj-carousel-image-1 { display:block !important; }
.mj-carousel noinput .mj-carousel-arrows, .mj-carousel noinput .mj-carousel-thumbnails { display:none !important; }
[owa] .mj-carousel-thumbnail { display:none !important; }
@media screen yahoo {
.mj-carousel-%s-icons-cell, .mj-carousel-previous-icons, .mj-carousel-next-icons { display:none !important; }
.mj-carousel-%s-radio-1:checked %s+ .mj-carousel-content .mj-carousel-%s-thumbnail-1 { border-color:transparent; }
}
`, id, id, skip(n-1), id)
	return sb.String()
}

// thumbnailWidth is the width of one thumbnail: tb-width, or an equal share of the container
// capped at 110px.
func (c *component) thumbnailWidth(n int) float64 {
	if s, ok := c.size("tb-width"); ok && s.IsPixel() {
		return s.Value
	}
	if n == 0 {
		return 0
	}
	return math.Min(c.frame.containerWidth/float64(n), 110)
}

func (c *component) renderCarousel(w *htmlWriter) {
	images := c.childrenOf(KindCarouselImage, c.frame.containerWidth, c.inheritable([]string{
		"border-radius", "tb-border", "tb-border-radius",
	}))
	if len(images) == 0 {
		return
	}
	id := c.r.head.nextID()
	c.r.head.AddComponentStyle("mj-carousel-"+id, carouselCSS(id, len(images), c.attr))

	w.notMSO(func() {
		w.openTag("div", a("class", "mj-carousel"))
		for _, img := range images {
			img.carouselRadio(w, id)
		}
		w.openTag("div",
			a("class", "mj-carousel-content mj-carousel-"+id+"-content"),
			a("style", "display:table;width:100%;table-layout:fixed;text-align:center;font-size:0px;"),
		)
		if c.attr("thumbnails") == "visible" {
			tw := c.thumbnailWidth(len(images))
			for _, img := range images {
				img.carouselThumbnail(w, id, tw)
			}
		}
		w.openTag("table",
			a("style", "caption-side:top;display:table-caption;table-layout:fixed;width:100%;"),
			a("border", "0"),
			a("cellpadding", "0"),
			a("cellspacing", "0"),
			a("width", "100%"),
			a("role", "presentation"),
			a("class", "mj-carousel-main"),
		)
		w.openTag("tbody")
		w.openTag("tr")
		c.carouselControls(w, id, "previous", c.attr("left-icon"), len(images))
		w.openTag("td", a("style", "padding:0px;"))
		w.openTag("div", a("class", "mj-carousel-images"))
		for _, img := range images {
			img.render(w)
		}
		w.closeTag("div")
		w.closeTag("td")
		c.carouselControls(w, id, "next", c.attr("right-icon"), len(images))
		w.closeTag("tr")
		w.closeTag("tbody")
		w.closeTag("table")
		w.closeTag("div")
		w.closeTag("div")
	})
	w.mso(func() {
		images[0].render(w)
	})
}

func (c *component) carouselControls(w *htmlWriter, id, direction, icon string, n int) {
	width := c.attr("icon-width")
	widthAttr := ""
	if v, ok := parseInt(width); ok {
		widthAttr = strconv.Itoa(v)
	}
	w.openTag("td",
		a("class", "mj-carousel-"+id+"-icons-cell"),
		a("style", "font-size:0px;display:none;mso-hide:all;padding:0px;"),
	)
	w.openTag("div",
		a("class", "mj-carousel-"+direction+"-icons"),
		a("style", "display:none;mso-hide:all;"),
	)
	for i := 1; i <= n; i++ {
		w.openTag("label",
			a("for", fmt.Sprintf("mj-carousel-%s-radio-%d", id, i)),
			a("class", fmt.Sprintf("mj-carousel-%s mj-carousel-%s-%d", direction, direction, i)),
		)
		w.voidTag("img",
			a("src", icon),
			a("alt", direction),
			a("style", css("display", "block", "width", width, "height", "auto")),
			a("width", widthAttr),
		)
		w.closeTag("label")
	}
	w.closeTag("div")
	w.closeTag("td")
}

func (c *component) carouselRadio(w *htmlWriter, id string) {
	n := c.frame.index + 1
	checked := ""
	if n == 1 {
		checked = "checked"
	}
	w.voidTag("input",
		a("class", fmt.Sprintf("mj-carousel-radio mj-carousel-%s-radio mj-carousel-%s-radio-%d", id, id, n)),
		a("checked", checked),
		a("type", "radio"),
		a("name", "mj-carousel-radio-"+id),
		a("id", fmt.Sprintf("mj-carousel-%s-radio-%d", id, n)),
		a("style", "display:none;mso-hide:all;"),
	)
}

func (c *component) carouselThumbnail(w *htmlWriter, id string, width float64) {
	n := c.frame.index + 1
	src := c.attr("thumbnails-src")
	if src == "" {
		src = c.attr("src")
	}
	w.openTag("a",
		a("style", css(
			"border", c.attr("tb-border"),
			"border-radius", c.attr("tb-border-radius"),
			"display", "inline-block",
			"overflow", "hidden",
			"width", px(width),
		)),
		a("href", "#"+strconv.Itoa(n)),
		a("target", "_blank"),
		a("class", fmt.Sprintf("mj-carousel-thumbnail mj-carousel-%s-thumbnail mj-carousel-%s-thumbnail-%d", id, id, n)),
	)
	w.openTag("label", a("for", fmt.Sprintf("mj-carousel-%s-radio-%d", id, n)))
	w.voidTag("img",
		a("style", "display:block;width:100%;height:auto;"),
		a("src", src),
		ak("alt", c.attr("alt")),
		a("width", formatInt(width)),
	)
	w.closeTag("label")
	w.closeTag("a")
}

func (c *component) renderCarouselImage(w *htmlWriter) {
	n := c.frame.index + 1
	class := fmt.Sprintf("mj-carousel-image mj-carousel-image-%d", n)
	if cls := c.attr("css-class"); cls != "" {
		class += " " + cls
	}
	style := ""
	if n > 1 {
		style = "display:none;mso-hide:all;"
	}
	w.openTag("div", a("class", class), a("style", style))
	href := c.attr("href")
	if href != "" {
		w.openTag("a", a("href", href), a("rel", c.attr("rel")), a("target", c.attr("target")))
	}
	width := c.frame.containerWidth
	w.voidTag("img",
		a("title", c.attr("title")),
		a("src", c.attr("src")),
		ak("alt", c.attr("alt")),
		a("style", css(
			"border-radius", c.attr("border-radius"),
			"display", "block",
			"width", px(width),
			"max-width", "100%",
			"height", "auto",
		)),
		a("width", formatInt(width)),
		a("border", "0"),
	)
	if href != "" {
		w.closeTag("a")
	}
	w.closeTag("div")
}
