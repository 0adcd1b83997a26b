package mjml

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// RenderOptions configures Render.
type RenderOptions struct {
	// Breakpoint is the width above which columns are laid out side by side. An mj-breakpoint
	// in the document takes precedence. Zero means DefaultBreakpoint.
	Breakpoint Size
	// Fonts maps font family names to stylesheet URLs. Nil means DefaultFonts.
	Fonts map[string]string
	// DisableComments drops HTML comments found in the document.
	DisableComments bool
	// Vars enables ${...} expressions in attribute values and content.
	Vars   map[string]any
	Logger *zap.Logger
}

// DefaultBreakpoint is the responsive breakpoint used when neither the options nor the document
// set one.
var DefaultBreakpoint = Pixel(480)

const defaultBodyWidth = 600

// Render produces the HTML document for doc. The document is not modified, so it can be
// rendered any number of times, concurrently too, each call with its own options.
func Render(doc *Document, opts *RenderOptions) (string, error) {
	if opts == nil {
		opts = &RenderOptions{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("render")

	if doc == nil || doc.Root == nil {
		return "", &RenderError{Tag: "mjml", Err: errors.New("empty document")}
	}

	bp := opts.Breakpoint
	if bp == (Size{}) {
		bp = DefaultBreakpoint
	}
	fonts := opts.Fonts
	if fonts == nil {
		fonts = DefaultFonts
	}

	r := &renderer{
		opts: opts,
		log:  log,
		res:  NewResolver(doc),
		head: NewHeader(bp, fonts, log),
	}
	if opts.Vars != nil {
		r.vars = newInterpolator(opts.Vars)
	}
	return r.render(doc)
}

// Compile parses markup and renders it.
func Compile(ctx context.Context, markup string, popts *ParserOptions, ropts *RenderOptions) (string, []ParseWarning, error) {
	doc, warnings, err := ParseContext(ctx, markup, popts)
	if err != nil {
		return "", warnings, err
	}
	out, err := Render(doc, ropts)
	return out, warnings, err
}

type renderer struct {
	opts *RenderOptions
	log  *zap.Logger
	res  *Resolver
	head *Header
	vars *interpolator

	bodyBackground string
	err            error
}

// fail records the first error raised while rendering.
func (r *renderer) fail(tag string, err error) {
	if r.err == nil {
		r.err = &RenderError{Tag: tag, Err: err}
	}
}

// expand evaluates ${...} expressions in s. Results are HTML escaped when escape is set.
func (r *renderer) expand(tag, s string, escape bool) string {
	if r.vars == nil {
		return s
	}
	out, err := r.vars.expand(s, escape)
	if err != nil {
		r.fail(tag, err)
		return s
	}
	return out
}

func (r *renderer) render(doc *Document) (string, error) {
	root := doc.Root
	r.head.lang, _ = root.Attrs.Get("lang")
	r.head.dir, _ = root.Attrs.Get("dir")
	if v, _ := root.Attrs.Get("owa"); v == "desktop" {
		r.head.owa = true
	}

	if head := doc.Head(); head != nil {
		r.processHead(head)
	}

	body := &htmlWriter{}
	if el := doc.Body(); el != nil {
		c := &component{r: r, el: el, frame: frame{containerWidth: defaultBodyWidth, siblings: 1}}
		c.render(body)
		if err := body.finish(); err != nil {
			r.fail(el.Tag, err)
		}
	}
	if r.err != nil {
		return "", r.err
	}

	w := &htmlWriter{}
	w.raw("<!doctype html>\n")
	w.openTag("html",
		a("lang", r.head.lang),
		a("dir", r.head.dir),
		a("xmlns", "http://www.w3.org/1999/xhtml"),
		a("xmlns:v", "urn:schemas-microsoft-com:vml"),
		a("xmlns:o", "urn:schemas-microsoft-com:office:office"),
	)
	w.raw("\n")
	r.head.render(w)
	w.raw("\n")
	w.openTag("body", a("style", css("word-spacing", "normal", "background-color", r.bodyBackground)))
	if p := r.head.preview; p != "" {
		w.openTag("div", a("style", "display:none;font-size:1px;color:#ffffff;line-height:1px;max-height:0px;max-width:0px;opacity:0;overflow:hidden;"))
		w.text(p)
		w.closeTag("div")
	}
	w.raw(body.String())
	w.closeTag("body")
	w.closeTag("html")
	w.raw("\n")
	if err := w.finish(); err != nil {
		return "", &RenderError{Tag: "mjml", Err: err}
	}

	out := mergeConditionals(w.String())
	if len(r.head.inlineStyles) > 0 {
		var err error
		out, err = inlineStyles(out, strings.Join(r.head.inlineStyles, "\n"), r.log)
		if err != nil {
			return "", &RenderError{Tag: "mj-style", Err: err}
		}
	}
	if len(r.head.fileStart) > 0 {
		out = strings.Join(r.head.fileStart, "") + out
	}
	return out, nil
}

func (r *renderer) processHead(head *Element) {
	for _, n := range head.Children {
		el, ok := n.(*Element)
		if !ok {
			continue
		}
		switch el.Kind {
		case KindTitle:
			r.head.SetTitle(r.expand(el.Tag, textContent(el), false))
		case KindPreview:
			r.head.SetPreview(r.expand(el.Tag, textContent(el), false))
		case KindBreakpoint:
			v, _ := el.Attrs.Get("width")
			if s, ok := ParseSize(v); ok && s.IsPixel() {
				r.head.SetBreakpoint(s)
			} else {
				r.log.Debug("Ignoring breakpoint", zap.String("width", v))
			}
		case KindFont:
			name, _ := el.Attrs.Get("name")
			href, _ := el.Attrs.Get("href")
			r.head.DeclareFont(name, href)
		case KindStyle:
			if v, _ := el.Attrs.Get("inline"); v == "inline" {
				r.head.AddInlineStyle(textContent(el))
			} else {
				r.head.AddStyle(textContent(el))
			}
		case KindRaw:
			content := r.rawHTML(el.Tag, el.Children)
			if v, _ := el.Attrs.Get("position"); v == "file-start" {
				r.head.fileStart = append(r.head.fileStart, content)
			} else {
				r.head.AddRaw(content)
			}
		case KindAttributes:
			// collected by the Resolver
		}
	}
}

func textContent(el *Element) string {
	var sb strings.Builder
	for _, c := range el.Children {
		if t, ok := c.(*Text); ok {
			sb.WriteString(t.Data)
		}
	}
	return sb.String()
}

// rawHTML serializes raw content the way it was written.
func (r *renderer) rawHTML(tag string, nodes []Node) string {
	var sb strings.Builder
	r.writeRaw(&sb, tag, nodes)
	return sb.String()
}

func (r *renderer) writeRaw(sb *strings.Builder, tag string, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			sb.WriteString(r.expand(tag, n.Data, true))
		case *Comment:
			if !r.opts.DisableComments {
				sb.WriteString("<!--" + n.Data + "-->")
			}
		case *ConditionalComment:
			sb.WriteString(n.Data)
		case *RawElement:
			sb.WriteString(r.expand(tag, n.Open, true))
			r.writeRaw(sb, tag, n.Children)
			sb.WriteString(n.Close)
		case *Element:
			r.fail(tag, fmt.Errorf("unexpected <%s> in raw content", n.Tag))
		}
	}
}

// frame is what a parent tells a child about its surroundings before rendering it.
type frame struct {
	containerWidth float64
	siblings       int
	rawSiblings    int
	index          int
	// mobileWidth keeps the desktop ratio of a column below the breakpoint (columns in a group).
	mobileWidth bool
}

func (f frame) layoutSiblings() int {
	if n := f.siblings - f.rawSiblings; n > 0 {
		return n
	}
	return 1
}

// component is a node being rendered. A component either wraps an element or a comment.
type component struct {
	r       *renderer
	el      *Element
	comment *Comment
	frame   frame
	// inherited holds attribute values passed down by the parent component (mj-social to its
	// elements, for example). They rank below document rules and above defaults.
	inherited map[string]string
}

// raw reports whether the component takes no part in layout.
func (c *component) raw() bool {
	return c.comment != nil || c.el.Kind == KindRaw
}

// children returns the child components of c with their frames filled in.
func (c *component) children(width float64, inherited map[string]string) []*component {
	var out []*component
	for _, n := range c.el.Children {
		switch n := n.(type) {
		case *Element:
			out = append(out, &component{r: c.r, el: n, inherited: inherited})
		case *Comment:
			if !c.r.opts.DisableComments {
				out = append(out, &component{r: c.r, comment: n})
			}
		}
	}
	raw := 0
	for _, ch := range out {
		if ch.raw() {
			raw++
		}
	}
	for i, ch := range out {
		ch.frame = frame{containerWidth: width, siblings: len(out), rawSiblings: raw, index: i}
	}
	return out
}

// childrenOf is like children but keeps only elements of the given kind.
func (c *component) childrenOf(kind Kind, width float64, inherited map[string]string) []*component {
	var out []*component
	for _, ch := range c.children(width, inherited) {
		if ch.el != nil && ch.el.Kind == kind {
			out = append(out, ch)
		}
	}
	for i, ch := range out {
		ch.frame.siblings, ch.frame.rawSiblings, ch.frame.index = len(out), 0, i
	}
	return out
}

// attr resolves an attribute through the cascade.
func (c *component) attr(name string) string {
	if c.el == nil {
		return ""
	}
	if v, ok := c.r.res.document(c.el, name); ok {
		return c.r.expand(c.el.Tag, v, false)
	}
	if v, ok := c.inherited[name]; ok {
		return v
	}
	return componentDefaults[c.el.Kind][name]
}

// has reports whether the document sets the attribute, ignoring defaults.
func (c *component) has(name string) bool {
	_, ok := c.r.res.document(c.el, name)
	return ok
}

// size parses a pixel or percent attribute. Anything else counts as absent.
func (c *component) size(name string) (Size, bool) {
	v := c.attr(name)
	if v == "" {
		return Size{}, false
	}
	s, ok := ParseSize(v)
	if !ok {
		c.r.log.Debug("Attribute is not a size", zap.String("tag", c.el.Tag), zap.String("attribute", name), zap.String("value", v))
		return Size{}, false
	}
	return s, true
}

// side returns one side of a padding-like attribute, preferring the per-side attribute
// (padding-left) over the shorthand.
func (c *component) side(name, side string) float64 {
	if v := c.attr(name + "-" + side); v != "" {
		if s, ok := ParseSize(v); ok && s.IsPixel() {
			return s.Value
		}
		return 0
	}
	b := ParseBox(c.attr(name))
	switch side {
	case "top":
		return b.Top
	case "right":
		return b.Right
	case "bottom":
		return b.Bottom
	}
	return b.Left
}

// borderSide returns the width of one side of a border attribute.
func (c *component) borderSide(name, side string) float64 {
	if v := c.attr(name + "-" + side); v != "" {
		return borderWidth(v)
	}
	return borderWidth(c.attr(name))
}

// boxWidths splits the container width into paddings, borders and the content box.
func (c *component) boxWidths() (paddings, borders, box float64) {
	paddings = c.side("padding", "left") + c.side("padding", "right")
	borders = c.borderSide("border", "left") + c.borderSide("border", "right")
	return paddings, borders, c.frame.containerWidth - paddings - borders
}

// content returns the raw HTML content of an ending tag component.
func (c *component) content() string {
	return strings.TrimSpace(c.r.rawHTML(c.el.Tag, c.el.Children))
}

func (c *component) useFont() {
	c.r.head.registerFontFamily(c.attr("font-family"))
}

// suffixClasses appends suffix to every class of a class list.
func suffixClasses(classes, suffix string) string {
	f := strings.Fields(classes)
	for i := range f {
		f[i] += "-" + suffix
	}
	return strings.Join(f, " ")
}

func px(v float64) string {
	return formatFloat(v) + "px"
}

// render writes the component. The set of kinds is closed; a kind that cannot appear in the
// body is an internal error.
func (c *component) render(w *htmlWriter) {
	if c.comment != nil {
		w.raw("<!--" + c.comment.Data + "-->")
		return
	}
	switch c.el.Kind {
	case KindBody:
		c.renderBody(w)
	case KindSection:
		c.renderSection(w)
	case KindWrapper:
		c.renderWrapper(w)
	case KindColumn:
		c.renderColumn(w)
	case KindGroup:
		c.renderGroup(w)
	case KindText:
		c.renderText(w)
	case KindButton:
		c.renderButton(w)
	case KindImage:
		c.renderImage(w)
	case KindDivider:
		c.renderDivider(w)
	case KindSpacer:
		c.renderSpacer(w)
	case KindTable:
		c.renderTable(w)
	case KindRaw:
		c.renderRaw(w)
	case KindHero:
		c.renderHero(w)
	case KindNavbar:
		c.renderNavbar(w)
	case KindNavbarLink:
		c.renderNavbarLink(w)
	case KindSocial:
		c.renderSocial(w)
	case KindSocialElement:
		c.renderSocialElement(w)
	case KindAccordion:
		c.renderAccordion(w)
	case KindAccordionElement:
		c.renderAccordionElement(w)
	case KindAccordionTitle:
		c.renderAccordionTitle(w)
	case KindAccordionText:
		c.renderAccordionText(w)
	case KindCarousel:
		c.renderCarousel(w)
	case KindCarouselImage:
		c.renderCarouselImage(w)
	case KindUnknown, KindMJML, KindHead, KindAttributes, KindAttributesAll, KindAttributesClass,
		KindAttributesElement, KindBreakpoint, KindFont, KindPreview, KindStyle, KindTitle, kindInclude:
		c.r.fail(c.el.Tag, fmt.Errorf("%s cannot be rendered in the body", c.el.Kind))
	default:
		c.r.fail(c.el.Tag, fmt.Errorf("unknown component kind %d", c.el.Kind))
	}
}

func (c *component) renderBody(w *htmlWriter) {
	width := float64(defaultBodyWidth)
	if s, ok := c.size("width"); ok && s.IsPixel() {
		width = s.Value
	}
	bg := c.attr("background-color")
	c.r.bodyBackground = bg
	w.openTag("div",
		a("class", c.attr("css-class")),
		a("style", css("background-color", bg)),
		a("lang", c.r.head.lang),
		a("dir", c.r.head.dir),
	)
	for _, ch := range c.children(width, nil) {
		ch.render(w)
	}
	w.closeTag("div")
}

func (c *component) renderRaw(w *htmlWriter) {
	content := c.r.rawHTML(c.el.Tag, c.el.Children)
	if c.attr("position") == "file-start" {
		c.r.head.fileStart = append(c.r.head.fileStart, content)
		return
	}
	w.raw(content)
}

// renderCell writes ch inside a table row the way columns and heroes lay out their content.
func renderCell(w *htmlWriter, ch *component, background bool) {
	if ch.raw() {
		ch.render(w)
		return
	}
	bg := ch.attr("container-background-color")
	cellBg := ""
	if background {
		cellBg = bg
	}
	w.openTag("tr")
	w.openTag("td",
		a("align", ch.attr("align")),
		a("background", cellBg),
		a("vertical-align", ch.attr("vertical-align")),
		a("class", ch.attr("css-class")),
		a("style", css(
			"background", bg,
			"font-size", "0px",
			"padding", ch.attr("padding"),
			"padding-top", ch.attr("padding-top"),
			"padding-right", ch.attr("padding-right"),
			"padding-bottom", ch.attr("padding-bottom"),
			"padding-left", ch.attr("padding-left"),
			"word-break", "break-word",
		)),
	)
	ch.render(w)
	w.closeTag("td")
	w.closeTag("tr")
}
