package mjml

import (
	"fmt"
	"hash/fnv"
	"strings"

	"go.uber.org/zap"
)

// ResponsiveClass is a generated CSS class that sets the desktop width of a column or group.
type ResponsiveClass struct {
	Name string
	Size Size
}

// Font is a web font used by the document.
type Font struct {
	Name string
	Href string
}

// Header collects the state that ends up in the document <head>. One Header is created per
// render and filled while the body is rendered; it is not safe for concurrent use.
type Header struct {
	log *zap.Logger

	title      string
	preview    string
	breakpoint Size
	lang, dir  string
	owa        bool

	declared map[string]string // mj-font
	registry map[string]string // RenderOptions.Fonts
	used     []string
	usedSet  map[string]bool

	classes    []ResponsiveClass
	classIndex map[string]int

	styles       []string
	inlineStyles []string
	compStyles   []string
	compKeys     map[string]bool
	raw          []string
	fileStart    []string

	ids int
}

// NewHeader creates a Header. fonts maps font family names to stylesheet URLs.
func NewHeader(breakpoint Size, fonts map[string]string, log *zap.Logger) *Header {
	if log == nil {
		log = zap.NewNop()
	}
	return &Header{
		log:        log,
		breakpoint: breakpoint,
		declared:   map[string]string{},
		registry:   fonts,
		usedSet:    map[string]bool{},
		classIndex: map[string]int{},
		compKeys:   map[string]bool{},
	}
}

func (h *Header) SetTitle(s string)         { h.title = s }
func (h *Header) SetPreview(s string)       { h.preview = s }
func (h *Header) SetBreakpoint(s Size)      { h.breakpoint = s }
func (h *Header) Title() string             { return h.title }
func (h *Header) Preview() string           { return h.preview }
func (h *Header) Breakpoint() Size          { return h.breakpoint }
func (h *Header) AddStyle(css string)       { h.styles = append(h.styles, css) }
func (h *Header) AddInlineStyle(css string) { h.inlineStyles = append(h.inlineStyles, css) }
func (h *Header) AddRaw(html string)        { h.raw = append(h.raw, html) }

// DeclareFont records an mj-font declaration. Declarations take precedence over the registry.
func (h *Header) DeclareFont(name, href string) {
	h.declared[name] = href
}

// RegisterFont marks a font family as used.
func (h *Header) RegisterFont(name string) {
	name = strings.Trim(strings.TrimSpace(name), `"'`)
	if name == "" || h.usedSet[name] {
		return
	}
	h.usedSet[name] = true
	h.used = append(h.used, name)
}

// registerFontFamily registers every family of a font-family list.
func (h *Header) registerFontFamily(list string) {
	for _, f := range strings.Split(list, ",") {
		h.RegisterFont(f)
	}
}

// Fonts returns the used fonts that resolve to a URL, in order of first use. Fonts that do not
// resolve are dropped.
func (h *Header) Fonts() []Font {
	var fonts []Font
	for _, name := range h.used {
		href, ok := h.declared[name]
		if !ok {
			href, ok = h.registry[name]
		}
		if !ok {
			h.log.Debug("Font is not declared, skipping", zap.String("font", name))
			continue
		}
		fonts = append(fonts, Font{Name: name, Href: href})
	}
	return fonts
}

// RegisterResponsiveClass adds a class to the media query stylesheet. Registering a name again
// replaces its size and keeps its position.
func (h *Header) RegisterResponsiveClass(name string, size Size) {
	if i, ok := h.classIndex[name]; ok {
		h.classes[i].Size = size
		return
	}
	h.classIndex[name] = len(h.classes)
	h.classes = append(h.classes, ResponsiveClass{Name: name, Size: size})
}

func (h *Header) ResponsiveClasses() []ResponsiveClass {
	return h.classes
}

// AddComponentStyle adds CSS a component needs once per document, regardless of how many times
// the component is used.
func (h *Header) AddComponentStyle(key, css string) {
	if h.compKeys[key] {
		return
	}
	h.compKeys[key] = true
	h.compStyles = append(h.compStyles, css)
}

// nextID returns an element id that is unique within the document and stable between renders.
func (h *Header) nextID() string {
	h.ids++
	f := fnv.New64a()
	fmt.Fprintf(f, "mj-%d", h.ids)
	return fmt.Sprintf("%016x", f.Sum64())
}

// lowerBreakpoint is the largest width that is still considered mobile.
func (h *Header) lowerBreakpoint() string {
	if h.breakpoint.IsPixel() {
		return formatFloat(h.breakpoint.Value-1) + "px"
	}
	return h.breakpoint.String()
}

const resetCSS = `#outlook a { padding:0; }
body { margin:0;padding:0;-webkit-text-size-adjust:100%;-ms-text-size-adjust:100%; }
table, td { border-collapse:collapse;mso-table-lspace:0pt;mso-table-rspace:0pt; }
img { border:0;height:auto;line-height:100%; outline:none;text-decoration:none;-ms-interpolation-mode:bicubic; }
p { display:block;margin:13px 0; }
`

const msoSettings = `<!--[if mso]>
<noscript>
<xml>
<o:OfficeDocumentSettings>
<o:AllowPNG/>
<o:PixelsPerInch>96</o:PixelsPerInch>
</o:OfficeDocumentSettings>
</xml>
</noscript>
<![endif]-->
<!--[if lte mso 11]>
<style type="text/css">
.mj-outlook-group-fix { width:100% !important; }
</style>
<![endif]-->
`

func (c ResponsiveClass) rule(prefix string) string {
	return fmt.Sprintf("%s.%s { width:%s !important; max-width: %s; }\n", prefix, c.Name, c.Size, c.Size)
}

// render writes the <head> element.
func (h *Header) render(w *htmlWriter) {
	w.openTag("head")
	w.openTag("title")
	w.text(h.title)
	w.closeTag("title")
	w.notMSO(func() {
		w.voidTag("meta", a("http-equiv", "X-UA-Compatible"), a("content", "IE=edge"))
	})
	w.raw("\n")
	w.voidTag("meta", a("http-equiv", "Content-Type"), a("content", "text/html; charset=UTF-8"))
	w.raw("\n")
	w.voidTag("meta", a("name", "viewport"), a("content", "width=device-width, initial-scale=1"))
	w.raw("\n")
	h.style(w, resetCSS)
	w.raw(msoSettings)

	if fonts := h.Fonts(); len(fonts) > 0 {
		w.notMSO(func() {
			for _, f := range fonts {
				w.voidTag("link", a("href", f.Href), a("rel", "stylesheet"), a("type", "text/css"))
				w.raw("\n")
			}
			var sb strings.Builder
			for _, f := range fonts {
				fmt.Fprintf(&sb, "@import url(%s);\n", f.Href)
			}
			h.style(w, sb.String())
		})
		w.raw("\n")
	}

	if len(h.classes) > 0 {
		bp := h.breakpoint.String()
		var media, moz, owa strings.Builder
		for _, c := range h.classes {
			media.WriteString(c.rule(""))
			moz.WriteString(c.rule(".moz-text-html "))
			owa.WriteString(c.rule("[owa] "))
		}
		h.style(w, fmt.Sprintf("@media only screen and (min-width:%s) {\n%s}\n", bp, media.String()))
		w.openTag("style", a("media", "screen and (min-width:"+bp+")"))
		w.raw("\n" + moz.String())
		w.closeTag("style")
		w.raw("\n")
		if h.owa {
			h.style(w, owa.String())
		}
	}

	if len(h.compStyles) > 0 {
		h.style(w, strings.Join(h.compStyles, "\n"))
	}
	if len(h.styles) > 0 {
		h.style(w, strings.Join(h.styles, "\n"))
	}
	for _, r := range h.raw {
		w.raw(r)
	}
	w.closeTag("head")
}

func (h *Header) style(w *htmlWriter, css string) {
	w.openTag("style", a("type", "text/css"))
	w.raw("\n" + css)
	if !strings.HasSuffix(css, "\n") {
		w.raw("\n")
	}
	w.closeTag("style")
	w.raw("\n")
}
