// Package mjml compiles MJML email markup into a self-contained HTML document.
//
// Parse turns markup into a Document, a tree of typed component nodes. Render walks the tree and
// produces HTML that works in standards compliant mail clients and in Outlook desktop, which
// needs conditional comments and VML to lay out tables and backgrounds.
package mjml

import "strings"

// Kind identifies a component. The set of kinds is closed.
type Kind int

const (
	KindUnknown Kind = iota
	KindMJML
	KindHead
	KindBody

	// head components
	KindAttributes
	KindAttributesAll
	KindAttributesClass
	KindAttributesElement // per-tag rule inside mj-attributes, Element.Tag is the target tag
	KindBreakpoint
	KindFont
	KindPreview
	KindStyle
	KindTitle

	// body components
	KindAccordion
	KindAccordionElement
	KindAccordionTitle
	KindAccordionText
	KindButton
	KindCarousel
	KindCarouselImage
	KindColumn
	KindDivider
	KindGroup
	KindHero
	KindImage
	KindNavbar
	KindNavbarLink
	KindRaw
	KindSection
	KindSocial
	KindSocialElement
	KindSpacer
	KindTable
	KindText
	KindWrapper

	// kindInclude never appears in a parsed Document, includes are replaced by their content.
	kindInclude
)

var kindTags = map[Kind]string{
	KindMJML:             "mjml",
	KindHead:             "mj-head",
	KindBody:             "mj-body",
	KindAttributes:       "mj-attributes",
	KindAttributesAll:    "mj-all",
	KindAttributesClass:  "mj-class",
	KindBreakpoint:       "mj-breakpoint",
	KindFont:             "mj-font",
	KindPreview:          "mj-preview",
	KindStyle:            "mj-style",
	KindTitle:            "mj-title",
	KindAccordion:        "mj-accordion",
	KindAccordionElement: "mj-accordion-element",
	KindAccordionTitle:   "mj-accordion-title",
	KindAccordionText:    "mj-accordion-text",
	KindButton:           "mj-button",
	KindCarousel:         "mj-carousel",
	KindCarouselImage:    "mj-carousel-image",
	KindColumn:           "mj-column",
	KindDivider:          "mj-divider",
	KindGroup:            "mj-group",
	KindHero:             "mj-hero",
	KindImage:            "mj-image",
	KindNavbar:           "mj-navbar",
	KindNavbarLink:       "mj-navbar-link",
	KindRaw:              "mj-raw",
	KindSection:          "mj-section",
	KindSocial:           "mj-social",
	KindSocialElement:    "mj-social-element",
	KindSpacer:           "mj-spacer",
	KindTable:            "mj-table",
	KindText:             "mj-text",
	KindWrapper:          "mj-wrapper",
	kindInclude:          "mj-include",
}

var tagKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(kindTags))
	for k, tag := range kindTags {
		m[tag] = k
	}
	return m
}()

// KindOf returns the kind for a tag name, or KindUnknown.
func KindOf(tag string) Kind {
	return tagKinds[tag]
}

func (k Kind) String() string {
	if tag, ok := kindTags[k]; ok {
		return tag
	}
	return "unknown"
}

// Node is an element of the document tree. The concrete types are *Element, *Text, *Comment,
// *ConditionalComment and *RawElement.
type Node interface {
	node()
}

// Attr is a single attribute in source order.
type Attr struct {
	Key string
	Val string
}

// Attrs is an ordered attribute list.
type Attrs []Attr

// Get returns the value of the last attribute named key.
func (a Attrs) Get(key string) (string, bool) {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].Key == key {
			return a[i].Val, true
		}
	}
	return "", false
}

// Element is an mj-* component.
type Element struct {
	Kind     Kind
	Tag      string
	Attrs    Attrs
	Children []Node
	Span     Span
	File     string // include path the element came from, empty for the main document
}

// Text is character data. Inside raw content it holds the source bytes verbatim (entities are
// not decoded); in mj-title, mj-preview and mj-style it holds decoded text.
type Text struct {
	Data string
	Span Span
}

// Comment is an HTML comment. Data is the comment body without the <!-- --> markers.
type Comment struct {
	Data string
	Span Span
}

// ConditionalComment is an Outlook conditional comment marker kept verbatim, e.g.
// "<!--[if mso]>" or "<![endif]-->". It only appears in raw content.
type ConditionalComment struct {
	Data string
	Span Span
}

// RawElement is an HTML tag inside raw content (mj-raw and the ending tags like mj-text).
// Open and Close are the start and end tags as written in the source; Close is empty for void
// and self-closing tags and for elements the source never closed.
type RawElement struct {
	Tag         string
	Open        string
	Close       string
	Attrs       Attrs
	Children    []Node
	SelfClosing bool
	Span        Span
}

func (*Element) node()            {}
func (*Text) node()               {}
func (*Comment) node()            {}
func (*ConditionalComment) node() {}
func (*RawElement) node()         {}

// IsWhitespace reports whether the text holds only whitespace.
func (t *Text) IsWhitespace() bool {
	return strings.TrimLeft(t.Data, whitespace) == ""
}

const whitespace = " \t\r\n\f"

// child returns the first direct child element of the given kind.
func (e *Element) child(kind Kind) *Element {
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && el.Kind == kind {
			return el
		}
	}
	return nil
}

// Document is the parsed form of an MJML source.
type Document struct {
	Root *Element
}

// Head returns the mj-head element or nil.
func (d *Document) Head() *Element {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.child(KindHead)
}

// Body returns the mj-body element or nil.
func (d *Document) Body() *Element {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.child(KindBody)
}
