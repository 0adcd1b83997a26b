package mjml

import (
	"slices"

	"golang.org/x/net/html/atom"
)

type contentMode int

const (
	contentNone     contentMode = iota // whitespace and comments only
	contentElements                    // child components
	contentRaw                         // HTML passed through to the output
	contentText                        // character data
)

// attrPolicy describes which attributes an element accepts. Strict elements reject anything
// not listed; the rest keep unknown attributes verbatim.
type attrPolicy struct {
	strict   bool
	allowed  []string
	required []string
}

type elementSpec struct {
	content  contentMode
	children []Kind
	attrs    attrPolicy
}

func (s elementSpec) allows(k Kind) bool {
	return s.content == contentElements && slices.Contains(s.children, k)
}

var bodyComponents = []Kind{
	KindAccordion, KindButton, KindCarousel, KindColumn, KindDivider, KindGroup, KindHero,
	KindImage, KindNavbar, KindRaw, KindSection, KindSocial, KindSpacer, KindTable, KindText,
	KindWrapper,
}

var headComponents = []Kind{
	KindAttributes, KindBreakpoint, KindFont, KindPreview, KindRaw, KindStyle, KindTitle,
}

var (
	permissive = attrPolicy{}
	closed     = attrPolicy{strict: true}
)

var includeAttrs = attrPolicy{strict: true, allowed: []string{"path", "type", "css-inline"}, required: []string{"path"}}

var elementSpecs = map[Kind]elementSpec{
	KindMJML: {
		content:  contentElements,
		children: []Kind{KindHead, KindBody},
		attrs:    attrPolicy{strict: true, allowed: []string{"lang", "dir", "owa"}},
	},
	KindHead:       {content: contentElements, children: headComponents, attrs: closed},
	KindBody:       {content: contentElements, children: bodyComponents, attrs: permissive},
	KindAttributes: {content: contentElements, attrs: closed}, // children resolved by attributeRuleKind

	KindAttributesAll:     {content: contentNone, attrs: permissive},
	KindAttributesClass:   {content: contentNone, attrs: attrPolicy{required: []string{"name"}}},
	KindAttributesElement: {content: contentNone, attrs: permissive},

	KindBreakpoint: {content: contentNone, attrs: attrPolicy{strict: true, allowed: []string{"width"}, required: []string{"width"}}},
	KindFont:       {content: contentNone, attrs: attrPolicy{strict: true, allowed: []string{"name", "href"}, required: []string{"name", "href"}}},
	KindPreview:    {content: contentText, attrs: closed},
	KindStyle:      {content: contentText, attrs: attrPolicy{strict: true, allowed: []string{"inline"}}},
	KindTitle:      {content: contentText, attrs: closed},

	KindAccordion:        {content: contentElements, children: []Kind{KindAccordionElement, KindRaw}},
	KindAccordionElement: {content: contentElements, children: []Kind{KindAccordionTitle, KindAccordionText, KindRaw}},
	KindAccordionTitle:   {content: contentRaw},
	KindAccordionText:    {content: contentRaw},
	KindButton:           {content: contentRaw},
	KindCarousel:         {content: contentElements, children: []Kind{KindCarouselImage}},
	KindCarouselImage:    {content: contentNone},
	KindColumn:           {content: contentElements, children: bodyComponents},
	KindDivider:          {content: contentNone},
	KindGroup:            {content: contentElements, children: []Kind{KindColumn, KindRaw}},
	KindHero:             {content: contentElements, children: bodyComponents},
	KindImage:            {content: contentNone},
	KindNavbar:           {content: contentElements, children: []Kind{KindNavbarLink, KindRaw}},
	KindNavbarLink:       {content: contentRaw},
	KindRaw:              {content: contentRaw},
	KindSection:          {content: contentElements, children: bodyComponents},
	KindSocial:           {content: contentElements, children: []Kind{KindSocialElement, KindRaw}},
	KindSocialElement:    {content: contentRaw},
	KindSpacer:           {content: contentNone},
	KindTable:            {content: contentRaw},
	KindText:             {content: contentRaw},
	KindWrapper:          {content: contentElements, children: bodyComponents},
}

// attributeRuleKind maps a child tag of mj-attributes to its rule kind.
func attributeRuleKind(tag string) Kind {
	switch tag {
	case "mj-all":
		return KindAttributesAll
	case "mj-class":
		return KindAttributesClass
	}
	switch k := KindOf(tag); k {
	case KindUnknown, kindInclude, KindAttributes, KindAttributesAll, KindAttributesClass, KindMJML:
		return KindUnknown
	default:
		return KindAttributesElement
	}
}

// isVoid reports whether an HTML tag never has a closing tag.
func isVoid(tag string) bool {
	switch atom.Lookup([]byte(tag)) {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img, atom.Input,
		atom.Link, atom.Meta, atom.Param, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}
