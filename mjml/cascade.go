package mjml

import "strings"

// attributeRules holds the mj-attributes declarations of a document flattened in document
// order, so a later declaration of the same key replaces an earlier one.
type attributeRules struct {
	all     map[string]string
	tags    map[string]map[string]string
	classes map[string]map[string]string
}

func collectAttributeRules(head *Element) *attributeRules {
	r := &attributeRules{
		all:     map[string]string{},
		tags:    map[string]map[string]string{},
		classes: map[string]map[string]string{},
	}
	if head == nil {
		return r
	}
	set := func(m map[string]map[string]string, key string, attrs Attrs, skip string) {
		dst := m[key]
		if dst == nil {
			dst = map[string]string{}
			m[key] = dst
		}
		for _, a := range attrs {
			if a.Key != skip {
				dst[a.Key] = a.Val
			}
		}
	}
	for _, c := range head.Children {
		block, ok := c.(*Element)
		if !ok || block.Kind != KindAttributes {
			continue
		}
		for _, rc := range block.Children {
			rule, ok := rc.(*Element)
			if !ok {
				continue
			}
			switch rule.Kind {
			case KindAttributesAll:
				for _, a := range rule.Attrs {
					r.all[a.Key] = a.Val
				}
			case KindAttributesClass:
				name, _ := rule.Attrs.Get("name")
				set(r.classes, name, rule.Attrs, "name")
			case KindAttributesElement:
				set(r.tags, rule.Tag, rule.Attrs, "")
			}
		}
	}
	return r
}

// Resolver answers attribute lookups for the elements of one document. Lookups have no side
// effects.
//
// Precedence, highest first: the attribute on the element, the mj-attributes rule for the
// element's tag, the mj-class rules named by the element's mj-class attribute (a later class
// wins), the mj-all rule, and the component default.
type Resolver struct {
	rules *attributeRules
}

// NewResolver collects the attribute rules of doc.
func NewResolver(doc *Document) *Resolver {
	return &Resolver{rules: collectAttributeRules(doc.Head())}
}

// Attribute resolves name for el.
func (r *Resolver) Attribute(el *Element, name string) (string, bool) {
	if v, ok := r.document(el, name); ok {
		return v, true
	}
	v, ok := componentDefaults[el.Kind][name]
	return v, ok
}

// document resolves name from the element and the document rules, without defaults.
func (r *Resolver) document(el *Element, name string) (string, bool) {
	if v, ok := el.Attrs.Get(name); ok {
		return v, true
	}
	if v, ok := r.rules.tags[el.Tag][name]; ok {
		return v, true
	}
	if classes, ok := el.Attrs.Get("mj-class"); ok {
		names := strings.Fields(classes)
		for i := len(names) - 1; i >= 0; i-- {
			if v, ok := r.rules.classes[names[i]][name]; ok {
				return v, true
			}
		}
	}
	if v, ok := r.rules.all[name]; ok {
		return v, true
	}
	return "", false
}
