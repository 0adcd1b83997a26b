package mjml

import (
	"errors"
	"io"
	"slices"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	cssparse "github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

type declaration struct {
	prop, value string
	important   bool
}

// cssRule is a rule with a single selector the inliner can match.
type cssRule struct {
	sel   []compound
	spec  [3]int
	order int
	decls []declaration
}

// compound is one step of a selector: tag, ids and classes that must all match, and the
// combinator linking it to the step before.
type compound struct {
	tag     string
	ids     []string
	classes []string
	child   bool // '>' rather than descendant
}

// inlineStyles moves the rules of styleSheet into the style attributes of the matching elements
// of doc. Rules the inliner cannot apply (pseudo classes, media queries, sibling combinators)
// stay in a style element in the head.
func inlineStyles(doc, styleSheet string, log *zap.Logger) (string, error) {
	rules, rest := parseStyleSheet(styleSheet, log)

	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", err
	}
	slices.SortStableFunc(rules, func(a, b cssRule) int {
		for i := range a.spec {
			if a.spec[i] != b.spec[i] {
				return a.spec[i] - b.spec[i]
			}
		}
		return a.order - b.order
	})

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data != "head" {
			applyRules(n, rules)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "head" {
				if rest != "" {
					appendStyle(c, rest)
				}
				continue
			}
			walk(c)
		}
	}
	walk(root)

	var sb strings.Builder
	if err := html.Render(&sb, root); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func appendStyle(head *html.Node, sheet string) {
	style := &html.Node{Type: html.ElementNode, Data: "style", Attr: []html.Attribute{{Key: "type", Val: "text/css"}}}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: sheet})
	head.AppendChild(style)
}

// parseStyleSheet splits src into rules that can be inlined and the CSS text of everything else.
func parseStyleSheet(src string, log *zap.Logger) ([]cssRule, string) {
	p := cssparse.NewParser(parse.NewInput(strings.NewReader(src)), false)
	var rules []cssRule
	var rest strings.Builder
	order := 0

	for {
		gt, _, data := p.Next()
		switch gt {
		case cssparse.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				log.Debug("CSS parse error", zap.Error(err))
			}
			return rules, rest.String()

		case cssparse.BeginRulesetGrammar:
			selectors := joinTokens(data, p.Values())
			decls := parseDeclarations(p)
			for _, s := range strings.Split(selectors, ",") {
				s = strings.TrimSpace(s)
				if s == "" {
					continue
				}
				sel, ok := parseSelector(s)
				if !ok {
					rest.WriteString(s + " {" + formatDeclarations(decls) + "}\n")
					continue
				}
				rules = append(rules, cssRule{sel: sel, spec: specificity(sel), order: order, decls: decls})
				order++
			}

		case cssparse.BeginAtRuleGrammar:
			rest.WriteString(atRule(data, p.Values()) + " {\n")
			writeBlock(p, &rest)
			rest.WriteString("}\n")

		case cssparse.AtRuleGrammar:
			rest.WriteString(atRule(data, p.Values()) + ";\n")
		}
	}
}

// writeBlock copies the body of an at-rule as CSS text.
func writeBlock(p *cssparse.Parser, sb *strings.Builder) {
	for {
		gt, _, data := p.Next()
		switch gt {
		case cssparse.ErrorGrammar, cssparse.EndAtRuleGrammar:
			return
		case cssparse.BeginRulesetGrammar:
			sb.WriteString(joinTokens(data, p.Values()) + " {" + formatDeclarations(parseDeclarations(p)) + "}\n")
		case cssparse.BeginAtRuleGrammar:
			sb.WriteString(atRule(data, p.Values()) + " {\n")
			writeBlock(p, sb)
			sb.WriteString("}\n")
		case cssparse.AtRuleGrammar:
			sb.WriteString(atRule(data, p.Values()) + ";\n")
		case cssparse.DeclarationGrammar:
			sb.WriteString(string(data) + ":" + joinTokens(nil, p.Values()) + ";")
		}
	}
}

func parseDeclarations(p *cssparse.Parser) []declaration {
	var decls []declaration
	for {
		gt, _, data := p.Next()
		switch gt {
		case cssparse.ErrorGrammar, cssparse.EndRulesetGrammar:
			return decls
		case cssparse.DeclarationGrammar, cssparse.CustomPropertyGrammar:
			decls = append(decls, newDeclaration(string(data), joinTokens(nil, p.Values())))
		}
	}
}

func newDeclaration(prop, value string) declaration {
	d := declaration{prop: strings.ToLower(strings.TrimSpace(prop)), value: strings.TrimSpace(value)}
	if i := strings.LastIndex(d.value, "!"); i >= 0 && strings.EqualFold(strings.TrimSpace(d.value[i+1:]), "important") {
		d.value = strings.TrimSpace(d.value[:i])
		d.important = true
	}
	return d
}

func formatDeclarations(decls []declaration) string {
	var sb strings.Builder
	for _, d := range decls {
		sb.WriteString(d.prop + ":" + d.value)
		if d.important {
			sb.WriteString(" !important")
		}
		sb.WriteByte(';')
	}
	return sb.String()
}

// joinTokens writes tokens back as text, collapsing whitespace.
func joinTokens(data []byte, tokens []cssparse.Token) string {
	var sb strings.Builder
	sb.Write(data)
	for _, t := range tokens {
		if t.TokenType == cssparse.WhitespaceToken {
			sb.WriteByte(' ')
			continue
		}
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

func atRule(name []byte, prelude []cssparse.Token) string {
	return strings.TrimSpace(string(name) + " " + joinTokens(nil, prelude))
}

// parseSelector parses tag, class and id selectors joined by descendant and child combinators.
func parseSelector(s string) ([]compound, bool) {
	if strings.ContainsAny(s, ":[+~()") {
		return nil, false
	}
	s = strings.ReplaceAll(s, ">", " > ")
	var out []compound
	child := false
	for _, f := range strings.Fields(s) {
		if f == ">" {
			if len(out) == 0 || child {
				return nil, false
			}
			child = true
			continue
		}
		c, ok := parseCompound(f)
		if !ok {
			return nil, false
		}
		c.child = child
		child = false
		out = append(out, c)
	}
	if len(out) == 0 || child {
		return nil, false
	}
	return out, true
}

func parseCompound(s string) (compound, bool) {
	var c compound
	i := strings.IndexAny(s, ".#")
	if i < 0 {
		i = len(s)
	}
	c.tag = strings.ToLower(s[:i])
	if c.tag == "*" {
		c.tag = ""
	}
	s = s[i:]
	for s != "" {
		kind := s[0]
		s = s[1:]
		j := strings.IndexAny(s, ".#")
		if j < 0 {
			j = len(s)
		}
		name := s[:j]
		if name == "" {
			return c, false
		}
		if kind == '.' {
			c.classes = append(c.classes, name)
		} else {
			c.ids = append(c.ids, name)
		}
		s = s[j:]
	}
	return c, true
}

func specificity(sel []compound) [3]int {
	var s [3]int
	for _, c := range sel {
		s[0] += len(c.ids)
		s[1] += len(c.classes)
		if c.tag != "" {
			s[2]++
		}
	}
	return s
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func (c compound) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if c.tag != "" && n.Data != c.tag {
		return false
	}
	if len(c.ids) > 0 {
		id, _ := getAttr(n, "id")
		for _, want := range c.ids {
			if id != want {
				return false
			}
		}
	}
	if len(c.classes) > 0 {
		v, _ := getAttr(n, "class")
		have := strings.Fields(v)
		for _, want := range c.classes {
			if !slices.Contains(have, want) {
				return false
			}
		}
	}
	return true
}

// matchSelector matches sel right to left starting at n.
func matchSelector(sel []compound, n *html.Node) bool {
	last := len(sel) - 1
	if !sel[last].matches(n) {
		return false
	}
	if last == 0 {
		return true
	}
	rest := sel[:last]
	if sel[last].child {
		return n.Parent != nil && matchSelector(rest, n.Parent)
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if matchSelector(rest, p) {
			return true
		}
	}
	return false
}

// applyRules merges the declarations of matching rules into the style attribute of n. The
// style already on the element wins over rules that are not important.
func applyRules(n *html.Node, rules []cssRule) {
	var props []string
	values := map[string]declaration{}
	set := func(d declaration) {
		if _, ok := values[d.prop]; !ok {
			props = append(props, d.prop)
		}
		values[d.prop] = d
	}

	matched := false
	for _, r := range rules {
		if !matchSelector(r.sel, n) {
			continue
		}
		matched = true
		for _, d := range r.decls {
			if old, ok := values[d.prop]; ok && old.important && !d.important {
				continue
			}
			set(d)
		}
	}
	if !matched {
		return
	}

	existing, _ := getAttr(n, "style")
	for _, part := range strings.Split(existing, ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		d := newDeclaration(k, v)
		if old, ok := values[d.prop]; ok && old.important && !d.important {
			continue
		}
		set(d)
	}

	style := formatDeclarations(collect(props, values))
	for i := range n.Attr {
		if n.Attr[i].Key == "style" {
			n.Attr[i].Val = style
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: style})
}

func collect(props []string, values map[string]declaration) []declaration {
	out := make([]declaration, 0, len(props))
	for _, p := range props {
		out = append(out, values[p])
	}
	return out
}
