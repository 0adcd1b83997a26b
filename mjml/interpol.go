package mjml

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

const (
	eof        rune = -1
	leftDelim       = "${"
	rightDelim      = "}"
)

// segment is a piece of an interpolated string: literal text or a compiled expression.
type segment struct {
	text string
	prog *vm.Program
}

// interpolator evaluates ${...} expressions against a set of variables. It caches compiled
// strings and is not safe for concurrent use; every render gets its own.
type interpolator struct {
	vars  map[string]any
	cache map[string][]segment
}

func newInterpolator(vars map[string]any) *interpolator {
	return &interpolator{vars: vars, cache: map[string][]segment{}}
}

// expand returns s with every expression replaced by its value. Nil values expand to nothing.
func (in *interpolator) expand(s string, escape bool) (string, error) {
	if !strings.Contains(s, leftDelim) {
		return s, nil
	}
	segs, ok := in.cache[s]
	if !ok {
		var err error
		if segs, err = in.compile(s); err != nil {
			return "", err
		}
		in.cache[s] = segs
	}

	var sb strings.Builder
	for _, seg := range segs {
		if seg.prog == nil {
			sb.WriteString(seg.text)
			continue
		}
		v, err := expr.Run(seg.prog, in.vars)
		if err != nil {
			return "", fmt.Errorf("evaluate ${%s}: %w", seg.text, err)
		}
		if v == nil {
			continue
		}
		out := fmt.Sprint(v)
		if escape {
			out = html.EscapeString(out)
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

func (in *interpolator) compile(s string) ([]segment, error) {
	l := &lexer{input: s}
	for state := lexText; state != nil; {
		state = state(l)
	}
	if l.err != nil {
		return nil, l.err
	}
	segs := make([]segment, 0, len(l.items))
	for _, it := range l.items {
		if !it.expr {
			segs = append(segs, segment{text: it.val})
			continue
		}
		code := strings.TrimSpace(it.val)
		if code == "" {
			return nil, errors.New("empty expression")
		}
		prog, err := expr.Compile(code, expr.Env(in.vars), expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("compile ${%s}: %w", code, err)
		}
		segs = append(segs, segment{text: code, prog: prog})
	}
	return segs, nil
}

// lexer splits a string into text and ${...} items. Braces and quoted strings inside an
// expression are balanced before the closing delimiter is accepted.
type lexer struct {
	input       string
	start       int
	pos         int
	width       int
	bracesDepth int
	items       []item
	err         error
}

type item struct {
	expr bool
	val  string
}

type stateFn func(*lexer) stateFn

func (l *lexer) emit(isExpr bool) {
	l.items = append(l.items, item{expr: isExpr, val: l.input[l.start:l.pos]})
	l.start = l.pos
}

func (l *lexer) errorf(format string, args ...any) stateFn {
	l.err = fmt.Errorf(format, args...)
	return nil
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	return r
}

func lexText(l *lexer) stateFn {
	if x := strings.Index(l.input[l.pos:], leftDelim); x >= 0 {
		if x > 0 {
			l.pos += x
			l.emit(false)
		}
		l.pos += len(leftDelim)
		l.start = l.pos
		return lexExpr
	}
	l.pos = len(l.input)
	if l.pos > l.start {
		l.emit(false)
	}
	return nil
}

func lexExpr(l *lexer) stateFn {
	if l.bracesDepth == 0 && strings.HasPrefix(l.input[l.pos:], rightDelim) {
		l.emit(true)
		l.pos += len(rightDelim)
		l.start = l.pos
		return lexText
	}
	switch r := l.next(); r {
	case eof:
		return l.errorf("unclosed expression in %q", l.input)
	case '\'', '"', '`':
		for c := l.next(); c != r; c = l.next() {
			if c == eof {
				return l.errorf("unterminated string in %q", l.input)
			}
			if c == '\\' {
				l.next()
			}
		}
	case '{':
		l.bracesDepth++
	case '}':
		l.bracesDepth--
	}
	return lexExpr
}
