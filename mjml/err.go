package mjml

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnexpectedToken     = errors.New("unexpected token")
	ErrUnknownElement      = errors.New("unknown element")
	ErrUnexpectedAttribute = errors.New("unexpected attribute")
	ErrMissingAttribute    = errors.New("missing attribute")
	ErrUnexpectedEOF       = errors.New("unexpected end of input")
	ErrConditionalComment  = errors.New("conditional comment outside of raw content")
	ErrInclude             = errors.New("include failed")
	ErrIncludeCycle        = errors.New("include cycle")
)

// ParseError is a fatal parse failure. Kind is one of the Err* sentinels above; Err carries the
// underlying cause when there is one (a loader error, for example).
type ParseError struct {
	Kind error
	Tag  string
	File string
	Span Span
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteByte(':')
	}
	sb.WriteString(e.Span.String())
	sb.WriteString(": ")
	sb.WriteString(e.Kind.Error())
	if e.Tag != "" {
		sb.WriteString(" <" + e.Tag + ">")
	}
	if e.Msg != "" {
		sb.WriteString(": " + e.Msg)
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ParseWarning is a recoverable problem. The offending element is dropped from the tree.
type ParseWarning struct {
	Kind error
	Tag  string
	File string
	Span Span
}

func (w ParseWarning) String() string {
	if w.File != "" {
		return fmt.Sprintf("%s:%s: %v <%s>", w.File, w.Span, w.Kind, w.Tag)
	}
	return fmt.Sprintf("%s: %v <%s>", w.Span, w.Kind, w.Tag)
}

// RenderError reports a broken invariant detected while rendering, e.g. unbalanced
// conditional output.
type RenderError struct {
	Tag string
	Err error
}

func (e *RenderError) Error() string {
	if e.Tag == "" {
		return "render: " + e.Err.Error()
	}
	return "render <" + e.Tag + ">: " + e.Err.Error()
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
