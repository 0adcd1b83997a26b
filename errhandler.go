package pages

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"strconv"

	"github.com/dpotapov/go-mjml/mjml"

	"github.com/beevik/etree"
)

const errorPageCSS = `body { font-family: monospace; margin: 2em; color: #222; }
h1 { color: #b00020; font-size: 1.4em; }
.message { white-space: pre-wrap; }
table.source { border-collapse: collapse; margin-top: 1em; }
table.source td { padding: 0 .5em; white-space: pre; }
td.ln { color: #888; text-align: right; }
tr.error td.code { background: #fde7ea; }
td.marker { color: #b00020; }
`

// sourceRadius is the number of lines shown around an error location.
const sourceRadius = 3

// errorPage describes a template failure. For parse errors it shows the source around the error
// location; readSource is used to load the file the error points to, which may be an include.
func errorPage(file string, err error, readSource func(string) (string, bool)) *etree.Document {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalEndTags = true

	root := doc.CreateElement("html")
	head := root.CreateElement("head")
	head.CreateElement("title").SetText("Template error: " + file)
	head.CreateElement("style").SetText(errorPageCSS)

	body := root.CreateElement("body")
	body.CreateElement("h1").SetText("Template error")
	msg := body.CreateElement("p")
	msg.CreateAttr("class", "message")
	msg.SetText(err.Error())

	var pe *mjml.ParseError
	if !errors.As(err, &pe) {
		return doc
	}
	errFile := pe.File
	if errFile == "" {
		errFile = file
	}
	src, ok := readSource(errFile)
	if !ok {
		return doc
	}
	ctx := newSourceContext(src, pe.Span, sourceRadius)
	if ctx == nil {
		return doc
	}

	body.CreateElement("h2").SetText(errFile + ":" + pe.Span.String())
	table := body.CreateElement("table")
	table.CreateAttr("class", "source")
	for _, l := range ctx.Lines {
		tr := table.CreateElement("tr")
		if l.Number == ctx.ErrorLine {
			tr.CreateAttr("class", "error")
		}
		ln := tr.CreateElement("td")
		ln.CreateAttr("class", "ln")
		ln.SetText(strconv.Itoa(l.Number))
		code := tr.CreateElement("td")
		code.CreateAttr("class", "code")
		code.SetText(l.Text)

		if l.Number == ctx.ErrorLine {
			mtr := table.CreateElement("tr")
			mtr.CreateElement("td")
			marker := mtr.CreateElement("td")
			marker.CreateAttr("class", "marker")
			marker.SetText(ctx.marker())
		}
	}
	return doc
}

func (h *Handler) writeErrorPage(w io.Writer, file string, err error) error {
	doc := errorPage(file, err, func(name string) (string, bool) {
		b, err := fs.ReadFile(h.FileSystem, path.Clean(name))
		if err != nil {
			return "", false
		}
		return string(b), true
	})
	doc.Indent(2)
	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	_, err = doc.WriteTo(w)
	return err
}
