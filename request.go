package pages

import (
	"encoding/json"
	"mime"
	"net/http"

	"go.uber.org/zap"
)

// RequestArg is a simplified model for http.Request suitable for expressions in templates.
type RequestArg struct {
	Method     string              `expr:"method"`
	URL        string              `expr:"url"`
	Host       string              `expr:"host"`
	Port       string              `expr:"port"`
	Scheme     string              `expr:"scheme"`
	Path       string              `expr:"path"`
	Query      map[string][]string `expr:"query"`
	RemoteAddr string              `expr:"remote_addr"`
	Headers    map[string][]string `expr:"headers"`

	// Body is available only when the content type is either application/json or
	// application/x-www-form-urlencoded. Form bodies are decoded with DecodeForm.
	Body any `expr:"body"`
}

func NewRequestArg(r *http.Request, log *zap.Logger) *RequestArg {
	if log == nil {
		log = zap.NewNop()
	}
	model := &RequestArg{
		Method:     r.Method,
		URL:        r.RequestURI,
		Host:       r.URL.Hostname(),
		Port:       r.URL.Port(),
		Scheme:     r.URL.Scheme,
		Path:       r.URL.Path,
		Query:      r.URL.Query(),
		RemoteAddr: r.RemoteAddr,
		Headers:    r.Header,
	}
	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return model
	}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&model.Body); err != nil {
			log.Debug("Decode JSON body", zap.Error(err))
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			log.Debug("Parse form body", zap.Error(err))
			break
		}
		if len(r.PostForm) > 0 {
			model.Body = DecodeForm(r.PostForm, log)
		}
	}

	return model
}
