package main

import (
	"embed"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	pages "github.com/dpotapov/go-mjml"
	"github.com/dpotapov/go-mjml/mjml"
)

//go:embed all:templates
var templates embed.FS

// brandHeader is shared by every template as mj-include path="/brand/header.mjml".
const brandHeader = `<mj-section background-color="#1d3557">
  <mj-column>
    <mj-text align="center" color="#ffffff" font-size="24px">${shop.name}</mj-text>
  </mj-column>
</mj-section>`

func LoggerMiddleware(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("HTTP request", zap.String("method", r.Method), zap.Stringer("url", r.URL))
		next.ServeHTTP(w, r)
	})
}

// orders is sample data for the order templates.
var orders = map[string]any{
	"1001": map[string]any{
		"customer": "Ann",
		"items": []any{
			map[string]any{"title": "Notebook", "qty": 2, "price": 4.5},
			map[string]any{"title": "Pen", "qty": 10, "price": 0.8},
		},
	},
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	fsys, err := fs.Sub(templates, "templates")
	if err != nil {
		logger.Fatal("Templates", zap.Error(err))
	}

	var loader mjml.MultiLoader
	loader.Handle("/brand/", mjml.NewMemoryLoader(map[string]string{"brand/header.mjml": brandHeader}))
	loader.Handle("", &mjml.FSLoader{FS: fsys})

	ph := &pages.Handler{
		FileSystem: fsys,
		Loader:     &loader,
		Vars: map[string]any{
			"shop":   map[string]any{"name": "Paper & Co", "url": "https://shop.example.com"},
			"orders": orders,
		},
		Logger: logger,
	}

	logger.Info("Starting HTTP server", zap.String("address", "http://localhost:8080"))

	err = http.ListenAndServe(":8080", LoggerMiddleware(ph, logger))

	logger.Error("HTTP server error", zap.Error(err))
}
