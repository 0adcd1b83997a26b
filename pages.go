package pages

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dpotapov/go-mjml/mjml"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// mjmlExt is the extension of the email templates. It is used when matching files in the file
// system.
const mjmlExt = ".mjml"

// defaultReloadInterval is how often a live preview looks for template changes.
const defaultReloadInterval = time.Second

// wsUpgrader is a Gorilla WebSocket instance, used to respond HTTP requests with WebSocket.
var wsUpgrader = websocket.Upgrader{}

// Handler serves MJML templates from a file system as rendered HTML. Other files are served
// as is, so images referenced by the templates can live next to them.
//
// A WebSocket request to a template URL opens a live preview: the template is rendered on
// connect, on every JSON message from the client (the message is merged into the template
// variables) and whenever the template file changes.
type Handler struct {
	// FileSystem to serve templates and other assets from.
	FileSystem fs.FS

	// Loader resolves mj-include paths. If not set, includes are read from FileSystem.
	Loader mjml.Loader

	// Breakpoint, Fonts and DisableComments are passed to the renderer.
	Breakpoint      mjml.Size
	Fonts           map[string]string
	DisableComments bool

	// Vars are available to ${...} expressions of every template, next to the variables built
	// from the request: "request", "route" and the query parameters.
	Vars map[string]any

	// ReloadInterval is how often a live preview checks the template for changes. Zero means
	// one second, a negative value disables reloading.
	ReloadInterval time.Duration

	// OnError is a callback that is called when an error occurs while serving a page.
	// Template errors are not reported here: they are rendered as an error page.
	OnError func(*http.Request, error)

	// Logger configures logging for internal events.
	Logger *zap.Logger

	// init is used to initialize the handler only once.
	init sync.Once

	logger *zap.Logger
	loader mjml.Loader
}

// ServeHTTP implements the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.init.Do(func() {
		h.logger = zap.NewNop()
		if h.Logger != nil {
			h.logger = h.Logger.Named("preview")
		}
		h.loader = h.Loader
		if h.loader == nil {
			h.loader = &mjml.FSLoader{FS: h.FileSystem}
		}
	})

	if err := h.handleRequest(w, r); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		h.logger.Error("Serve HTTP request", zap.String("url", r.URL.Redacted()), zap.Error(err))

		if h.OnError != nil {
			h.OnError(r, err)
		}
	}
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) error {
	urlPath := cleanPath(r.URL.EscapedPath())

	params := map[string]string{}

	fsPath, err := h.matchFS(urlPath, ".", params)
	if err != nil {
		return err
	}

	if fsPath == "" {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return nil
	}

	if strings.HasSuffix(fsPath, mjmlExt) {
		return h.servePage(w, r, fsPath, params)
	}

	return h.serveFile(w, r, fsPath)
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request, fsPath string, params map[string]string) error {
	vars := h.templateVars(r, params)

	if websocket.IsWebSocketUpgrade(r) {
		return h.serveLive(w, r, fsPath, vars)
	}

	src, err := fs.ReadFile(h.FileSystem, fsPath)
	if err != nil {
		return fmt.Errorf("read template %s: %w", fsPath, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	out, err := h.compile(r.Context(), fsPath, string(src), vars)
	if err != nil {
		h.logger.Warn("Compile template", zap.String("path", fsPath), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return h.writeErrorPage(w, fsPath, err)
	}

	_, err = io.WriteString(w, out)
	return err
}

// serveLive renders the template over a WebSocket connection until the client goes away.
func (h *Handler) serveLive(w http.ResponseWriter, r *http.Request, fsPath string, vars map[string]any) error {
	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	rc := make(chan struct{}, 1) // renderer event channel
	done := make(chan error, 1)  // completion of the reading loop

	trigger := func() {
		select {
		case rc <- struct{}{}:
		default: // a render is already pending
		}
	}

	var mu sync.Mutex
	var pending map[string]any // vars received since the last render

	// the first render does not wait for the client
	trigger()

	go func() {
		for {
			var args map[string]any
			if err := ws.ReadJSON(&args); err != nil {
				if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					err = nil
				} else {
					err = fmt.Errorf("read websocket message: %w", err)
				}
				done <- err
				return
			}

			mu.Lock()
			if pending == nil {
				pending = map[string]any{}
			}
			maps.Copy(pending, args)
			mu.Unlock()

			trigger()
		}
	}()

	var tick <-chan time.Time
	if iv := h.reloadInterval(); iv > 0 {
		t := time.NewTicker(iv)
		defer t.Stop()
		tick = t.C
	}

	var lastSrc string
	for {
		select {
		case <-rc:
		case <-tick:
		case err := <-done:
			return err
		}

		src, err := fs.ReadFile(h.FileSystem, fsPath)
		if err != nil {
			return fmt.Errorf("read template %s: %w", fsPath, err)
		}

		mu.Lock()
		changed := pending != nil
		maps.Copy(vars, pending)
		pending = nil
		mu.Unlock()

		if !changed && string(src) == lastSrc {
			continue
		}
		lastSrc = string(src)

		mw, err := ws.NextWriter(websocket.TextMessage)
		if err != nil {
			return fmt.Errorf("get websocket writer: %w", err)
		}

		out, err := h.compile(context.Background(), fsPath, lastSrc, vars)
		if err != nil {
			h.logger.Debug("Compile template", zap.String("path", fsPath), zap.Error(err))
			if err := h.writeErrorPage(mw, fsPath, err); err != nil {
				return fmt.Errorf("render error page: %w", err)
			}
		} else if _, err := io.WriteString(mw, out); err != nil {
			return fmt.Errorf("write websocket message: %w", err)
		}

		if err := mw.Close(); err != nil {
			return fmt.Errorf("close websocket writer: %w", err)
		}
	}
}

func (h *Handler) compile(ctx context.Context, fsPath, src string, vars map[string]any) (string, error) {
	popts := &mjml.ParserOptions{
		Loader: h.loader,
		File:   fsPath,
		Logger: h.logger,
	}
	ropts := &mjml.RenderOptions{
		Breakpoint:      h.Breakpoint,
		Fonts:           h.Fonts,
		DisableComments: h.DisableComments,
		Vars:            vars,
		Logger:          h.logger,
	}
	out, warnings, err := mjml.Compile(ctx, src, popts, ropts)
	for _, warn := range warnings {
		h.logger.Debug("Template warning", zap.String("path", fsPath), zap.Stringer("warning", warn))
	}
	return out, err
}

func (h *Handler) reloadInterval() time.Duration {
	if h.ReloadInterval == 0 {
		return defaultReloadInterval
	}
	return h.ReloadInterval
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, fsPath string) error {
	r.URL.Path = fsPath
	r.URL.RawPath = fsPath
	http.FileServerFS(h.FileSystem).ServeHTTP(w, r)
	return nil
}
