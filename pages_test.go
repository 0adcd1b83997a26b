package pages

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func page(text string) string {
	return `<mjml><mj-body><mj-section><mj-column><mj-text>` + text + `</mj-text></mj-column></mj-section></mj-body></mjml>`
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.mjml":            {Data: []byte(page(`Hello ${name ?? "world"}`))},
		"logo.png":              {Data: []byte("PNG")},
		"orders/index.mjml":     {Data: []byte(page("Orders"))},
		"orders/_id.mjml":       {Data: []byte(page("Order ${route.id}"))},
		"included.mjml":         {Data: []byte(`<mjml><mj-body><mj-include path=".partials/footer.mjml" /></mj-body></mjml>`)},
		".partials/footer.mjml": {Data: []byte(`<mj-section><mj-column><mj-text>Footer</mj-text></mj-column></mj-section>`)},
		"broken.mjml":           {Data: []byte("<mjml><mj-body>\n<mj-foo></mj-foo>\n</mj-body></mjml>")},
		"post.mjml":             {Data: []byte(page("Hi ${user.name}"))},
	}
}

func TestHandler(t *testing.T) {
	tests := []struct {
		url        string
		wantStatus int
		wantBody   string
	}{
		{"GET /", 200, "Hello world"},
		{"GET /?name=Ann", 200, "Hello Ann"},
		{"GET /?name=%3Cb%3E", 200, "Hello &lt;b&gt;"},
		{"GET /logo.png", 200, "PNG"},
		{"GET /orders/", 200, "Orders"},
		{"GET /orders/42", 200, "Order 42"},
		{"GET /included", 200, "Footer"},
		{"GET /.partials/footer.mjml", 404, "Not Found"},
		{"GET /missing", 404, "Not Found"},
		{"GET /broken", 500, "unknown element"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			method, target, _ := strings.Cut(tt.url, " ")
			req := httptest.NewRequest(method, target, nil)
			rr := httptest.NewRecorder()

			var handlerErr error
			h := &Handler{
				FileSystem: testFS(),
				Logger:     zaptest.NewLogger(t),
				OnError:    func(r *http.Request, err error) { handlerErr = err },
			}
			h.ServeHTTP(rr, req)

			require.NoError(t, handlerErr)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantBody)
		})
	}
}

func TestHandlerErrorPage(t *testing.T) {
	h := &Handler{FileSystem: testFS()}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/broken", nil))

	body := rr.Body.String()
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, "broken.mjml:2:1")
	assert.Contains(t, body, "&lt;mj-foo&gt;&lt;/mj-foo&gt;")
}

func TestHandlerFormBody(t *testing.T) {
	form := url.Values{"user.name": {"Bob"}}
	req := httptest.NewRequest("POST", "/post", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	h := &Handler{FileSystem: testFS()}
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Hi Bob")
}

func TestHandlerVars(t *testing.T) {
	h := &Handler{
		FileSystem: testFS(),
		Vars:       map[string]any{"name": "default"},
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Contains(t, rr.Body.String(), "Hello default")

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/?name=query", nil))
	assert.Contains(t, rr.Body.String(), "Hello query")
}

func TestHandlerLivePreview(t *testing.T) {
	h := &Handler{
		FileSystem:     testFS(),
		ReloadInterval: -1,
	}
	srv := httptest.NewServer(h)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))

	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "Hello world")

	require.NoError(t, ws.WriteJSON(map[string]any{"name": "Live"}))

	_, msg, err = ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "Hello Live")
}
