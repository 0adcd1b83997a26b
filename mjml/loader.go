package mjml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/itsatony/go-cuserr"
)

// Error codes of the loader errors.
const (
	ErrCodeIncludeNotFound  = "MJML_INCLUDE_NOT_FOUND"
	ErrCodeIncludeForbidden = "MJML_INCLUDE_FORBIDDEN"
	ErrCodeIncludeFetch     = "MJML_INCLUDE_FETCH"
)

// Metadata keys attached to loader errors.
const (
	MetaKeyPath   = "path"
	MetaKeyOrigin = "origin"
	MetaKeyStatus = "status"
)

// Loader resolves the content of an mj-include path. Resolve may block on I/O and should honor
// ctx cancellation. Retries, if any, belong to the implementation.
type Loader interface {
	Resolve(ctx context.Context, path string) (string, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, path string) (string, error)

func (f LoaderFunc) Resolve(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

func notFound(p string) error {
	e := cuserr.NewCustomErrorWithCategory(cuserr.ErrorCategoryNotFound, ErrCodeIncludeNotFound, "include not found")
	e.Sentinel = cuserr.ErrNotFound
	return e.WithMetadata(MetaKeyPath, p)
}

func forbidden(p, msg string) *cuserr.CustomError {
	return cuserr.NewCustomErrorWithCategory(cuserr.ErrorCategoryForbidden, ErrCodeIncludeForbidden, msg).
		WithMetadata(MetaKeyPath, p)
}

// fetchFailed reports a failed read of include p, wrapping err when there is one.
func fetchFailed(p string, err error, msg string) *cuserr.CustomError {
	if err == nil {
		return cuserr.NewCustomErrorWithCategory(cuserr.ErrorCategoryExternal, ErrCodeIncludeFetch, msg).
			WithMetadata(MetaKeyPath, p)
	}
	return cuserr.WrapWithCustomError(err, cuserr.ErrorCategoryExternal, ErrCodeIncludeFetch, msg).
		WithMetadata(MetaKeyPath, p)
}

// NoopLoader fails every include.
type NoopLoader struct{}

func (NoopLoader) Resolve(_ context.Context, path string) (string, error) {
	return "", notFound(path)
}

// MemoryLoader serves includes from a map. Safe for concurrent access.
type MemoryLoader struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewMemoryLoader creates a MemoryLoader holding a copy of files.
func NewMemoryLoader(files map[string]string) *MemoryLoader {
	l := &MemoryLoader{files: make(map[string]string, len(files))}
	for k, v := range files {
		l.files[cleanIncludePath(k)] = v
	}
	return l
}

// Set registers content under path.
func (l *MemoryLoader) Set(p, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.files[cleanIncludePath(p)] = content
}

func (l *MemoryLoader) Resolve(_ context.Context, p string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if s, ok := l.files[cleanIncludePath(p)]; ok {
		return s, nil
	}
	return "", notFound(p)
}

// FSLoader reads includes from a file system. Paths are relative to the root of FS and may not
// escape it.
type FSLoader struct {
	FS fs.FS
}

func (l *FSLoader) Resolve(_ context.Context, p string) (string, error) {
	name := cleanIncludePath(p)
	if !fs.ValidPath(name) {
		return "", forbidden(p, "include path escapes the loader root")
	}
	b, err := fs.ReadFile(l.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", notFound(p)
		}
		return "", fetchFailed(p, err, "read include")
	}
	return string(b), nil
}

// HTTPLoader fetches includes over HTTP(S). Origins are "scheme://host[:port]" and compare
// case-insensitively, with default ports removed. A denied origin is always rejected; when Allow
// is not empty only the listed origins are fetched. Redirects are checked the same way.
type HTTPLoader struct {
	Client *http.Client
	Allow  []string
	Deny   []string
	// MaxSize limits the size of a fetched document, 0 means 1MiB.
	MaxSize int64
}

func (l *HTTPLoader) Resolve(ctx context.Context, p string) (string, error) {
	u, err := url.Parse(p)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", forbidden(p, "not an http url")
	}
	if err := l.check(u, p); err != nil {
		return "", err
	}
	origin := urlOrigin(u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fetchFailed(p, err, "create request")
	}

	client := http.Client{}
	if l.Client != nil {
		client = *l.Client
	}
	next := client.CheckRedirect
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if err := l.check(req.URL, p); err != nil {
			return err
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}

	res, err := client.Do(req)
	if err != nil {
		var ce *cuserr.CustomError
		if errors.As(err, &ce) {
			return "", ce
		}
		return "", fetchFailed(p, err, "fetch include").
			WithMetadata(MetaKeyOrigin, origin)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return "", notFound(p)
	case res.StatusCode != http.StatusOK:
		return "", fetchFailed(p, nil, fmt.Sprintf("unexpected status %d", res.StatusCode)).
			WithMetadata(MetaKeyStatus, strconv.Itoa(res.StatusCode))
	}

	limit := l.MaxSize
	if limit <= 0 {
		limit = 1 << 20
	}
	b, err := io.ReadAll(io.LimitReader(res.Body, limit+1))
	if err != nil {
		return "", fetchFailed(p, err, "read body")
	}
	if int64(len(b)) > limit {
		return "", fetchFailed(p, nil, fmt.Sprintf("include is larger than %d bytes", limit))
	}
	return string(b), nil
}

// check rejects u when its origin is not permitted. p is the include path being resolved.
func (l *HTTPLoader) check(u *url.URL, p string) error {
	origin := urlOrigin(u)
	if l.permitted(origin) {
		return nil
	}
	return forbidden(p, "origin is not allowed").WithMetadata(MetaKeyOrigin, origin)
}

func (l *HTTPLoader) permitted(origin string) bool {
	match := func(list []string) bool {
		return slices.ContainsFunc(list, func(s string) bool { return normalizeOrigin(s) == origin })
	}
	if match(l.Deny) {
		return false
	}
	return len(l.Allow) == 0 || match(l.Allow)
}

// urlOrigin returns the canonical origin of u: lower case scheme and host, no default port.
func urlOrigin(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return strings.ToLower(u.Scheme) + "://" + host
}

func normalizeOrigin(s string) string {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return strings.ToLower(s)
	}
	return urlOrigin(u)
}

// MultiLoader dispatches to the first loader whose prefix matches the path. The prefix is
// passed through unchanged.
type MultiLoader struct {
	routes []loaderRoute
}

type loaderRoute struct {
	prefix string
	loader Loader
}

// Handle registers a loader for paths starting with prefix. An empty prefix matches everything.
func (m *MultiLoader) Handle(prefix string, l Loader) {
	m.routes = append(m.routes, loaderRoute{prefix: prefix, loader: l})
}

func (m *MultiLoader) Resolve(ctx context.Context, p string) (string, error) {
	for _, r := range m.routes {
		if strings.HasPrefix(p, r.prefix) {
			return r.loader.Resolve(ctx, p)
		}
	}
	return "", notFound(p)
}

// cleanIncludePath normalizes a local include path: "./a/../b.mjml" and "/b.mjml" both become
// "b.mjml".
func cleanIncludePath(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

// isRemote reports whether an include path is an absolute http(s) URL.
func isRemote(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// joinIncludePath resolves p relative to the file that includes it.
func joinIncludePath(base, p string) string {
	if base == "" || isRemote(p) || strings.HasPrefix(p, "/") {
		return p
	}
	if isRemote(base) {
		bu, err := url.Parse(base)
		if err != nil {
			return p
		}
		ref, err := url.Parse(p)
		if err != nil {
			return p
		}
		return bu.ResolveReference(ref).String()
	}
	return path.Join(path.Dir(base), p)
}
