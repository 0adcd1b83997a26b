package pages

import (
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// validIdentifierRegex matches names of dynamic path segments. The segment value becomes a
// template variable under this name.
var validIdentifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// matchFS maps a URL path to a file. Examples:
//   - / -> /index.mjml
//   - /welcome -> /welcome.mjml
//   - /orders/ -> /orders/index.mjml
//   - /orders/42 -> /orders/_id.mjml with route param id=42
//   - /img/logo.png -> /img/logo.png
//   - /unknown/path -> /__rest.mjml with route param rest=/unknown/path
func (h *Handler) matchFS(urlPath, dir string, params map[string]string) (string, error) {
	if urlPath == "" {
		return "", nil
	}

	entries, err := fs.ReadDir(h.FileSystem, dir)
	if err != nil {
		return "", fmt.Errorf("read directory %s: %w", dir, err)
	}

	seg, rest := firstSegment(urlPath)

	// partials and other hidden files are never served
	if seg == "" || seg[0] == '.' {
		return "", nil
	}

	var m string
	if rest != "" {
		dir, err = matchDir(seg, dir, entries, params)
		if err != nil {
			return "", err
		}
		if dir != "" {
			m, err = h.matchFS(rest, dir, params)
		}
	} else {
		m, err = matchFile(seg, dir, entries, params)
	}
	if m != "" || err != nil {
		return m, err
	}

	catchAll, err := findCatchAllFile(entries)
	if err != nil || catchAll == "" {
		return "", err
	}
	params[catchAll[2:len(catchAll)-len(mjmlExt)]] = urlPath
	return path.Join(dir, catchAll), nil
}

// dynamicName returns the parameter name of a "_name" entry.
func dynamicName(dir, name string) (string, error) {
	pn := name[1:]
	if !validIdentifierRegex.MatchString(pn) {
		return "", fmt.Errorf("invalid dynamic match %q in %s", name, dir)
	}
	return pn, nil
}

func matchDir(seg, dir string, entries []fs.DirEntry, params map[string]string) (string, error) {
	dynamic, param := "", ""

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == seg {
			return path.Join(dir, name), nil
		}
		if name[0] != '_' {
			continue
		}
		pn, err := dynamicName(dir, name)
		if err != nil {
			return "", err
		}
		if dynamic != "" {
			return "", fmt.Errorf("multiple dynamic matches in %s", dir)
		}
		if params[pn] != "" {
			return "", fmt.Errorf("duplicate dynamic match %q in %s", pn, dir)
		}
		dynamic, param = name, pn
	}

	if dynamic == "" {
		return "", nil
	}
	params[param] = seg
	return path.Join(dir, dynamic), nil
}

func matchFile(seg, dir string, entries []fs.DirEntry, params map[string]string) (string, error) {
	dynamic, param := "", ""

	if seg == "/" {
		seg = "index"
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		if path.Ext(name) != mjmlExt {
			if name == seg {
				return path.Join(dir, name), nil
			}
			continue
		}

		base := strings.TrimSuffix(name, mjmlExt)
		if base == seg {
			return path.Join(dir, name), nil
		}
		if len(base) < 2 || base[0] != '_' || base[1] == '_' {
			continue
		}
		pn, err := dynamicName(dir, base)
		if err != nil {
			return "", err
		}
		if dynamic != "" {
			return "", fmt.Errorf("multiple dynamic matches in %s", dir)
		}
		if params[pn] != "" {
			return "", fmt.Errorf("duplicate dynamic match %q in %s", pn, dir)
		}
		dynamic, param = name, pn
	}

	if dynamic == "" {
		return "", nil
	}
	params[param] = seg
	return path.Join(dir, dynamic), nil
}

// findCatchAllFile returns the "__name.mjml" template of a directory, if any.
func findCatchAllFile(entries []fs.DirEntry) (string, error) {
	catchAll := ""
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, mjmlExt) || !strings.HasPrefix(name, "__") {
			continue
		}
		if len(name) == len("__")+len(mjmlExt) {
			continue
		}
		if catchAll != "" {
			return "", fmt.Errorf("multiple catch-all files found")
		}
		catchAll = name
	}
	return catchAll, nil
}

// cleanPath returns the canonical path for p, eliminating . and .. elements.
//
// Copied from net/http/server.go
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	// path.Clean removes trailing slash except for root;
	// put the trailing slash back if necessary.
	if p[len(p)-1] == '/' && np != "/" {
		// Fast path for common case of p being the string we want:
		if len(p) == len(np)+1 && strings.HasPrefix(p, np) {
			np = p
		} else {
			np += "/"
		}
	}
	return np
}

// firstSegment splits path into its first segment, and the rest.
// The path must begin with "/".
// If path consists of only a slash, firstSegment returns ("/", "").
// The segment is returned unescaped, if possible.
//
// Copied from net/http/routing_tree.go.
func firstSegment(path string) (seg, rest string) {
	if path == "/" {
		return "/", ""
	}
	path = path[1:] // drop initial slash
	i := strings.IndexByte(path, '/')
	if i < 0 {
		i = len(path)
	}
	return pathUnescape(path[:i]), path[i:]
}

// Copied from net/http/routing_tree.go.
func pathUnescape(path string) string {
	u, err := url.PathUnescape(path)
	if err != nil {
		// Invalidly escaped path; use the original
		return path
	}
	return u
}
