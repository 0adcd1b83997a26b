package pages

import (
	"maps"
	"net/http"
)

// templateVars builds the variables of a page render. Query parameters are decoded with
// DecodeForm and take precedence over Handler.Vars; "request" and "route" are reserved.
func (h *Handler) templateVars(r *http.Request, route map[string]string) map[string]any {
	vars := make(map[string]any, len(h.Vars)+2)
	maps.Copy(vars, h.Vars)
	maps.Copy(vars, DecodeForm(r.URL.Query(), h.logger))

	req := NewRequestArg(r, h.logger)
	if body, ok := req.Body.(map[string]any); ok {
		maps.Copy(vars, body)
	}

	vars["request"] = req
	vars["route"] = route
	return vars
}
