package pages

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DecodeForm parses url.Values into the nested variables of a template. Dot notation builds
// objects ("order.id") and brackets build arrays ("items[0].name"), so a preview URL like
// ?user.name=Ann&items[0].title=Book can feed ${user.name} and ${items[0].title}.
// Keys that conflict with an earlier key are logged and skipped.
func DecodeForm(values url.Values, logger *zap.Logger) map[string]any {
	result := make(map[string]any)

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		// only the first value of a key is used
		value := vals[0]
		if err := assignValue(result, strings.Split(key, "."), value); err != nil && logger != nil {
			logger.Warn("Failed to assign form value",
				zap.String("key", key),
				zap.String("value", value),
				zap.Error(err),
			)
		}
	}

	return result
}

// assignValue stores value in m under the path of dot separated parts, creating the objects
// and arrays on the way.
func assignValue(m map[string]any, parts []string, value string) error {
	isArray, key, index := parsePart(parts[0])
	last := len(parts) == 1

	if !isArray {
		if last {
			if _, ok := m[key].(map[string]any); ok {
				return fmt.Errorf("key '%s' is already an object", key)
			}
			m[key] = value
			return nil
		}
		next, err := childMap(m[key], key)
		if err != nil {
			return err
		}
		m[key] = next
		return assignValue(next, parts[1:], value)
	}

	var slice []any
	switch v := m[key].(type) {
	case nil:
	case []any:
		slice = v
	default:
		return fmt.Errorf("expected slice at key '%s', found %T", key, v)
	}
	if index >= len(slice) {
		grown := make([]any, index+1)
		copy(grown, slice)
		slice = grown
	}
	m[key] = slice

	if last {
		slice[index] = value
		return nil
	}
	next, err := childMap(slice[index], fmt.Sprintf("%s[%d]", key, index))
	if err != nil {
		return err
	}
	slice[index] = next
	return assignValue(next, parts[1:], value)
}

func childMap(v any, name string) (map[string]any, error) {
	switch c := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return c, nil
	}
	return nil, fmt.Errorf("expected map at '%s', found %T", name, v)
}

// parsePart splits an array access "key[index]" into its key and index. Anything else,
// including "key[]" and "key[abc]", is a plain key.
func parsePart(part string) (isArray bool, key string, index int) {
	open := strings.IndexByte(part, '[')
	if open < 0 || !strings.HasSuffix(part, "]") || strings.IndexByte(part, ']') != len(part)-1 {
		return false, part, -1
	}
	idx, err := strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil || idx < 0 {
		return false, part, -1
	}
	return true, part[:open], idx
}
