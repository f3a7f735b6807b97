package enrichment

import (
	"strconv"
	"strings"
)

// Model replies are loosely typed. These helpers read one key and ignore
// values of an unexpected shape.

func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// list never returns nil; a bare string counts as a one-element list.
func list(m map[string]any, key string) []string {
	out := optionalList(m, key)
	if out == nil {
		return []string{}
	}
	return out
}

// optionalList returns nil when the key is missing or null.
func optionalList(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
		return []string{}
	}
	return nil
}

func object(m map[string]any, key string) map[string]any {
	obj, _ := m[key].(map[string]any)
	return obj
}

func pick(fields map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k] = fields[k]
	}
	return out
}
