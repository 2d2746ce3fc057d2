package request

import (
	"net/url"
	"slices"
	"strings"
)

// FromValues expands bracketed form keys into the nested map Normalize
// expects: columns[0][search][value]=x becomes
// {"columns": {"0": {"search": {"value": "x"}}}}. When a key repeats, the
// last value wins.
func FromValues(values url.Values) (map[string]any, error) {
	out := make(map[string]any, len(values))

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		vals := values[key]
		if len(vals) == 0 {
			continue
		}
		path := splitKey(key)
		if err := assign(out, path, vals[len(vals)-1]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// splitKey turns "a[b][c]" into ["a", "b", "c"].
func splitKey(key string) []string {
	root, rest, ok := strings.Cut(key, "[")
	if !ok {
		return []string{key}
	}
	path := []string{root}
	for rest != "" {
		seg, tail, found := strings.Cut(rest, "]")
		if !found {
			// Unbalanced bracket: keep the remainder verbatim.
			path = append(path, seg)
			break
		}
		path = append(path, seg)
		rest = strings.TrimPrefix(tail, "[")
	}
	return path
}

func assign(node map[string]any, path []string, val string) error {
	for i, seg := range path {
		if i == len(path)-1 {
			if _, isMap := node[seg].(map[string]any); isMap {
				return malformed(path[0], "%q is both a value and an object", strings.Join(path, "."))
			}
			node[seg] = val
			return nil
		}
		next, exists := node[seg]
		if !exists {
			child := make(map[string]any)
			node[seg] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return malformed(path[0], "%q is both a value and an object", strings.Join(path[:i+1], "."))
		}
		node = child
	}
	return nil
}
