package request

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Normalizer decodes raw parameters. PageSize replaces a missing or zero
// length; when it is not positive DefaultLength is used.
type Normalizer struct {
	PageSize int64
}

// Normalize decodes raw with the default page size.
func Normalize(raw map[string]any) (Params, error) {
	return Normalizer{}.Normalize(raw)
}

// Normalize decodes raw into Params. raw is the nested shape produced by a
// JSON body or by FromValues.
func (n Normalizer) Normalize(raw map[string]any) (Params, error) {
	pageSize := n.PageSize
	if pageSize <= 0 {
		pageSize = DefaultLength
	}

	p := Params{
		Draw:   toInt(raw["draw"]),
		Start:  max(toInt(raw["start"]), 0),
		Length: pageSize,
	}

	if v, ok := raw["length"]; ok && v != nil {
		switch l := toInt(v); {
		case l == NoPagination:
			p.Length = NoPagination
		case l > 0:
			p.Length = l
		}
	}

	cols, err := decodeList("columns", raw["columns"])
	if err != nil {
		return Params{}, err
	}
	for i, c := range cols {
		cp := ColumnParam{
			Data:       toString(c["data"]),
			Name:       toString(c["name"]),
			Searchable: toBool(c["searchable"], true),
			Orderable:  toBool(c["orderable"], true),
		}
		if s, ok := c["search"].(map[string]any); ok {
			cp.Search = toString(s["value"])
		}
		if cp.Search != "" {
			if p.PerColumnSearch == nil {
				p.PerColumnSearch = make(map[int]string)
			}
			p.PerColumnSearch[i] = cp.Search
		}
		p.Columns = append(p.Columns, cp)
	}

	order, err := decodeList("order", raw["order"])
	if err != nil {
		return Params{}, err
	}
	for _, o := range order {
		idx, ok := o["column"]
		if !ok {
			return Params{}, malformed("order", "entry without column")
		}
		p.Order = append(p.Order, OrderParam{
			Column: int(toInt(idx)),
			Dir:    toString(o["dir"]),
		})
	}

	search, err := decodeObject("search", raw["search"])
	if err != nil {
		return Params{}, err
	}
	if search != nil {
		p.Search = toString(search["value"])
	}

	return p, nil
}

// decodeList accepts a numerically keyed map, a decoded JSON array or a
// string holding a JSON array, and returns its entries in order.
func decodeList(field string, v any) ([]map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		var out []map[string]any
		if err := json.Unmarshal([]byte(t), &out); err != nil {
			return nil, &MalformedParameterError{Field: field, Err: err}
		}
		return out, nil
	case []any:
		out := make([]map[string]any, 0, len(t))
		for i, e := range t {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, malformed(field, "entry %d is %T, want object", i, e)
			}
			out = append(out, m)
		}
		return out, nil
	case map[string]any:
		type entry struct {
			idx int
			val map[string]any
		}
		entries := make([]entry, 0, len(t))
		for k, e := range t {
			idx, err := strconv.Atoi(k)
			if err != nil || idx < 0 {
				return nil, malformed(field, "non-numeric key %q", k)
			}
			m, ok := e.(map[string]any)
			if !ok {
				return nil, malformed(field, "entry %q is %T, want object", k, e)
			}
			entries = append(entries, entry{idx, m})
		}
		slices.SortFunc(entries, func(a, b entry) int { return a.idx - b.idx })
		out := make([]map[string]any, len(entries))
		for i, e := range entries {
			out[i] = e.val
		}
		return out, nil
	}
	return nil, malformed(field, "unsupported shape %T", v)
}

// decodeObject accepts a map or a string holding a JSON object.
func decodeObject(field string, v any) (map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return t, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(t), &out); err != nil {
			return nil, &MalformedParameterError{Field: field, Err: err}
		}
		return out, nil
	}
	return nil, malformed(field, "unsupported shape %T", v)
}

// toInt coerces a scalar to an integer. Strings contribute their leading
// optionally signed digit run, so "5" is 5, "12px" is 12 and "abc" is 0.
func toInt(v any) int64 {
	switch t := v.(type) {
	case string:
		return leadingInt(t)
	case float64:
		return int64(t)
	case json.Number:
		return leadingInt(t.String())
	case int:
		return int64(t)
	case int64:
		return t
	case []string:
		if len(t) > 0 {
			return leadingInt(t[len(t)-1])
		}
	}
	return 0
}

func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

func toBool(v any, def bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(t); err == nil {
			return b
		}
	}
	return def
}
