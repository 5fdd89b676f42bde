package apiclient

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NormalizeJSON recursively converts all object keys in a JSON document from
// snake_case to camelCase, descending into nested objects and arrays. Numbers
// pass through verbatim. Non-JSON and empty input are returned unchanged with
// a nil error only when empty; malformed JSON reports the decode error.
func NormalizeJSON(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return data, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return data, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(camelizeValue(v)); err != nil {
		return data, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

func camelizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[snakeToCamel(k)] = camelizeValue(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = camelizeValue(val)
		}
		return t
	default:
		return v
	}
}

// snakeToCamel converts one key. Keys without underscores are left untouched,
// so already-camelCase payloads round-trip cleanly.
func snakeToCamel(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	parts := strings.Split(key, "_")
	var b strings.Builder
	wrote := false
	for _, p := range parts {
		if p == "" {
			continue
		}
		if !wrote {
			b.WriteString(p)
			wrote = true
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	if !wrote {
		return key
	}
	return b.String()
}
