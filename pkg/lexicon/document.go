package lexicon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// decodeDocument turns raw JSON or YAML into a generic top-level mapping.
// JSON goes through encoding/json because yaml.v3 rejects tab-indented JSON.
func decodeDocument(data []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.Join(ErrInvalid, errors.New("empty document"))
	}

	var doc map[string]any
	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Join(ErrInvalid, err)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, errors.Join(ErrInvalid, err)
	}
	if doc == nil {
		return nil, errors.Join(ErrInvalid, errors.New("document is not a mapping"))
	}
	return doc, nil
}

// parseVersion accepts integer values only; anything else means version 1.
func parseVersion(raw any) int {
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case json.Number:
		if n, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return int(n)
		}
	}
	return 1
}

// parseSection converts a raw adjectives/nouns section into category -> raw words.
// A flat list becomes the default category; a mapping keeps its categories.
// Keys are visited in sorted order so that merging categories that normalize
// to the same key is deterministic.
func parseSection(raw any) map[string][]string {
	switch v := raw.(type) {
	case []any:
		return map[string][]string{DefaultCategory: scalarStrings(v)}
	case map[string]any:
		out := make(map[string][]string, len(v))
		for _, key := range slices.Sorted(maps.Keys(v)) {
			list, ok := v[key].([]any)
			if !ok {
				out[key] = nil
				continue
			}
			out[key] = scalarStrings(list)
		}
		return out
	default:
		return nil
	}
}

// scalarStrings renders scalar entries as strings and drops nested values.
func scalarStrings(values []any) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if s, ok := scalarString(value); ok {
			out = append(out, s)
		}
	}
	return out
}

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case int, int64, uint64:
		return fmt.Sprint(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}
