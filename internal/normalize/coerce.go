package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
)

// number extracts a finite float from the loosely typed values JSON decoding
// and hand-built fixtures produce.
func number(val any) (float64, bool) {
	var f float64
	switch v := val.(type) {
	case nil:
		return 0, false
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%")), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		return 0, false
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// firstNumber returns the first key present with a numeric value.
func firstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := number(m[k]); ok {
			return f, true
		}
	}
	return 0, false
}

func numberOr(m map[string]any, keys ...string) float64 {
	f, _ := firstNumber(m, keys...)
	return f
}

// text renders scalars as trimmed strings; blank values report false.
func text(val any) (string, bool) {
	var s string
	switch v := val.(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", false
		}
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || s == players.Placeholder {
		return "", false
	}
	return s, true
}

func firstText(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := text(m[k]); ok {
			return s, true
		}
	}
	return "", false
}

// textOr falls back to the placeholder so no consumer sees an empty field.
func textOr(m map[string]any, keys ...string) string {
	if s, ok := firstText(m, keys...); ok {
		return s
	}
	return players.Placeholder
}

func object(val any) (map[string]any, bool) {
	m, ok := val.(map[string]any)
	return m, ok && m != nil
}

func objects(val any) []map[string]any {
	switch v := val.(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := object(item); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// texts collects non-blank strings, dropping duplicates and keeping first
// occurrence order. Never returns nil.
func texts(val any) []string {
	var raw []any
	switch v := val.(type) {
	case []string:
		raw = make([]any, len(v))
		for i, s := range v {
			raw[i] = s
		}
	case []any:
		raw = v
	case string:
		raw = []any{v}
	}
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		s, ok := text(item)
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
