package kit

import (
	"encoding/json"
	"fmt"
	"math"
)

// Args is a loosely typed argument bag as received from the host.
// Required fields raise a descriptive error naming the field; optional
// fields of the wrong type are dropped rather than rejected, so a sloppy
// caller still gets a useful result.
type Args map[string]any

// DecodeArgs unmarshals raw MCP arguments into an Args bag.
func DecodeArgs(raw json.RawMessage) (Args, error) {
	if len(raw) == 0 {
		return Args{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// String returns a required string field or an error naming it.
func (a Args) String(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	return s, nil
}

// OptString returns an optional string field, or def if absent or mistyped.
func (a Args) OptString(key, def string) string {
	if s, ok := a[key].(string); ok && s != "" {
		return s
	}
	return def
}

// OptInt returns an optional integer field, or def if absent or mistyped.
// JSON numbers arrive as float64; non-integral values are dropped.
func (a Args) OptInt(key string, def int) int {
	f, ok := a[key].(float64)
	if !ok || f != math.Trunc(f) {
		return def
	}
	return int(f)
}

// OptBool returns an optional boolean field, or def if absent or mistyped.
func (a Args) OptBool(key string, def bool) bool {
	if b, ok := a[key].(bool); ok {
		return b
	}
	return def
}

// Strings returns a required non-empty string array field.
func (a Args) Strings(key string) ([]string, error) {
	v, ok := a[key]
	if !ok {
		return nil, fmt.Errorf("missing required parameter %q", key)
	}
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return nil, fmt.Errorf("missing required parameter %q", key)
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("missing required parameter %q", key)
	}
	return out, nil
}

// OptStrings returns an optional string array; mistyped elements are dropped.
func (a Args) OptStrings(key string) []string {
	arr, ok := a[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, e := range arr {
		if s, ok := e.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
