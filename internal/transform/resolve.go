// Package transform maps loosely shaped upstream JSON into canonical records.
//
// Every canonical field has an ordered list of candidate upstream keys. The first
// candidate holding a usable value wins; later ones are only consulted when earlier
// ones are absent or empty. Dotted paths (category.id) walk nested objects.
package transform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Extractor converts a raw JSON value into T, reporting whether it was usable
type Extractor[T any] func(v any) (T, bool)

// Candidate is one upstream location for a canonical field
type Candidate[T any] struct {
	Path    string
	Extract Extractor[T]
}

// Resolve returns the value of the first candidate that yields a usable value
func Resolve[T any](rec map[string]any, candidates []Candidate[T]) (T, bool) {
	for _, c := range candidates {
		raw, ok := Lookup(rec, c.Path)
		if !ok {
			continue
		}
		if v, ok := c.Extract(raw); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Keys builds candidates sharing one extractor, in priority order
func Keys[T any](extract Extractor[T], paths ...string) []Candidate[T] {
	out := make([]Candidate[T], len(paths))
	for i, p := range paths {
		out[i] = Candidate[T]{Path: p, Extract: extract}
	}
	return out
}

// Strings builds string candidates for paths
func Strings(paths ...string) []Candidate[string] {
	return Keys(String, paths...)
}

// Ints builds integer candidates for paths
func Ints(paths ...string) []Candidate[int64] {
	return Keys(Int, paths...)
}

// Floats builds numeric candidates for paths
func Floats(paths ...string) []Candidate[float64] {
	return Keys(Float, paths...)
}

// Lookup walks a dotted path through nested objects
func Lookup(rec map[string]any, path string) (any, bool) {
	if rec == nil {
		return nil, false
	}
	if v, ok := rec[path]; ok {
		return v, true
	}

	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		return nil, false
	}
	child, ok := Object(rec[head])
	if !ok {
		return nil, false
	}
	return Lookup(child, rest)
}

// String accepts a non-empty trimmed string or a number rendered as text
func String(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	}
	return "", false
}

// Int accepts an integral number or a numeric string
func Int(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		if f, err := t.Float64(); err == nil {
			return integral(f)
		}
	case float64:
		return integral(t)
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return integral(f)
		}
	}
	return 0, false
}

// Float accepts any number or a numeric string
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// Count is Int narrowed to int for aggregate counters
func Count(v any) (int, bool) {
	n, ok := Int(v)
	return int(n), ok
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// Object accepts a JSON object
func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// Array accepts a JSON array
func Array(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

// NonEmptyArray accepts a JSON array with at least one element
func NonEmptyArray(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok && len(a) > 0
}

// Decode parses a JSON document keeping numbers as json.Number
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return v, nil
}

// optionalString resolves a nullable canonical string
func optionalString(rec map[string]any, paths []string) *string {
	if v, ok := Resolve(rec, Strings(paths...)); ok {
		return &v
	}
	return nil
}

// unwrapData returns payload.data when it is an object, else payload itself
func unwrapData(payload any) (map[string]any, bool) {
	obj, ok := Object(payload)
	if !ok {
		return nil, false
	}
	if inner, ok := Object(obj["data"]); ok {
		return inner, true
	}
	return obj, true
}
