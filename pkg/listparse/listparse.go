// Package listparse normalizes the heterogeneous list representations found
// in spreadsheet cells: native arrays, JSON-array strings, "a-b" integer
// ranges and comma-separated text with optional brackets or quotes.
//
// The parsers are deliberately forgiving. Upstream data is free-text input of
// unknown quality, so anything outside the grammar yields an empty slice
// rather than an error.
package listparse

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var rangePattern = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)

// Numbers parses input into a flat list of finite numbers. Unparseable input
// yields an empty slice, never an error.
func Numbers(input any) []float64 {
	switch v := input.(type) {
	case nil:
		return []float64{}
	case []float64:
		out := make([]float64, 0, len(v))
		for _, n := range v {
			if isFinite(n) {
				out = append(out, n)
			}
		}
		return out
	case []int:
		out := make([]float64, 0, len(v))
		for _, n := range v {
			out = append(out, float64(n))
		}
		return out
	case []any:
		return coerceNumbers(v)
	case string:
		return numbersFromString(v)
	default:
		if n, ok := coerceNumber(v); ok {
			return []float64{n}
		}
		return []float64{}
	}
}

// Strings parses input into a list of trimmed strings. Comma-separated text
// may quote individual tokens.
func Strings(input any) []string {
	switch v := input.(type) {
	case nil:
		return []string{}
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			out = append(out, strings.TrimSpace(s))
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, strings.TrimSpace(fmt.Sprint(item)))
		}
		return out
	case string:
		return stringsFromString(v)
	default:
		return []string{}
	}
}

func numbersFromString(s string) []float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return []float64{}
	}

	// JSON array form: "[1,2,3]"
	if strings.HasPrefix(s, "[") {
		var raw []any
		if err := json.Unmarshal([]byte(s), &raw); err == nil {
			return coerceNumbers(raw)
		}
		// fall through: bracketed comma list with junk, e.g. "[1, 2, x]"
	}

	// Inclusive integer range: "a-b" with a <= b.
	if m := rangePattern.FindStringSubmatch(s); m != nil {
		a, errA := strconv.Atoi(m[1])
		b, errB := strconv.Atoi(m[2])
		if errA != nil || errB != nil || a > b {
			return []float64{}
		}
		out := make([]float64, 0, b-a+1)
		for i := a; i <= b; i++ {
			out = append(out, float64(i))
		}
		return out
	}

	// Comma-separated with optional surrounding brackets and per-token quotes.
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	out := []float64{}
	for _, token := range strings.Split(s, ",") {
		token = trimQuotes(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		n, err := strconv.ParseFloat(token, 64)
		if err != nil || !isFinite(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func stringsFromString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	out := []string{}
	for _, token := range strings.Split(s, ",") {
		token = trimQuotes(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		out = append(out, token)
	}
	return out
}

func coerceNumbers(items []any) []float64 {
	out := []float64{}
	for _, item := range items {
		if n, ok := coerceNumber(item); ok {
			out = append(out, n)
		}
	}
	return out
}

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, isFinite(n)
	case float32:
		return float64(n), isFinite(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil && isFinite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && isFinite(f)
	default:
		return 0, false
	}
}

func trimQuotes(s string) string {
	s = strings.Trim(s, `"`)
	return strings.Trim(s, `'`)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
