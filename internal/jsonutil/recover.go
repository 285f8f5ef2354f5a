package jsonutil

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// ExtractObject isolates a JSON object from free-form model output. Layers are
// tried in decreasing order of confidence and the first candidate that parses
// wins:
//
//  1. a fenced code block labeled json;
//  2. balanced-brace matching from the first '{';
//  3. trimming everything before the first '{' and after the last '}'.
//
// If no layer yields parseable JSON the raw text is returned unchanged so the
// caller's own parse fails visibly instead of silently.
func ExtractObject(raw string) string {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		candidate := strings.TrimSpace(m[1])
		if validObject(candidate) {
			return candidate
		}
	}

	if candidate, ok := matchBraces(raw); ok && validObject(candidate) {
		return candidate
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start != -1 && end > start {
		candidate := raw[start : end+1]
		if validObject(candidate) {
			return candidate
		}
	}

	return raw
}

// matchBraces scans from the first '{' with a depth counter and returns the
// slice up to the matching '}'. The counter deliberately ignores braces inside
// string literals; the parse check in the caller rejects bad splits.
func matchBraces(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func validObject(s string) bool {
	var scratch map[string]json.RawMessage
	return json.Unmarshal([]byte(s), &scratch) == nil
}
