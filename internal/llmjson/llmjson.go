// Package llmjson decodes JSON objects out of chat completion output, which
// routinely arrives wrapped in markdown fences or surrounded by prose.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON signals that no JSON object could be located in the text.
var ErrNoJSON = errors.New("no JSON object in response")

// Unmarshal extracts the first top-level JSON object from raw and decodes it
// into v.
func Unmarshal(raw string, v any) error {
	obj, err := extract(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("decode llm response: %w", err)
	}
	return nil
}

// extract strips code fences and returns the substring from the first '{'
// to its matching closing brace.
func extract(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if fenced, ok := strings.CutPrefix(s, "```json"); ok {
		s = fenced
	} else if fenced, ok := strings.CutPrefix(s, "```"); ok {
		s = fenced
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}
