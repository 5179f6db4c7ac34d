// Package parse decodes model output. Generative models fence their JSON,
// prepend language tags, or wrap it in prose, so decoding is layered: strict
// decode of the cleaned text first, then the first balanced {...} span, and
// finally a Failure sentinel that keeps the raw text instead of fabricating
// data.
package parse

import (
	"encoding/json"
	"strings"
)

// Failure marks model output that could not be decoded into the expected
// shape. It is a value, not an error: callers carry it forward as a
// degraded-data flag while keeping the raw text for diagnostics.
type Failure struct {
	Raw string
}

// Clean strips code-fence markers and stray language tags from model output
// and trims surrounding whitespace. Markdown and plain responses are returned
// unchanged apart from this stripping.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// language tag directly after the opening fence, e.g. ```json
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			tag := strings.TrimSpace(s[:idx])
			if tag == "json" || tag == "markdown" || tag == "md" || tag == "" {
				s = s[idx+1:]
			}
		} else {
			s = strings.TrimSpace(strings.TrimPrefix(s, "json"))
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	// stray fences or tags left anywhere in the body
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	return strings.TrimSpace(s)
}

// JSONObject decodes model output into a generic object. On success the
// Failure is nil; on failure the object is nil and the Failure carries the
// original raw text.
func JSONObject(raw string) (map[string]any, *Failure) {
	var out map[string]any
	if fail := Decode(raw, &out); fail != nil {
		return nil, fail
	}
	return out, nil
}

// Decode unmarshals model output into v, applying the layered fallback:
// strict decode of the cleaned text, then the first balanced brace span.
// It never returns an error; an undecodable payload yields a Failure.
func Decode(raw string, v any) *Failure {
	cleaned := Clean(raw)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	if span, ok := braceSpan(cleaned); ok {
		if err := json.Unmarshal([]byte(span), v); err == nil {
			return nil
		}
	}

	return &Failure{Raw: raw}
}

// braceSpan returns the first balanced {...} span in s. Braces inside JSON
// strings are skipped.
func braceSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
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
