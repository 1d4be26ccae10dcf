package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonFence = regexp.MustCompile("```(?:json)?\\s*")

func parseReply(reply string, expectedCount int) ([]Line, error) {
	reply = cleanJSONResponse(reply)

	lines, err := extractLines(reply)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(reply, 200),
		)
	}

	if len(lines) != expectedCount {
		return nil, fmt.Errorf("expected %d results, got %d", expectedCount, len(lines))
	}
	return lines, nil
}

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonFence.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// doubles the backslash of escapes JSON does not know (e.g. a literal \N
// copied from an ASS script) so the reply still decodes
func fixInvalidEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		next := s[i+1]
		switch next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			b.WriteByte('\\')
		default:
			b.WriteString("\\\\")
		}
		b.WriteByte(next)
		i++
	}

	return b.String()
}

// finds the first JSON value in text that decodes to translated lines
func extractLines(text string) ([]Line, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		if lines, ok := tryExtractLines(raw); ok {
			return lines, nil
		}
	}
	return nil, fmt.Errorf("no valid translation JSON found in response")
}

func tryExtractLines(raw json.RawMessage) ([]Line, bool) {
	var lines []Line
	if err := json.Unmarshal(raw, &lines); err == nil && hasText(lines) {
		return lines, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range []string{"results", "translations", "data", "items", "lines"} {
		if field, ok := wrapper[key]; ok {
			var inner []Line
			if err := json.Unmarshal(field, &inner); err == nil && hasText(inner) {
				return inner, true
			}
		}
	}
	for _, field := range wrapper {
		var inner []Line
		if err := json.Unmarshal(field, &inner); err == nil && hasText(inner) {
			return inner, true
		}
	}

	return nil, false
}

func hasText(lines []Line) bool {
	for _, l := range lines {
		if l.Text != "" {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
