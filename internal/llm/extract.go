package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlockPatterns = []*regexp.Regexp{
	regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```"),
	regexp.MustCompile("```\\s*([\\s\\S]*?)\\s*```"),
}

// ExtractJSON pulls a JSON object out of free-form model output.
//
// Best-effort secondary parser: tries a direct parse first, then fenced
// code blocks, then the widest {...} span. Returns false when nothing in
// the text parses as a JSON object.
func ExtractJSON(text string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(text)

	var result map[string]any
	if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
		return result, true
	}

	for _, pattern := range fencedBlockPatterns {
		for _, match := range pattern.FindAllStringSubmatch(trimmed, -1) {
			candidate := strings.TrimSpace(match[1])
			var m map[string]any
			if err := json.Unmarshal([]byte(candidate), &m); err == nil {
				return m, true
			}
		}
	}

	// Widest brace span. Model output often wraps the object in prose.
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		var m map[string]any
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &m); err == nil {
			return m, true
		}
	}

	return nil, false
}
