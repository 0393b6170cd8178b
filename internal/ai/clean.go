package ai

import "strings"

// cleanModelJSON strips Markdown fences and any prose around the JSON
// value, keeping the span from the first open to the last close
// delimiter.
func cleanModelJSON(raw string, open, closing byte) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// drop the ``` or ```json line
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, closing)
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func extractArray(raw string) string {
	return cleanModelJSON(raw, '[', ']')
}

func extractObject(raw string) string {
	return cleanModelJSON(raw, '{', '}')
}
