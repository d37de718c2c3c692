// Package repair normalizes generative-service responses that are expected to
// contain JSON but arrive with known cosmetic damage. It targets exactly the
// malformations the upstream generator produces; anything else is left for
// the JSON parser to reject. Every step is idempotent, so valid JSON passes
// through byte-for-byte unchanged.
package repair

import "strings"

// Array repairs a response expected to encode a JSON array. Applied in order:
// fence stripping, dangling comma after the last element, stray closing brace
// after the array, and a missing closing bracket.
func Array(text string) string {
	s := stripFences(text)

	if strings.HasSuffix(s, "},") {
		s = strings.TrimSuffix(s, ",")
	}
	if strings.HasSuffix(s, "] }") {
		s = strings.TrimSuffix(s, " }")
	}
	if !strings.HasSuffix(s, "]") {
		s = strings.TrimRight(s, ",") + "]"
	}
	return s
}

// Object repairs a response expected to encode a single JSON object: fences
// are stripped and the outermost brace pair is extracted, discarding any
// prose the service wrapped around it.
func Object(text string) string {
	s := stripFences(text)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}

// stripFences removes a leading ```json or ``` marker and its closing fence.
func stripFences(text string) string {
	s := strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	default:
		return s
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
