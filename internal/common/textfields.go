package common

import "strings"

// ParseLabeledFields extracts labeled values from model output of the form
//
//	LABEL: value
//
// one label per line. Matching is case-insensitive on the label and
// tolerant of surrounding whitespace. Lines that match no label are
// ignored, so conversational noise around the structured lines is
// harmless. When a label appears more than once the last occurrence wins.
//
// The returned map contains only the labels that were found, keyed by the
// label spelling given in labels. This function never fails; absent labels
// are simply absent from the result.
func ParseLabeledFields(raw string, labels []string) map[string]string {
	fields := make(map[string]string)
	if raw == "" || len(labels) == 0 {
		return fields
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, label := range labels {
			value, ok := matchLabel(line, label)
			if ok {
				fields[label] = value
				break
			}
		}
	}

	return fields
}

// matchLabel checks whether line starts with label followed by a colon,
// ignoring case, and returns the trimmed remainder
func matchLabel(line, label string) (string, bool) {
	if len(line) < len(label)+1 {
		return "", false
	}
	if !strings.EqualFold(line[:len(label)], label) {
		return "", false
	}
	rest := strings.TrimLeft(line[len(label):], " \t")
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	return strings.TrimSpace(rest[1:]), true
}

// ExtractJSONArray returns the substring spanning the first '[' through
// the last ']' of raw, trimmed. Model output often wraps JSON in prose or
// code fences; this recovers the array payload. Returns empty string when
// no array brackets are present.
func ExtractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(raw[start : end+1])
}

// TruncateRunes returns s shortened to at most n runes. Truncation is
// rune-safe so multibyte text is never split mid-character.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
