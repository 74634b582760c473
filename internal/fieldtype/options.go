package fieldtype

import "strings"

// Option is one choice of a select-static field
type Option struct {
	Key   string `json:"id"`
	Value string `json:"name"`
}

// ParseOptions parses newline-delimited "key|value" lines. A bare line is
// both key and value. Blank lines are ignored.
func ParseOptions(raw string) []Option {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	options := make([]Option, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "|")
		if !found {
			value = key
		}
		options = append(options, Option{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		})
	}
	return options
}
