package fieldtype

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a stored value as read-only text following the
// descriptor's display rule. References and uploads render their raw id or
// url; callers wanting referenced titles project them through the codec.
func Format(desc Descriptor, value any) string {
	if value == nil {
		return ""
	}

	switch desc.Display {
	case DisplayDate:
		if s, ok := value.(string); ok {
			if t, ok := ParseTime(s, dateLayouts); ok {
				return t.Format("2006-01-02")
			}
		}
	case DisplayDateTime:
		if s, ok := value.(string); ok {
			if t, ok := ParseTime(s, dateTimeLayouts); ok {
				return t.Format("2006-01-02 15:04")
			}
		}
	case DisplayNumber:
		if n, ok := ToFloat(value); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	case DisplayFile, DisplayImage:
		if m, ok := value.(map[string]any); ok {
			if url, ok := m["url"].(string); ok {
				return url
			}
		}
	case DisplayReference:
		if items, ok := value.([]any); ok {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				if m, ok := item.(map[string]any); ok {
					item = m["id"]
				}
				parts = append(parts, fmt.Sprint(item))
			}
			return strings.Join(parts, ", ")
		}
	}

	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
