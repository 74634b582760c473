package sanitizer

import (
	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer strips scripts, event handlers and javascript: URLs from
// editor markup while keeping ordinary formatting.
//
// Safe for concurrent use.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer creates a sanitizer with the user generated content policy
func NewHTMLSanitizer() *HTMLSanitizer {
	policy := bluemonday.UGCPolicy()
	// editor images keep their dimensions
	policy.AllowAttrs("width", "height").OnElements("img")
	return &HTMLSanitizer{policy: policy}
}

// NewStrictHTMLSanitizer removes all markup
func NewStrictHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns html with every disallowed element and attribute removed
func (s *HTMLSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
