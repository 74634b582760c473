package content

import "time"

// Template is a named reusable body of source text
type Template struct {
	ID      string    `json:"id" db:"id"`
	Name    string    `json:"name" db:"name"`
	Version int       `json:"version" db:"version"`
	Body    string    `json:"body" db:"body"`
	Created time.Time `json:"created" db:"created_at"`
	Updated time.Time `json:"updated" db:"updated_at"`
}

// TemplateFilter narrows a template listing
type TemplateFilter struct {
	Query string
	Range Range
}
