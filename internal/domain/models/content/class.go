package content

import (
	"time"
)

// Class is a content type definition. Its Fields describe the shape of every
// Document whose ClassID equals ID.
type Class struct {
	ID       string    `json:"id" db:"id"`
	ParentID string    `json:"parent_id" db:"parent_id"` // "" = root class
	Name     string    `json:"name" db:"name"`
	Fields   []Field   `json:"fields" db:"fields"`
	Created  time.Time `json:"created" db:"created_at"`
	Updated  time.Time `json:"updated" db:"updated_at"`
}

// SortFields returns the names of fields flagged as sortable, in schema order
func (c Class) SortFields() []string {
	fields := make([]string, 0, len(c.Fields))
	for _, field := range c.Fields {
		if field.Sort {
			fields = append(fields, field.Name)
		}
	}
	return fields
}

// Field returns the field with the given name
func (c Class) Field(name string) (Field, bool) {
	for _, field := range c.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// ClassFilter narrows a class listing
type ClassFilter struct {
	ParentID *string // nil = any parent
	Range    Range
}
