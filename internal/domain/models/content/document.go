package content

import (
	"strings"
	"time"
)

// Document is an instance of a Class. Values is keyed by Field.Name.
type Document struct {
	ID         string         `json:"id" db:"id"`
	ClassID    string         `json:"class_id" db:"class_id"`
	ParentID   string         `json:"parent_id" db:"parent_id"`     // document in the parent class, "" = none
	TemplateID string         `json:"template_id" db:"template_id"` // "" = none
	Path       string         `json:"path" db:"path"`               // public path, unique when set
	Version    int            `json:"version" db:"version"`
	Values     map[string]any `json:"values" db:"values"`
	Created    time.Time      `json:"created" db:"created_at"`
	Updated    time.Time      `json:"updated" db:"updated_at"`
}

// DocumentSort orders a document listing by a value key
type DocumentSort struct {
	Field     string
	Direction string // ASC or DESC, "" = ASC
}

// Ascending reports whether the sort runs low to high
func (s DocumentSort) Ascending() bool {
	return s.Direction == "" || strings.EqualFold(s.Direction, "ASC")
}

// DocumentFilter narrows a document listing within one class
type DocumentFilter struct {
	ClassID  string
	ParentID string // "" = any parent
	Query    string // substring match over values, "" = no filter
	IDs      []string
	Sort     DocumentSort
	Range    Range
}
