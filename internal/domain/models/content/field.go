package content

// Field is a named, typed slot within a Class schema.
//
// The parameter bag is flattened: which of Min/Max/Step/Format, Options or
// ClassID/ClassField carry meaning depends on Type (see fieldtype catalog).
type Field struct {
	Type       string `json:"type" yaml:"type"`
	Name       string `json:"name" yaml:"name"`
	Label      string `json:"label" yaml:"label"`
	Sort       bool   `json:"sort" yaml:"sort"`
	Column     int    `json:"column" yaml:"column"` // 0 = hidden from list view
	Min        string `json:"min" yaml:"min"`
	Max        string `json:"max" yaml:"max"`
	Step       string `json:"step" yaml:"step"`
	Format     string `json:"format" yaml:"format"`
	Options    string `json:"options" yaml:"options"`
	ClassID    string `json:"class_id" yaml:"class_id"`
	ClassField string `json:"field" yaml:"field"`
}

// Source is the storage path of the field inside a document
func (f Field) Source() string {
	return "values." + f.Name
}
