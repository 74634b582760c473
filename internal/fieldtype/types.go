package fieldtype

import "fmt"

// ValueShape is the JSON shape of a stored field value
type ValueShape string

const (
	ValueScalar ValueShape = "scalar"
	ValueArray  ValueShape = "array"
	ValueObject ValueShape = "object"
)

// Cardinality says whether a field references documents of another class
type Cardinality string

const (
	ReferenceNone Cardinality = "none"
	ReferenceOne  Cardinality = "one"
	ReferenceMany Cardinality = "many"
)

// DisplayRule is the stable formatting rule for read-only rendering
type DisplayRule string

const (
	DisplayText      DisplayRule = "text"
	DisplayHTML      DisplayRule = "html"
	DisplayDate      DisplayRule = "date"
	DisplayDateTime  DisplayRule = "datetime"
	DisplayTime      DisplayRule = "time"
	DisplayNumber    DisplayRule = "number"
	DisplayEmail     DisplayRule = "email"
	DisplayOption    DisplayRule = "option"
	DisplayReference DisplayRule = "reference"
	DisplayFile      DisplayRule = "file"
	DisplayImage     DisplayRule = "image"
)

// Param names a slot of a field's parameter bag
type Param string

const (
	ParamMin     Param = "min"
	ParamMax     Param = "max"
	ParamStep    Param = "step"
	ParamFormat  Param = "format"
	ParamOptions Param = "options"
	ParamClassID Param = "class_id"
	ParamField   Param = "field"
)

// Descriptor declares everything the codec and validators need to know
// about one field type tag.
type Descriptor struct {
	Tag          string      `yaml:"tag" json:"tag"`
	DisplayName  string      `yaml:"display_name" json:"display_name"`
	Params       []Param     `yaml:"params" json:"params"`
	Value        ValueShape  `yaml:"value" json:"value"`
	Reference    Cardinality `yaml:"reference" json:"reference"`
	Labeled      bool        `yaml:"labeled" json:"labeled"`
	Upload       bool        `yaml:"upload" json:"upload"`
	PathOverride bool        `yaml:"path_override" json:"path_override"`
	Display      DisplayRule `yaml:"display" json:"display"`

	// Unknown is set on fallback descriptors for tags missing from the catalog
	Unknown bool `yaml:"-" json:"unknown,omitempty"`
}

// IsReference reports whether values point at another class's documents
func (d Descriptor) IsReference() bool {
	return d.Reference == ReferenceOne || d.Reference == ReferenceMany
}

// HasParam reports whether the parameter bag uses p
func (d Descriptor) HasParam(p Param) bool {
	for _, param := range d.Params {
		if param == p {
			return true
		}
	}
	return false
}

// Label returns the label shown to editors. Unknown types surface their tag.
func (d Descriptor) Label(label string) string {
	if d.Unknown {
		return fmt.Sprintf("Unknown type (%s) - %s", d.Tag, label)
	}
	return label
}

// unknown builds the generic text descriptor used for unresolved tags
func unknown(tag string) Descriptor {
	return Descriptor{
		Tag:         tag,
		DisplayName: fmt.Sprintf("Unknown (%s)", tag),
		Value:       ValueScalar,
		Reference:   ReferenceNone,
		Display:     DisplayText,
		Unknown:     true,
	}
}

type catalogFile struct {
	Types []Descriptor `yaml:"types"`
}
