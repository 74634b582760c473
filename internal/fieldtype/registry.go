package fieldtype

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var catalogFiles embed.FS

// Registry maps field type tags to their descriptors. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	order       []string
	descriptors map[string]Descriptor
}

// NewRegistry loads the embedded field type catalog
func NewRegistry() (*Registry, error) {
	data, err := catalogFiles.ReadFile("catalog/fieldtypes.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read field type catalog: %w", err)
	}
	return parseCatalog(data)
}

// MustNewRegistry is NewRegistry for program start-up and tests
func MustNewRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

func parseCatalog(data []byte) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal field type catalog: %w", err)
	}

	r := &Registry{
		order:       make([]string, 0, len(file.Types)),
		descriptors: make(map[string]Descriptor, len(file.Types)),
	}
	for _, desc := range file.Types {
		if desc.Tag == "" {
			return nil, fmt.Errorf("field type catalog: entry without tag")
		}
		if _, dup := r.descriptors[desc.Tag]; dup {
			return nil, fmt.Errorf("field type catalog: duplicate tag %q", desc.Tag)
		}
		if desc.Value == "" {
			desc.Value = ValueScalar
		}
		if desc.Reference == "" {
			desc.Reference = ReferenceNone
		}
		if desc.Display == "" {
			desc.Display = DisplayText
		}
		r.order = append(r.order, desc.Tag)
		r.descriptors[desc.Tag] = desc
	}
	return r, nil
}

// Resolve returns the descriptor for tag and whether the tag is known
func (r *Registry) Resolve(tag string) (Descriptor, bool) {
	desc, ok := r.descriptors[tag]
	return desc, ok
}

// Lookup never fails: unknown tags get a generic text descriptor that keeps
// the original tag for diagnostics.
func (r *Registry) Lookup(tag string) Descriptor {
	if desc, ok := r.descriptors[tag]; ok {
		return desc
	}
	return unknown(tag)
}

// Tags returns every known tag in catalog order
func (r *Registry) Tags() []string {
	tags := make([]string, len(r.order))
	copy(tags, r.order)
	return tags
}

// Descriptors returns every known descriptor in catalog order
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, tag := range r.order {
		out = append(out, r.descriptors[tag])
	}
	return out
}
