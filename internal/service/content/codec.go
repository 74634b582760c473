package content

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
	"github.com/jbaikge/boneless/internal/fieldtype"
	"github.com/jbaikge/boneless/internal/service/content/sanitizer"
)

// BindingKind selects the editing widget family for a field
type BindingKind string

const (
	BindingScalar               BindingKind = "scalar"
	BindingText                 BindingKind = "text"
	BindingOptions              BindingKind = "options"
	BindingReference            BindingKind = "reference"
	BindingReferenceList        BindingKind = "reference-list"
	BindingLabeledReferenceList BindingKind = "labeled-reference-list"
	BindingUpload               BindingKind = "upload"
)

// Constraints are the range/format parameters attached to scalar bindings
type Constraints struct {
	Min    string `json:"min,omitempty"`
	Max    string `json:"max,omitempty"`
	Step   string `json:"step,omitempty"`
	Format string `json:"format,omitempty"`
}

// ReferenceTarget names the class whose documents a reference points into
type ReferenceTarget struct {
	ClassID    string `json:"class_id"`
	Field      string `json:"field"`      // value key used as display text
	Collection string `json:"collection"` // classes/<class_id>/documents
}

// ReferenceItem is one referenced document id
type ReferenceItem struct {
	ID      string `json:"id"`
	Label   string `json:"label,omitempty"`   // multi-select-label only
	Display string `json:"display,omitempty"` // filled by Project

	raw map[string]any
}

// FileBinding is the editable form of an upload value
type FileBinding struct {
	Path    string               `json:"path"`
	URL     string               `json:"url"`
	Pending *content.PendingFile `json:"-"`

	raw map[string]any
}

// FieldBinding is the typed editing/display representation of one field
type FieldBinding struct {
	Field        content.Field        `json:"field"`
	Descriptor   fieldtype.Descriptor `json:"descriptor"`
	Kind         BindingKind          `json:"kind"`
	Source       string               `json:"source"`
	Label        string               `json:"label"`
	Present      bool                 `json:"present"`
	Unknown      bool                 `json:"unknown,omitempty"`
	PathOverride bool                 `json:"path_override,omitempty"`

	Value       any                `json:"value,omitempty"`
	Constraints *Constraints       `json:"constraints,omitempty"`
	Options     []fieldtype.Option `json:"options,omitempty"`
	Reference   *ReferenceTarget   `json:"reference,omitempty"`
	References  []ReferenceItem    `json:"references,omitempty"`
	File        *FileBinding       `json:"file,omitempty"`

	// opaque holds values whose shape does not match the field type; they
	// round-trip untouched instead of being dropped.
	opaque bool
}

// DocumentCodec converts between stored document values and field bindings,
// dispatching on the field type registry.
type DocumentCodec struct {
	registry  *fieldtype.Registry
	sanitizer *sanitizer.HTMLSanitizer
	logger    *slog.Logger
}

// NewDocumentCodec creates a codec over the given registry
func NewDocumentCodec(registry *fieldtype.Registry, logger *slog.Logger) *DocumentCodec {
	return &DocumentCodec{
		registry:  registry,
		sanitizer: sanitizer.NewHTMLSanitizer(),
		logger:    logger,
	}
}

// ToEditable builds one binding per field, in schema order
func (c *DocumentCodec) ToEditable(fields []content.Field, values map[string]any) []FieldBinding {
	bindings := make([]FieldBinding, 0, len(fields))
	for _, field := range fields {
		raw, present := values[field.Name]
		bindings = append(bindings, c.bind(field, raw, present))
	}
	return bindings
}

// FromEditable folds bindings back into the stored values map
func (c *DocumentCodec) FromEditable(bindings []FieldBinding) map[string]any {
	values := make(map[string]any, len(bindings))
	for i := range bindings {
		if raw, ok := bindings[i].Raw(); ok {
			values[bindings[i].Field.Name] = raw
		}
	}
	return values
}

// Orphans returns values whose key no longer matches a field of the schema
func (c *DocumentCodec) Orphans(fields []content.Field, values map[string]any) map[string]any {
	known := make(map[string]bool, len(fields))
	for _, field := range fields {
		known[field.Name] = true
	}
	orphans := make(map[string]any)
	for key, value := range values {
		if !known[key] {
			orphans[key] = value
		}
	}
	return orphans
}

// Validate checks every present value against its field type
func (c *DocumentCodec) Validate(fields []content.Field, values map[string]any) error {
	errs := validation.Errors{}
	for _, field := range fields {
		value, ok := values[field.Name]
		if !ok {
			continue
		}
		if err := fieldtype.ValidateValue(c.registry.Lookup(field.Type), field, value); err != nil {
			errs[field.Name] = err
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", domain.ErrValidation, errs)
	}
	return nil
}

// Sanitize returns a copy of values with the markup of html fields cleaned.
// Other values are shared with the input.
func (c *DocumentCodec) Sanitize(fields []content.Field, values map[string]any) map[string]any {
	out := cloneMap(values)
	for _, field := range fields {
		if c.registry.Lookup(field.Type).Display != fieldtype.DisplayHTML {
			continue
		}
		if html, ok := out[field.Name].(string); ok {
			out[field.Name] = c.sanitizer.Sanitize(html)
		}
	}
	return out
}

// ListColumns is the list-view projection: fields with column > 0 ordered by
// column ascending. The schema itself is not modified.
func ListColumns(fields []content.Field) []content.Field {
	columns := make([]content.Field, 0, len(fields))
	for _, field := range fields {
		if field.Column > 0 {
			columns = append(columns, field)
		}
	}
	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].Column < columns[j].Column
	})
	return columns
}

// Project fills ReferenceItem.Display with the referenced documents'
// values[field] text.
func (c *DocumentCodec) Project(ctx context.Context, bindings []FieldBinding, docs contentRepo.DocumentRepository) error {
	for i := range bindings {
		b := &bindings[i]
		if b.Reference == nil || len(b.References) == 0 {
			continue
		}

		ids := make([]string, 0, len(b.References))
		for _, item := range b.References {
			ids = append(ids, item.ID)
		}
		found, _, err := docs.List(ctx, content.DocumentFilter{
			ClassID: b.Reference.ClassID,
			IDs:     ids,
			Range:   content.Range{End: len(ids) - 1},
		})
		if err != nil {
			return fmt.Errorf("project %s: %w", b.Field.Name, err)
		}

		display := make(map[string]string, len(found))
		for _, doc := range found {
			if v, ok := doc.Values[b.Reference.Field]; ok {
				display[doc.ID] = fmt.Sprint(v)
			}
		}
		for j := range b.References {
			b.References[j].Display = display[b.References[j].ID]
		}
	}
	return nil
}

func (c *DocumentCodec) bind(field content.Field, raw any, present bool) FieldBinding {
	desc := c.registry.Lookup(field.Type)
	b := FieldBinding{
		Field:      field,
		Descriptor: desc,
		Source:     field.Source(),
		Label:      desc.Label(field.Label),
		Present:    present,
		Unknown:    desc.Unknown,
	}

	if desc.Unknown {
		c.logger.Warn("unknown field type, using text binding",
			"field", field.Name,
			"type", field.Type,
		)
		b.Kind = BindingText
		b.Value = raw
		return b
	}

	switch {
	case desc.Upload:
		b.Kind = BindingUpload
		b.PathOverride = desc.PathOverride
	case desc.Reference == fieldtype.ReferenceOne:
		b.Kind = BindingReference
	case desc.Reference == fieldtype.ReferenceMany && desc.Labeled:
		b.Kind = BindingLabeledReferenceList
	case desc.Reference == fieldtype.ReferenceMany:
		b.Kind = BindingReferenceList
	case desc.HasParam(fieldtype.ParamOptions):
		b.Kind = BindingOptions
		b.Options = fieldtype.ParseOptions(field.Options)
	case desc.HasParam(fieldtype.ParamMin):
		b.Kind = BindingScalar
		b.Constraints = &Constraints{
			Min:    field.Min,
			Max:    field.Max,
			Step:   field.Step,
			Format: field.Format,
		}
	default:
		b.Kind = BindingText
	}

	if desc.IsReference() {
		b.Reference = &ReferenceTarget{
			ClassID:    field.ClassID,
			Field:      field.ClassField,
			Collection: "classes/" + field.ClassID + "/documents",
		}
	}

	b.decode(raw)
	return b
}

// decode interprets raw according to Kind, falling back to opaque storage
func (b *FieldBinding) decode(raw any) {
	b.opaque = false
	b.Value = nil
	b.References = nil
	b.File = nil

	if raw == nil {
		return
	}

	switch b.Kind {
	case BindingReference:
		if id, ok := raw.(string); ok {
			b.References = []ReferenceItem{{ID: id}}
			return
		}
	case BindingReferenceList:
		if items, ok := raw.([]any); ok {
			refs := make([]ReferenceItem, 0, len(items))
			for _, item := range items {
				id, ok := item.(string)
				if !ok {
					refs = nil
					break
				}
				refs = append(refs, ReferenceItem{ID: id})
			}
			if refs != nil {
				b.References = refs
				return
			}
		}
	case BindingLabeledReferenceList:
		if items, ok := raw.([]any); ok {
			refs := make([]ReferenceItem, 0, len(items))
			for _, item := range items {
				pair, ok := item.(map[string]any)
				if !ok {
					refs = nil
					break
				}
				id, _ := pair["id"].(string)
				label, _ := pair["label"].(string)
				refs = append(refs, ReferenceItem{ID: id, Label: label, raw: pair})
			}
			if refs != nil {
				b.References = refs
				return
			}
		}
	case BindingUpload:
		switch v := raw.(type) {
		case map[string]any:
			path, _ := v["path"].(string)
			url, _ := v["url"].(string)
			b.File = &FileBinding{Path: path, URL: url, raw: v}
			return
		case *content.PendingFile:
			b.File = &FileBinding{Path: v.Path, Pending: v}
			return
		}
	default:
		b.Value = raw
		return
	}

	b.opaque = true
	b.Value = raw
}

// Raw returns the stored form of the binding and whether the key is present
func (b *FieldBinding) Raw() (any, bool) {
	if !b.Present {
		return nil, false
	}
	if b.opaque {
		return b.Value, true
	}

	switch b.Kind {
	case BindingReference:
		if len(b.References) == 0 {
			return nil, true
		}
		return b.References[0].ID, true
	case BindingReferenceList:
		if b.References == nil {
			return nil, true
		}
		ids := make([]any, 0, len(b.References))
		for _, item := range b.References {
			ids = append(ids, item.ID)
		}
		return ids, true
	case BindingLabeledReferenceList:
		if b.References == nil {
			return nil, true
		}
		pairs := make([]any, 0, len(b.References))
		for _, item := range b.References {
			pair := cloneMap(item.raw)
			if _, had := item.raw["id"]; had || item.ID != "" {
				pair["id"] = item.ID
			}
			if _, had := item.raw["label"]; had || item.Label != "" {
				pair["label"] = item.Label
			}
			pairs = append(pairs, pair)
		}
		return pairs, true
	case BindingUpload:
		if b.File == nil {
			return nil, true
		}
		if pending := b.File.Pending; pending != nil {
			if pending.Path == b.File.Path {
				return pending, true
			}
			moved := *pending
			moved.Path = b.File.Path
			return &moved, true
		}
		ref := cloneMap(b.File.raw)
		if _, had := b.File.raw["path"]; had || b.File.Path != "" {
			ref["path"] = b.File.Path
		}
		if _, had := b.File.raw["url"]; had || b.File.URL != "" {
			ref["url"] = b.File.URL
		}
		return ref, true
	default:
		return b.Value, true
	}
}

// Set replaces the binding's value with a new stored-form value
func (b *FieldBinding) Set(raw any) {
	b.Present = true
	if b.Unknown {
		b.Value = raw
		return
	}
	b.decode(raw)
}

// SetPath overrides the storage path of an image upload
func (b *FieldBinding) SetPath(path string) error {
	if !b.PathOverride {
		return fmt.Errorf("%w: field %s does not accept a path override", domain.ErrValidation, b.Field.Name)
	}
	b.Present = true
	if b.File == nil {
		b.File = &FileBinding{}
	}
	b.File.Path = path
	return nil
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
