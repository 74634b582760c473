package fieldtype

import (
	"testing"

	"github.com/jbaikge/boneless/internal/domain/models/content"
)

func TestValidateValue(t *testing.T) {
	r := MustNewRegistry()

	tests := []struct {
		name    string
		field   content.Field
		value   any
		wantErr bool
	}{
		{name: "nil always valid", field: content.Field{Type: "number"}, value: nil},
		{name: "text string", field: content.Field{Type: "text"}, value: "Hello"},
		{name: "text number rejected", field: content.Field{Type: "text"}, value: 12.0, wantErr: true},
		{name: "number in range", field: content.Field{Type: "number", Min: "0", Max: "10"}, value: 5.0},
		{name: "number below min", field: content.Field{Type: "number", Min: "0"}, value: -1.0, wantErr: true},
		{name: "number above max", field: content.Field{Type: "number", Max: "10"}, value: 11.0, wantErr: true},
		{name: "number numeric string", field: content.Field{Type: "number"}, value: "3.5"},
		{name: "number garbage", field: content.Field{Type: "number"}, value: "three", wantErr: true},
		{name: "date", field: content.Field{Type: "date"}, value: "2024-02-29"},
		{name: "date invalid", field: content.Field{Type: "date"}, value: "29/02/2024", wantErr: true},
		{name: "datetime local", field: content.Field{Type: "datetime"}, value: "2024-02-29T10:30"},
		{name: "datetime rfc3339", field: content.Field{Type: "datetime"}, value: "2024-02-29T10:30:00Z"},
		{name: "time", field: content.Field{Type: "time"}, value: "10:30"},
		{name: "time invalid", field: content.Field{Type: "time"}, value: "25:99", wantErr: true},
		{name: "email", field: content.Field{Type: "email"}, value: "editor@example.com"},
		{name: "email invalid", field: content.Field{Type: "email"}, value: "not-an-email", wantErr: true},
		{name: "static option", field: content.Field{Type: "select-static", Options: "a|A\nb|B"}, value: "b"},
		{name: "static option missing", field: content.Field{Type: "select-static", Options: "a|A\nb|B"}, value: "c", wantErr: true},
		{name: "select-class id", field: content.Field{Type: "select-class"}, value: "doc-1"},
		{name: "select-class list rejected", field: content.Field{Type: "select-class"}, value: []any{"doc-1"}, wantErr: true},
		{name: "multi-class ids", field: content.Field{Type: "multi-class"}, value: []any{"doc-1", "doc-2"}},
		{name: "multi-class objects rejected", field: content.Field{Type: "multi-class"}, value: []any{map[string]any{"id": "x"}}, wantErr: true},
		{name: "multi-select-label pairs", field: content.Field{Type: "multi-select-label"}, value: []any{map[string]any{"id": "doc-1", "label": "Lead"}}},
		{name: "multi-select-label bare ids rejected", field: content.Field{Type: "multi-select-label"}, value: []any{"doc-1"}, wantErr: true},
		{name: "upload ref", field: content.Field{Type: "image-upload"}, value: map[string]any{"path": "a.jpg", "url": "https://cdn/a.jpg"}},
		{name: "upload pending", field: content.Field{Type: "any-upload"}, value: &content.PendingFile{Title: "a.pdf"}},
		{name: "upload scalar rejected", field: content.Field{Type: "any-upload"}, value: "a.pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateValue(r.Lookup(tt.field.Type), tt.field, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateValue() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	r := MustNewRegistry()

	tests := []struct {
		tag   string
		value any
		want  string
	}{
		{tag: "text", value: "Hello", want: "Hello"},
		{tag: "number", value: 3.0, want: "3"},
		{tag: "date", value: "2024-02-29T00:00:00Z", want: "2024-02-29"},
		{tag: "datetime", value: "2024-02-29T10:30", want: "2024-02-29 10:30"},
		{tag: "image-upload", value: map[string]any{"path": "a.jpg", "url": "https://cdn/a.jpg"}, want: "https://cdn/a.jpg"},
		{tag: "multi-select-label", value: []any{map[string]any{"id": "a"}, map[string]any{"id": "b"}}, want: "a, b"},
		{tag: "bogus", value: 42.0, want: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := Format(r.Lookup(tt.tag), tt.value); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}
