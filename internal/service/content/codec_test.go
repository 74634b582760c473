package content

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
)

func postFields() []content.Field {
	return []content.Field{
		{Name: "title", Label: "Title", Type: "text", Column: 1},
		{Name: "published", Label: "Published", Type: "date", Min: "2000-01-01"},
		{Name: "rating", Label: "Rating", Type: "number", Min: "0", Max: "5"},
		{Name: "status", Label: "Status", Type: "select-static", Options: "draft|Draft\npublished|Published"},
		{Name: "author", Label: "Author", Type: "select-class", ClassID: "authors", ClassField: "name"},
		{Name: "tags", Label: "Tags", Type: "multi-class", ClassID: "tags", ClassField: "title"},
		{Name: "credits", Label: "Credits", Type: "multi-select-label", ClassID: "authors", ClassField: "name"},
		{Name: "cover", Label: "Cover", Type: "image-upload"},
		{Name: "body", Label: "Body", Type: "tiny"},
	}
}

func TestRoundTrip(t *testing.T) {
	codec := testCodec()

	tests := []struct {
		name   string
		values map[string]any
	}{
		{
			name:   "empty",
			values: map[string]any{},
		},
		{
			name: "every kind",
			values: map[string]any{
				"title":     "Hello",
				"published": "2024-05-01",
				"rating":    float64(4),
				"status":    "draft",
				"author":    "a1",
				"tags":      []any{"t1", "t2"},
				"credits": []any{
					map[string]any{"id": "a1", "label": "Writer"},
					map[string]any{"id": "a2", "label": ""},
				},
				"cover": map[string]any{"path": "a.jpg", "url": "https://static.example.com/a.jpg"},
				"body":  "<p>hi</p>",
			},
		},
		{
			name: "partial with nulls",
			values: map[string]any{
				"title":  "Only title",
				"author": nil,
				"tags":   []any{},
			},
		},
		{
			name: "extra keys on objects are kept",
			values: map[string]any{
				"cover":   map[string]any{"path": "b.png", "url": "u", "width": float64(640)},
				"credits": []any{map[string]any{"id": "a1", "note": "x"}},
			},
		},
		{
			name: "labeled pair without id",
			values: map[string]any{
				"credits": []any{
					map[string]any{"label": "Editor"},
					map[string]any{"id": "a1"},
				},
			},
		},
		{
			name: "mismatched shapes survive",
			values: map[string]any{
				"tags":   "not-a-list",
				"author": float64(12),
				"cover":  "legacy-string",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bindings := codec.ToEditable(postFields(), tt.values)
			got := codec.FromEditable(bindings)
			if !reflect.DeepEqual(got, tt.values) {
				t.Errorf("round trip mismatch\n got: %#v\nwant: %#v", got, tt.values)
			}
		})
	}
}

func TestToEditable_Kinds(t *testing.T) {
	codec := testCodec()
	bindings := codec.ToEditable(postFields(), map[string]any{})

	want := map[string]BindingKind{
		"title":     BindingText,
		"published": BindingScalar,
		"rating":    BindingScalar,
		"status":    BindingOptions,
		"author":    BindingReference,
		"tags":      BindingReferenceList,
		"credits":   BindingLabeledReferenceList,
		"cover":     BindingUpload,
		"body":      BindingText,
	}
	if len(bindings) != len(want) {
		t.Fatalf("expected %d bindings, got %d", len(want), len(bindings))
	}
	for _, b := range bindings {
		if b.Kind != want[b.Field.Name] {
			t.Errorf("%s: expected kind %s, got %s", b.Field.Name, want[b.Field.Name], b.Kind)
		}
		if b.Source != "values."+b.Field.Name {
			t.Errorf("%s: unexpected source %q", b.Field.Name, b.Source)
		}
		if b.Present {
			t.Errorf("%s: absent value reported present", b.Field.Name)
		}
	}

	rating := bindings[2]
	if rating.Constraints == nil || rating.Constraints.Min != "0" || rating.Constraints.Max != "5" {
		t.Errorf("rating constraints not attached: %+v", rating.Constraints)
	}
	status := bindings[3]
	if len(status.Options) != 2 || status.Options[1].Key != "published" {
		t.Errorf("status options not parsed: %+v", status.Options)
	}
	author := bindings[4]
	if author.Reference == nil || author.Reference.Collection != "classes/authors/documents" || author.Reference.Field != "name" {
		t.Errorf("author reference target wrong: %+v", author.Reference)
	}
	if !bindings[7].PathOverride {
		t.Error("image-upload should expose a path override")
	}
}

func TestToEditable_UnknownType(t *testing.T) {
	codec := testCodec()
	fields := []content.Field{{Name: "mystery", Label: "Mystery", Type: "bogus"}}
	values := map[string]any{"mystery": map[string]any{"kept": true}}

	bindings := codec.ToEditable(fields, values)
	if len(bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(bindings))
	}
	b := bindings[0]
	if b.Kind != BindingText {
		t.Errorf("expected text binding, got %s", b.Kind)
	}
	if !b.Unknown {
		t.Error("expected binding to be flagged unknown")
	}
	if !strings.Contains(b.Label, "bogus") {
		t.Errorf("label %q does not mention the type tag", b.Label)
	}
	if got := codec.FromEditable(bindings); !reflect.DeepEqual(got, values) {
		t.Errorf("unknown type value not preserved: %#v", got)
	}
}

func TestFieldBinding_Edits(t *testing.T) {
	codec := testCodec()
	bindings := codec.ToEditable(postFields(), map[string]any{
		"tags":  []any{"t1"},
		"cover": map[string]any{"path": "a.jpg", "url": "u"},
	})

	bindings[0].Set("New title")
	bindings[5].Set([]any{"t1", "t3"})
	if err := bindings[7].SetPath("covers/a.jpg"); err != nil {
		t.Fatalf("SetPath: %v", err)
	}
	if err := bindings[0].SetPath("x"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for path override on text, got %v", err)
	}

	got := codec.FromEditable(bindings)
	want := map[string]any{
		"title": "New title",
		"tags":  []any{"t1", "t3"},
		"cover": map[string]any{"path": "covers/a.jpg", "url": "u"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("edits not folded back\n got: %#v\nwant: %#v", got, want)
	}
}

func TestListColumns(t *testing.T) {
	fields := []content.Field{
		{Name: "a", Column: 0},
		{Name: "b", Column: 3},
		{Name: "c", Column: 1},
		{Name: "d", Column: 0},
		{Name: "e", Column: 2},
	}

	columns := ListColumns(fields)

	var got []int
	var names []string
	for _, f := range columns {
		got = append(got, f.Column)
		names = append(names, f.Name)
	}
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("expected columns [1 2 3], got %v", got)
	}
	if !reflect.DeepEqual(names, []string{"c", "e", "b"}) {
		t.Errorf("expected names [c e b], got %v", names)
	}
	if fields[1].Name != "b" {
		t.Error("input fields were reordered")
	}
}

func TestValidate(t *testing.T) {
	codec := testCodec()

	tests := []struct {
		name    string
		values  map[string]any
		wantErr bool
	}{
		{name: "valid", values: map[string]any{"title": "x", "rating": float64(3), "status": "draft"}},
		{name: "rating above max", values: map[string]any{"rating": float64(9)}, wantErr: true},
		{name: "unknown option", values: map[string]any{"status": "archived"}, wantErr: true},
		{name: "bad date", values: map[string]any{"published": "yesterday"}, wantErr: true},
		{name: "tags not a list", values: map[string]any{"tags": "t1"}, wantErr: true},
		{name: "pending upload accepted", values: map[string]any{"cover": &content.PendingFile{Title: "a.jpg", Body: strings.NewReader("x")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := codec.Validate(postFields(), tt.values)
			if tt.wantErr && !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestProject(t *testing.T) {
	codec := testCodec()
	docs := newMockDocumentRepo(
		content.Document{ID: "a1", ClassID: "authors", Values: map[string]any{"name": "Ada"}},
		content.Document{ID: "a2", ClassID: "authors", Values: map[string]any{"name": "Grace"}},
	)
	bindings := codec.ToEditable(postFields(), map[string]any{
		"author":  "a2",
		"credits": []any{map[string]any{"id": "a1", "label": "Writer"}, map[string]any{"id": "missing"}},
	})

	if err := codec.Project(context.Background(), bindings, docs); err != nil {
		t.Fatalf("Project: %v", err)
	}

	if got := bindings[4].References[0].Display; got != "Grace" {
		t.Errorf("author display = %q, want Grace", got)
	}
	credits := bindings[6].References
	if credits[0].Display != "Ada" || credits[0].Label != "Writer" {
		t.Errorf("credit 0 = %+v", credits[0])
	}
	if credits[1].Display != "" {
		t.Errorf("missing reference should have no display, got %q", credits[1].Display)
	}
}

func TestSanitize(t *testing.T) {
	codec := testCodec()
	values := map[string]any{
		"title": "<b>kept as typed</b>",
		"body":  `<p onclick="x()">Hi</p><script>alert(1)</script>`,
	}

	got := codec.Sanitize(postFields(), values)

	if got["body"] != "<p>Hi</p>" {
		t.Errorf("body = %q", got["body"])
	}
	if got["title"] != "<b>kept as typed</b>" {
		t.Errorf("non-html field changed: %q", got["title"])
	}
	if values["body"] == got["body"] {
		t.Error("input map was modified")
	}
}
