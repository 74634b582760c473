package content

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
)

type documentFixture struct {
	classes   *mockClassRepo
	docs      *mockDocumentRepo
	templates *mockTemplateRepo
	signer    *mockSigner
	svc       contentSvc.DocumentService
}

func newDocumentFixture() *documentFixture {
	f := &documentFixture{
		classes: newMockClassRepo(
			content.Class{ID: "posts", Name: "Posts", Fields: []content.Field{
				{Name: "title", Label: "Title", Type: "text", Column: 1, Sort: true},
				{Name: "cover", Label: "Cover", Type: "image-upload", Column: 2},
			}},
			content.Class{ID: "comments", Name: "Comments", ParentID: "posts", Fields: []content.Field{
				{Name: "body", Label: "Body", Type: "textarea"},
			}},
		),
		docs:      newMockDocumentRepo(),
		templates: newMockTemplateRepo(),
		signer:    &mockSigner{},
	}
	uploads := NewUploadCoordinator(f.signer, newMockTransferer(), time.Minute, testLogger())
	f.svc = NewDocumentService(f.docs, f.classes, f.templates, testCodec(), uploads, testLogger())
	return f
}

func TestCreateDocument_PostsWithCover(t *testing.T) {
	f := newDocumentFixture()

	doc, err := f.svc.CreateDocument(context.Background(), "posts", &contentSvc.DocumentRequest{
		Values: map[string]any{
			"title": "Hello",
			"cover": &content.PendingFile{Title: "a.jpg", Body: strings.NewReader("JPEG")},
		},
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	stored, err := f.docs.GetByID(context.Background(), "posts", doc.ID)
	if err != nil {
		t.Fatalf("stored document not found: %v", err)
	}
	cover, ok := stored.Values["cover"].(map[string]any)
	if !ok {
		t.Fatalf("cover not stored as a reference: %#v", stored.Values["cover"])
	}
	if cover["path"] != "a.jpg" {
		t.Errorf("cover path = %v, want a.jpg", cover["path"])
	}
	if url, _ := cover["url"].(string); url == "" {
		t.Error("cover url is empty")
	}
	if stored.Values["title"] != "Hello" {
		t.Errorf("title = %v", stored.Values["title"])
	}
}

func TestCreateDocument_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		classID string
		req     *contentSvc.DocumentRequest
		wantErr error
	}{
		{
			name:    "unknown class",
			classID: "nope",
			req:     &contentSvc.DocumentRequest{Values: map[string]any{}},
			wantErr: domain.ErrSchemaUnresolved,
		},
		{
			name:    "bad value",
			classID: "posts",
			req:     &contentSvc.DocumentRequest{Values: map[string]any{"title": 42}},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "parent on a root class",
			classID: "posts",
			req:     &contentSvc.DocumentRequest{ParentID: "x", Values: map[string]any{}},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "missing parent document",
			classID: "comments",
			req:     &contentSvc.DocumentRequest{ParentID: "missing", Values: map[string]any{}},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "missing template",
			classID: "posts",
			req:     &contentSvc.DocumentRequest{TemplateID: "missing", Values: map[string]any{}},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "path with spaces",
			classID: "posts",
			req:     &contentSvc.DocumentRequest{Path: "/a b", Values: map[string]any{}},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture()
			_, err := f.svc.CreateDocument(context.Background(), tt.classID, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(f.docs.docs) != 0 {
				t.Error("document written despite error")
			}
		})
	}
}

func TestCreateDocument_UploadFailureBlocksWrite(t *testing.T) {
	f := newDocumentFixture()
	f.signer.fail = true

	_, err := f.svc.CreateDocument(context.Background(), "posts", &contentSvc.DocumentRequest{
		Values: map[string]any{"cover": &content.PendingFile{Title: "a.jpg", Body: strings.NewReader("x")}},
	})
	if !errors.Is(err, domain.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if len(f.docs.docs) != 0 {
		t.Error("document written despite upload failure")
	}
}

func TestUpdateDocument_UnchangedCoverNotUploaded(t *testing.T) {
	f := newDocumentFixture()
	cover := map[string]any{"path": "a.jpg", "url": "https://static.example.com/a.jpg"}
	f.docs.docs["d1"] = content.Document{ID: "d1", ClassID: "posts", Version: 1, Values: map[string]any{"title": "Old", "cover": cover}}

	doc, err := f.svc.UpdateDocument(context.Background(), "posts", "d1", &contentSvc.DocumentRequest{
		Values: map[string]any{"title": "New", "cover": &content.PendingFile{Path: "a.jpg"}},
	})
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if f.signer.requestCount() != 0 {
		t.Errorf("expected no uploads, got %d", f.signer.requestCount())
	}
	if doc.Values["title"] != "New" || doc.Version != 2 {
		t.Errorf("unexpected document: %+v", doc)
	}
	got := f.docs.updates[0].Values["cover"].(map[string]any)
	if got["path"] != cover["path"] || got["url"] != cover["url"] {
		t.Errorf("cover changed: %#v", got)
	}
}

func TestListDocuments_SortableFields(t *testing.T) {
	f := newDocumentFixture()

	_, _, err := f.svc.ListDocuments(context.Background(), content.DocumentFilter{
		ClassID: "posts",
		Sort:    content.DocumentSort{Field: "cover"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("sorting on a non-sortable field: expected validation error, got %v", err)
	}

	for _, field := range []string{"title", "created"} {
		if _, _, err := f.svc.ListDocuments(context.Background(), content.DocumentFilter{
			ClassID: "posts",
			Sort:    content.DocumentSort{Field: field},
		}); err != nil {
			t.Errorf("sort by %s: %v", field, err)
		}
	}
}

func TestFormService(t *testing.T) {
	f := newDocumentFixture()
	f.docs.docs["d1"] = content.Document{ID: "d1", ClassID: "posts", Values: map[string]any{"title": "Hi", "legacy": "x"}}
	forms := NewFormService(f.classes, f.docs, testCodec(), testLogger())

	form, err := forms.Form(context.Background(), "posts", "d1")
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if len(form.Bindings) != 2 || form.Bindings[0].Value != "Hi" {
		t.Errorf("unexpected bindings: %+v", form.Bindings)
	}
	if form.Orphans["legacy"] != "x" {
		t.Errorf("orphaned value not reported: %v", form.Orphans)
	}

	columns, err := forms.Columns(context.Background(), "posts")
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if len(columns) != 2 || columns[0].Name != "title" {
		t.Errorf("unexpected columns: %+v", columns)
	}
}
