package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(filepath.Join(t.TempDir(), "boneless_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClassRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewClassRepository(openTestDB(t), discardLogger())

	parent := &content.Class{Name: "Authors", Fields: []content.Field{{Name: "name", Label: "Name", Type: "text", Column: 1}}}
	if err := repo.Create(ctx, parent); err != nil {
		t.Fatalf("create parent: %v", err)
	}
	child := &content.Class{Name: "Books", ParentID: parent.ID}
	if err := repo.Create(ctx, child); err != nil {
		t.Fatalf("create child: %v", err)
	}

	got, err := repo.GetByID(ctx, parent.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Authors" || len(got.Fields) != 1 || got.Fields[0].Column != 1 {
		t.Errorf("unexpected class: %+v", got)
	}
	if got.Created.IsZero() {
		t.Error("created timestamp not stored")
	}

	root := ""
	roots, rng, err := repo.List(ctx, content.ClassFilter{ParentID: &root})
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	if len(roots) != 1 || roots[0].ID != parent.ID || rng.Size != 1 {
		t.Errorf("roots = %+v (range %+v)", roots, rng)
	}

	page, rng, err := repo.List(ctx, content.ClassFilter{Range: content.Range{Start: 1, End: 1}})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].Name != "Books" || rng.Size != 2 || rng.ContentRange("classes") != "classes 1-1/2" {
		t.Errorf("second page = %+v, range %+v", page, rng)
	}

	child.Name = "Novels"
	if err := repo.Update(ctx, child); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, _ := repo.GetByID(ctx, child.ID); got.Name != "Novels" || got.ParentID != parent.ID {
		t.Errorf("update not stored: %+v", got)
	}

	if err := repo.Delete(ctx, child.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, child.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if err := repo.Delete(ctx, child.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found deleting twice, got %v", err)
	}
}

func TestDocumentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(openTestDB(t), discardLogger())

	titles := []string{"Charlie", "alpha", "Bravo"}
	var ids []string
	for i, title := range titles {
		doc := &content.Document{
			ClassID: "posts",
			Values:  map[string]any{"title": title, "rank": float64(i)},
		}
		if i == 0 {
			doc.Path = "/charlie"
		}
		if err := repo.Create(ctx, doc); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		ids = append(ids, doc.ID)
	}

	t.Run("get by path", func(t *testing.T) {
		doc, err := repo.GetByPath(ctx, "/charlie")
		if err != nil {
			t.Fatalf("GetByPath: %v", err)
		}
		if doc.Values["title"] != "Charlie" {
			t.Errorf("wrong document: %+v", doc)
		}
	})

	t.Run("duplicate path", func(t *testing.T) {
		err := repo.Create(ctx, &content.Document{ClassID: "posts", Path: "/charlie"})
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) || conflict.ResourceID != ids[0] {
			t.Errorf("expected conflict with %s, got %v", ids[0], err)
		}
	})

	t.Run("wrong class", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, "pages", ids[0]); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("sort by value", func(t *testing.T) {
		docs, _, err := repo.List(ctx, content.DocumentFilter{
			ClassID: "posts",
			Sort:    content.DocumentSort{Field: "rank", Direction: "DESC"},
		})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(docs) != 3 || docs[0].Values["title"] != "Bravo" || docs[2].Values["title"] != "Charlie" {
			t.Errorf("unexpected order: %v", docs)
		}
	})

	t.Run("query and ids", func(t *testing.T) {
		docs, rng, err := repo.List(ctx, content.DocumentFilter{ClassID: "posts", Query: "alpha"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(docs) != 1 || rng.Size != 1 {
			t.Errorf("query matched %d documents", len(docs))
		}

		docs, _, err = repo.List(ctx, content.DocumentFilter{ClassID: "posts", IDs: ids[1:]})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(docs) != 2 {
			t.Errorf("ids matched %d documents", len(docs))
		}
	})

	t.Run("update bumps version", func(t *testing.T) {
		doc, _ := repo.GetByID(ctx, "posts", ids[1])
		doc.Values["title"] = "Alpha"
		doc.Values["cover"] = map[string]any{"path": "a.jpg", "url": "https://static.example.com/a.jpg"}
		if err := repo.Update(ctx, doc); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if doc.Version != 2 {
			t.Errorf("version = %d, want 2", doc.Version)
		}
		stored, _ := repo.GetByID(ctx, "posts", ids[1])
		cover, ok := stored.Values["cover"].(map[string]any)
		if !ok || cover["path"] != "a.jpg" {
			t.Errorf("cover not stored: %#v", stored.Values["cover"])
		}
	})
}

func TestTransactionManager(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewTemplateRepository(db, discardLogger())
	tm := NewTransactionManager(db, discardLogger())

	boom := errors.New("boom")
	err := tm.ExecTx(ctx, func(txCtx context.Context) error {
		if err := repo.Create(txCtx, &content.Template{Name: "Rolled back"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if list, _, _ := repo.List(ctx, content.TemplateFilter{}); len(list) != 0 {
		t.Errorf("rolled back template persisted: %+v", list)
	}

	err = tm.ExecTx(ctx, func(txCtx context.Context) error {
		tmpl := &content.Template{Name: "Kept", Body: "x"}
		if err := repo.Create(txCtx, tmpl); err != nil {
			return err
		}
		tmpl.Body = "y"
		return repo.Update(txCtx, tmpl)
	})
	if err != nil {
		t.Fatalf("ExecTx: %v", err)
	}
	list, _, _ := repo.List(ctx, content.TemplateFilter{Query: "kep"})
	if len(list) != 1 || list[0].Body != "y" || list[0].Version != 2 {
		t.Errorf("committed template wrong: %+v", list)
	}
}
