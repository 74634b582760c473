package content

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
)

func TestSchemaSession_States(t *testing.T) {
	repo := newMockClassRepo(
		content.Class{ID: "empty", Name: "Empty"},
		content.Class{ID: "posts", Name: "Posts", Fields: []content.Field{{Name: "title", Type: "text", Sort: true}}},
	)
	session := NewSchemaSession(repo, testLogger())

	if got := session.Peek("posts"); got.State != SchemaLoading || got.Ready() {
		t.Errorf("unresolved schema should be loading, got %s", got.State)
	}

	empty, err := session.Resolve(context.Background(), "empty")
	if err != nil {
		t.Fatalf("Resolve empty: %v", err)
	}
	if empty.State != SchemaEmpty || !empty.Ready() {
		t.Errorf("expected empty state, got %s", empty.State)
	}

	posts, err := session.Resolve(context.Background(), "posts")
	if err != nil {
		t.Fatalf("Resolve posts: %v", err)
	}
	if posts.State != SchemaLoaded {
		t.Errorf("expected loaded state, got %s", posts.State)
	}
	if !reflect.DeepEqual(posts.SortFields(), []string{"title"}) {
		t.Errorf("sort fields = %v", posts.SortFields())
	}
	if got := session.Peek("posts"); got.State != SchemaLoaded {
		t.Errorf("peek after resolve = %s", got.State)
	}
}

func TestSchemaSession_FailureNotCached(t *testing.T) {
	repo := newMockClassRepo()
	session := NewSchemaSession(repo, testLogger())

	_, err := session.Resolve(context.Background(), "later")
	if !errors.Is(err, domain.ErrSchemaUnresolved) || !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected unresolved + not found, got %v", err)
	}
	if got := session.Peek("later"); got.State != SchemaLoading {
		t.Errorf("failed resolve should leave loading state, got %s", got.State)
	}

	repo.classes["later"] = content.Class{ID: "later", Name: "Later"}
	if _, err := session.Resolve(context.Background(), "later"); err != nil {
		t.Errorf("retry after failure: %v", err)
	}
}

func TestSchemaSession_CachesAndInvalidates(t *testing.T) {
	repo := newMockClassRepo(content.Class{ID: "posts", Name: "Posts"})
	session := NewSchemaSession(repo, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := session.Resolve(context.Background(), "posts"); err != nil {
				t.Errorf("Resolve: %v", err)
			}
		}()
	}
	wg.Wait()

	if repo.getCount() > 10 || repo.getCount() < 1 {
		t.Fatalf("unexpected fetch count %d", repo.getCount())
	}
	before := repo.getCount()
	session.Resolve(context.Background(), "posts")
	if repo.getCount() != before {
		t.Error("cached schema fetched again")
	}

	session.Invalidate("posts")
	session.Resolve(context.Background(), "posts")
	if repo.getCount() != before+1 {
		t.Error("invalidated schema was not refetched")
	}
}

func TestSchemaSession_Ancestors(t *testing.T) {
	repo := newMockClassRepo(
		content.Class{ID: "site", Name: "Site"},
		content.Class{ID: "section", Name: "Section", ParentID: "site"},
		content.Class{ID: "page", Name: "Page", ParentID: "section"},
		content.Class{ID: "loop-a", Name: "A", ParentID: "loop-b"},
		content.Class{ID: "loop-b", Name: "B", ParentID: "loop-a"},
	)
	session := NewSchemaSession(repo, testLogger())

	page, err := session.Resolve(context.Background(), "page")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if page.ParentClassID != "section" {
		t.Errorf("parent class = %q", page.ParentClassID)
	}
	if !reflect.DeepEqual(page.Ancestors, []string{"section", "site"}) {
		t.Errorf("ancestors = %v", page.Ancestors)
	}

	loop, err := session.Resolve(context.Background(), "loop-a")
	if err != nil {
		t.Fatalf("cycle should not fail resolution: %v", err)
	}
	if !reflect.DeepEqual(loop.Ancestors, []string{"loop-b"}) {
		t.Errorf("cycle ancestors = %v", loop.Ancestors)
	}
}
