package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	"github.com/jbaikge/boneless/internal/domain/repositories"
	"github.com/jbaikge/boneless/internal/fieldtype"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCodec() *DocumentCodec {
	return NewDocumentCodec(fieldtype.MustNewRegistry(), testLogger())
}

// mockTxManager runs fn without a transaction
type mockTxManager struct{}

func (mockTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// mockClassRepo is an in-memory ClassRepository
type mockClassRepo struct {
	mu       sync.Mutex
	classes  map[string]content.Class
	order    []string
	nextID   int
	gets     int
	failName string // Create fails for classes with this name
}

func newMockClassRepo(classes ...content.Class) *mockClassRepo {
	m := &mockClassRepo{classes: map[string]content.Class{}}
	for _, c := range classes {
		m.classes[c.ID] = c
		m.order = append(m.order, c.ID)
	}
	return m
}

func (m *mockClassRepo) Create(ctx context.Context, class *content.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failName != "" && class.Name == m.failName {
		return errors.New("gateway unavailable")
	}
	m.nextID++
	class.ID = fmt.Sprintf("class-%d", m.nextID)
	m.classes[class.ID] = *class
	m.order = append(m.order, class.ID)
	return nil
}

func (m *mockClassRepo) GetByID(ctx context.Context, id string) (*content.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	c, ok := m.classes[id]
	if !ok {
		return nil, fmt.Errorf("class %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (m *mockClassRepo) List(ctx context.Context, filter content.ClassFilter) ([]content.Class, content.Range, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []content.Class
	for _, id := range m.order {
		if c, ok := m.classes[id]; ok {
			all = append(all, c)
		}
	}
	return pageOf(all, filter.Range)
}

func (m *mockClassRepo) Update(ctx context.Context, class *content.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[class.ID]; !ok {
		return domain.ErrNotFound
	}
	m.classes[class.ID] = *class
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.classes, id)
	return nil
}

func (m *mockClassRepo) getCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

// mockDocumentRepo is an in-memory DocumentRepository
type mockDocumentRepo struct {
	mu      sync.Mutex
	docs    map[string]content.Document
	nextID  int
	updates []content.Document
}

func newMockDocumentRepo(docs ...content.Document) *mockDocumentRepo {
	m := &mockDocumentRepo{docs: map[string]content.Document{}}
	for _, d := range docs {
		m.docs[d.ID] = d
	}
	return m
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *content.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	doc.ID = fmt.Sprintf("doc-%d", m.nextID)
	doc.Version = 1
	m.docs[doc.ID] = *doc
	return nil
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, classID, id string) (*content.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.ClassID != classID {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return &d, nil
}

func (m *mockDocumentRepo) GetByPath(ctx context.Context, path string) (*content.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.Path == path {
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentRepo) List(ctx context.Context, filter content.DocumentFilter) ([]content.Document, content.Range, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range filter.IDs {
		want[id] = true
	}
	var out []content.Document
	for _, d := range m.docs {
		if d.ClassID != filter.ClassID {
			continue
		}
		if len(want) > 0 && !want[d.ID] {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return pageOf(out, filter.Range)
}

func (m *mockDocumentRepo) Update(ctx context.Context, doc *content.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.Version++
	m.docs[doc.ID] = *doc
	m.updates = append(m.updates, *doc)
	return nil
}

func (m *mockDocumentRepo) Delete(ctx context.Context, classID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

// mockTemplateRepo is an in-memory TemplateRepository
type mockTemplateRepo struct {
	mu        sync.Mutex
	templates map[string]content.Template
	order     []string
	nextID    int
	failName  string
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{templates: map[string]content.Template{}}
}

func (m *mockTemplateRepo) Create(ctx context.Context, tmpl *content.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failName != "" && tmpl.Name == m.failName {
		return errors.New("gateway unavailable")
	}
	m.nextID++
	tmpl.ID = fmt.Sprintf("tmpl-%d", m.nextID)
	m.templates[tmpl.ID] = *tmpl
	m.order = append(m.order, tmpl.ID)
	return nil
}

func (m *mockTemplateRepo) GetByID(ctx context.Context, id string) (*content.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *mockTemplateRepo) List(ctx context.Context, filter content.TemplateFilter) ([]content.Template, content.Range, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []content.Template
	for _, id := range m.order {
		all = append(all, m.templates[id])
	}
	return pageOf(all, filter.Range)
}

func (m *mockTemplateRepo) Update(ctx context.Context, tmpl *content.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tmpl.Version++
	m.templates[tmpl.ID] = *tmpl
	return nil
}

func (m *mockTemplateRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.templates, id)
	return nil
}

func pageOf[T any](all []T, r content.Range) ([]T, content.Range, error) {
	r = r.OrDefault()
	if r.Start >= len(all) {
		return []T{}, r.Resolved(0, len(all)), nil
	}
	end := r.End + 1
	if end > len(all) {
		end = len(all)
	}
	page := all[r.Start:end]
	return page, r.Resolved(len(page), len(all)), nil
}

// mockSigner records sign requests and hands out fixed locations
type mockSigner struct {
	mu       sync.Mutex
	requests []content.UploadRequest
	fail     bool
}

func (m *mockSigner) SignUpload(ctx context.Context, req content.UploadRequest) (*content.UploadDescriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.fail {
		return nil, errors.New("signing refused")
	}
	return &content.UploadDescriptor{
		URL:      "https://bucket.example.com/" + req.Key + "?sig=abc",
		Method:   "PUT",
		Location: "https://static.example.com/" + req.Key,
	}, nil
}

func (m *mockSigner) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// mockTransferer records transfers; failKey makes one key fail
type mockTransferer struct {
	mu      sync.Mutex
	bodies  map[string][]byte
	failKey string
}

func newMockTransferer() *mockTransferer {
	return &mockTransferer{bodies: map[string][]byte{}}
}

func (m *mockTransferer) Transfer(ctx context.Context, desc *content.UploadDescriptor, contentType string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failKey != "" && desc.Location == "https://static.example.com/"+m.failKey {
		return errors.New("connection reset")
	}
	m.bodies[desc.Location] = body
	return nil
}
