package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
	"github.com/jbaikge/boneless/internal/fieldtype"
	"github.com/jbaikge/boneless/internal/handler"
	"github.com/jbaikge/boneless/internal/repository/sqlite"
	serviceContent "github.com/jbaikge/boneless/internal/service/content"
	"github.com/jbaikge/boneless/internal/storage/local"
	"github.com/jbaikge/boneless/internal/storage/transfer"
)

// newGateway starts a sqlite-backed gateway with local uploads
func newGateway(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlite.RunMigrations(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	registry, err := fieldtype.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store, err := local.NewStore(t.TempDir(), srv.URL, nil, time.Minute, logger)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	store.Register(mux)

	classRepo := sqlite.NewClassRepository(db, logger)
	docRepo := sqlite.NewDocumentRepository(db, logger)
	templateRepo := sqlite.NewTemplateRepository(db, logger)
	codec := serviceContent.NewDocumentCodec(registry, logger)
	uploads := serviceContent.NewUploadCoordinator(store, transfer.NewHTTPTransferer(srv.Client(), logger), time.Minute, logger)

	handlers := &handler.Handlers{
		Classes:   handler.NewClassHandler(serviceContent.NewClassService(classRepo, sqlite.NewTransactionManager(db, logger), registry, logger), logger),
		Documents: handler.NewDocumentHandler(serviceContent.NewDocumentService(docRepo, classRepo, templateRepo, codec, uploads, logger), logger),
		Templates: handler.NewTemplateHandler(serviceContent.NewTemplateService(templateRepo, logger), logger),
		Files:     handler.NewFileHandler(store, time.Minute, logger),
		Imports: handler.NewImportHandler(
			serviceContent.NewImportService(classRepo, templateRepo, registry, logger),
			serviceContent.NewExportService(classRepo, templateRepo, logger),
			logger,
		),
		Forms: handler.NewFormHandler(serviceContent.NewFormService(classRepo, docRepo, codec, logger), logger),
	}
	handlers.Register(mux)
	return srv
}

// run executes the CLI against gateway with stdin and returns stdout and stderr
func run(t *testing.T, gateway, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(gateway, strings.NewReader(stdin), &out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

const classBatch = `[
  {"id": "old-root", "name": "Authors", "fields": [{"type": "text", "name": "name", "label": "Name", "column": 1}]},
  {"id": "old-child", "parent_id": "old-root", "name": "Posts", "fields": [
    {"type": "text", "name": "title", "label": "Title", "sort": true, "column": 1},
    {"type": "any-upload", "name": "cover", "label": "Cover"}
  ]}
]`

func TestClassesImportExport(t *testing.T) {
	srv := newGateway(t)

	out, errOut, err := run(t, srv.URL, classBatch, "classes", "import")
	if err != nil {
		t.Fatalf("import: %v (%s)", err, errOut)
	}
	var result contentSvc.ImportResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode result %q: %v", out, err)
	}
	if result.Created != 2 || result.Waves != 2 || result.IDMap["old-root"] == "" {
		t.Errorf("unexpected result %+v", result)
	}
	if !strings.Contains(errOut, "classes: 2 total") {
		t.Errorf("refresh not reported, stderr %q", errOut)
	}

	file := filepath.Join(t.TempDir(), "classes.json")
	if _, errOut, err := run(t, srv.URL, "", "classes", "export", "-o", file); err != nil {
		t.Fatalf("export: %v (%s)", err, errOut)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var exported []content.Class
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(exported) != 2 {
		t.Fatalf("exported %d classes", len(exported))
	}
	for _, class := range exported {
		if class.Name == "Posts" && class.ParentID != result.IDMap["old-root"] {
			t.Errorf("parent not remapped: %q", class.ParentID)
		}
	}

	// the export imports again from a file argument
	if _, errOut, err := run(t, srv.URL, "", "classes", "import", file); err != nil {
		t.Fatalf("reimport: %v (%s)", err, errOut)
	}
}

func TestTemplatesImport(t *testing.T) {
	srv := newGateway(t)

	out, errOut, err := run(t, srv.URL, `[{"id": "t1", "name": "Post"}]`, "templates", "import", "-")
	if err != nil {
		t.Fatalf("import: %v (%s)", err, errOut)
	}
	if !strings.Contains(out, `"t1"`) || !strings.Contains(errOut, "templates: 1 total") {
		t.Errorf("stdout %q stderr %q", out, errOut)
	}

	out, _, err = run(t, srv.URL, "", "templates", "export")
	if err != nil || !strings.Contains(out, `"Post"`) {
		t.Errorf("export %q, %v", out, err)
	}
}

func TestDocumentsCreate(t *testing.T) {
	srv := newGateway(t)

	out, _, err := run(t, srv.URL, classBatch, "classes", "import")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	var result contentSvc.ImportResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}

	cover := filepath.Join(t.TempDir(), "cover.txt")
	if err := os.WriteFile(cover, []byte("cover bytes"), 0o644); err != nil {
		t.Fatalf("write cover: %v", err)
	}

	out, errOut, err := run(t, srv.URL, "", "documents", "create",
		"--class", result.IDMap["old-child"],
		"--path", "/posts/first",
		"--set", "title=First post",
		"--file", "cover="+cover,
	)
	if err != nil {
		t.Fatalf("create: %v (%s)", err, errOut)
	}

	var doc content.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode doc %q: %v", out, err)
	}
	if doc.Values["title"] != "First post" || doc.Path != "/posts/first" {
		t.Errorf("unexpected document %+v", doc)
	}
	ref, ok := doc.Values["cover"].(map[string]any)
	if !ok || ref["path"] != "cover.txt" {
		t.Fatalf("unexpected cover %#v", doc.Values["cover"])
	}

	resp, err := http.Get(ref["url"].(string))
	if err != nil {
		t.Fatalf("fetch cover: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "cover bytes" {
		t.Errorf("served %q", body)
	}
}

func TestCommandErrors(t *testing.T) {
	srv := newGateway(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"missing class flag", "", []string{"documents", "create", "--set", "a=b"}},
		{"unknown class", "", []string{"documents", "create", "--class", "nope"}},
		{"malformed import", "{", []string{"classes", "import"}},
		{"bad log level", "", []string{"--log-level", "loud", "classes", "export"}},
		{"bad assignment", "", []string{"documents", "create", "--class", "x", "--set", "novalue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := run(t, srv.URL, tt.stdin, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]any
		wantErr bool
	}{
		{"empty", nil, map[string]any{}, false},
		{"simple", []string{"title=Hello"}, map[string]any{"title": "Hello"}, false},
		{"value keeps equals", []string{"expr=a=b"}, map[string]any{"expr": "a=b"}, false},
		{"empty value", []string{"title="}, map[string]any{"title": ""}, false},
		{"later wins", []string{"a=1", "a=2"}, map[string]any{"a": "2"}, false},
		{"missing equals", []string{"title"}, nil, true},
		{"missing name", []string{"=x"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAssignments(tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}
