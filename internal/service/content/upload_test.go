package content

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
)

func newTestCoordinator() (*UploadCoordinator, *mockSigner, *mockTransferer) {
	signer := &mockSigner{}
	transfer := newMockTransferer()
	return NewUploadCoordinator(signer, transfer, 5*time.Minute, testLogger()), signer, transfer
}

func TestPrepareCreate_Substitution(t *testing.T) {
	coordinator, signer, transfer := newTestCoordinator()

	values := map[string]any{
		"title": "Hello",
		"cover": &content.PendingFile{Title: "photo.png", Body: strings.NewReader("PNG")},
	}

	got, err := coordinator.PrepareCreate(context.Background(), values)
	if err != nil {
		t.Fatalf("PrepareCreate: %v", err)
	}

	want := map[string]any{"path": "photo.png", "url": "https://static.example.com/photo.png"}
	if !reflect.DeepEqual(got["cover"], want) {
		t.Errorf("cover = %#v, want %#v", got["cover"], want)
	}
	if got["title"] != "Hello" {
		t.Errorf("scalar value changed: %v", got["title"])
	}
	if _, stillPending := values["cover"].(*content.PendingFile); !stillPending {
		t.Error("input map was mutated")
	}

	if signer.requestCount() != 1 {
		t.Fatalf("expected 1 sign request, got %d", signer.requestCount())
	}
	req := signer.requests[0]
	if req.Key != "photo.png" || req.ContentType != "image/png" || req.Expires != "5m0s" {
		t.Errorf("unexpected sign request: %+v", req)
	}
	if string(transfer.bodies["https://static.example.com/photo.png"]) != "PNG" {
		t.Error("payload not transferred")
	}
}

func TestPrepareCreate_ExplicitPathWins(t *testing.T) {
	coordinator, _, _ := newTestCoordinator()

	got, err := coordinator.PrepareCreate(context.Background(), map[string]any{
		"cover": &content.PendingFile{Path: "covers/1.jpg", Title: "IMG_0001.jpg", ContentType: "image/jpeg", Body: strings.NewReader("x")},
	})
	if err != nil {
		t.Fatalf("PrepareCreate: %v", err)
	}
	cover := got["cover"].(map[string]any)
	if cover["path"] != "covers/1.jpg" {
		t.Errorf("expected explicit path, got %v", cover["path"])
	}
}

func TestPrepareUpdate_Idempotent(t *testing.T) {
	coordinator, signer, _ := newTestCoordinator()

	stored := map[string]any{"path": "a.jpg", "url": "https://static.example.com/a.jpg"}
	previous := map[string]any{"cover": stored}

	tests := []struct {
		name   string
		values map[string]any
	}{
		{
			name:   "persisted reference passed back",
			values: map[string]any{"cover": map[string]any{"path": "a.jpg", "url": "https://static.example.com/a.jpg"}},
		},
		{
			name:   "pending file without payload on same path",
			values: map[string]any{"cover": &content.PendingFile{Path: "a.jpg"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coordinator.PrepareUpdate(context.Background(), tt.values, previous)
			if err != nil {
				t.Fatalf("PrepareUpdate: %v", err)
			}
			if !reflect.DeepEqual(got["cover"], stored) {
				t.Errorf("cover = %#v, want %#v", got["cover"], stored)
			}
		})
	}

	if signer.requestCount() != 0 {
		t.Errorf("expected no upload requests, got %d", signer.requestCount())
	}
}

func TestPrepareUpdate_ChangedPayloadUploads(t *testing.T) {
	coordinator, signer, _ := newTestCoordinator()

	previous := map[string]any{"cover": map[string]any{"path": "a.jpg", "url": "old"}}
	got, err := coordinator.PrepareUpdate(context.Background(), map[string]any{
		"cover": &content.PendingFile{Path: "a.jpg", Body: strings.NewReader("new bytes")},
	}, previous)
	if err != nil {
		t.Fatalf("PrepareUpdate: %v", err)
	}
	if signer.requestCount() != 1 {
		t.Errorf("expected a new upload, got %d requests", signer.requestCount())
	}
	if got["cover"].(map[string]any)["url"] != "https://static.example.com/a.jpg" {
		t.Errorf("url not replaced: %v", got["cover"])
	}
}

func TestPrepare_FailureAbortsWrite(t *testing.T) {
	t.Run("transfer fails", func(t *testing.T) {
		coordinator, _, transfer := newTestCoordinator()
		transfer.failKey = "b.jpg"

		got, err := coordinator.PrepareCreate(context.Background(), map[string]any{
			"a": &content.PendingFile{Title: "a.jpg", Body: strings.NewReader("a")},
			"b": &content.PendingFile{Title: "b.jpg", Body: strings.NewReader("b")},
		})
		if !errors.Is(err, domain.ErrUploadFailed) {
			t.Fatalf("expected ErrUploadFailed, got %v", err)
		}
		if got != nil {
			t.Error("no values should be returned on failure")
		}
	})

	t.Run("signing fails", func(t *testing.T) {
		coordinator, signer, _ := newTestCoordinator()
		signer.fail = true

		_, err := coordinator.PrepareCreate(context.Background(), map[string]any{
			"a": &content.PendingFile{Title: "a.jpg", Body: strings.NewReader("a")},
		})
		if !errors.Is(err, domain.ErrUploadFailed) {
			t.Fatalf("expected ErrUploadFailed, got %v", err)
		}
	})

	t.Run("no key", func(t *testing.T) {
		coordinator, _, _ := newTestCoordinator()

		_, err := coordinator.PrepareCreate(context.Background(), map[string]any{
			"a": &content.PendingFile{Body: strings.NewReader("a")},
		})
		if !errors.Is(err, domain.ErrUploadFailed) {
			t.Fatalf("expected ErrUploadFailed, got %v", err)
		}
	})

	t.Run("pending file without payload on create", func(t *testing.T) {
		coordinator, _, _ := newTestCoordinator()

		_, err := coordinator.PrepareCreate(context.Background(), map[string]any{
			"a": &content.PendingFile{Path: "a.jpg"},
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestPrepare_ConcurrentFields(t *testing.T) {
	coordinator, signer, _ := newTestCoordinator()

	values := map[string]any{}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		values[name] = &content.PendingFile{Title: name + ".txt", Body: strings.NewReader(name)}
	}

	got, err := coordinator.PrepareCreate(context.Background(), values)
	if err != nil {
		t.Fatalf("PrepareCreate: %v", err)
	}
	if signer.requestCount() != 5 {
		t.Errorf("expected 5 sign requests, got %d", signer.requestCount())
	}
	for name, v := range got {
		ref := v.(map[string]any)
		if ref["path"] != name+".txt" {
			t.Errorf("%s: path %v", name, ref["path"])
		}
	}
}
