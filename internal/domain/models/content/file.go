package content

import (
	"io"
	"net/http"
)

// FileRef is the stable reference stored for an uploaded field value
type FileRef struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Map returns the reference in document value form
func (f FileRef) Map() map[string]any {
	return map[string]any{"path": f.Path, "url": f.URL}
}

// PendingFile marks a field value carrying an unpersisted binary payload.
// It only exists in flight: the upload coordinator replaces it with a FileRef
// before the document reaches the gateway.
type PendingFile struct {
	Path        string // explicit storage key, "" = use Title
	Title       string // original filename
	ContentType string
	Body        io.Reader // nil = no payload
}

// HasPayload reports whether the value carries raw bytes to upload
func (p *PendingFile) HasPayload() bool {
	return p != nil && p.Body != nil
}

// UploadRequest asks the upload target for a signed location
type UploadRequest struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Expires     string `json:"expires"` // Go duration string, e.g. "5m"
}

// UploadDescriptor is a short-lived signed upload location
type UploadDescriptor struct {
	URL      string      `json:"url"`      // where to send the bytes
	Method   string      `json:"method"`   // HTTP method to use against URL
	Headers  http.Header `json:"headers"`  // signed headers to replay
	Location string      `json:"location"` // stable public URL once uploaded
}
