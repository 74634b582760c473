package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/jbaikge/boneless/internal/config"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
	"github.com/jbaikge/boneless/internal/httputil"
)

const (
	// multipartDataPart carries the DocumentRequest JSON
	multipartDataPart = "data"
	// multipartFilePrefix prefixes file parts: values.<field>
	multipartFilePrefix = "values."
	// multipartMemory is kept in memory before parts spill to temp files
	multipartMemory = 32 << 20
)

// parseDocumentRequest decodes a JSON or multipart document body. File parts
// become pending uploads on req.Values. cleanup releases the open parts and
// must run after the service call returns.
func parseDocumentRequest(w http.ResponseWriter, r *http.Request) (*contentSvc.DocumentRequest, func(), error) {
	noop := func() {}
	req := &contentSvc.DocumentRequest{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := httputil.ParseJSON(w, r, req); err != nil {
			return nil, noop, err
		}
		if req.Values == nil {
			req.Values = map[string]any{}
		}
		return req, noop, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize*4)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, noop, fmt.Errorf("invalid multipart body: %w", err)
	}
	form := r.MultipartForm
	cleanup := func() { form.RemoveAll() }

	data := form.Value[multipartDataPart]
	if len(data) != 1 {
		cleanup()
		return nil, noop, errors.New("multipart body needs exactly one data part")
	}
	if err := json.Unmarshal([]byte(data[0]), req); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("invalid data part: %w", err)
	}
	if req.Values == nil {
		req.Values = map[string]any{}
	}

	var opened []io.Closer
	release := func() {
		for _, c := range opened {
			c.Close()
		}
		cleanup()
	}

	for name, headers := range form.File {
		field, ok := strings.CutPrefix(name, multipartFilePrefix)
		if !ok || field == "" || len(headers) == 0 {
			continue
		}
		header := headers[0]
		if header.Size > config.MaxUploadSize {
			release()
			return nil, noop, fmt.Errorf("file for %s exceeds %d bytes", field, config.MaxUploadSize)
		}
		file, err := header.Open()
		if err != nil {
			release()
			return nil, noop, fmt.Errorf("open file part %s: %w", name, err)
		}
		opened = append(opened, file)

		req.Values[field] = &content.PendingFile{
			Path:        explicitPath(req.Values[field]),
			Title:       header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}
	}

	return req, release, nil
}

// explicitPath returns the storage key a client sent alongside a file part,
// e.g. {"path": "covers/a.jpg"} in the data JSON.
func explicitPath(value any) string {
	if m, ok := value.(map[string]any); ok {
		path, _ := m["path"].(string)
		return path
	}
	return ""
}
