// Package transfer sends upload payloads to signed descriptors.
package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jbaikge/boneless/internal/domain/models/content"
)

// HTTPTransferer performs step two of an upload: one request against the
// signed descriptor carrying the raw bytes.
type HTTPTransferer struct {
	client *http.Client
	logger *slog.Logger
}

// NewHTTPTransferer creates a transferer. A nil client gets a 2 minute timeout.
func NewHTTPTransferer(client *http.Client, logger *slog.Logger) *HTTPTransferer {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &HTTPTransferer{client: client, logger: logger}
}

// Transfer sends body to desc.URL with the descriptor's method and signed
// headers. Any non-2xx answer is an error.
func (t *HTTPTransferer) Transfer(ctx context.Context, desc *content.UploadDescriptor, contentType string, body []byte) error {
	method := desc.Method
	if method == "" {
		method = http.MethodPut
	}

	req, err := http.NewRequestWithContext(ctx, method, desc.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build transfer request: %w", err)
	}
	for name, values := range desc.Headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("transfer to %s: %w", desc.Location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("transfer to %s: status %d: %s", desc.Location, resp.StatusCode, bytes.TrimSpace(detail))
	}
	io.Copy(io.Discard, resp.Body)

	t.logger.Debug("payload transferred",
		"location", desc.Location,
		"bytes", len(body),
		"duration", time.Since(start),
	)
	return nil
}
