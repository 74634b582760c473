// Package rest implements the content repositories against a remote gateway
// over its HTTP surface.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
	"github.com/jbaikge/boneless/internal/httputil"
)

// Client talks to one gateway. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a gateway client. A nil httpClient gets a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// Classes returns the remote class collection
func (c *Client) Classes() contentRepo.ClassRepository { return &classRepository{c} }

// Documents returns the remote per-class document collections
func (c *Client) Documents() contentRepo.DocumentRepository { return &documentRepository{c} }

// Templates returns the remote template collection
func (c *Client) Templates() contentRepo.TemplateRepository { return &templateRepository{c} }

// Files returns the remote upload target signer
func (c *Client) Files() contentRepo.FileSigner { return &fileSigner{c} }

// do sends one request. body is JSON encoded when non-nil; out receives the
// decoded response when non-nil. The response headers are returned for
// listings.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (http.Header, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("gateway request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= 300 {
		return resp.Header, decodeError(method, path, resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.Header, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp.Header, nil
}

// decodeError maps a gateway error response back onto the domain taxonomy
func decodeError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var problem httputil.ProblemDetail
	detail := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &problem) == nil && problem.Status != 0 {
		detail = problem.Detail
	}
	where := fmt.Sprintf("%s %s", method, path)

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %s: %w", where, detail, domain.ErrValidation)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %s: %w", where, detail, domain.ErrNotFound)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", where, domain.ErrUnauthorized)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", where, domain.ErrForbidden)
	case http.StatusConflict:
		return conflictFrom(problem, raw)
	default:
		return fmt.Errorf("%s: status %d: %s", where, resp.StatusCode, detail)
	}
}

// conflictFrom handles both 409 shapes: a problem with resource extras, or
// the existing resource itself
func conflictFrom(problem httputil.ProblemDetail, raw []byte) error {
	if problem.Status != 0 {
		resourceType, _ := problem.Extra["resource_type"].(string)
		resourceID, _ := problem.Extra["resource_id"].(string)
		return &domain.ConflictError{Message: problem.Detail, ResourceType: resourceType, ResourceID: resourceID}
	}

	var existing struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &existing); err != nil || existing.ID == "" {
		return fmt.Errorf("gateway conflict: %w", domain.ErrConflict)
	}
	return &domain.ConflictError{
		Message:    fmt.Sprintf("resource %s already exists", existing.ID),
		ResourceID: existing.ID,
	}
}

// rangeQuery encodes a listing range the way the gateway parses it
func rangeQuery(q url.Values, rng content.Range) {
	rng = rng.OrDefault()
	q.Set("range", fmt.Sprintf("[%d,%d]", rng.Start, rng.End))
}

// parseContentRange reads "<unit> <start>-<end>/<size>"
func parseContentRange(header http.Header) (content.Range, error) {
	value := header.Get("Content-Range")
	if value == "" {
		return content.Range{}, errors.New("listing has no Content-Range header")
	}
	var (
		unit string
		rng  content.Range
	)
	if _, err := fmt.Sscanf(value, "%s %d-%d/%d", &unit, &rng.Start, &rng.End, &rng.Size); err != nil {
		return content.Range{}, fmt.Errorf("parse Content-Range %q: %w", value, err)
	}
	return rng, nil
}
