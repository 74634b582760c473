package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jbaikge/boneless/internal/config"
	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
)

// Transferer performs step 2 of the upload protocol: sending the bytes to a
// signed location.
type Transferer interface {
	Transfer(ctx context.Context, desc *content.UploadDescriptor, contentType string, body []byte) error
}

// UploadCoordinator replaces pending file payloads with stable file
// references before a document write is issued.
type UploadCoordinator struct {
	signer   contentRepo.FileSigner
	transfer Transferer
	expiry   time.Duration
	logger   *slog.Logger
}

// NewUploadCoordinator creates a coordinator. expiry is the lifetime of each
// signed upload location.
func NewUploadCoordinator(signer contentRepo.FileSigner, transfer Transferer, expiry time.Duration, logger *slog.Logger) *UploadCoordinator {
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}
	return &UploadCoordinator{
		signer:   signer,
		transfer: transfer,
		expiry:   expiry,
		logger:   logger,
	}
}

// PrepareCreate uploads every pending payload in values
func (u *UploadCoordinator) PrepareCreate(ctx context.Context, values map[string]any) (map[string]any, error) {
	return u.prepare(ctx, values, nil)
}

// PrepareUpdate is PrepareCreate with an idempotence guard: a pending file
// without payload whose path matches previous keeps the previous value.
func (u *UploadCoordinator) PrepareUpdate(ctx context.Context, values, previous map[string]any) (map[string]any, error) {
	if previous == nil {
		previous = map[string]any{}
	}
	return u.prepare(ctx, values, previous)
}

type uploadJob struct {
	key  string
	file *content.PendingFile
}

func (u *UploadCoordinator) prepare(ctx context.Context, values, previous map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values))
	var jobs []uploadJob

	for key, value := range values {
		out[key] = value

		file, ok := value.(*content.PendingFile)
		if !ok || file == nil {
			// scalars and persisted references
			continue
		}

		if !file.HasPayload() {
			if prev, had := previous[key]; had && file.Path == previousPath(prev) {
				u.logger.Debug("upload skipped", "field", key, "path", file.Path)
				out[key] = prev
				continue
			}
			return nil, fmt.Errorf("%w: field %s has no file payload", domain.ErrValidation, key)
		}

		jobs = append(jobs, uploadJob{key: key, file: file})
	}

	if len(jobs) == 0 {
		return out, nil
	}

	// One slot per job; the write waits for every slot to settle.
	refs := make([]content.FileRef, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			ref, err := u.upload(gctx, job.file)
			if err != nil {
				u.logger.Error("upload failed", "field", job.key, "error", err)
				return fmt.Errorf("%w: field %s: %w", domain.ErrUploadFailed, job.key, err)
			}
			refs[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, job := range jobs {
		out[job.key] = refs[i].Map()
		u.logger.Info("file uploaded", "field", job.key, "path", refs[i].Path, "url", refs[i].URL)
	}
	return out, nil
}

func (u *UploadCoordinator) upload(ctx context.Context, file *content.PendingFile) (content.FileRef, error) {
	key := file.Path
	if key == "" {
		key = file.Title
	}
	if key == "" {
		return content.FileRef{}, errors.New("file has neither path nor title")
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(key))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	desc, err := u.signer.SignUpload(ctx, content.UploadRequest{
		Key:         key,
		ContentType: contentType,
		Expires:     u.expiry.String(),
	})
	if err != nil {
		return content.FileRef{}, fmt.Errorf("sign upload: %w", err)
	}
	if desc.Location == "" {
		return content.FileRef{}, errors.New("upload target returned no location")
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(file.Body, config.MaxUploadSize+1))
	if err != nil {
		return content.FileRef{}, fmt.Errorf("read payload: %w", err)
	}
	if n > config.MaxUploadSize {
		return content.FileRef{}, fmt.Errorf("payload exceeds %d bytes", config.MaxUploadSize)
	}

	if err := u.transfer.Transfer(ctx, desc, contentType, buf.Bytes()); err != nil {
		return content.FileRef{}, fmt.Errorf("transfer: %w", err)
	}

	return content.FileRef{Path: key, URL: desc.Location}, nil
}

// previousPath extracts the stored path of a persisted upload value
func previousPath(value any) string {
	switch v := value.(type) {
	case map[string]any:
		p, _ := v["path"].(string)
		return p
	case content.FileRef:
		return v.Path
	case *content.FileRef:
		if v != nil {
			return v.Path
		}
	}
	return ""
}
