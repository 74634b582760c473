package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
	"github.com/jbaikge/boneless/internal/httputil"
)

// FileHandler issues signed upload locations
type FileHandler struct {
	signer contentRepo.FileSigner
	expiry time.Duration
	logger *slog.Logger
}

// maxUploadExpiry bounds the lifetime a client may ask for
const maxUploadExpiry = time.Hour

// NewFileHandler creates a new file handler. expiry applies when a request
// names none.
func NewFileHandler(signer contentRepo.FileSigner, expiry time.Duration, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		signer: signer,
		expiry: expiry,
		logger: logger,
	}
}

// SignUpload returns a short-lived upload descriptor for one key
// POST /files/url
func (h *FileHandler) SignUpload(w http.ResponseWriter, r *http.Request) {
	var req content.UploadRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	req.Key = strings.TrimLeft(strings.TrimSpace(req.Key), "/")
	if req.Key == "" {
		httputil.RespondError(w, http.StatusBadRequest, "key is required")
		return
	}

	expiry := h.expiry
	if req.Expires != "" {
		d, err := time.ParseDuration(req.Expires)
		if err != nil || d <= 0 || d > maxUploadExpiry {
			badRequest(w, fmt.Errorf("expires must be a duration between 0 and %s", maxUploadExpiry))
			return
		}
		expiry = d
	}
	req.Expires = expiry.String()

	desc, err := h.signer.SignUpload(r.Context(), req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Debug("upload signed", "key", req.Key, "expires", req.Expires)
	httputil.RespondJSON(w, http.StatusOK, desc)
}
