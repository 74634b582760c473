package handler

import (
	"log/slog"
	"net/http"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
	"github.com/jbaikge/boneless/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService contentSvc.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService contentSvc.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// ListDocuments returns a page of a class's documents
// GET /classes/{class_id}/documents?range=[0,9]&sort=["title","ASC"]&filter={"q":""}
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	rng, err := httputil.ParseRange(query)
	if err != nil {
		badRequest(w, err)
		return
	}
	sort, err := httputil.ParseSort(query)
	if err != nil {
		badRequest(w, err)
		return
	}
	lf, err := httputil.ParseFilter(query)
	if err != nil {
		badRequest(w, err)
		return
	}

	docs, resolved, err := h.docService.ListDocuments(r.Context(), content.DocumentFilter{
		ClassID:  r.PathValue("class_id"),
		ParentID: lf.ParentID,
		Query:    lf.Query,
		IDs:      lf.IDs,
		Sort:     sort,
		Range:    rng,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondList(w, "documents", docs, resolved)
}

// CreateDocument creates a document. Accepts JSON or multipart with file parts.
// POST /classes/{class_id}/documents
// Returns 201 if created, 409 with the existing document if the path is taken
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := parseDocumentRequest(w, r)
	if err != nil {
		badRequest(w, err)
		return
	}
	defer cleanup()

	doc, err := h.docService.CreateDocument(r.Context(), r.PathValue("class_id"), req)
	if err != nil {
		HandleCreateConflict(w, h.logger, err, func(string) (*content.Document, error) {
			return h.docService.GetDocumentByPath(r.Context(), req.Path)
		})
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document by ID
// GET /classes/{class_id}/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docService.GetDocument(r.Context(), r.PathValue("class_id"), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// GetDocumentByPath retrieves a document by its public path
// GET /documents?path=/about
func (h *DocumentHandler) GetDocumentByPath(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		httputil.RespondError(w, http.StatusBadRequest, "path is required")
		return
	}

	doc, err := h.docService.GetDocumentByPath(r.Context(), path)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UpdateDocument replaces a document's values. Accepts JSON or multipart.
// PUT /classes/{class_id}/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := parseDocumentRequest(w, r)
	if err != nil {
		badRequest(w, err)
		return
	}
	defer cleanup()

	doc, err := h.docService.UpdateDocument(r.Context(), r.PathValue("class_id"), r.PathValue("id"), req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument removes a document
// DELETE /classes/{class_id}/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.docService.DeleteDocument(r.Context(), r.PathValue("class_id"), r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
