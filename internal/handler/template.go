package handler

import (
	"log/slog"
	"net/http"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
	"github.com/jbaikge/boneless/internal/httputil"
)

// TemplateHandler handles template HTTP requests
type TemplateHandler struct {
	templateService contentSvc.TemplateService
	logger          *slog.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService contentSvc.TemplateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		logger:          logger,
	}
}

// ListTemplates returns a page of templates
// GET /templates?range=[0,9]&q=
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	rng, err := httputil.ParseRange(query)
	if err != nil {
		badRequest(w, err)
		return
	}
	lf, err := httputil.ParseFilter(query)
	if err != nil {
		badRequest(w, err)
		return
	}

	templates, resolved, err := h.templateService.ListTemplates(r.Context(), content.TemplateFilter{
		Query: lf.Query,
		Range: rng,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondList(w, "templates", templates, resolved)
}

// CreateTemplate creates a new template
// POST /templates
func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req contentSvc.TemplateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	tmpl, err := h.templateService.CreateTemplate(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, tmpl)
}

// GetTemplate retrieves a template by ID
// GET /templates/{id}
func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.templateService.GetTemplate(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tmpl)
}

// UpdateTemplate replaces a template's name and body
// PUT /templates/{id}
func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req contentSvc.TemplateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	tmpl, err := h.templateService.UpdateTemplate(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tmpl)
}

// DeleteTemplate removes a template
// DELETE /templates/{id}
func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.templateService.DeleteTemplate(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
