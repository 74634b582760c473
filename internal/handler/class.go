package handler

import (
	"log/slog"
	"net/http"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
	"github.com/jbaikge/boneless/internal/httputil"
)

// ClassHandler handles class HTTP requests
type ClassHandler struct {
	classService contentSvc.ClassService
	logger       *slog.Logger
}

// NewClassHandler creates a new class handler
func NewClassHandler(classService contentSvc.ClassService, logger *slog.Logger) *ClassHandler {
	return &ClassHandler{
		classService: classService,
		logger:       logger,
	}
}

// ListClasses returns a page of classes
// GET /classes?range=[0,9]&parent_id=
func (h *ClassHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	rng, err := httputil.ParseRange(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}

	filter := content.ClassFilter{Range: rng}
	if r.URL.Query().Has("parent_id") {
		parentID := r.URL.Query().Get("parent_id")
		filter.ParentID = &parentID
	}

	classes, resolved, err := h.classService.ListClasses(r.Context(), filter)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondList(w, "classes", classes, resolved)
}

// CreateClass creates a new class
// POST /classes
func (h *ClassHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	var req contentSvc.ClassRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	class, err := h.classService.CreateClass(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, class)
}

// GetClass retrieves a class by ID
// GET /classes/{id}
func (h *ClassHandler) GetClass(w http.ResponseWriter, r *http.Request) {
	class, err := h.classService.GetClass(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, class)
}

// UpdateClass replaces a class's name, parent and fields
// PUT /classes/{id}
func (h *ClassHandler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	var req contentSvc.ClassRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	class, err := h.classService.UpdateClass(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, class)
}

// DeleteClass removes a class
// DELETE /classes/{id}
func (h *ClassHandler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	if err := h.classService.DeleteClass(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
