package handler

import (
	"log/slog"
	"net/http"

	"github.com/jbaikge/boneless/internal/httputil"
	serviceContent "github.com/jbaikge/boneless/internal/service/content"
)

// FormHandler serves editing and list projections of class schemas
type FormHandler struct {
	forms  *serviceContent.FormService
	logger *slog.Logger
}

// NewFormHandler creates a new form handler
func NewFormHandler(forms *serviceContent.FormService, logger *slog.Logger) *FormHandler {
	return &FormHandler{
		forms:  forms,
		logger: logger,
	}
}

// BlankForm returns the create form of a class
// GET /classes/{class_id}/form
func (h *FormHandler) BlankForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.forms.Form(r.Context(), r.PathValue("class_id"), "")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, form)
}

// DocumentForm returns a document bound to its class schema
// GET /classes/{class_id}/documents/{id}/form
func (h *FormHandler) DocumentForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.forms.Form(r.Context(), r.PathValue("class_id"), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, form)
}

// Columns returns the list-view fields of a class, ordered by column
// GET /classes/{class_id}/columns
func (h *FormHandler) Columns(w http.ResponseWriter, r *http.Request) {
	fields, err := h.forms.Columns(r.Context(), r.PathValue("class_id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, fields)
}
