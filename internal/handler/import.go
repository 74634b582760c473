package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
	"github.com/jbaikge/boneless/internal/httputil"
	serviceContent "github.com/jbaikge/boneless/internal/service/content"
)

// ImportHandler handles bulk import and export of classes and templates.
//
// Import bodies are the JSON arrays produced by export. A malformed body is
// rejected before anything is created; a failure part way through answers
// 500 with the ids created so far.
type ImportHandler struct {
	importService contentSvc.ImportService
	exportService contentSvc.ExportService
	logger        *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService contentSvc.ImportService, exportService contentSvc.ExportService, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		exportService: exportService,
		logger:        logger,
	}
}

// ImportClasses recreates an exported class array under fresh ids
// POST /classes/import
func (h *ImportHandler) ImportClasses(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, httputil.MaxJSONBodySize)
	items, err := serviceContent.DecodeClasses(r.Body)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	result, err := h.importService.ImportClasses(r.Context(), items)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, result)
}

// ImportTemplates recreates an exported template array under fresh ids
// POST /templates/import
func (h *ImportHandler) ImportTemplates(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, httputil.MaxJSONBodySize)
	items, err := serviceContent.DecodeTemplates(r.Body)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	result, err := h.importService.ImportTemplates(r.Context(), items)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, result)
}

// ExportClasses writes every class as a JSON array
// GET /classes/export
func (h *ImportHandler) ExportClasses(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	n, err := h.exportService.ExportClasses(r.Context(), &buf)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	h.writeExport(w, "classes.json", n, buf.Bytes())
}

// ExportTemplates writes every template as a JSON array
// GET /templates/export
func (h *ImportHandler) ExportTemplates(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	n, err := h.exportService.ExportTemplates(r.Context(), &buf)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	h.writeExport(w, "templates.json", n, buf.Bytes())
}

// writeExport sends a fully buffered export as an attachment
func (h *ImportHandler) writeExport(w http.ResponseWriter, filename string, count int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("X-Total-Count", strconv.Itoa(count))
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
