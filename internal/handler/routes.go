package handler

import "net/http"

// Handlers groups every gateway handler for route registration
type Handlers struct {
	Classes   *ClassHandler
	Documents *DocumentHandler
	Templates *TemplateHandler
	Files     *FileHandler
	Imports   *ImportHandler
	Forms     *FormHandler
}

// Register mounts the gateway routes on mux. Static segments such as
// /classes/export take precedence over /classes/{id}.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", HealthCheck)

	// Classes
	mux.HandleFunc("GET /classes", h.Classes.ListClasses)
	mux.HandleFunc("POST /classes", h.Classes.CreateClass)
	mux.HandleFunc("GET /classes/export", h.Imports.ExportClasses)
	mux.HandleFunc("POST /classes/import", h.Imports.ImportClasses)
	mux.HandleFunc("GET /classes/{id}", h.Classes.GetClass)
	mux.HandleFunc("PUT /classes/{id}", h.Classes.UpdateClass)
	mux.HandleFunc("DELETE /classes/{id}", h.Classes.DeleteClass)

	// Editing projections
	mux.HandleFunc("GET /classes/{class_id}/columns", h.Forms.Columns)
	mux.HandleFunc("GET /classes/{class_id}/form", h.Forms.BlankForm)
	mux.HandleFunc("GET /classes/{class_id}/documents/{id}/form", h.Forms.DocumentForm)

	// Documents
	mux.HandleFunc("GET /documents", h.Documents.GetDocumentByPath)
	mux.HandleFunc("GET /classes/{class_id}/documents", h.Documents.ListDocuments)
	mux.HandleFunc("POST /classes/{class_id}/documents", h.Documents.CreateDocument)
	mux.HandleFunc("GET /classes/{class_id}/documents/{id}", h.Documents.GetDocument)
	mux.HandleFunc("PUT /classes/{class_id}/documents/{id}", h.Documents.UpdateDocument)
	mux.HandleFunc("DELETE /classes/{class_id}/documents/{id}", h.Documents.DeleteDocument)

	// Templates
	mux.HandleFunc("GET /templates", h.Templates.ListTemplates)
	mux.HandleFunc("POST /templates", h.Templates.CreateTemplate)
	mux.HandleFunc("GET /templates/export", h.Imports.ExportTemplates)
	mux.HandleFunc("POST /templates/import", h.Imports.ImportTemplates)
	mux.HandleFunc("GET /templates/{id}", h.Templates.GetTemplate)
	mux.HandleFunc("PUT /templates/{id}", h.Templates.UpdateTemplate)
	mux.HandleFunc("DELETE /templates/{id}", h.Templates.DeleteTemplate)

	// Upload target
	mux.HandleFunc("POST /files/url", h.Files.SignUpload)
}
