package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		conflictErr *domain.ConflictError
		abortedErr  *domain.ImportAbortedError
	)

	switch {
	case errors.As(err, &abortedErr):
		logger.Error("import aborted", "collection", abortedErr.Collection, "origin_id", abortedErr.OriginID, "error", abortedErr.Err)
		httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, err.Error(), map[string]any{
			"collection": abortedErr.Collection,
			"origin_id":  abortedErr.OriginID,
			"created":    abortedErr.Created,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]any{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrSchemaUnresolved), errors.Is(err, domain.ErrUploadFailed):
		logger.Error("upstream failure", "error", err)
		httputil.RespondError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// HandleCreateConflict answers a create that hit an existing resource with
// that resource and 409. Any other error goes through handleError.
func HandleCreateConflict[T any](w http.ResponseWriter, logger *slog.Logger, err error, fetchFn func(id string) (*T, error)) {
	var conflictErr *domain.ConflictError
	if !errors.As(err, &conflictErr) || conflictErr.ResourceID == "" {
		handleError(w, logger, err)
		return
	}

	existing, fetchErr := fetchFn(conflictErr.ResourceID)
	if fetchErr != nil {
		handleError(w, logger, fetchErr)
		return
	}
	httputil.RespondJSON(w, http.StatusConflict, existing)
}

// badRequest answers a request the handler could not decode
func badRequest(w http.ResponseWriter, err error) {
	httputil.RespondError(w, http.StatusBadRequest, err.Error())
}
