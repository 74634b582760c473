package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrSchemaUnresolved means a class schema could not be fetched. Callers
	// must block rendering instead of assuming an empty schema.
	ErrSchemaUnresolved = errors.New("class schema unresolved")

	// ErrUploadFailed aborts the enclosing document write
	ErrUploadFailed = errors.New("upload failed")

	// ErrImportAborted means an import batch stopped part way through
	ErrImportAborted = errors.New("import aborted")

	// ErrMalformedImport is returned before any entity is created
	ErrMalformedImport = fmt.Errorf("malformed import file: %w", ErrValidation)
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (class, document, template)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ImportAbortedError reports an import batch that failed after some entities
// were already created. Created entities are not rolled back.
type ImportAbortedError struct {
	Collection string
	OriginID   string            // origin id of the entity whose creation failed
	Created    map[string]string // origin id -> new id, for everything created before the failure
	Err        error
}

func (e *ImportAbortedError) Error() string {
	return fmt.Sprintf("import %s aborted at %q after %d created: %v", e.Collection, e.OriginID, len(e.Created), e.Err)
}

func (e *ImportAbortedError) Unwrap() []error {
	return []error{ErrImportAborted, e.Err}
}

// StatusCode implements the HTTPError interface
func (e *ImportAbortedError) StatusCode() int {
	return http.StatusInternalServerError
}
