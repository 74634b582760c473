package config

const (
	// MaxClassNameLength is the maximum length for class names.
	// Limited to 255 to fit in VARCHAR(255).
	MaxClassNameLength = 255

	// MaxTemplateNameLength is the maximum length for template names.
	MaxTemplateNameLength = 255

	// MaxFieldNameLength bounds field identifiers, which become JSON keys
	// and sort index names.
	MaxFieldNameLength = 64

	// MaxFieldLabelLength bounds editor-facing field labels
	MaxFieldLabelLength = 255

	// MaxFieldsPerClass keeps editing forms and list projections bounded
	MaxFieldsPerClass = 200

	// MaxDocumentPathLength is the maximum length for public document paths
	MaxDocumentPathLength = 500

	// MaxImportBatchSize is the largest number of entities in one import file
	MaxImportBatchSize = 5000

	// MaxUploadSize is the largest payload read into memory for one field
	MaxUploadSize = 50 << 20

	// MaxListPageSize caps a single listing range
	MaxListPageSize = 1000
)
