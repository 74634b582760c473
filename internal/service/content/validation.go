package content

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jbaikge/boneless/internal/config"
	"github.com/jbaikge/boneless/internal/domain"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
	"github.com/jbaikge/boneless/internal/fieldtype"
)

var fieldNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// validateClassRequest checks the class and every field definition.
// Unknown field types pass: they degrade to text bindings at edit time.
func validateClassRequest(req *contentSvc.ClassRequest, registry *fieldtype.Registry) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxClassNameLength),
		),
		validation.Field(&req.Fields, validation.Length(0, config.MaxFieldsPerClass)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	seen := make(map[string]bool, len(req.Fields))
	for i := range req.Fields {
		field := &req.Fields[i]
		if err := validateField(field, registry); err != nil {
			return fmt.Errorf("%w: field %d (%s): %v", domain.ErrValidation, i, field.Name, err)
		}
		if seen[field.Name] {
			return fmt.Errorf("%w: duplicate field name %q", domain.ErrValidation, field.Name)
		}
		seen[field.Name] = true
	}
	return nil
}

func validateField(field *content.Field, registry *fieldtype.Registry) error {
	desc := registry.Lookup(field.Type)

	return validation.ValidateStruct(field,
		validation.Field(&field.Type, validation.Required),
		validation.Field(&field.Name,
			validation.Required,
			validation.Length(1, config.MaxFieldNameLength),
			validation.Match(fieldNamePattern).Error("must contain only lowercase letters, digits and underscores"),
		),
		validation.Field(&field.Label,
			validation.Required,
			validation.Length(1, config.MaxFieldLabelLength),
		),
		validation.Field(&field.Column, validation.Min(0)),
		validation.Field(&field.ClassID,
			validation.When(desc.HasParam(fieldtype.ParamClassID), validation.Required),
		),
		validation.Field(&field.ClassField,
			validation.When(desc.HasParam(fieldtype.ParamField) || field.ClassID != "", validation.Required),
		),
	)
}

func validateTemplateRequest(req *contentSvc.TemplateRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxTemplateNameLength),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func validateDocumentRequest(req *contentSvc.DocumentRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Path,
			validation.Length(0, config.MaxDocumentPathLength),
			validation.By(func(value interface{}) error {
				path, _ := value.(string)
				if path != "" && strings.ContainsAny(path, " \t\n") {
					return fmt.Errorf("path cannot contain whitespace")
				}
				return nil
			}),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
