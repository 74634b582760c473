package fieldtype

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/jbaikge/boneless/internal/domain/models/content"
)

// Accepted layouts for date-like values
var (
	dateLayouts     = []string{"2006-01-02", time.RFC3339}
	dateTimeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02T15:04:05"}
	timeLayouts     = []string{"15:04", "15:04:05"}
)

// ValidateValue checks a single stored value against its field's descriptor.
// nil is always accepted (cleared value). Unknown descriptors accept anything
// so data under an unresolved type is never rejected.
func ValidateValue(desc Descriptor, field content.Field, value any) error {
	if value == nil || desc.Unknown {
		return nil
	}

	if desc.Upload {
		return validateUpload(value)
	}

	switch desc.Reference {
	case ReferenceOne:
		return validateReferenceID(value)
	case ReferenceMany:
		return validateReferenceList(value, desc.Labeled)
	}

	switch desc.Display {
	case DisplayNumber:
		return validateNumber(field, value)
	case DisplayDate:
		return validateLayouts(value, dateLayouts)
	case DisplayDateTime:
		return validateLayouts(value, dateTimeLayouts)
	case DisplayTime:
		return validateLayouts(value, timeLayouts)
	case DisplayEmail:
		s, ok := value.(string)
		if !ok {
			return errors.New("must be a string")
		}
		return validation.Validate(s, is.EmailFormat)
	case DisplayOption:
		return validateOption(field, value)
	}

	if _, ok := value.(string); !ok {
		return errors.New("must be a string")
	}
	return nil
}

func validateUpload(value any) error {
	switch v := value.(type) {
	case *content.PendingFile, content.FileRef, *content.FileRef:
		return nil
	case map[string]any:
		for _, key := range []string{"path", "url"} {
			if raw, ok := v[key]; ok && raw != nil {
				if _, isString := raw.(string); !isString {
					return fmt.Errorf("%s must be a string", key)
				}
			}
		}
		return nil
	default:
		return errors.New("must be an object with path and url")
	}
}

func validateReferenceID(value any) error {
	id, ok := value.(string)
	if !ok {
		return errors.New("must be a document id")
	}
	return validation.Validate(id, validation.Length(0, 64))
}

func validateReferenceList(value any, labeled bool) error {
	if ids, ok := value.([]string); ok && !labeled {
		for _, id := range ids {
			if err := validateReferenceID(id); err != nil {
				return err
			}
		}
		return nil
	}

	items, ok := value.([]any)
	if !ok {
		return errors.New("must be a list")
	}
	for i, item := range items {
		if !labeled {
			if err := validateReferenceID(item); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			continue
		}
		pair, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("item %d: must be an object with id and label", i)
		}
		if err := validateReferenceID(pair["id"]); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if label, ok := pair["label"]; ok && label != nil {
			if _, isString := label.(string); !isString {
				return fmt.Errorf("item %d: label must be a string", i)
			}
		}
	}
	return nil
}

func validateNumber(field content.Field, value any) error {
	n, ok := ToFloat(value)
	if !ok {
		return errors.New("must be a number")
	}
	if field.Min != "" {
		if min, err := strconv.ParseFloat(field.Min, 64); err == nil && n < min {
			return fmt.Errorf("must be no less than %s", field.Min)
		}
	}
	if field.Max != "" {
		if max, err := strconv.ParseFloat(field.Max, 64); err == nil && n > max {
			return fmt.Errorf("must be no greater than %s", field.Max)
		}
	}
	return nil
}

func validateLayouts(value any, layouts []string) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("must be a string")
	}
	if s == "" {
		return nil
	}
	if _, ok := ParseTime(s, layouts); !ok {
		return fmt.Errorf("%q is not a valid value, expected %s", s, layouts[0])
	}
	return nil
}

func validateOption(field content.Field, value any) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("must be a string")
	}
	options := ParseOptions(field.Options)
	if s == "" || len(options) == 0 {
		return nil
	}
	for _, option := range options {
		if option.Key == s {
			return nil
		}
	}
	return fmt.Errorf("%q is not one of the options", s)
}

// ToFloat converts the numeric forms a decoded JSON value may take
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ParseTime tries each layout in turn
func ParseTime(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
