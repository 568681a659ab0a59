package handler

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError maps field names to messages.
type ValidationError url.Values

func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if msgs := e[f]; len(msgs) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", f, msgs[0]))
		}
	}
	return "validation error: " + strings.Join(parts, ", ")
}

// Add records a message for field.
func (e ValidationError) Add(field, message string) {
	url.Values(e).Add(field, message)
}

// AsValidationError converts validator failures into a ValidationError keyed
// by the field's JSON name when the validator was registered with one.
func AsValidationError(err error) (ValidationError, bool) {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, false
	}

	out := make(ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), validationMessage(fe))
	}
	return out, true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "hexcolor":
		return "must be a hex color"
	case "email":
		return "must be a valid email"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
