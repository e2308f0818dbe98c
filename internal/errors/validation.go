package errors

import (
	"errors"
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// Rule names attached to validation errors
const (
	RuleRequired      = "required"
	RuleRange         = "range"
	RuleNonNegative   = "non_negative"
	RuleElectiveGroup = "elective_group"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is a collection of validation errors, kept in the order they were found
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Messages returns the human-readable messages in order
func (ve ValidationErrors) Messages() []string {
	messages := make([]string, 0, len(ve))
	for _, e := range ve {
		messages = append(messages, e.Message)
	}
	return messages
}

// Fields returns the distinct field names that have at least one error
func (ve ValidationErrors) Fields() []string {
	seen := make(map[string]bool, len(ve))
	fields := make([]string, 0, len(ve))
	for _, e := range ve {
		if !seen[e.Field] {
			seen[e.Field] = true
			fields = append(fields, e.Field)
		}
	}
	return fields
}

func (pe *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", pe.Field, pe.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewValidationErrorWithRule creates a new validation error with rule
func NewValidationErrorWithRule(field, message, rule string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    rule,
	}
}

// ToValidationErrors converts validator.ValidationErrors to our custom type.
// When trans is nil the built-in messages are used.
func ToValidationErrors(err error, trans ut.Translator) ValidationErrors {
	var out ValidationErrors

	var validatorErr validator.ValidationErrors
	if errors.As(err, &validatorErr) {
		for _, fe := range validatorErr {
			message := getErrorMessage(fe)
			if trans != nil {
				message = fe.Translate(trans)
			}
			out = append(out, ValidationError{
				Field:   fe.Field(),
				Message: message,
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
	}

	return out
}

// getErrorMessage returns user-friendly error messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "không được để trống"
	case "min":
		return fmt.Sprintf("phải lớn hơn hoặc bằng %s", err.Param())
	case "max":
		return fmt.Sprintf("phải nhỏ hơn hoặc bằng %s", err.Param())
	case "oneof":
		return fmt.Sprintf("phải là một trong: %s", err.Param())
	case "uuid":
		return "phải là UUID hợp lệ"
	case RuleElectiveGroup:
		return "phải là KHTN hoặc KHXH"
	case "report_format":
		return "phải là xlsx hoặc csv"
	default:
		return fmt.Sprintf("không hợp lệ (quy tắc '%s')", err.Tag())
	}
}
