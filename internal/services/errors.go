package services

import (
	"errors"
	"fmt"

	apperrors "github.com/edutrial/thpt-score-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrForbidden  = errors.New("forbidden - insufficient permissions")
	ErrBadRequest = errors.New("bad request")

	// Batch specific errors
	ErrBatchNotFound       = errors.New("batch not found")
	ErrBatchTooManyRows    = errors.New("batch exceeds the maximum number of rows")
	ErrBatchEmpty          = errors.New("batch file has no data rows")
	ErrBatchMissingColumns = errors.New("batch file is missing required columns")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrReportFormat        = errors.New("unsupported report format")
	ErrReportUnavailable   = errors.New("batch has no report")
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// Unwrap lets errors.Is match the sentinel named by the rule
func (bre *BusinessRuleError) Unwrap() error {
	return businessRules[bre.Rule]
}

var businessRules = map[string]error{
	"max_rows":        ErrBatchTooManyRows,
	"empty_file":      ErrBatchEmpty,
	"missing_columns": ErrBatchMissingColumns,
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func (pe *PermissionError) Unwrap() error {
	return ErrForbidden
}

// ===== ERROR HELPERS =====

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrBatchNotFound) ||
		errors.Is(err, ErrReportUnavailable)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsBadRequest covers uploads the service cannot read at all
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrUnsupportedFileType) ||
		errors.Is(err, ErrReportFormat)
}
