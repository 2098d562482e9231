package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Study material errors
	CodeSubjectNotFound  ErrorCode = "SUBJECT_NOT_FOUND"
	CodeMaterialNotFound ErrorCode = "MATERIAL_NOT_FOUND"

	// Analysis errors
	CodeAnalysisFailed     ErrorCode = "ANALYSIS_FAILED"
	CodeContentUnavailable ErrorCode = "CONTENT_UNAVAILABLE"
	CodeAIOverloaded       ErrorCode = "AI_OVERLOADED"
	CodeAISafetyBlocked    ErrorCode = "AI_SAFETY_BLOCKED"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Helper functions for common errors

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewSubjectNotFoundError(subjectID string) *DomainError {
	return NewError(CodeSubjectNotFound, fmt.Sprintf("Subject not found: %s", subjectID), nil)
}

func NewMaterialNotFoundError(materialID string) *DomainError {
	return NewError(CodeMaterialNotFound, fmt.Sprintf("Material not found: %s", materialID), nil)
}

func NewAnalysisFailedError(reason string, err error) *DomainError {
	return NewError(CodeAnalysisFailed, reason, err)
}

func NewContentUnavailableError(source string, err error) *DomainError {
	return NewError(CodeContentUnavailable, fmt.Sprintf("Could not retrieve content from %s", source), err)
}

func NewAIOverloadedError(err error) *DomainError {
	return NewError(CodeAIOverloaded, "The AI service is overloaded, please try again later", err)
}

func NewAISafetyBlockedError(err error) *DomainError {
	return NewError(CodeAISafetyBlocked, "The AI service declined to process this content", err)
}

// ValidationError represents a single field-level validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field-level validation failures for one request
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Error())
	}
	return strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("has invalid format: %v", value)}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("must be between %d and %d, got %d", min, max, value)}
}
