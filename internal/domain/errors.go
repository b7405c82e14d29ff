package domain

import (
	"fmt"
	"strings"
)

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// ValidationIssue is one schema or struct validation failure
type ValidationIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError is raised when a payload or record does not match its shape contract.
// Path and Expected describe the first offending field; Issues holds all of them.
type ValidationError struct {
	Schema   string
	Path     string
	Expected string
	Issues   []ValidationIssue
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	if e.Schema != "" {
		b.WriteString(" for ")
		b.WriteString(e.Schema)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, ": %s", e.Path)
		if e.Expected != "" {
			fmt.Fprintf(&b, " (%s)", e.Expected)
		}
	}
	if len(e.Issues) > 1 {
		fmt.Fprintf(&b, " and %d more", len(e.Issues)-1)
	}
	return b.String()
}

// Fields returns the issues keyed by path for API error bodies
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Issues))
	for _, issue := range e.Issues {
		if _, exists := fields[issue.Path]; !exists {
			fields[issue.Path] = issue.Message
		}
	}
	return fields
}

// DomainError reasons
const (
	ReasonMissingField = "missing_field"
	ReasonInvalidDate  = "invalid_date"
	ReasonInvalidShape = "invalid_shape"
)

// DomainError is raised by the normalizer when a mandatory canonical field
// cannot be resolved or a date cannot be parsed
type DomainError struct {
	Field   string
	Context string
	Reason  string
	Value   string
}

func (e *DomainError) Error() string {
	prefix := ""
	if e.Context != "" {
		prefix = e.Context + ": "
	}
	switch e.Reason {
	case ReasonInvalidDate:
		return fmt.Sprintf("%sunparseable date %q for %s", prefix, e.Value, e.Field)
	case ReasonInvalidShape:
		return fmt.Sprintf("%sunexpected payload shape for %s", prefix, e.Field)
	default:
		return fmt.Sprintf("%smissing mandatory field %s", prefix, e.Field)
	}
}

// ValidationMessages provides human-readable validation error messages
// These map validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required":    "This field is required",
	"notblank":    "Must not be blank",
	"email":       "Must be a valid email address",
	"max":         "Exceeds maximum length",
	"min":         "Below minimum length",
	"gte":         "Must be greater than or equal to minimum value",
	"gt":          "Must be greater than minimum value",
	"lte":         "Must be less than or equal to maximum value",
	"oneof":       "Must be one of the allowed values",
	"datetime":    "Must be a date in YYYY-MM-DD format",
	"archivedate": "Must be a YYYY-MM-DD date or an ISO-8601 timestamp",
	"category":    "Must reference a known category",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}

// Common error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeTimeout      = "timeout"
	ErrorTypeUpstream     = "upstream_error"
	ErrorTypeInternal     = "internal_error"
)
