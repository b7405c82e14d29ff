package service

import (
	"errors"

	"github.com/straye-as/earsip/internal/domain"
)

// Common service errors
var (
	// ErrInvalidID is returned when a record id is not a positive integer
	ErrInvalidID = errors.New("invalid id")

	// ErrUnauthorized is returned when a call needs a session and none is held
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmptyExport is returned when the upstream answers an export with no document
	ErrEmptyExport = errors.New("report export returned an empty document")
)

// unknownCategory builds the validation error for a category id missing from the catalogue
func unknownCategory(schemaName string) error {
	return &domain.ValidationError{
		Schema:   schemaName,
		Path:     "category_id",
		Expected: "known category",
		Issues: []domain.ValidationIssue{
			{Path: "category_id", Message: domain.GetValidationMessage("category")},
		},
	}
}
