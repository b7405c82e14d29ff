package schema

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/straye-as/earsip/internal/domain"
)

var (
	bareDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoTimeRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report field names the way they appear in JSON bodies
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("archivedate", func(fl validator.FieldLevel) bool {
		return IsArchiveDate(fl.Field().String())
	})

	return v
}

// IsArchiveDate reports whether s is a YYYY-MM-DD date or an ISO-8601 timestamp
func IsArchiveDate(s string) bool {
	s = strings.TrimSpace(s)
	if bareDateRe.MatchString(s) {
		_, err := time.Parse("2006-01-02", s)
		return err == nil
	}
	if isoTimeRe.MatchString(s) {
		_, err := time.Parse("2006-01-02", s[:10])
		return err == nil
	}
	return false
}

// Struct validates v using its validate tags and returns a *domain.ValidationError on failure
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := &domain.ValidationError{Schema: structName(v)}
	for i, fe := range fieldErrs {
		if i == 0 {
			ve.Path = fe.Field()
			ve.Expected = fe.Tag()
		}
		ve.Issues = append(ve.Issues, domain.ValidationIssue{
			Path:    fe.Field(),
			Message: domain.GetValidationMessage(fe.Tag()),
		})
	}
	return ve
}

// Missing builds a validation error for fields that are required but absent
func Missing(name string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	ve := &domain.ValidationError{Schema: name, Path: fields[0], Expected: "present"}
	for _, f := range fields {
		ve.Issues = append(ve.Issues, domain.ValidationIssue{Path: f, Message: domain.GetValidationMessage("required")})
	}
	return ve
}

func structName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}
