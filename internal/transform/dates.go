package transform

import (
	"regexp"
	"strings"
	"time"

	"github.com/straye-as/earsip/internal/domain"
)

// MidnightSuffix is attached to bare dates; archive dates are Western Indonesia Time
const MidnightSuffix = "T00:00:00+07:00"

var (
	bareDateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoPrefixRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T`)

	wib = time.FixedZone("WIB", 7*60*60)

	// Layouts tried for dates that are not already ISO-8601, in order
	fallbackLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006/01/02",
		"02/01/2006",
		"02-01-2006",
		"2 January 2006",
		"2 Jan 2006",
		"January 2, 2006",
		"Jan 2, 2006",
		time.RFC1123Z,
		time.RFC1123,
		time.RFC850,
		time.ANSIC,
	}
)

const isoInstant = "2006-01-02T15:04:05.000Z"

// NormalizeDateTime returns an ISO-8601 timestamp for an upstream date string.
// Bare dates get MidnightSuffix, strings already carrying a time pass through
// unchanged, other recognizable layouts are re-emitted as a UTC instant.
func NormalizeDateTime(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	switch {
	case bareDateRe.MatchString(s):
		return s + MidnightSuffix, validCalendarDate(s)
	case isoPrefixRe.MatchString(s):
		return s, validCalendarDate(s[:10])
	}

	t, ok := parseLoose(s)
	if !ok {
		return "", false
	}
	return t.UTC().Format(isoInstant), true
}

// NormalizeDate returns the YYYY-MM-DD calendar date of an upstream date string.
// Timestamps keep their own calendar date; other layouts are read in Western Indonesia Time.
func NormalizeDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	switch {
	case bareDateRe.MatchString(s):
		return s, validCalendarDate(s)
	case isoPrefixRe.MatchString(s):
		return s[:10], validCalendarDate(s[:10])
	}

	t, ok := parseLoose(s)
	if !ok {
		return "", false
	}
	return t.In(wib).Format("2006-01-02"), true
}

// DateOnly strips MidnightSuffix so a normalized bare date goes back upstream as entered
func DateOnly(s string) string {
	if strings.HasSuffix(s, MidnightSuffix) {
		return strings.TrimSuffix(s, MidnightSuffix)
	}
	return s
}

// validCalendarDate rejects well-shaped but impossible dates such as 2025-02-30 or 0000-00-00
func validCalendarDate(ymd string) bool {
	_, err := time.Parse("2006-01-02", ymd)
	return err == nil
}

func parseLoose(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, wib); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func dateError(field, context, value string) *domain.DomainError {
	return &domain.DomainError{Field: field, Context: context, Reason: domain.ReasonInvalidDate, Value: value}
}

func missingError(field, context string) *domain.DomainError {
	return &domain.DomainError{Field: field, Context: context, Reason: domain.ReasonMissingField}
}

func shapeError(field, context string) *domain.DomainError {
	return &domain.DomainError{Field: field, Context: context, Reason: domain.ReasonInvalidShape}
}
