package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// IncomingLetterInput carries create and update fields for a surat masuk.
// A nil field is left out of the upstream payload.
type IncomingLetterInput struct {
	LetterNumber           *string `json:"letter_number,omitempty" validate:"omitempty,notblank,max=100"`
	Subject                *string `json:"subject,omitempty" validate:"omitempty,notblank,max=255"`
	Sender                 *string `json:"sender,omitempty" validate:"omitempty,max=255"`
	LetterDate             *string `json:"letter_date,omitempty" validate:"omitempty,archivedate"`
	ReceivedDate           *string `json:"received_date,omitempty" validate:"omitempty,archivedate"`
	CategoryID             *int64  `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Note                   *string `json:"note,omitempty" validate:"omitempty,max=2000"`
	AttachmentPath         *string `json:"attachment_path,omitempty" validate:"omitempty,max=500"`
	District               *string `json:"district,omitempty" validate:"omitempty,max=100"`
	Village                *string `json:"village,omitempty" validate:"omitempty,max=100"`
	AgendaNumber           *string `json:"agenda_number,omitempty" validate:"omitempty,max=100"`
	DispositionDepartment  *string `json:"disposition_department,omitempty" validate:"omitempty,max=255"`
	DispositionInstruction *string `json:"disposition_instruction,omitempty" validate:"omitempty,max=2000"`
}

// MissingForCreate lists the canonical fields a new surat masuk cannot be created without
func (in *IncomingLetterInput) MissingForCreate() []string {
	var missing []string
	if isBlank(in.LetterNumber) {
		missing = append(missing, "letter_number")
	}
	if isBlank(in.Subject) {
		missing = append(missing, "subject")
	}
	if isBlank(in.LetterDate) {
		missing = append(missing, "letter_date")
	}
	if in.CategoryID == nil {
		missing = append(missing, "category_id")
	}
	return missing
}

// OutgoingLetterInput carries create and update fields for a surat keluar
type OutgoingLetterInput struct {
	LetterNumber   *string `json:"letter_number,omitempty" validate:"omitempty,notblank,max=100"`
	Subject        *string `json:"subject,omitempty" validate:"omitempty,notblank,max=255"`
	Recipient      *string `json:"recipient,omitempty" validate:"omitempty,max=255"`
	LetterDate     *string `json:"letter_date,omitempty" validate:"omitempty,archivedate"`
	CategoryID     *int64  `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Note           *string `json:"note,omitempty" validate:"omitempty,max=2000"`
	AttachmentPath *string `json:"attachment_path,omitempty" validate:"omitempty,max=500"`
}

// MissingForCreate lists the canonical fields a new surat keluar cannot be created without
func (in *OutgoingLetterInput) MissingForCreate() []string {
	var missing []string
	if isBlank(in.LetterNumber) {
		missing = append(missing, "letter_number")
	}
	if isBlank(in.Subject) {
		missing = append(missing, "subject")
	}
	if isBlank(in.LetterDate) {
		missing = append(missing, "letter_date")
	}
	if in.CategoryID == nil {
		missing = append(missing, "category_id")
	}
	return missing
}

// CategoryInput carries create and update fields for a category
type CategoryInput struct {
	Name        string  `json:"name" validate:"required,notblank,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// LoginInput is the credential pair posted to the upstream login endpoint
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LetterFilter holds list filters shared by both letter kinds
type LetterFilter struct {
	Q          string `json:"q,omitempty"`
	CategoryID int64  `json:"category_id,omitempty" validate:"gte=0"`
	DateFrom   string `json:"date_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateTo     string `json:"date_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	District   string `json:"district,omitempty"`
	Village    string `json:"village,omitempty"`
	Sort       string `json:"sort,omitempty" validate:"omitempty,oneof=newest oldest number_asc number_desc"`
	Page       int    `json:"page,omitempty" validate:"gte=0"`
	PerPage    int    `json:"per_page,omitempty" validate:"gte=0,lte=100"`
}

// Letter list sort orders understood by the upstream
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortNumberAsc  = "number_asc"
	SortNumberDesc = "number_desc"
)

// Query builds the upstream query string, dropping empty values
func (f LetterFilter) Query() url.Values {
	q := url.Values{}
	setString(q, "q", f.Q)
	setInt(q, "category_id", int(f.CategoryID))
	setString(q, "date_from", f.DateFrom)
	setString(q, "date_to", f.DateTo)
	setString(q, "district", f.District)
	setString(q, "village", f.Village)
	setString(q, "sort", f.Sort)
	setInt(q, "page", f.Page)
	setInt(q, "per_page", f.PerPage)
	return q
}

// LetterFilterFromQuery reads a LetterFilter from request query parameters.
// limit is accepted as an alias of per_page.
func LetterFilterFromQuery(values url.Values) LetterFilter {
	perPage := values.Get("per_page")
	if perPage == "" {
		perPage = values.Get("limit")
	}
	return LetterFilter{
		Q:          strings.TrimSpace(values.Get("q")),
		CategoryID: int64(atoi(values.Get("category_id"))),
		DateFrom:   strings.TrimSpace(values.Get("date_from")),
		DateTo:     strings.TrimSpace(values.Get("date_to")),
		District:   strings.TrimSpace(values.Get("district")),
		Village:    strings.TrimSpace(values.Get("village")),
		Sort:       strings.TrimSpace(values.Get("sort")),
		Page:       atoi(values.Get("page")),
		PerPage:    atoi(perPage),
	}
}

// Report entity and period values
const (
	ReportEntityAll      = "all"
	ReportEntityIncoming = "incoming"
	ReportEntityOutgoing = "outgoing"

	ReportPeriodMonthly = "monthly"
	ReportPeriodYearly  = "yearly"
)

// ReportFilter scopes a report summary or export
type ReportFilter struct {
	Entity string `json:"entity,omitempty" validate:"omitempty,oneof=all incoming outgoing"`
	Period string `json:"period,omitempty" validate:"omitempty,oneof=monthly yearly"`
	Month  int    `json:"month,omitempty" validate:"gte=0,lte=12"`
	Year   int    `json:"year,omitempty" validate:"gte=0"`
}

// Query builds the upstream query string, dropping empty values
func (f ReportFilter) Query() url.Values {
	q := url.Values{}
	setString(q, "entity", f.Entity)
	setString(q, "period", f.Period)
	setInt(q, "month", f.Month)
	setInt(q, "year", f.Year)
	return q
}

// Body returns the export request body, dropping empty values
func (f ReportFilter) Body() map[string]any {
	body := map[string]any{}
	for key, values := range f.Query() {
		body[key] = values[0]
	}
	if f.Month > 0 {
		body["month"] = f.Month
	}
	if f.Year > 0 {
		body["year"] = f.Year
	}
	return body
}

// ReportFilterFromQuery reads a ReportFilter from request query parameters
func ReportFilterFromQuery(values url.Values) ReportFilter {
	return ReportFilter{
		Entity: strings.TrimSpace(values.Get("entity")),
		Period: strings.TrimSpace(values.Get("period")),
		Month:  atoi(values.Get("month")),
		Year:   atoi(values.Get("year")),
	}
}

func setString(q url.Values, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		q.Set(key, v)
	}
}

func setInt(q url.Values, key string, value int) {
	if value > 0 {
		q.Set(key, strconv.Itoa(value))
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// Int64Ptr returns a pointer to n
func Int64Ptr(n int64) *int64 {
	return &n
}
