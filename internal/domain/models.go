package domain

import (
	"fmt"
	"strings"
)

// IncomingLetter is a canonical surat masuk record.
// Dates are ISO-8601 strings; bare dates carry the +07:00 midnight suffix.
type IncomingLetter struct {
	ID                     int64             `json:"id"`
	LetterNumber           string            `json:"letter_number"`
	Subject                string            `json:"subject"`
	Sender                 string            `json:"sender"`
	LetterDate             string            `json:"letter_date"`
	ReceivedDate           string            `json:"received_date"`
	CategoryID             int64             `json:"category_id"`
	Category               *CategorySnapshot `json:"category"`
	Note                   *string           `json:"note"`
	AttachmentPath         *string           `json:"attachment_path"`
	District               *string           `json:"district"`
	Village                *string           `json:"village"`
	AgendaNumber           *string           `json:"agenda_number"`
	DispositionDepartment  *string           `json:"disposition_department"`
	DispositionInstruction *string           `json:"disposition_instruction"`
	CreatedAt              *string           `json:"created_at,omitempty"`
	UpdatedAt              *string           `json:"updated_at,omitempty"`
}

// OutgoingLetter is a canonical surat keluar record. LetterDate is date-only.
type OutgoingLetter struct {
	ID             int64             `json:"id"`
	LetterNumber   string            `json:"letter_number"`
	Subject        string            `json:"subject"`
	Recipient      string            `json:"recipient"`
	LetterDate     string            `json:"letter_date"`
	CategoryID     int64             `json:"category_id"`
	Category       *CategorySnapshot `json:"category"`
	Note           *string           `json:"note"`
	AttachmentPath *string           `json:"attachment_path"`
	CreatedAt      *string           `json:"created_at,omitempty"`
	UpdatedAt      *string           `json:"updated_at,omitempty"`
}

// Category is the source of truth for a letter category
type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// CategorySnapshot is the denormalized {id, name} pair carried on letter records for display
type CategorySnapshot struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PaginationMeta describes one page of a list response.
// From and To are nil when Total is zero.
type PaginationMeta struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	LastPage    int  `json:"last_page"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

// Page is a list of canonical records with its pagination metadata
type Page[T any] struct {
	Data []T           `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// ChartPoint is one bucket of the dashboard or report time series
type ChartPoint struct {
	Date          string `json:"date"`
	IncomingCount int    `json:"incoming_count"`
	OutgoingCount int    `json:"outgoing_count"`
}

// DashboardMetrics holds the dashboard totals and chart series
type DashboardMetrics struct {
	TotalIncoming     int          `json:"total_incoming"`
	TotalOutgoing     int          `json:"total_outgoing"`
	IncomingThisMonth int          `json:"incoming_this_month"`
	OutgoingThisMonth int          `json:"outgoing_this_month"`
	Chart             []ChartPoint `json:"chart"`
}

// ReportsSummary is the narrative plus chart series for a report filter
type ReportsSummary struct {
	Summary string       `json:"summary"`
	Chart   []ChartPoint `json:"chart"`
}

// User is the authenticated archive operator
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// LoginResult is the outcome of a successful login
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// ReportFile is a binary report export
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CategoryLabel returns the display label for a letter's category.
// Unknown categories render as "#<id>" instead of failing.
func CategoryLabel(snapshot *CategorySnapshot, categoryID int64) string {
	if snapshot != nil && strings.TrimSpace(snapshot.Name) != "" {
		return snapshot.Name
	}
	return fmt.Sprintf("#%d", categoryID)
}
