package schema_test

import (
	"errors"
	"testing"

	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validIncoming() domain.IncomingLetter {
	return domain.IncomingLetter{
		ID:           5,
		LetterNumber: "X/1",
		Subject:      "Tanpa perihal",
		LetterDate:   "2025-01-01T00:00:00+07:00",
		ReceivedDate: "2025-01-01T00:00:00+07:00",
		CategoryID:   2,
		Category:     &domain.CategorySnapshot{ID: 2, Name: "Keuangan"},
	}
}

func TestIncomingLetterSchema(t *testing.T) {
	t.Run("valid record passes", func(t *testing.T) {
		assert.NoError(t, schema.IncomingLetter.ValidateValue(validIncoming()))
	})

	t.Run("nil category passes", func(t *testing.T) {
		rec := validIncoming()
		rec.Category = nil
		assert.NoError(t, schema.IncomingLetter.ValidateValue(rec))
	})

	t.Run("empty letter number fails", func(t *testing.T) {
		rec := validIncoming()
		rec.LetterNumber = ""
		err := schema.IncomingLetter.ValidateValue(rec)

		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "incoming_letter", ve.Schema)
		assert.Equal(t, "letter_number", ve.Path)
	})

	t.Run("bare date fails the timestamp pattern", func(t *testing.T) {
		rec := validIncoming()
		rec.LetterDate = "2025-01-01"
		err := schema.IncomingLetter.ValidateValue(rec)

		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "letter_date", ve.Path)
	})
}

func TestIncomingLetterSchema_RejectsUnknownFields(t *testing.T) {
	doc := []byte(`{
		"id": 1, "letter_number": "A", "subject": "B", "sender": "", "letter_date": "2025-01-01T00:00:00+07:00",
		"received_date": "2025-01-01T00:00:00+07:00", "category_id": 1, "category": null, "note": null,
		"attachment_path": null, "district": null, "village": null, "agenda_number": null,
		"disposition_department": null, "disposition_instruction": null, "nomor_surat": "A"
	}`)

	err := schema.IncomingLetter.Validate(doc)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "nomor_surat", ve.Path)
	assert.Equal(t, "absent", ve.Expected)
}

func TestIncomingLetterSchema_ReportsMissingField(t *testing.T) {
	doc := []byte(`{"id": 1}`)

	err := schema.IncomingLetter.Validate(doc)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "present", ve.Expected)
	assert.Greater(t, len(ve.Issues), 1)
}

func TestOutgoingLetterSchema_DateOnly(t *testing.T) {
	rec := domain.OutgoingLetter{ID: 1, LetterNumber: "K/1", Subject: "Balasan", LetterDate: "2025-02-03", CategoryID: 1}
	assert.NoError(t, schema.OutgoingLetter.ValidateValue(rec))

	rec.LetterDate = "2025-02-03T00:00:00+07:00"
	assert.Error(t, schema.OutgoingLetter.ValidateValue(rec))
}

func TestPaginationMetaSchema(t *testing.T) {
	from, to := 11, 20
	assert.NoError(t, schema.PaginationMeta.ValidateValue(domain.PaginationMeta{
		CurrentPage: 2, PerPage: 10, Total: 25, LastPage: 3, From: &from, To: &to,
	}))
	assert.NoError(t, schema.PaginationMeta.ValidateValue(domain.PaginationMeta{
		CurrentPage: 1, PerPage: 10, Total: 0, LastPage: 1,
	}))
	assert.Error(t, schema.PaginationMeta.ValidateValue(domain.PaginationMeta{CurrentPage: 0, PerPage: 10, LastPage: 1}))
}

func TestDashboardMetricsSchema(t *testing.T) {
	assert.NoError(t, schema.DashboardMetrics.ValidateValue(domain.DashboardMetrics{
		TotalIncoming: 3,
		Chart:         []domain.ChartPoint{{Date: "2025-01", IncomingCount: 1}},
	}))
}

func TestRawSchemas(t *testing.T) {
	tests := []struct {
		name    string
		schema  *schema.Schema
		doc     string
		wantErr bool
	}{
		{name: "list envelope", schema: schema.RawList, doc: `{"data":{"data":[],"current_page":1}}`},
		{name: "bare list", schema: schema.RawList, doc: `[{"id":1}]`},
		{name: "list with string data", schema: schema.RawList, doc: `{"data":"oops"}`, wantErr: true},
		{name: "record", schema: schema.RawRecord, doc: `{"data":{"id":1}}`},
		{name: "record not object", schema: schema.RawRecord, doc: `"text"`, wantErr: true},
		{name: "login", schema: schema.RawLogin, doc: `{"data":{"token":"t"}}`},
		{name: "dashboard", schema: schema.RawDashboard, doc: `{"overview":{"chart":[]}}`},
		{name: "malformed json", schema: schema.RawRecord, doc: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate([]byte(tt.doc))
			if tt.wantErr {
				var ve *domain.ValidationError
				assert.True(t, errors.As(err, &ve))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStruct(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		in := domain.IncomingLetterInput{
			LetterNumber: domain.StringPtr("005/2025"),
			LetterDate:   domain.StringPtr("2025-01-01"),
			CategoryID:   domain.Int64Ptr(2),
		}
		assert.NoError(t, schema.Struct(in))
	})

	t.Run("invalid date and category", func(t *testing.T) {
		in := domain.IncomingLetterInput{
			LetterDate: domain.StringPtr("01/02/2025"),
			CategoryID: domain.Int64Ptr(0),
		}
		err := schema.Struct(&in)

		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "IncomingLetterInput", ve.Schema)
		fields := ve.Fields()
		assert.Contains(t, fields, "letter_date")
		assert.Contains(t, fields, "category_id")
	})

	t.Run("login requires email", func(t *testing.T) {
		err := schema.Struct(domain.LoginInput{Email: "bukan-email", Password: "x"})
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "email", ve.Path)
		assert.Equal(t, "email", ve.Expected)
	})
}

func TestIsArchiveDate(t *testing.T) {
	assert.True(t, schema.IsArchiveDate("2025-01-31"))
	assert.True(t, schema.IsArchiveDate("2025-01-31T08:00:00Z"))
	assert.False(t, schema.IsArchiveDate("2025-02-31"))
	assert.False(t, schema.IsArchiveDate("31-01-2025"))
}

func TestMissing(t *testing.T) {
	assert.NoError(t, schema.Missing("incoming_letter"))

	err := schema.Missing("incoming_letter", "letter_number", "letter_date")
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "letter_number", ve.Path)
	assert.Len(t, ve.Issues, 2)
}
