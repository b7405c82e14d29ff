package transform_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/schema"
	"github.com/straye-as/earsip/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, doc string) any {
	t.Helper()
	v, err := transform.Decode([]byte(doc))
	require.NoError(t, err)
	return v
}

func TestResolve_CandidateOrderWins(t *testing.T) {
	candidates := transform.Strings(transform.IncomingLetterNumberKeys...)

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "later raw key first in object", doc: `{"nomor":"N-1","no_surat":"S-1"}`, want: "S-1"},
		{name: "earlier raw key first in object", doc: `{"no_surat":"S-1","nomor":"N-1"}`, want: "S-1"},
		{name: "blank candidate skipped", doc: `{"no_letter":"   ","nomor_surat":"NS-9"}`, want: "NS-9"},
		{name: "null candidate skipped", doc: `{"no_letter":null,"number":"7"}`, want: "7"},
		{name: "numeric value accepted", doc: `{"nomor":12}`, want: "12"},
		{name: "value trimmed", doc: `{"no_surat":"  X/1  "}`, want: "X/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decode(t, tt.doc).(map[string]any)
			got, ok := transform.Resolve(rec, candidates)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_DottedPaths(t *testing.T) {
	rec := decode(t, `{"kategori":{"id":"4"}}`).(map[string]any)

	id, ok := transform.Resolve(rec, transform.Ints(transform.CategoryIDKeys...))
	require.True(t, ok)
	assert.Equal(t, int64(4), id)

	_, ok = transform.Resolve(rec, transform.Ints("kategori.id.value"))
	assert.False(t, ok)
}

func TestExtractors(t *testing.T) {
	n, ok := transform.Int(json.Number("3.0"))
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	_, ok = transform.Int(json.Number("3.5"))
	assert.False(t, ok)

	_, ok = transform.Int("abc")
	assert.False(t, ok)

	f, ok := transform.Float("2.5")
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	_, ok = transform.String(true)
	assert.False(t, ok)
}

func TestNormalizeDateTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "2025-01-01", want: "2025-01-01T00:00:00+07:00", ok: true},
		{in: "1999-12-31", want: "1999-12-31T00:00:00+07:00", ok: true},
		{in: "2025-01-01T08:30:00Z", want: "2025-01-01T08:30:00Z", ok: true},
		{in: "2025-01-01T08:30:00.000000Z", want: "2025-01-01T08:30:00.000000Z", ok: true},
		{in: "2025-01-01 10:00:00", want: "2025-01-01T03:00:00.000Z", ok: true},
		{in: "15/02/2025", want: "2025-02-14T17:00:00.000Z", ok: true},
		{in: "2024-02-29", want: "2024-02-29T00:00:00+07:00", ok: true},
		{in: "2025-02-30", ok: false},
		{in: "2025-13-45", ok: false},
		{in: "0000-00-00", ok: false},
		{in: "0000-00-00 00:00:00", ok: false},
		{in: "2025-13-45T08:30:00Z", ok: false},
		{in: "kemarin", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := transform.NormalizeDateTime(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	got, ok := transform.NormalizeDate("2025-03-04T00:00:00+07:00")
	assert.True(t, ok)
	assert.Equal(t, "2025-03-04", got)

	got, ok = transform.NormalizeDate("04-03-2025")
	assert.True(t, ok)
	assert.Equal(t, "2025-03-04", got)

	_, ok = transform.NormalizeDate("besok")
	assert.False(t, ok)

	for _, impossible := range []string{"2025-02-30", "2025-13-45", "0000-00-00", "2025-02-30T10:00:00Z"} {
		_, ok = transform.NormalizeDate(impossible)
		assert.False(t, ok, impossible)
	}
}

func TestNormalizeLetters_RejectImpossibleDates(t *testing.T) {
	for _, date := range []string{"2025-13-45", "2025-02-30", "0000-00-00"} {
		t.Run(date, func(t *testing.T) {
			raw := decode(t, `{"id":5,"no_surat":"X/1","tanggal":"`+date+`","category_id":2}`)

			_, err := transform.NormalizeIncoming(raw, "surat masuk detail")
			var domainErr *domain.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "letter_date", domainErr.Field)
			assert.Equal(t, domain.ReasonInvalidDate, domainErr.Reason)

			_, err = transform.NormalizeOutgoing(raw, "surat keluar detail")
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domain.ReasonInvalidDate, domainErr.Reason)
		})
	}
}

func TestNormalizeIncoming_Scenario(t *testing.T) {
	raw := decode(t, `{"id":5,"no_surat":"X/1","tanggal":"2025-01-01","category":{"id":2,"name":"Keuangan"}}`)

	letter, err := transform.NormalizeIncoming(raw, "surat masuk detail")
	require.NoError(t, err)

	assert.Equal(t, int64(5), letter.ID)
	assert.Equal(t, "X/1", letter.LetterNumber)
	assert.Equal(t, transform.DefaultSubject, letter.Subject)
	assert.Equal(t, "2025-01-01T00:00:00+07:00", letter.LetterDate)
	assert.Equal(t, letter.LetterDate, letter.ReceivedDate)
	assert.Equal(t, int64(2), letter.CategoryID)
	assert.Equal(t, &domain.CategorySnapshot{ID: 2, Name: "Keuangan"}, letter.Category)
	assert.Equal(t, "", letter.Sender)
	assert.Nil(t, letter.Note)

	assert.NoError(t, schema.IncomingLetter.ValidateValue(letter))
}

func TestNormalizeIncoming_LaravelShape(t *testing.T) {
	raw := decode(t, `{"data":{
		"id":"9","nomor_surat":"005/DPMD/2025","perihal":"Undangan rapat","pengirim":"Camat Sungai Raya",
		"tanggal_surat":"2025-02-03","tanggal_diterima":"2025-02-04 09:15:00","kategori_id":3,
		"kategori":{"id":3,"nama_kategori":"Undangan"},"lampiran":"ignored","file_url":"https://files/x.pdf",
		"kecamatan":"Sungai Raya","desa":"Kapur","nomor_agenda":"AG-12","bidang_tujuan":"Pemerintahan","disposisi":"Tindak lanjuti"
	}}`)

	letter, err := transform.NormalizeIncoming(raw, "surat masuk detail")
	require.NoError(t, err)

	assert.Equal(t, int64(9), letter.ID)
	assert.Equal(t, "005/DPMD/2025", letter.LetterNumber)
	assert.Equal(t, "Undangan rapat", letter.Subject)
	assert.Equal(t, "Camat Sungai Raya", letter.Sender)
	assert.Equal(t, "2025-02-04T02:15:00.000Z", letter.ReceivedDate)
	assert.Equal(t, "Undangan", letter.Category.Name)
	require.NotNil(t, letter.AttachmentPath)
	assert.Equal(t, "https://files/x.pdf", *letter.AttachmentPath)
	assert.Equal(t, "Kapur", *letter.Village)
	assert.Equal(t, "Tindak lanjuti", *letter.DispositionInstruction)
}

func TestNormalizeIncoming_MandatoryFields(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		field  string
		reason string
	}{
		{name: "no letter number", doc: `{"id":1,"tanggal":"2025-01-01","category_id":1}`, field: "letter_number", reason: domain.ReasonMissingField},
		{name: "blank letter number", doc: `{"no_surat":" ","tanggal":"2025-01-01","category_id":1}`, field: "letter_number", reason: domain.ReasonMissingField},
		{name: "no date", doc: `{"no_surat":"A","category_id":1}`, field: "letter_date", reason: domain.ReasonMissingField},
		{name: "no category", doc: `{"no_surat":"A","tanggal":"2025-01-01","category":{"name":"x"}}`, field: "category_id", reason: domain.ReasonMissingField},
		{name: "bad date", doc: `{"no_surat":"A","tanggal":"besok","category_id":1}`, field: "letter_date", reason: domain.ReasonInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transform.NormalizeIncoming(decode(t, tt.doc), "surat masuk list")

			var de *domain.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.field, de.Field)
			assert.Equal(t, tt.reason, de.Reason)
			assert.Equal(t, "surat masuk list", de.Context)
		})
	}
}

func TestNormalizeIncoming_CategoryWithoutID(t *testing.T) {
	raw := decode(t, `{"no_surat":"A","tanggal":"2025-01-01","category_id":7,"category":{"name":"Tanpa id"}}`)

	letter, err := transform.NormalizeIncoming(raw, "")
	require.NoError(t, err)
	assert.Nil(t, letter.Category)
	assert.Equal(t, "#7", domain.CategoryLabel(letter.Category, letter.CategoryID))
}

func TestNormalizeOutgoing(t *testing.T) {
	raw := decode(t, `{"id":1,"no_surat_keluar":"K/9","subject":"Balasan","tujuan":"Bupati","letter_date":"2025-05-06T00:00:00+07:00","category_id":2}`)

	letter, err := transform.NormalizeOutgoing(raw, "surat keluar detail")
	require.NoError(t, err)
	assert.Equal(t, "K/9", letter.LetterNumber)
	assert.Equal(t, "Bupati", letter.Recipient)
	assert.Equal(t, "2025-05-06", letter.LetterDate)
	assert.NoError(t, schema.OutgoingLetter.ValidateValue(letter))
}

// remarshal simulates the upstream storing a write payload and echoing it back
func remarshal(t *testing.T, body map[string]any, id int64) any {
	t.Helper()
	body["id"] = id
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return decode(t, string(data))
}

func TestRoundTrip_Incoming(t *testing.T) {
	docs := []string{
		`{"id":5,"no_surat":"X/1","tanggal":"2025-01-01","category":{"id":2,"name":"Keuangan"}}`,
		`{"id":6,"nomor_surat":"B-2","judul":"Laporan","tgl_surat":"2025-03-01T10:00:00+07:00","kategori":{"id":"3"}}`,
		`{"id":7,"number":77,"hal":"Edaran","date":"2024-12-31","category_id":"1","pengirim":"Dinas"}`,
	}

	for _, doc := range docs {
		first, err := transform.NormalizeIncoming(decode(t, doc), "")
		require.NoError(t, err)

		body := transform.IncomingPayload(transform.IncomingInput(first))
		second, err := transform.NormalizeIncoming(remarshal(t, body, first.ID), "")
		require.NoError(t, err)

		assert.Equal(t, first.LetterNumber, second.LetterNumber)
		assert.Equal(t, first.Subject, second.Subject)
		assert.Equal(t, first.CategoryID, second.CategoryID)
		assert.Equal(t, first.LetterDate, second.LetterDate)
	}
}

func TestRoundTrip_Outgoing(t *testing.T) {
	first, err := transform.NormalizeOutgoing(decode(t, `{"id":2,"nomor":"K-1","perihal":"Jawaban","tanggal_surat":"2025-04-01","category_id":4}`), "")
	require.NoError(t, err)

	body := transform.OutgoingPayload(transform.OutgoingInput(first))
	second, err := transform.NormalizeOutgoing(remarshal(t, body, first.ID), "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIncomingPayload_DropsUnsetFields(t *testing.T) {
	body := transform.IncomingPayload(domain.IncomingLetterInput{
		Subject:    domain.StringPtr("Perubahan"),
		LetterDate: domain.StringPtr("2025-01-01T00:00:00+07:00"),
	})

	assert.Equal(t, map[string]any{"perihal": "Perubahan", "tanggal_surat": "2025-01-01"}, body)
}

func TestExtractItems(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{name: "data array", doc: `{"data":[{"id":1},{"id":2}]}`, want: 2},
		{name: "laravel nested", doc: `{"data":{"data":[{"id":1}],"current_page":1}}`, want: 1},
		{name: "records", doc: `{"records":[{"id":1},{"id":2},{"id":3}]}`, want: 3},
		{name: "empty data falls through to records", doc: `{"data":[],"records":[{"id":1}]}`, want: 1},
		{name: "all empty", doc: `{"data":[],"records":[]}`, want: 0},
		{name: "bare array", doc: `[{"id":1}]`, want: 1},
		{name: "no envelope", doc: `{"message":"ok"}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := transform.ExtractItems(decode(t, tt.doc))
			assert.NotNil(t, items)
			assert.Len(t, items, tt.want)
		})
	}
}

func TestSynthesizeMeta(t *testing.T) {
	t.Run("total zero has no range", func(t *testing.T) {
		for _, page := range []int{1, 2, 7} {
			meta := transform.SynthesizeMeta(decode(t, `{"data":[],"meta":{"total":0}}`), 0, transform.PageRequest{Page: page, PerPage: 25})
			assert.Nil(t, meta.From)
			assert.Nil(t, meta.To)
			assert.Equal(t, 1, meta.LastPage)
		}
	})

	t.Run("page past the end has no range", func(t *testing.T) {
		meta := transform.SynthesizeMeta(decode(t, `{"data":[],"meta":{"total":25,"per_page":10,"current_page":5}}`), 0, transform.PageRequest{})
		assert.Nil(t, meta.From)
		assert.Nil(t, meta.To)
		assert.Equal(t, 25, meta.Total)
		assert.Equal(t, 5, meta.CurrentPage)
		assert.Equal(t, 3, meta.LastPage)
	})

	t.Run("range from page and count", func(t *testing.T) {
		meta := transform.SynthesizeMeta(decode(t, `{"meta":{"total":25,"per_page":10,"current_page":2}}`), 10, transform.PageRequest{})
		require.NotNil(t, meta.From)
		require.NotNil(t, meta.To)
		assert.Equal(t, 11, *meta.From)
		assert.Equal(t, 20, *meta.To)
		assert.Equal(t, 3, meta.LastPage)
	})

	t.Run("last partial page", func(t *testing.T) {
		meta := transform.SynthesizeMeta(decode(t, `{"data":{"total":25,"current_page":3}}`), 5, transform.PageRequest{PerPage: 10})
		assert.Equal(t, 21, *meta.From)
		assert.Equal(t, 25, *meta.To)
	})

	t.Run("bare array uses request", func(t *testing.T) {
		meta := transform.SynthesizeMeta(decode(t, `[{"id":1},{"id":2}]`), 2, transform.PageRequest{Page: 1, DefaultPerPage: 10})
		assert.Equal(t, 1, meta.CurrentPage)
		assert.Equal(t, 10, meta.PerPage)
		assert.Equal(t, 2, meta.Total)
		assert.Equal(t, 1, meta.LastPage)
	})

	t.Run("upstream range kept", func(t *testing.T) {
		meta := transform.SynthesizeMeta(decode(t, `{"current_page":1,"per_page":10,"total":3,"last_page":1,"from":1,"to":3}`), 3, transform.PageRequest{})
		assert.Equal(t, 1, *meta.From)
		assert.Equal(t, 3, *meta.To)
	})
}

func TestNormalizeIncomingPage(t *testing.T) {
	doc := `{"data":{"data":[
		{"id":1,"nomor_surat":"A","tanggal_surat":"2025-01-01","category_id":1},
		{"id":2,"nomor_surat":"B","tanggal_surat":"2025-01-02","category_id":1}
	],"current_page":1,"per_page":2,"total":5,"last_page":3}}`

	page, err := transform.NormalizeIncomingPage(decode(t, doc), transform.PageRequest{DefaultPerPage: 10})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 5, page.Meta.Total)
	assert.Equal(t, 3, page.Meta.LastPage)
	assert.NoError(t, schema.PaginationMeta.ValidateValue(page.Meta))

	_, err = transform.NormalizeIncomingPage(decode(t, `{"data":[{"id":3}]}`), transform.PageRequest{})
	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "surat masuk list item 0", de.Context)
}

func TestNormalizeDashboard(t *testing.T) {
	t.Run("empty chart falls through to overview chart", func(t *testing.T) {
		doc := `{"data":{"total_surat_masuk":12,"total_outgoing":"4","chart":[],
			"overview":{"chart":[{"tanggal":"2025-01","masuk":3,"keluar":1},{"label":"2025-02","incoming_count":2}]}}}`

		metrics, err := transform.NormalizeDashboard(decode(t, doc))
		require.NoError(t, err)
		assert.Equal(t, 12, metrics.TotalIncoming)
		assert.Equal(t, 4, metrics.TotalOutgoing)
		assert.Equal(t, []domain.ChartPoint{
			{Date: "2025-01", IncomingCount: 3, OutgoingCount: 1},
			{Date: "2025-02", IncomingCount: 2},
		}, metrics.Chart)
		assert.NoError(t, schema.DashboardMetrics.ValidateValue(metrics))
	})

	t.Run("all series empty yields empty chart", func(t *testing.T) {
		metrics, err := transform.NormalizeDashboard(decode(t, `{"chart_data":[],"charts":[]}`))
		require.NoError(t, err)
		assert.NotNil(t, metrics.Chart)
		assert.Empty(t, metrics.Chart)
	})

	t.Run("non-object payload", func(t *testing.T) {
		_, err := transform.NormalizeDashboard(decode(t, `[1,2]`))
		var de *domain.DomainError
		assert.True(t, errors.As(err, &de))
	})
}

func TestNormalizeReportsSummary(t *testing.T) {
	summary, err := transform.NormalizeReportsSummary(decode(t, `{"ringkasan":"Januari: 3 surat","charts":[{"month":"2025-01","surat_masuk":3}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Januari: 3 surat", summary.Summary)
	assert.Len(t, summary.Chart, 1)
	assert.NoError(t, schema.ReportsSummary.ValidateValue(summary))
}

func TestNormalizeLogin(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "token", doc: `{"data":{"token":"abc","user":{"id":1,"name":"Admin","email":"admin@earsip.local"}}}`},
		{name: "access token", doc: `{"data":{"access_token":"abc","user":{"id":1,"name":"Admin","email":"admin@earsip.local"}}}`},
		{name: "top level", doc: `{"token":"abc","user":{"id":1,"email":"admin@earsip.local"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := transform.NormalizeLogin(decode(t, tt.doc))
			require.NoError(t, err)
			assert.Equal(t, "abc", res.Token)
			assert.Equal(t, "admin@earsip.local", res.User.Email)
		})
	}

	_, err := transform.NormalizeLogin(decode(t, `{"message":"ok"}`))
	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "token", de.Field)
}

func TestNormalizeCategories(t *testing.T) {
	cats, err := transform.NormalizeCategories(decode(t, `{"data":[{"id":1,"name":"Undangan"},{"id":"2","nama_kategori":"Edaran","deskripsi":"Surat edaran"}]}`), "categories")
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Edaran", cats[1].Name)
	assert.Equal(t, "Surat edaran", *cats[1].Description)
}
