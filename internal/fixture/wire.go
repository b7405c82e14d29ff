package fixture

import (
	"math"
	"time"

	"github.com/straye-as/earsip/internal/transform"
)

// Laravel renders timestamps with microseconds in UTC
const wireTimestamp = "2006-01-02T15:04:05.000000Z"

// The legacy surat masuk endpoints speak Indonesian field names inside a
// Laravel paginator; the newer surat keluar endpoints speak English names
// with a separate meta object.

func incomingRecord(l SuratMasuk) map[string]any {
	rec := map[string]any{
		"id":               l.ID,
		"nomor_surat":      l.NomorSurat,
		"perihal":          l.Perihal,
		"pengirim":         l.Pengirim,
		"tanggal_surat":    l.TanggalSurat,
		"tanggal_diterima": l.TanggalDiterima,
		"kategori_id":      l.KategoriID,
		"keterangan":       l.Keterangan,
		"file_path":        l.FilePath,
		"kecamatan":        l.Kecamatan,
		"desa":             l.Desa,
		"nomor_agenda":     l.NomorAgenda,
		"bidang_tujuan":    l.BidangTujuan,
		"disposisi":        l.Disposisi,
		"created_at":       l.CreatedAt.UTC().Format(wireTimestamp),
		"updated_at":       l.UpdatedAt.UTC().Format(wireTimestamp),
	}
	if l.Kategori != nil {
		rec["kategori"] = map[string]any{"id": l.Kategori.ID, "nama": l.Kategori.Nama}
	}
	return rec
}

func outgoingRecord(l SuratKeluar) map[string]any {
	rec := map[string]any{
		"id":          l.ID,
		"no_letter":   l.NomorSurat,
		"subject":     l.Perihal,
		"recipient":   l.Penerima,
		"letter_date": l.TanggalSurat,
		"category_id": l.KategoriID,
		"note":        l.Keterangan,
		"file_url":    l.FilePath,
		"createdAt":   l.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt":   l.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if l.Kategori != nil {
		rec["category"] = map[string]any{"id": l.Kategori.ID, "name": l.Kategori.Nama}
	}
	return rec
}

func categoryRecord(c Kategori) map[string]any {
	return map[string]any{
		"id":         c.ID,
		"nama":       c.Nama,
		"deskripsi":  c.Deskripsi,
		"created_at": c.CreatedAt.UTC().Format(wireTimestamp),
	}
}

// laravelPage wraps items the way Laravel's LengthAwarePaginator does
func laravelPage(items []map[string]any, total int64, page, perPage int) map[string]any {
	lastPage := int(math.Max(1, math.Ceil(float64(total)/float64(perPage))))
	inner := map[string]any{
		"data":         items,
		"current_page": page,
		"per_page":     perPage,
		"total":        total,
		"last_page":    lastPage,
		"from":         nil,
		"to":           nil,
	}
	if len(items) > 0 {
		from := (page-1)*perPage + 1
		inner["from"] = from
		inner["to"] = from + len(items) - 1
	}
	return map[string]any{"success": true, "data": inner}
}

// metaPage wraps items with a separate meta object and no from/to
func metaPage(items []map[string]any, total int64, page, perPage int) map[string]any {
	return map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"limit":       perPage,
			"total":       total,
			"total_pages": int(math.Max(1, math.Ceil(float64(total)/float64(perPage)))),
		},
	}
}

type fieldKind int

const (
	kindText fieldKind = iota
	kindPlain
	kindNullable
	kindDate
	kindID
)

// field maps a column to the body keys a client may send it under
type field struct {
	column   string
	keys     []string
	kind     fieldKind
	required bool
}

var incomingFields = []field{
	{column: "nomor_surat", keys: transform.IncomingLetterNumberKeys, kind: kindText, required: true},
	{column: "perihal", keys: transform.SubjectKeys, kind: kindText, required: true},
	{column: "pengirim", keys: transform.SenderKeys, kind: kindPlain},
	{column: "tanggal_surat", keys: transform.LetterDateKeys, kind: kindDate, required: true},
	{column: "tanggal_diterima", keys: transform.ReceivedDateKeys, kind: kindDate},
	{column: "kategori_id", keys: transform.CategoryIDKeys, kind: kindID, required: true},
	{column: "keterangan", keys: transform.NoteKeys, kind: kindNullable},
	{column: "file_path", keys: transform.AttachmentKeys, kind: kindNullable},
	{column: "kecamatan", keys: transform.DistrictKeys, kind: kindNullable},
	{column: "desa", keys: transform.VillageKeys, kind: kindNullable},
	{column: "nomor_agenda", keys: transform.AgendaNumberKeys, kind: kindNullable},
	{column: "bidang_tujuan", keys: transform.DispositionDeptKeys, kind: kindNullable},
	{column: "disposisi", keys: transform.DispositionInstrKeys, kind: kindNullable},
}

var outgoingFields = []field{
	{column: "nomor_surat", keys: transform.OutgoingLetterNumberKeys, kind: kindText, required: true},
	{column: "perihal", keys: transform.SubjectKeys, kind: kindText, required: true},
	{column: "penerima", keys: transform.RecipientKeys, kind: kindPlain},
	{column: "tanggal_surat", keys: transform.LetterDateKeys, kind: kindDate, required: true},
	{column: "kategori_id", keys: transform.CategoryIDKeys, kind: kindID, required: true},
	{column: "keterangan", keys: transform.NoteKeys, kind: kindNullable},
	{column: "file_path", keys: transform.AttachmentKeys, kind: kindNullable},
}

// readFields resolves a write body into column values. On create every
// required column must be present; on update only the sent columns are set.
// Errors are keyed by column, in Laravel's validation message style.
func readFields(body map[string]any, fields []field, create bool) (map[string]any, map[string]string) {
	values := make(map[string]any, len(fields))
	problems := map[string]string{}

	for _, f := range fields {
		raw, present := firstPresent(body, f.keys)
		if !present {
			if create && f.required {
				problems[f.column] = "The " + f.column + " field is required."
			}
			continue
		}

		switch f.kind {
		case kindPlain:
			s, _ := transform.String(raw)
			values[f.column] = s
		case kindNullable:
			if s, ok := transform.String(raw); ok {
				values[f.column] = s
			} else {
				values[f.column] = nil
			}
		case kindText:
			s, ok := transform.String(raw)
			if !ok {
				problems[f.column] = "The " + f.column + " field is required."
				continue
			}
			values[f.column] = s
		case kindDate:
			s, ok := transform.String(raw)
			if !ok {
				if f.required {
					problems[f.column] = "The " + f.column + " field is required."
				}
				continue
			}
			date, ok := transform.NormalizeDate(s)
			if !ok {
				problems[f.column] = "The " + f.column + " is not a valid date."
				continue
			}
			values[f.column] = date
		case kindID:
			n, ok := transform.Int(raw)
			if !ok || n <= 0 {
				problems[f.column] = "The selected " + f.column + " is invalid."
				continue
			}
			values[f.column] = n
		}
	}

	if len(problems) > 0 {
		return nil, problems
	}
	return values, nil
}

func firstPresent(body map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if v, ok := transform.Lookup(body, key); ok {
			return v, true
		}
	}
	return nil, false
}

func incomingFromColumns(values map[string]any) SuratMasuk {
	return SuratMasuk{
		NomorSurat:      text(values["nomor_surat"]),
		Perihal:         text(values["perihal"]),
		Pengirim:        text(values["pengirim"]),
		TanggalSurat:    text(values["tanggal_surat"]),
		TanggalDiterima: text(values["tanggal_diterima"]),
		KategoriID:      int64Of(values["kategori_id"]),
		Keterangan:      nullable(values["keterangan"]),
		FilePath:        nullable(values["file_path"]),
		Kecamatan:       nullable(values["kecamatan"]),
		Desa:            nullable(values["desa"]),
		NomorAgenda:     nullable(values["nomor_agenda"]),
		BidangTujuan:    nullable(values["bidang_tujuan"]),
		Disposisi:       nullable(values["disposisi"]),
	}
}

func outgoingFromColumns(values map[string]any) SuratKeluar {
	return SuratKeluar{
		NomorSurat:   text(values["nomor_surat"]),
		Perihal:      text(values["perihal"]),
		Penerima:     text(values["penerima"]),
		TanggalSurat: text(values["tanggal_surat"]),
		KategoriID:   int64Of(values["kategori_id"]),
		Keterangan:   nullable(values["keterangan"]),
		FilePath:     nullable(values["file_path"]),
	}
}

func text(v any) string {
	s, _ := v.(string)
	return s
}

func nullable(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func int64Of(v any) int64 {
	n, _ := v.(int64)
	return n
}
