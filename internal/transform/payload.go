package transform

import (
	"strings"

	"github.com/straye-as/earsip/internal/domain"
)

// Upstream write field names, the inverse of the read-side candidates
const (
	wireLetterNumber    = "nomor_surat"
	wireSubject         = "perihal"
	wireSender          = "pengirim"
	wireRecipient       = "penerima"
	wireLetterDate      = "tanggal_surat"
	wireReceivedDate    = "tanggal_diterima"
	wireCategoryID      = "category_id"
	wireNote            = "keterangan"
	wireAttachment      = "file_path"
	wireDistrict        = "kecamatan"
	wireVillage         = "desa"
	wireAgendaNumber    = "nomor_agenda"
	wireDispositionDept = "bidang_tujuan"
	wireDispositionInst = "disposisi"
)

// IncomingPayload translates canonical surat masuk fields into the upstream body.
// Nil fields are dropped so partial updates only touch what the caller set.
func IncomingPayload(in domain.IncomingLetterInput) map[string]any {
	body := map[string]any{}
	putString(body, wireLetterNumber, in.LetterNumber)
	putString(body, wireSubject, in.Subject)
	putString(body, wireSender, in.Sender)
	putDate(body, wireLetterDate, in.LetterDate)
	putDate(body, wireReceivedDate, in.ReceivedDate)
	putInt(body, wireCategoryID, in.CategoryID)
	putString(body, wireNote, in.Note)
	putString(body, wireAttachment, in.AttachmentPath)
	putString(body, wireDistrict, in.District)
	putString(body, wireVillage, in.Village)
	putString(body, wireAgendaNumber, in.AgendaNumber)
	putString(body, wireDispositionDept, in.DispositionDepartment)
	putString(body, wireDispositionInst, in.DispositionInstruction)
	return body
}

// OutgoingPayload translates canonical surat keluar fields into the upstream body
func OutgoingPayload(in domain.OutgoingLetterInput) map[string]any {
	body := map[string]any{}
	putString(body, wireLetterNumber, in.LetterNumber)
	putString(body, wireSubject, in.Subject)
	putString(body, wireRecipient, in.Recipient)
	if in.LetterDate != nil {
		if d, ok := NormalizeDate(*in.LetterDate); ok {
			body[wireLetterDate] = d
		} else {
			body[wireLetterDate] = *in.LetterDate
		}
	}
	putInt(body, wireCategoryID, in.CategoryID)
	putString(body, wireNote, in.Note)
	putString(body, wireAttachment, in.AttachmentPath)
	return body
}

// CategoryPayload translates a category input into the upstream body
func CategoryPayload(in domain.CategoryInput) map[string]any {
	body := map[string]any{"name": strings.TrimSpace(in.Name)}
	putString(body, "description", in.Description)
	return body
}

// IncomingInput turns a canonical record back into a full write input
func IncomingInput(l domain.IncomingLetter) domain.IncomingLetterInput {
	return domain.IncomingLetterInput{
		LetterNumber:           domain.StringPtr(l.LetterNumber),
		Subject:                domain.StringPtr(l.Subject),
		Sender:                 domain.StringPtr(l.Sender),
		LetterDate:             domain.StringPtr(l.LetterDate),
		ReceivedDate:           domain.StringPtr(l.ReceivedDate),
		CategoryID:             domain.Int64Ptr(l.CategoryID),
		Note:                   l.Note,
		AttachmentPath:         l.AttachmentPath,
		District:               l.District,
		Village:                l.Village,
		AgendaNumber:           l.AgendaNumber,
		DispositionDepartment:  l.DispositionDepartment,
		DispositionInstruction: l.DispositionInstruction,
	}
}

// OutgoingInput turns a canonical record back into a full write input
func OutgoingInput(l domain.OutgoingLetter) domain.OutgoingLetterInput {
	return domain.OutgoingLetterInput{
		LetterNumber:   domain.StringPtr(l.LetterNumber),
		Subject:        domain.StringPtr(l.Subject),
		Recipient:      domain.StringPtr(l.Recipient),
		LetterDate:     domain.StringPtr(l.LetterDate),
		CategoryID:     domain.Int64Ptr(l.CategoryID),
		Note:           l.Note,
		AttachmentPath: l.AttachmentPath,
	}
}

func putString(body map[string]any, key string, v *string) {
	if v != nil {
		body[key] = *v
	}
}

func putInt(body map[string]any, key string, v *int64) {
	if v != nil {
		body[key] = *v
	}
}

func putDate(body map[string]any, key string, v *string) {
	if v != nil {
		body[key] = DateOnly(strings.TrimSpace(*v))
	}
}
