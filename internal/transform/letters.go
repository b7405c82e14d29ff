package transform

import (
	"github.com/straye-as/earsip/internal/domain"
)

// DefaultSubject is used when an upstream record carries no subject
const DefaultSubject = "Tanpa perihal"

// NormalizeIncoming maps one raw surat masuk record into its canonical form.
// context names the call in progress and is carried on any DomainError.
func NormalizeIncoming(raw any, context string) (domain.IncomingLetter, error) {
	rec, ok := unwrapData(raw)
	if !ok {
		return domain.IncomingLetter{}, shapeError("incoming_letter", context)
	}

	letter := domain.IncomingLetter{}
	letter.ID, _ = Resolve(rec, Ints(IDKeys...))

	var err error
	if letter.LetterNumber, err = requiredString(rec, IncomingLetterNumberKeys, "letter_number", context); err != nil {
		return domain.IncomingLetter{}, err
	}
	if letter.CategoryID, err = requiredInt(rec, CategoryIDKeys, "category_id", context); err != nil {
		return domain.IncomingLetter{}, err
	}

	rawDate, ok := Resolve(rec, Strings(LetterDateKeys...))
	if !ok {
		return domain.IncomingLetter{}, missingError("letter_date", context)
	}
	if letter.LetterDate, ok = NormalizeDateTime(rawDate); !ok {
		return domain.IncomingLetter{}, dateError("letter_date", context, rawDate)
	}

	letter.ReceivedDate = letter.LetterDate
	if rawReceived, ok := Resolve(rec, Strings(ReceivedDateKeys...)); ok {
		if letter.ReceivedDate, ok = NormalizeDateTime(rawReceived); !ok {
			return domain.IncomingLetter{}, dateError("received_date", context, rawReceived)
		}
	}

	letter.Subject = stringOr(rec, SubjectKeys, DefaultSubject)
	letter.Sender = stringOr(rec, SenderKeys, "")
	letter.Category = NormalizeCategorySnapshot(rec)
	letter.Note = optionalString(rec, NoteKeys)
	letter.AttachmentPath = optionalString(rec, AttachmentKeys)
	letter.District = optionalString(rec, DistrictKeys)
	letter.Village = optionalString(rec, VillageKeys)
	letter.AgendaNumber = optionalString(rec, AgendaNumberKeys)
	letter.DispositionDepartment = optionalString(rec, DispositionDeptKeys)
	letter.DispositionInstruction = optionalString(rec, DispositionInstrKeys)
	letter.CreatedAt = optionalString(rec, CreatedAtKeys)
	letter.UpdatedAt = optionalString(rec, UpdatedAtKeys)

	return letter, nil
}

// NormalizeOutgoing maps one raw surat keluar record into its canonical form.
// The letter date stays date-only.
func NormalizeOutgoing(raw any, context string) (domain.OutgoingLetter, error) {
	rec, ok := unwrapData(raw)
	if !ok {
		return domain.OutgoingLetter{}, shapeError("outgoing_letter", context)
	}

	letter := domain.OutgoingLetter{}
	letter.ID, _ = Resolve(rec, Ints(IDKeys...))

	var err error
	if letter.LetterNumber, err = requiredString(rec, OutgoingLetterNumberKeys, "letter_number", context); err != nil {
		return domain.OutgoingLetter{}, err
	}
	if letter.CategoryID, err = requiredInt(rec, CategoryIDKeys, "category_id", context); err != nil {
		return domain.OutgoingLetter{}, err
	}

	rawDate, ok := Resolve(rec, Strings(LetterDateKeys...))
	if !ok {
		return domain.OutgoingLetter{}, missingError("letter_date", context)
	}
	if letter.LetterDate, ok = NormalizeDate(rawDate); !ok {
		return domain.OutgoingLetter{}, dateError("letter_date", context, rawDate)
	}

	letter.Subject = stringOr(rec, SubjectKeys, DefaultSubject)
	letter.Recipient = stringOr(rec, RecipientKeys, "")
	letter.Category = NormalizeCategorySnapshot(rec)
	letter.Note = optionalString(rec, NoteKeys)
	letter.AttachmentPath = optionalString(rec, AttachmentKeys)
	letter.CreatedAt = optionalString(rec, CreatedAtKeys)
	letter.UpdatedAt = optionalString(rec, UpdatedAtKeys)

	return letter, nil
}

// NormalizeCategorySnapshot reads the nested category object of a letter record.
// An object without an id yields nil; ids are never fabricated.
func NormalizeCategorySnapshot(rec map[string]any) *domain.CategorySnapshot {
	obj, ok := Resolve(rec, Keys(Object, CategoryObjectKeys...))
	if !ok {
		return nil
	}
	id, ok := Resolve(obj, Ints("id"))
	if !ok {
		return nil
	}
	return &domain.CategorySnapshot{ID: id, Name: stringOr(obj, CategoryNameKeys, "")}
}

// NormalizeCategory maps one raw category record
func NormalizeCategory(raw any, context string) (domain.Category, error) {
	rec, ok := unwrapData(raw)
	if !ok {
		return domain.Category{}, shapeError("category", context)
	}

	id, ok := Resolve(rec, Ints("id", "category_id", "kategori_id", "id_kategori"))
	if !ok {
		return domain.Category{}, missingError("id", context)
	}
	name, err := requiredString(rec, CategoryNameKeys, "name", context)
	if err != nil {
		return domain.Category{}, err
	}

	return domain.Category{ID: id, Name: name, Description: optionalString(rec, CategoryDescKeys)}, nil
}

// NormalizeCategories maps a category list payload
func NormalizeCategories(payload any, context string) ([]domain.Category, error) {
	items := ExtractItems(payload)
	out := make([]domain.Category, 0, len(items))
	for _, item := range items {
		c, err := NormalizeCategory(item, context)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func requiredString(rec map[string]any, keys []string, field, context string) (string, error) {
	v, ok := Resolve(rec, Strings(keys...))
	if !ok {
		return "", missingError(field, context)
	}
	return v, nil
}

func requiredInt(rec map[string]any, keys []string, field, context string) (int64, error) {
	v, ok := Resolve(rec, Ints(keys...))
	if !ok {
		return 0, missingError(field, context)
	}
	return v, nil
}

func stringOr(rec map[string]any, keys []string, fallback string) string {
	if v, ok := Resolve(rec, Strings(keys...)); ok {
		return v
	}
	return fallback
}
