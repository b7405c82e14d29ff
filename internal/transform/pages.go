package transform

import (
	"fmt"

	"github.com/straye-as/earsip/internal/domain"
)

// PageRequest carries what the caller asked for, used when the upstream omits metadata
type PageRequest struct {
	Page           int
	PerPage        int
	DefaultPerPage int
}

// ExtractItems finds the item array of a list payload. The first non-empty array
// among ItemKeys wins; if all are empty the first array found is used.
func ExtractItems(payload any) []any {
	if arr, ok := Array(payload); ok {
		return arr
	}
	obj, ok := Object(payload)
	if !ok {
		return []any{}
	}

	if items, ok := Resolve(obj, Keys(NonEmptyArray, ItemKeys...)); ok {
		return items
	}
	if items, ok := Resolve(obj, Keys(Array, ItemKeys...)); ok {
		return items
	}
	return []any{}
}

// SynthesizeMeta reads whatever pagination metadata the upstream sent and fills
// the rest from the request and the number of items on this page
func SynthesizeMeta(payload any, count int, req PageRequest) domain.PaginationMeta {
	obj, _ := Object(payload)

	page := firstPositive(resolveCount(obj, CurrentPageKeys), req.Page, 1)
	perPage := firstPositive(resolveCount(obj, PerPageKeys), req.PerPage, sizingHint(count, req.DefaultPerPage), 10)

	total, ok := Resolve(obj, Keys(Count, TotalKeys...))
	if !ok || total < 0 {
		total = (page-1)*perPage + count
	}

	lastPage := resolveCount(obj, LastPageKeys)
	if lastPage < 1 {
		lastPage = (total + perPage - 1) / perPage
	}
	if lastPage < 1 {
		lastPage = 1
	}

	meta := domain.PaginationMeta{CurrentPage: page, PerPage: perPage, Total: total, LastPage: lastPage}
	if total == 0 || count == 0 {
		return meta
	}

	from, fromOK := Resolve(obj, Keys(Count, FromKeys...))
	to, toOK := Resolve(obj, Keys(Count, ToKeys...))
	if !fromOK || !toOK || from < 1 || to < from {
		from = (page-1)*perPage + 1
		to = from + count - 1
	}
	meta.From, meta.To = &from, &to
	return meta
}

// NormalizeIncomingPage maps a list payload of incoming letters
func NormalizeIncomingPage(payload any, req PageRequest) (domain.Page[domain.IncomingLetter], error) {
	items := ExtractItems(payload)
	out := make([]domain.IncomingLetter, 0, len(items))
	for i, item := range items {
		letter, err := NormalizeIncoming(item, fmt.Sprintf("surat masuk list item %d", i))
		if err != nil {
			return domain.Page[domain.IncomingLetter]{}, err
		}
		out = append(out, letter)
	}
	return domain.Page[domain.IncomingLetter]{Data: out, Meta: SynthesizeMeta(payload, len(out), req)}, nil
}

// NormalizeOutgoingPage maps a list payload of outgoing letters
func NormalizeOutgoingPage(payload any, req PageRequest) (domain.Page[domain.OutgoingLetter], error) {
	items := ExtractItems(payload)
	out := make([]domain.OutgoingLetter, 0, len(items))
	for i, item := range items {
		letter, err := NormalizeOutgoing(item, fmt.Sprintf("surat keluar list item %d", i))
		if err != nil {
			return domain.Page[domain.OutgoingLetter]{}, err
		}
		out = append(out, letter)
	}
	return domain.Page[domain.OutgoingLetter]{Data: out, Meta: SynthesizeMeta(payload, len(out), req)}, nil
}

func resolveCount(obj map[string]any, keys []string) int {
	n, _ := Resolve(obj, Keys(Count, keys...))
	return n
}

// sizingHint grows the page size to the returned count when the upstream sent more than the default
func sizingHint(count, defaultPerPage int) int {
	if count > defaultPerPage {
		return count
	}
	return defaultPerPage
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
