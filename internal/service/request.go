package service

import (
	"context"
	"encoding/json"

	"github.com/straye-as/earsip/internal/apiclient"
	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/schema"
	"github.com/straye-as/earsip/internal/transform"
)

// Executor sends requests to the upstream archive API
type Executor interface {
	Do(ctx context.Context, req apiclient.Request) (json.RawMessage, error)
	Download(ctx context.Context, req apiclient.Request) (*apiclient.Download, error)
}

// fetch runs one call through the executor, normalizes the payload and gates
// the canonical result. Executor errors are returned unchanged.
func fetch[T any](ctx context.Context, exec Executor, req apiclient.Request, normalize func(any) (T, error), gate *schema.Schema) (T, error) {
	var zero T

	body, err := exec.Do(ctx, req)
	if err != nil {
		return zero, err
	}
	payload, err := decode(body)
	if err != nil {
		return zero, err
	}

	v, err := normalize(payload)
	if err != nil {
		return zero, err
	}
	if gate != nil {
		if err := gate.ValidateValue(v); err != nil {
			return zero, err
		}
	}
	return v, nil
}

// gatePage checks every item and the metadata of a canonical page
func gatePage[T any](page domain.Page[T], items *schema.Schema) error {
	for _, item := range page.Data {
		if err := items.ValidateValue(item); err != nil {
			return err
		}
	}
	return schema.PaginationMeta.ValidateValue(page.Meta)
}

// decode parses a response body; an absent body yields a nil payload
func decode(body json.RawMessage) (any, error) {
	if len(body) == 0 {
		return nil, nil
	}
	return transform.Decode(body)
}

func pageRequest(filter domain.LetterFilter, defaultPerPage, maxPerPage int) (domain.LetterFilter, transform.PageRequest) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = defaultPerPage
	}
	if maxPerPage > 0 && filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}
	return filter, transform.PageRequest{Page: filter.Page, PerPage: filter.PerPage, DefaultPerPage: defaultPerPage}
}
