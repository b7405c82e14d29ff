package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/straye-as/earsip/internal/apiclient"
	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/schema"
	"github.com/straye-as/earsip/internal/transform"
	"go.uber.org/zap"
)

const outgoingPath = "/surat-keluar"

// OutgoingLetterService is the façade over the surat keluar endpoints
type OutgoingLetterService struct {
	exec       Executor
	categories *CategoryService
	pagination config.PaginationConfig
	logger     *zap.Logger
}

// NewOutgoingLetterService creates an OutgoingLetterService
func NewOutgoingLetterService(exec Executor, categories *CategoryService, pagination *config.PaginationConfig, logger *zap.Logger) *OutgoingLetterService {
	return &OutgoingLetterService{
		exec:       exec,
		categories: categories,
		pagination: *pagination,
		logger:     logger,
	}
}

// List returns one page of outgoing letters matching filter.
// Outgoing letters have no district or village.
func (s *OutgoingLetterService) List(ctx context.Context, filter domain.LetterFilter) (*domain.Page[domain.OutgoingLetter], error) {
	if err := schema.Struct(filter); err != nil {
		return nil, err
	}
	filter.District, filter.Village = "", ""
	filter, req := pageRequest(filter, s.pagination.DefaultPerPage, s.pagination.MaxPerPage)

	page, err := fetch(ctx, s.exec, apiclient.Request{
		Method:    http.MethodGet,
		Path:      outgoingPath,
		Query:     filter.Query(),
		Validator: schema.RawList,
	}, func(payload any) (domain.Page[domain.OutgoingLetter], error) {
		return transform.NormalizeOutgoingPage(payload, req)
	}, nil)
	if err != nil {
		return nil, err
	}
	if err := gatePage(page, schema.OutgoingLetter); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns one outgoing letter
func (s *OutgoingLetterService) Get(ctx context.Context, id int64) (*domain.OutgoingLetter, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return s.record(ctx, apiclient.Request{
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("%s/%d", outgoingPath, id),
		Validator: schema.RawRecord,
	}, fmt.Sprintf("surat keluar %d", id))
}

// Create stores a new outgoing letter. The category must exist in the catalogue.
func (s *OutgoingLetterService) Create(ctx context.Context, input domain.OutgoingLetterInput) (*domain.OutgoingLetter, error) {
	if err := schema.Struct(input); err != nil {
		return nil, err
	}
	if err := schema.Missing("OutgoingLetterInput", input.MissingForCreate()...); err != nil {
		return nil, err
	}
	if err := s.categories.Ensure(ctx, *input.CategoryID, "OutgoingLetterInput"); err != nil {
		return nil, err
	}

	letter, err := s.record(ctx, apiclient.Request{
		Method:    http.MethodPost,
		Path:      outgoingPath,
		Body:      transform.OutgoingPayload(input),
		Validator: schema.RawRecord,
	}, "create surat keluar")
	if err != nil {
		return nil, err
	}

	s.logger.Info("outgoing letter created",
		zap.Int64("letter_id", letter.ID),
		zap.String("letter_number", letter.LetterNumber),
	)
	return letter, nil
}

// Update changes the fields set on patch
func (s *OutgoingLetterService) Update(ctx context.Context, id int64, patch domain.OutgoingLetterInput) (*domain.OutgoingLetter, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	if err := schema.Struct(patch); err != nil {
		return nil, err
	}
	if patch.CategoryID != nil {
		if err := s.categories.Ensure(ctx, *patch.CategoryID, "OutgoingLetterInput"); err != nil {
			return nil, err
		}
	}

	return s.record(ctx, apiclient.Request{
		Method:    http.MethodPut,
		Path:      fmt.Sprintf("%s/%d", outgoingPath, id),
		Body:      transform.OutgoingPayload(patch),
		Validator: schema.RawRecord,
	}, fmt.Sprintf("update surat keluar %d", id))
}

// Delete removes an outgoing letter
func (s *OutgoingLetterService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	if _, err := s.exec.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: fmt.Sprintf("%s/%d", outgoingPath, id)}); err != nil {
		return err
	}
	s.logger.Info("outgoing letter deleted", zap.Int64("letter_id", id))
	return nil
}

func (s *OutgoingLetterService) record(ctx context.Context, req apiclient.Request, label string) (*domain.OutgoingLetter, error) {
	letter, err := fetch(ctx, s.exec, req, func(payload any) (domain.OutgoingLetter, error) {
		return transform.NormalizeOutgoing(payload, label)
	}, schema.OutgoingLetter)
	if err != nil {
		return nil, err
	}
	return &letter, nil
}
