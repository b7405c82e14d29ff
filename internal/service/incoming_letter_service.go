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

const incomingPath = "/surat-masuk"

// IncomingLetterService is the façade over the surat masuk endpoints
type IncomingLetterService struct {
	exec       Executor
	categories *CategoryService
	pagination config.PaginationConfig
	logger     *zap.Logger
}

// NewIncomingLetterService creates an IncomingLetterService
func NewIncomingLetterService(exec Executor, categories *CategoryService, pagination *config.PaginationConfig, logger *zap.Logger) *IncomingLetterService {
	return &IncomingLetterService{
		exec:       exec,
		categories: categories,
		pagination: *pagination,
		logger:     logger,
	}
}

// List returns one page of incoming letters matching filter
func (s *IncomingLetterService) List(ctx context.Context, filter domain.LetterFilter) (*domain.Page[domain.IncomingLetter], error) {
	if err := schema.Struct(filter); err != nil {
		return nil, err
	}
	filter, req := pageRequest(filter, s.pagination.DefaultPerPage, s.pagination.MaxPerPage)

	page, err := fetch(ctx, s.exec, apiclient.Request{
		Method:    http.MethodGet,
		Path:      incomingPath,
		Query:     filter.Query(),
		Validator: schema.RawList,
	}, func(payload any) (domain.Page[domain.IncomingLetter], error) {
		return transform.NormalizeIncomingPage(payload, req)
	}, nil)
	if err != nil {
		return nil, err
	}
	if err := gatePage(page, schema.IncomingLetter); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns one incoming letter
func (s *IncomingLetterService) Get(ctx context.Context, id int64) (*domain.IncomingLetter, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return s.record(ctx, apiclient.Request{
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("%s/%d", incomingPath, id),
		Validator: schema.RawRecord,
	}, fmt.Sprintf("surat masuk %d", id))
}

// Create stores a new incoming letter. The category must exist in the catalogue.
func (s *IncomingLetterService) Create(ctx context.Context, input domain.IncomingLetterInput) (*domain.IncomingLetter, error) {
	if err := schema.Struct(input); err != nil {
		return nil, err
	}
	if err := schema.Missing("IncomingLetterInput", input.MissingForCreate()...); err != nil {
		return nil, err
	}
	if err := s.categories.Ensure(ctx, *input.CategoryID, "IncomingLetterInput"); err != nil {
		return nil, err
	}

	letter, err := s.record(ctx, apiclient.Request{
		Method:    http.MethodPost,
		Path:      incomingPath,
		Body:      transform.IncomingPayload(input),
		Validator: schema.RawRecord,
	}, "create surat masuk")
	if err != nil {
		return nil, err
	}

	s.logger.Info("incoming letter created",
		zap.Int64("letter_id", letter.ID),
		zap.String("letter_number", letter.LetterNumber),
	)
	return letter, nil
}

// Update changes the fields set on patch
func (s *IncomingLetterService) Update(ctx context.Context, id int64, patch domain.IncomingLetterInput) (*domain.IncomingLetter, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	if err := schema.Struct(patch); err != nil {
		return nil, err
	}
	if patch.CategoryID != nil {
		if err := s.categories.Ensure(ctx, *patch.CategoryID, "IncomingLetterInput"); err != nil {
			return nil, err
		}
	}

	return s.record(ctx, apiclient.Request{
		Method:    http.MethodPut,
		Path:      fmt.Sprintf("%s/%d", incomingPath, id),
		Body:      transform.IncomingPayload(patch),
		Validator: schema.RawRecord,
	}, fmt.Sprintf("update surat masuk %d", id))
}

// Delete removes an incoming letter
func (s *IncomingLetterService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	if _, err := s.exec.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: fmt.Sprintf("%s/%d", incomingPath, id)}); err != nil {
		return err
	}
	s.logger.Info("incoming letter deleted", zap.Int64("letter_id", id))
	return nil
}

func (s *IncomingLetterService) record(ctx context.Context, req apiclient.Request, label string) (*domain.IncomingLetter, error) {
	letter, err := fetch(ctx, s.exec, req, func(payload any) (domain.IncomingLetter, error) {
		return transform.NormalizeIncoming(payload, label)
	}, schema.IncomingLetter)
	if err != nil {
		return nil, err
	}
	return &letter, nil
}
