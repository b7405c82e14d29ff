package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/straye-as/earsip/internal/apiclient"
	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/schema"
	"github.com/straye-as/earsip/internal/transform"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const categoriesPath = "/categories"

// CategoryService manages letter categories and keeps a short-lived catalogue
// used to check category ids on letter writes
type CategoryService struct {
	exec   Executor
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	group     singleflight.Group
	mu        sync.RWMutex
	catalogue map[int64]domain.Category
	fetchedAt time.Time
}

// NewCategoryService creates a CategoryService. A zero ttl disables catalogue caching.
func NewCategoryService(exec Executor, ttl time.Duration, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		exec:   exec,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// List returns every category and refreshes the catalogue
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := fetch(ctx, s.exec, apiclient.Request{
		Method:    http.MethodGet,
		Path:      categoriesPath,
		Validator: schema.RawList,
	}, func(payload any) ([]domain.Category, error) {
		return transform.NormalizeCategories(payload, "kategori list")
	}, nil)
	if err != nil {
		return nil, err
	}

	for _, c := range categories {
		if err := schema.Category.ValidateValue(c); err != nil {
			return nil, err
		}
	}

	s.store(categories)
	return categories, nil
}

// Lookup returns the category catalogue keyed by id. Concurrent misses share
// one upstream call.
func (s *CategoryService) Lookup(ctx context.Context) (map[int64]domain.Category, error) {
	if catalogue, ok := s.cached(); ok {
		return catalogue, nil
	}

	ch := s.group.DoChan("catalogue", func() (interface{}, error) {
		if _, err := s.List(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}
		catalogue, _ := s.snapshot()
		return catalogue, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[int64]domain.Category), nil
	}
}

// Ensure checks that id names a known category. schemaName labels the
// resulting validation error.
func (s *CategoryService) Ensure(ctx context.Context, id int64, schemaName string) error {
	catalogue, err := s.Lookup(ctx)
	if err != nil {
		return err
	}
	if _, ok := catalogue[id]; !ok {
		s.logger.Debug("rejected unknown category", zap.Int64("category_id", id))
		return unknownCategory(schemaName)
	}
	return nil
}

// Label returns the display name of a category id, "#<id>" when unknown.
// Lookup failures degrade to the fallback label.
func (s *CategoryService) Label(ctx context.Context, id int64) string {
	catalogue, err := s.Lookup(ctx)
	if err == nil {
		if c, ok := catalogue[id]; ok {
			return domain.CategoryLabel(&domain.CategorySnapshot{ID: c.ID, Name: c.Name}, id)
		}
	}
	return domain.CategoryLabel(nil, id)
}

// Create adds a category
func (s *CategoryService) Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	if err := schema.Struct(input); err != nil {
		return nil, err
	}
	return s.write(ctx, http.MethodPost, categoriesPath, input)
}

// Update replaces the name and description of a category
func (s *CategoryService) Update(ctx context.Context, id int64, input domain.CategoryInput) (*domain.Category, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	if err := schema.Struct(input); err != nil {
		return nil, err
	}
	return s.write(ctx, http.MethodPut, fmt.Sprintf("%s/%d", categoriesPath, id), input)
}

// Delete removes a category
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	_, err := s.exec.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: fmt.Sprintf("%s/%d", categoriesPath, id)})
	if err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// Invalidate drops the cached catalogue
func (s *CategoryService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogue = nil
	s.fetchedAt = time.Time{}
}

func (s *CategoryService) write(ctx context.Context, method, path string, input domain.CategoryInput) (*domain.Category, error) {
	category, err := fetch(ctx, s.exec, apiclient.Request{
		Method:    method,
		Path:      path,
		Body:      transform.CategoryPayload(input),
		Validator: schema.RawRecord,
	}, func(payload any) (domain.Category, error) {
		return transform.NormalizeCategory(payload, "kategori "+method)
	}, schema.Category)
	if err != nil {
		return nil, err
	}
	s.Invalidate()
	return &category, nil
}

func (s *CategoryService) store(categories []domain.Category) {
	catalogue := make(map[int64]domain.Category, len(categories))
	for _, c := range categories {
		catalogue[c.ID] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogue = catalogue
	s.fetchedAt = s.now()
}

func (s *CategoryService) cached() (map[int64]domain.Category, bool) {
	if s.ttl <= 0 {
		return nil, false
	}
	s.mu.RLock()
	fresh := s.catalogue != nil && s.now().Sub(s.fetchedAt) < s.ttl
	s.mu.RUnlock()
	if !fresh {
		return nil, false
	}
	return s.snapshot()
}

// snapshot copies the catalogue so callers cannot mutate the cache
func (s *CategoryService) snapshot() (map[int64]domain.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalogue == nil {
		return nil, false
	}
	out := make(map[int64]domain.Category, len(s.catalogue))
	for id, c := range s.catalogue {
		out[id] = c
	}
	return out, true
}
