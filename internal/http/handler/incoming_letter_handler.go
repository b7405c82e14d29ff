package handler

import (
	"net/http"
	"strconv"

	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// IncomingLetterHandler serves the surat masuk admin endpoints
type IncomingLetterHandler struct {
	letters    *service.IncomingLetterService
	categories *service.CategoryService
	logger     *zap.Logger
}

// NewIncomingLetterHandler creates a new IncomingLetterHandler
func NewIncomingLetterHandler(letters *service.IncomingLetterService, categories *service.CategoryService, logger *zap.Logger) *IncomingLetterHandler {
	return &IncomingLetterHandler{
		letters:    letters,
		categories: categories,
		logger:     logger,
	}
}

// IncomingLetterDetail is a letter together with the category catalogue for edit forms
type IncomingLetterDetail struct {
	Letter     *domain.IncomingLetter `json:"letter"`
	Categories []domain.Category      `json:"categories"`
}

// List godoc
// @Summary List incoming letters
// @Tags SuratMasuk
// @Produce json
// @Param q query string false "Search number, subject or sender"
// @Param category_id query int false "Category"
// @Param date_from query string false "From date (YYYY-MM-DD)"
// @Param date_to query string false "To date (YYYY-MM-DD)"
// @Param sort query string false "Sort order" Enums(newest, oldest, number_asc, number_desc)
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(10)
// @Success 200 {object} domain.Page[domain.IncomingLetter]
// @Router /surat-masuk [get]
func (h *IncomingLetterHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.letters.List(r.Context(), domain.LetterFilterFromQuery(r.URL.Query()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Get godoc
// @Summary Get an incoming letter
// @Description With ?with=categories the category catalogue is loaded alongside
// @Tags SuratMasuk
// @Produce json
// @Param id path int true "Letter ID"
// @Success 200 {object} domain.IncomingLetter
// @Failure 404 {object} domain.APIError
// @Router /surat-masuk/{id} [get]
func (h *IncomingLetterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("with") != "categories" {
		letter, err := h.letters.Get(r.Context(), id)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		respondJSON(w, http.StatusOK, letter)
		return
	}

	var detail IncomingLetterDetail
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		letter, err := h.letters.Get(ctx, id)
		detail.Letter = letter
		return err
	})
	g.Go(func() error {
		categories, err := h.categories.List(ctx)
		detail.Categories = categories
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// Create godoc
// @Summary Create an incoming letter
// @Tags SuratMasuk
// @Accept json
// @Produce json
// @Param request body domain.IncomingLetterInput true "Letter data"
// @Success 201 {object} domain.IncomingLetter
// @Failure 400 {object} domain.APIError
// @Router /surat-masuk [post]
func (h *IncomingLetterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.IncomingLetterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	letter, err := h.letters.Create(r.Context(), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/surat-masuk/"+strconv.FormatInt(letter.ID, 10))
	respondJSON(w, http.StatusCreated, letter)
}

// Update godoc
// @Summary Update an incoming letter
// @Tags SuratMasuk
// @Accept json
// @Produce json
// @Param id path int true "Letter ID"
// @Param request body domain.IncomingLetterInput true "Fields to change"
// @Success 200 {object} domain.IncomingLetter
// @Router /surat-masuk/{id} [put]
func (h *IncomingLetterHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req domain.IncomingLetterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	letter, err := h.letters.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, letter)
}

// Delete godoc
// @Summary Delete an incoming letter
// @Tags SuratMasuk
// @Param id path int true "Letter ID"
// @Success 204
// @Router /surat-masuk/{id} [delete]
func (h *IncomingLetterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.letters.Delete(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
