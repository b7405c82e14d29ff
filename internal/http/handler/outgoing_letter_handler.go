package handler

import (
	"net/http"
	"strconv"

	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/service"
	"go.uber.org/zap"
)

// OutgoingLetterHandler serves the surat keluar admin endpoints
type OutgoingLetterHandler struct {
	letters *service.OutgoingLetterService
	logger  *zap.Logger
}

func NewOutgoingLetterHandler(letters *service.OutgoingLetterService, logger *zap.Logger) *OutgoingLetterHandler {
	return &OutgoingLetterHandler{letters: letters, logger: logger}
}

// List godoc
// @Summary List outgoing letters
// @Tags SuratKeluar
// @Produce json
// @Param q query string false "Search number, subject or recipient"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(10)
// @Success 200 {object} domain.Page[domain.OutgoingLetter]
// @Router /surat-keluar [get]
func (h *OutgoingLetterHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.letters.List(r.Context(), domain.LetterFilterFromQuery(r.URL.Query()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Get godoc
// @Summary Get an outgoing letter
// @Tags SuratKeluar
// @Produce json
// @Param id path int true "Letter ID"
// @Success 200 {object} domain.OutgoingLetter
// @Router /surat-keluar/{id} [get]
func (h *OutgoingLetterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	letter, err := h.letters.Get(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, letter)
}

func (h *OutgoingLetterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.OutgoingLetterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	letter, err := h.letters.Create(r.Context(), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/surat-keluar/"+strconv.FormatInt(letter.ID, 10))
	respondJSON(w, http.StatusCreated, letter)
}

func (h *OutgoingLetterHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req domain.OutgoingLetterInput
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

func (h *OutgoingLetterHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
