package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/transform"
	"go.uber.org/zap"
)

const fixtureUserID = 1

type claimsKey struct{}

// Handler serves the fixture store over the upstream REST surface
type Handler struct {
	store    *Store
	tokens   *tokenIssuer
	email    string
	password string
	logger   *zap.Logger
	router   chi.Router
}

// NewHandler builds the upstream-compatible router around store
func NewHandler(store *Store, cfg *config.MockConfig, logger *zap.Logger) (*Handler, error) {
	tokens, err := newTokenIssuer(store.now)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		store:    store,
		tokens:   tokens,
		email:    cfg.Email,
		password: cfg.Password,
		logger:   logger,
	}
	h.router = h.routes()
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Post("/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Post("/logout", h.logout)
		r.Get("/user", h.user)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.Post("/", h.createCategory)
			r.Put("/{id}", h.updateCategory)
			r.Delete("/{id}", h.deleteCategory)
		})

		r.Route("/surat-masuk", func(r chi.Router) {
			r.Get("/", h.listIncoming)
			r.Post("/", h.createIncoming)
			r.Get("/{id}", h.getIncoming)
			r.Put("/{id}", h.updateIncoming)
			r.Delete("/{id}", h.deleteIncoming)
		})

		r.Route("/surat-keluar", func(r chi.Router) {
			r.Get("/", h.listOutgoing)
			r.Post("/", h.createOutgoing)
			r.Get("/{id}", h.getOutgoing)
			r.Put("/{id}", h.updateOutgoing)
			r.Delete("/{id}", h.deleteOutgoing)
		})

		r.Get("/dashboard/metrics", h.dashboard)
		r.Get("/reports/summary", h.reportSummary)
		r.Post("/reports/export", h.reportExport)
	})

	return r
}

// authenticate requires a valid bearer token issued by login
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		claims, err := h.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	email, _ := transform.Resolve(body, transform.Strings("email"))
	password, _ := transform.Resolve(body, transform.Strings("password"))

	if !strings.EqualFold(email, h.email) || !h.passwordMatches(password) {
		writeInvalid(w, map[string]string{"email": "These credentials do not match our records."})
		return
	}

	token, err := h.tokens.Issue(fixtureUserID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"user":         h.userRecord(),
		},
	})
}

func (h *Handler) passwordMatches(password string) bool {
	if h.password == "" {
		return password != ""
	}
	return password == h.password
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := r.Context().Value(claimsKey{}).(*jwt.RegisteredClaims); ok {
		h.tokens.Revoke(claims)
	}
	writeMessage(w, http.StatusOK, "Logged out")
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": h.userRecord()})
}

func (h *Handler) userRecord() map[string]any {
	return map[string]any{"id": fixtureUserID, "nama": "Admin Arsip", "email": h.email, "role": "admin"}
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.storeError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		items = append(items, categoryRecord(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	nama, ok := transform.Resolve(body, transform.Strings(transform.CategoryNameKeys...))
	if !ok {
		writeInvalid(w, map[string]string{"nama": "The nama field is required."})
		return
	}

	category := &Kategori{Nama: nama}
	if desc, ok := transform.Resolve(body, transform.Strings(transform.CategoryDescKeys...)); ok {
		category.Deskripsi = &desc
	}
	if err := h.store.CreateCategory(r.Context(), category); err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": categoryRecord(*category)})
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	nama, _ := transform.Resolve(body, transform.Strings(transform.CategoryNameKeys...))
	var deskripsi *string
	if desc, ok := transform.Resolve(body, transform.Strings(transform.CategoryDescKeys...)); ok {
		deskripsi = &desc
	}

	category, err := h.store.UpdateCategory(r.Context(), id, nama, deskripsi)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": categoryRecord(*category)})
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Kategori dihapus"})
}

func (h *Handler) listIncoming(w http.ResponseWriter, r *http.Request) {
	filters, page, perPage := listParams(r.URL.Query())
	letters, total, err := h.store.ListIncoming(r.Context(), filters, page, perPage)
	if err != nil {
		h.storeError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(letters))
	for _, l := range letters {
		items = append(items, incomingRecord(l))
	}
	writeJSON(w, http.StatusOK, laravelPage(items, total, page, perPage))
}

func (h *Handler) getIncoming(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	letter, err := h.store.GetIncoming(r.Context(), id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": incomingRecord(*letter)})
}

func (h *Handler) createIncoming(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	values, problems := readFields(body, incomingFields, true)
	if problems != nil {
		writeInvalid(w, problems)
		return
	}

	letter := incomingFromColumns(values)
	if err := h.store.CreateIncoming(r.Context(), &letter); err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": incomingRecord(letter)})
}

func (h *Handler) updateIncoming(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	values, problems := readFields(body, incomingFields, false)
	if problems != nil {
		writeInvalid(w, problems)
		return
	}

	letter, err := h.store.UpdateIncoming(r.Context(), id, values)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": incomingRecord(*letter)})
}

func (h *Handler) deleteIncoming(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteIncoming(r.Context(), id); err != nil {
		h.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listOutgoing(w http.ResponseWriter, r *http.Request) {
	filters, page, perPage := listParams(r.URL.Query())
	letters, total, err := h.store.ListOutgoing(r.Context(), filters, page, perPage)
	if err != nil {
		h.storeError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(letters))
	for _, l := range letters {
		items = append(items, outgoingRecord(l))
	}
	writeJSON(w, http.StatusOK, metaPage(items, total, page, perPage))
}

func (h *Handler) getOutgoing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	letter, err := h.store.GetOutgoing(r.Context(), id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": outgoingRecord(*letter)})
}

func (h *Handler) createOutgoing(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	values, problems := readFields(body, outgoingFields, true)
	if problems != nil {
		writeInvalid(w, problems)
		return
	}

	letter := outgoingFromColumns(values)
	if err := h.store.CreateOutgoing(r.Context(), &letter); err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": outgoingRecord(letter)})
}

func (h *Handler) updateOutgoing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	values, problems := readFields(body, outgoingFields, false)
	if problems != nil {
		writeInvalid(w, problems)
		return
	}

	letter, err := h.store.UpdateOutgoing(r.Context(), id, values)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": outgoingRecord(*letter)})
}

func (h *Handler) deleteOutgoing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteOutgoing(r.Context(), id); err != nil {
		h.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dashboard leaves the top-level chart empty and puts the series under
// overview, as the production backend does
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.storeError(w, err)
		return
	}

	chart := make([]map[string]any, 0, len(stats.Chart))
	for _, c := range stats.Chart {
		chart = append(chart, map[string]any{"bulan": c.Period, "surat_masuk": c.Incoming, "surat_keluar": c.Outgoing})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"total_surat_masuk":      stats.TotalIncoming,
			"total_surat_keluar":     stats.TotalOutgoing,
			"surat_masuk_bulan_ini":  stats.IncomingThisMonth,
			"surat_keluar_bulan_ini": stats.OutgoingThisMonth,
			"chart":                  []any{},
			"overview":               map[string]any{"chart": chart},
		},
	})
}

type reportParams struct {
	entity string
	period string
	month  int
	year   int
}

func (h *Handler) reportSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := h.normalizeReport(q.Get("entity"), q.Get("period"), atoi(q.Get("month")), atoi(q.Get("year")))

	counts, err := h.store.Summary(r.Context(), params.entity, params.period, params.month, params.year)
	if err != nil {
		h.storeError(w, err)
		return
	}

	charts := make([]map[string]any, 0, len(counts))
	for _, c := range counts {
		charts = append(charts, map[string]any{"label": c.Period, "masuk": c.Incoming, "keluar": c.Outgoing})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ringkasan": narrative(params, counts),
		"charts":    charts,
	})
}

func (h *Handler) reportExport(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	entity, _ := transform.Resolve(body, transform.Strings("entity"))
	period, _ := transform.Resolve(body, transform.Strings("period"))
	month, _ := transform.Resolve(body, transform.Ints("month"))
	year, _ := transform.Resolve(body, transform.Ints("year"))
	params := h.normalizeReport(entity, period, int(month), int(year))

	counts, err := h.store.Summary(r.Context(), params.entity, params.period, params.month, params.year)
	if err != nil {
		h.storeError(w, err)
		return
	}

	lines := []string{narrative(params, counts), ""}
	for _, c := range counts {
		if c.Incoming == 0 && c.Outgoing == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-12s  masuk %4d   keluar %4d", c.Period, c.Incoming, c.Outgoing))
	}

	filename := fmt.Sprintf("laporan-%s-%04d.pdf", params.entity, params.year)
	if params.period != "yearly" {
		filename = fmt.Sprintf("laporan-%s-%04d-%02d.pdf", params.entity, params.year, params.month)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderPDF("Laporan Arsip Surat", lines))
}

func (h *Handler) normalizeReport(entity, period string, month, year int) reportParams {
	now := h.store.now()
	p := reportParams{entity: entity, period: period, month: month, year: year}
	if p.entity != "incoming" && p.entity != "outgoing" {
		p.entity = "all"
	}
	if p.period != "yearly" {
		p.period = "monthly"
	}
	if p.year <= 0 {
		p.year = now.Year()
	}
	if p.month < 1 || p.month > 12 {
		p.month = int(now.Month())
	}
	return p
}

func narrative(p reportParams, counts []MonthCount) string {
	var incoming, outgoing int
	for _, c := range counts {
		incoming += c.Incoming
		outgoing += c.Outgoing
	}

	scope := fmt.Sprintf("tahun %d", p.year)
	if p.period != "yearly" {
		scope = fmt.Sprintf("bulan %s %d", monthName(time.Month(p.month)), p.year)
	}

	switch p.entity {
	case "incoming":
		return fmt.Sprintf("Pada %s tercatat %d surat masuk.", scope, incoming)
	case "outgoing":
		return fmt.Sprintf("Pada %s tercatat %d surat keluar.", scope, outgoing)
	default:
		return fmt.Sprintf("Pada %s tercatat %d surat masuk dan %d surat keluar.", scope, incoming, outgoing)
	}
}

func (h *Handler) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Data tidak ditemukan.")
	case errors.Is(err, ErrUnknownCategory):
		writeInvalid(w, map[string]string{"kategori_id": "The selected kategori_id is invalid."})
	case errors.Is(err, ErrConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		h.serverError(w, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.logger.Error("fixture backend failure", zap.Error(err))
	writeMessage(w, http.StatusInternalServerError, "Server Error")
}

func listParams(q url.Values) (LetterFilters, int, int) {
	perPage := atoi(q.Get("per_page"))
	if perPage == 0 {
		perPage = atoi(q.Get("limit"))
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}
	page := atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	filters := LetterFilters{
		Search:     strings.TrimSpace(q.Get("q")),
		CategoryID: int64(atoi(q.Get("category_id"))),
		DateFrom:   strings.TrimSpace(q.Get("date_from")),
		DateTo:     strings.TrimSpace(q.Get("date_to")),
		District:   strings.TrimSpace(q.Get("district")),
		Village:    strings.TrimSpace(q.Get("village")),
		Sort:       strings.TrimSpace(q.Get("sort")),
	}
	return filters, page, perPage
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusNotFound, "Data tidak ditemukan.")
		return 0, false
	}
	return id, true
}

func readBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Unreadable request body")
		return nil, false
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]any{}, true
	}
	payload, err := transform.Decode(data)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed JSON body")
		return nil, false
	}
	body, ok := transform.Object(payload)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Request body must be a JSON object")
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}

// writeInvalid answers with Laravel's 422 validation envelope
func writeInvalid(w http.ResponseWriter, problems map[string]string) {
	errs := make(map[string][]string, len(problems))
	for field, msg := range problems {
		errs[field] = []string{msg}
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": "The given data was invalid.",
		"errors":  errs,
	})
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
