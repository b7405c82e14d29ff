package handler

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/service"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reports *service.ReportService
	logger  *zap.Logger
}

func NewReportHandler(reports *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// Summary godoc
// @Summary Get a report summary
// @Tags Reports
// @Produce json
// @Param entity query string false "Letter kind" Enums(all, incoming, outgoing)
// @Param period query string false "Period" Enums(monthly, yearly)
// @Param month query int false "Month (1-12)"
// @Param year query int false "Year"
// @Success 200 {object} domain.ReportsSummary
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.Summary(r.Context(), domain.ReportFilterFromQuery(r.URL.Query()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Export godoc
// @Summary Export a report document
// @Description The filter is read from the JSON body, or from the query when the body is empty
// @Tags Reports
// @Accept json
// @Produce application/pdf
// @Param request body domain.ReportFilter false "Report filter"
// @Success 200 {file} binary
// @Router /reports/export [post]
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter := domain.ReportFilterFromQuery(r.URL.Query())
	if !decodeJSON(w, r, &filter) {
		return
	}

	file, err := h.reports.Export(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
