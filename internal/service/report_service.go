package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/straye-as/earsip/internal/apiclient"
	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/schema"
	"github.com/straye-as/earsip/internal/transform"
	"go.uber.org/zap"
)

const (
	reportSummaryPath = "/reports/summary"
	reportExportPath  = "/reports/export"
	pdfContentType    = "application/pdf"
)

// ReportService reads report summaries and exports report documents
type ReportService struct {
	exec   Executor
	now    func() time.Time
	logger *zap.Logger
}

func NewReportService(exec Executor, logger *zap.Logger) *ReportService {
	return &ReportService{exec: exec, now: time.Now, logger: logger}
}

// Summary returns the narrative and chart for filter
func (s *ReportService) Summary(ctx context.Context, filter domain.ReportFilter) (*domain.ReportsSummary, error) {
	if err := schema.Struct(filter); err != nil {
		return nil, err
	}
	summary, err := fetch(ctx, s.exec, apiclient.Request{
		Method:    http.MethodGet,
		Path:      reportSummaryPath,
		Query:     filter.Query(),
		Validator: schema.RawReportsSummary,
	}, transform.NormalizeReportsSummary, schema.ReportsSummary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Export downloads the report document for filter. Exports are never retried.
func (s *ReportService) Export(ctx context.Context, filter domain.ReportFilter) (*domain.ReportFile, error) {
	if err := schema.Struct(filter); err != nil {
		return nil, err
	}

	download, err := s.exec.Download(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   reportExportPath,
		Body:   filter.Body(),
	})
	if err != nil {
		return nil, err
	}
	if len(download.Data) == 0 {
		return nil, ErrEmptyExport
	}

	file := &domain.ReportFile{
		Filename:    download.Filename,
		ContentType: download.ContentType,
		Data:        download.Data,
	}
	if file.Filename == "" {
		file.Filename = ReportFilename(filter, s.now())
	}
	if file.ContentType == "" || file.ContentType == "application/octet-stream" {
		file.ContentType = pdfContentType
	}

	s.logger.Info("report exported",
		zap.String("filename", file.Filename),
		zap.Int("size_bytes", len(file.Data)),
	)
	return file, nil
}

// ReportFilename is the document name used when the upstream sends none:
// laporan-<entity>-YYYY-MM.pdf, or laporan-<entity>-YYYY.pdf for yearly reports
func ReportFilename(filter domain.ReportFilter, now time.Time) string {
	entity := filter.Entity
	if entity == "" {
		entity = domain.ReportEntityAll
	}
	year := filter.Year
	if year <= 0 {
		year = now.Year()
	}
	if filter.Period == domain.ReportPeriodYearly {
		return fmt.Sprintf("laporan-%s-%04d.pdf", entity, year)
	}
	month := filter.Month
	if month <= 0 {
		month = int(now.Month())
	}
	return fmt.Sprintf("laporan-%s-%04d-%02d.pdf", entity, year, month)
}
