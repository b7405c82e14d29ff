package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/metrics"
	"github.com/straye-as/earsip/internal/service"
	"github.com/straye-as/earsip/internal/storage"
	"go.uber.org/zap"
)

// ReportArchiveJobName is the scheduler name of the monthly archive job
const ReportArchiveJobName = "report_archive"

// Archive run outcomes recorded in metrics
const (
	ArchiveStatusSuccess = "success"
	ArchiveStatusSkipped = "skipped"
	ArchiveStatusFailure = "failure"
)

// ReportSource is the slice of the service layer the archive job needs.
// Each run gets its own source so the job never shares the operator session.
type ReportSource interface {
	Login(ctx context.Context, input domain.LoginInput) (*domain.LoginResult, error)
	Logout(ctx context.Context) error
	Export(ctx context.Context, filter domain.ReportFilter) (*domain.ReportFile, error)
}

// SourceFactory creates a ReportSource for one run
type SourceFactory func() ReportSource

type serviceSource struct {
	*service.AuthService
	reports *service.ReportService
}

func (s serviceSource) Export(ctx context.Context, filter domain.ReportFilter) (*domain.ReportFile, error) {
	return s.reports.Export(ctx, filter)
}

// ServiceSources forks svc for every run, giving each run an in-memory session
func ServiceSources(svc *service.Services) SourceFactory {
	return func() ReportSource {
		fork := svc.Fork(nil)
		return serviceSource{AuthService: fork.Auth, reports: fork.Reports}
	}
}

// ReportArchiveJob exports the previous month's report with the archive
// service account and stores it under a deterministic key
type ReportArchiveJob struct {
	sources SourceFactory
	store   storage.Storage
	cfg     *config.ArchiveConfig
	metrics *metrics.Metrics
	now     func() time.Time
	logger  *zap.Logger
}

func NewReportArchiveJob(sources SourceFactory, store storage.Storage, cfg *config.ArchiveConfig, m *metrics.Metrics, logger *zap.Logger) *ReportArchiveJob {
	return &ReportArchiveJob{
		sources: sources,
		store:   store,
		cfg:     cfg,
		metrics: m,
		now:     time.Now,
		logger:  logger,
	}
}

// ArchiveKey is the storage key of the monthly report for entity, e.g.
// reports/2025/05/laporan-all-2025-05.pdf
func ArchiveKey(entity string, year, month int) string {
	filter := domain.ReportFilter{Entity: entity, Period: domain.ReportPeriodMonthly, Month: month, Year: year}
	return fmt.Sprintf("reports/%04d/%02d/%s", year, month, service.ReportFilename(filter, time.Time{}))
}

// PreviousMonth returns the calendar month before now
func PreviousMonth(now time.Time) (year, month int) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prev := first.AddDate(0, -1, 0)
	return prev.Year(), int(prev.Month())
}

// Run is the scheduler entry point
func (j *ReportArchiveJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.cfg.TimeoutDuration())
	defer cancel()
	_, _ = j.RunOnce(ctx)
}

// RunOnce archives last month's report. It returns the storage key and the
// run outcome; an already archived month is skipped.
func (j *ReportArchiveJob) RunOnce(ctx context.Context) (string, error) {
	start := time.Now()
	entity := j.cfg.Entity
	if entity == "" {
		entity = domain.ReportEntityAll
	}
	year, month := PreviousMonth(j.now())
	key := ArchiveKey(entity, year, month)
	log := j.logger.With(zap.String("key", key))

	status, err := j.archive(ctx, entity, year, month, key)
	j.metrics.IncArchiveRun(status)
	if err != nil {
		log.Error("report archive failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return key, err
	}

	log.Info("report archive finished",
		zap.String("status", status),
		zap.Duration("duration", time.Since(start)),
	)
	return key, nil
}

func (j *ReportArchiveJob) archive(ctx context.Context, entity string, year, month int, key string) (string, error) {
	exists, err := j.store.Exists(ctx, key)
	if err != nil {
		return ArchiveStatusFailure, fmt.Errorf("failed to check archive: %w", err)
	}
	if exists {
		return ArchiveStatusSkipped, nil
	}

	src := j.sources()
	if _, err := src.Login(ctx, domain.LoginInput{Email: j.cfg.ServiceEmail, Password: j.cfg.ServicePassword}); err != nil {
		return ArchiveStatusFailure, fmt.Errorf("failed to log in archive account: %w", err)
	}
	defer func() {
		if err := src.Logout(context.WithoutCancel(ctx)); err != nil {
			j.logger.Warn("archive account logout failed", zap.Error(err))
		}
	}()

	file, err := src.Export(ctx, domain.ReportFilter{
		Entity: entity,
		Period: domain.ReportPeriodMonthly,
		Month:  month,
		Year:   year,
	})
	if err != nil {
		return ArchiveStatusFailure, fmt.Errorf("failed to export report: %w", err)
	}

	if err := j.store.Put(ctx, key, file.ContentType, file.Data); err != nil {
		return ArchiveStatusFailure, fmt.Errorf("failed to store report: %w", err)
	}
	return ArchiveStatusSuccess, nil
}

// RegisterReportArchiveJob adds the archive job to scheduler. With
// cfg.RunOnStartup the job also runs once in the background right away.
func RegisterReportArchiveJob(scheduler *Scheduler, job *ReportArchiveJob, cfg *config.ArchiveConfig) error {
	if cfg.RunOnStartup {
		go job.Run()
	}
	return scheduler.AddJob(ReportArchiveJobName, cfg.Cron, job.Run)
}
