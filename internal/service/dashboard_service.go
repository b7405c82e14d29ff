package service

import (
	"context"
	"net/http"

	"github.com/straye-as/earsip/internal/apiclient"
	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/schema"
	"github.com/straye-as/earsip/internal/transform"
	"go.uber.org/zap"
)

const dashboardPath = "/dashboard/metrics"

type DashboardService struct {
	exec   Executor
	logger *zap.Logger
}

func NewDashboardService(exec Executor, logger *zap.Logger) *DashboardService {
	return &DashboardService{exec: exec, logger: logger}
}

// Metrics returns the dashboard totals and chart. Missing counters read as zero.
func (s *DashboardService) Metrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	metrics, err := fetch(ctx, s.exec, apiclient.Request{
		Method:    http.MethodGet,
		Path:      dashboardPath,
		Validator: schema.RawDashboard,
	}, transform.NormalizeDashboard, schema.DashboardMetrics)
	if err != nil {
		return nil, err
	}
	return &metrics, nil
}
