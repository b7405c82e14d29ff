package service

import (
	"fmt"

	"github.com/straye-as/earsip/internal/apiclient"
	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/fixture"
	"github.com/straye-as/earsip/internal/metrics"
	"github.com/straye-as/earsip/internal/session"
	"go.uber.org/zap"
)

// Services bundles the façades sharing one executor and one session
type Services struct {
	Client     *apiclient.Client
	Session    *session.Session
	Auth       *AuthService
	Categories *CategoryService
	Incoming   *IncomingLetterService
	Outgoing   *OutgoingLetterService
	Dashboard  *DashboardService
	Reports    *ReportService

	cfg     *config.Config
	opts    []apiclient.Option
	backend *fixture.Backend
	owned   bool
	logger  *zap.Logger
}

// New wires every façade against the configured upstream. With mock mode
// enabled the executor talks to an in-process fixture backend instead.
// store persists the session token; nil keeps it in memory.
func New(cfg *config.Config, store session.Store, logger *zap.Logger, opts ...apiclient.Option) (*Services, error) {
	base := []apiclient.Option{
		apiclient.WithReporter(apiclient.NewLogReporter(logger)),
		apiclient.WithWarner(apiclient.NewLogWarner(logger)),
	}
	if cfg.Telemetry.MetricsEnabled {
		base = append(base, apiclient.WithMetrics(metrics.Default()))
	}

	var backend *fixture.Backend
	if cfg.Mock.Enabled {
		var err error
		backend, err = fixture.NewBackend(&cfg.Mock, logger.Named("fixture"))
		if err != nil {
			return nil, fmt.Errorf("failed to start fixture backend: %w", err)
		}
		base = append(base, apiclient.WithTransport(backend.Transport))
		logger.Warn("mock mode enabled, upstream calls are served in-process",
			zap.String("login_email", cfg.Mock.Email),
		)
	}

	s := &Services{
		cfg:     cfg,
		opts:    append(base, opts...),
		backend: backend,
		owned:   true,
		logger:  logger,
	}
	s.wire(session.New(store, logger))
	return s, nil
}

// Fork returns façades with their own session over the same executor
// configuration and fixture backend. The fork must not be closed separately.
func (s *Services) Fork(store session.Store) *Services {
	fork := &Services{cfg: s.cfg, opts: s.opts, backend: s.backend, logger: s.logger}
	fork.wire(session.New(store, s.logger))
	return fork
}

// Mock reports whether calls are served by the fixture backend
func (s *Services) Mock() bool {
	return s.backend != nil
}

// Close releases the fixture backend when this instance started it
func (s *Services) Close() error {
	if s.owned && s.backend != nil {
		return s.backend.Close()
	}
	return nil
}

func (s *Services) wire(sess *session.Session) {
	upstream := s.cfg.Upstream
	if s.backend != nil {
		upstream.BaseURL = fixture.BaseURL
	}

	client := apiclient.New(&upstream, &s.cfg.App, sess, s.logger, s.opts...)
	categories := NewCategoryService(client, upstream.CategoryCacheTTLDuration(), s.logger)

	s.Client = client
	s.Session = sess
	s.Auth = NewAuthService(client, sess, &s.cfg.Auth, s.logger)
	s.Categories = categories
	s.Incoming = NewIncomingLetterService(client, categories, &s.cfg.Pagination, s.logger)
	s.Outgoing = NewOutgoingLetterService(client, categories, &s.cfg.Pagination, s.logger)
	s.Dashboard = NewDashboardService(client, s.logger)
	s.Reports = NewReportService(client, s.logger)
}
