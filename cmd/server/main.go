package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/http/handler"
	"github.com/straye-as/earsip/internal/http/middleware"
	"github.com/straye-as/earsip/internal/http/router"
	"github.com/straye-as/earsip/internal/jobs"
	"github.com/straye-as/earsip/internal/logger"
	"github.com/straye-as/earsip/internal/metrics"
	"github.com/straye-as/earsip/internal/service"
	"github.com/straye-as/earsip/internal/session"
	"github.com/straye-as/earsip/internal/storage"
	"github.com/straye-as/earsip/internal/telemetry"
	"go.uber.org/zap"
)

// @title E-Arsip Admin API
// @version 1.0
// @description Same-origin API for the E-Arsip document archive admin panel
// @BasePath /api

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name earsip_session

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Basic configuration first, for logging
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	if cfg.Telemetry.TracingEnabled {
		tp, err := telemetry.InitTracer(cfg.App.Name, cfg.App.Version)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer telemetry.Shutdown(context.Background(), tp, log)
	}

	var m *metrics.Metrics
	if cfg.Telemetry.MetricsEnabled {
		m = metrics.Default()
	}

	svc, err := service.New(cfg, nil, log)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() { _ = svc.Close() }()

	unsubscribe := svc.Session.Subscribe(func(ev session.Event) {
		if ev.Kind == session.EventUnauthenticated {
			log.Info("operator session ended", zap.String("reason", ev.Reason))
		}
	})
	defer unsubscribe()

	proxyHandler, err := handler.NewProxyHandler(svc.Client, log)
	if err != nil {
		return fmt.Errorf("failed to create proxy: %w", err)
	}

	rt := router.NewRouter(
		cfg,
		log,
		middleware.NewSessionGate(svc.Session, &cfg.Auth, log),
		middleware.NewRateLimiter(&cfg.RateLimit, cfg.Auth.CookieName, log),
		m,
		router.Handlers{
			Auth:       handler.NewAuthHandler(svc.Auth, &cfg.Auth, log),
			Incoming:   handler.NewIncomingLetterHandler(svc.Incoming, svc.Categories, log),
			Outgoing:   handler.NewOutgoingLetterHandler(svc.Outgoing, log),
			Categories: handler.NewCategoryHandler(svc.Categories, log),
			Dashboard:  handler.NewDashboardHandler(svc.Dashboard, log),
			Reports:    handler.NewReportHandler(svc.Reports, log),
			Proxy:      proxyHandler,
			Health:     handler.NewHealthHandler(svc.Client, svc.Mock(), log),
		},
	)

	// Monthly report archive
	var scheduler *jobs.Scheduler
	if cfg.Archive.Enabled {
		archiveStorage, err := storage.NewStorage(ctx, &cfg.Storage, log)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

		scheduler = jobs.NewScheduler(log)
		job := jobs.NewReportArchiveJob(jobs.ServiceSources(svc), archiveStorage, &cfg.Archive, m, log.Named("archive"))
		if err := jobs.RegisterReportArchiveJob(scheduler, job, &cfg.Archive); err != nil {
			return fmt.Errorf("failed to register archive job: %w", err)
		}
		scheduler.Start()
		log.Info("Scheduler started with report archive job",
			zap.String("cron_expr", cfg.Archive.Cron),
			zap.Duration("timeout", cfg.Archive.TimeoutDuration()),
		)
	} else {
		log.Info("Report archive job disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.Bool("mock", svc.Mock()))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}
		log.Info("Server stopped gracefully")
	}

	return nil
}
