// Package main provides the HR assistant server entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dempseyco/hr-assistant-go/internal/config"
	"github.com/dempseyco/hr-assistant-go/internal/dialog"
	"github.com/dempseyco/hr-assistant-go/internal/docs"
	"github.com/dempseyco/hr-assistant-go/internal/employee"
	"github.com/dempseyco/hr-assistant-go/internal/logger"
	"github.com/dempseyco/hr-assistant-go/internal/mail"
	"github.com/dempseyco/hr-assistant-go/internal/metrics"
	"github.com/dempseyco/hr-assistant-go/internal/sentry"
	"github.com/dempseyco/hr-assistant-go/internal/session"
	"github.com/dempseyco/hr-assistant-go/internal/storage"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize logger (Better Stack shipping is optional)
	log := logger.NewWithOptions(cfg.LogLevel, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	// Set as default logger to enable context value extraction (sessionID,
	// employeeID, requestID) via ContextHandler in package-level
	// slog.*Context() calls.
	slog.SetDefault(log.Logger)
	log.Info("Starting HR assistant server")

	// Initialize Sentry error tracking (no-op without a DSN)
	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, continuing without error tracking")
	}
	defer sentry.Flush(2 * time.Second)

	// Connect to the record store
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	// Seed employees and health plans from CSV exports when configured.
	// Seeding only runs against empty tables.
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer seedCancel()
	if cfg.EmployeeCSV != "" {
		n, err := db.SeedEmployeesFromCSV(seedCtx, cfg.EmployeeCSV)
		if err != nil {
			return fmt.Errorf("seed employees: %w", err)
		}
		if n > 0 {
			log.WithField("count", n).Info("Employee records seeded from CSV")
		}
	}
	if cfg.HealthPlansCSV != "" {
		n, err := db.SeedHealthPlansFromCSV(seedCtx, cfg.HealthPlansCSV)
		if err != nil {
			log.WithError(err).Warn("Failed to seed health plans, continuing without them")
		} else if n > 0 {
			log.WithField("count", n).Info("Health plans seeded from CSV")
		}
	}

	// Create Prometheus registry with standard collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())
	m := metrics.New(registry)

	// Load the employee directory snapshot
	directory, err := employee.NewDirectory(seedCtx, db, log)
	if err != nil {
		return fmt.Errorf("load employee directory: %w", err)
	}
	if directory.Count() == 0 {
		log.Warn("Employee directory is empty; every lookup will fail until records are loaded")
	}

	sessions := session.NewManager()
	mailer := mail.NewOutbox(db, cfg.HRMailAddress, log)
	generator := docs.NewGenerator()

	engine := dialog.NewEngine(dialog.Config{
		Directory:        directory,
		Sessions:         sessions,
		Mailer:           mailer,
		Documents:        generator,
		Plans:            planSource{db: db},
		Metrics:          m,
		Logger:           log,
		TaxYear:          cfg.W2TaxYear,
		MaxQuestionChars: cfg.MaxQuestionChars,
	})
	log.Info("Dialogue engine created")

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sentry.GinMiddleware())
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))

	srv := newServer(cfg, engine, directory, sessions, db, generator, m, log)
	srv.setupRoutes(router, registry)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.ChatTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if shutdownErr := log.Shutdown(flushCtx); shutdownErr != nil {
		_, _ = fmt.Fprintf(os.Stderr, "server: flush logs: %v\n", shutdownErr)
	}

	if err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}

// planSource adapts the storage layer to the dialogue engine's catalog
// interface.
type planSource struct {
	db *storage.DB
}

func (p planSource) ListHealthPlans(ctx context.Context) ([]dialog.HealthPlan, error) {
	rows, err := p.db.ListHealthPlans(ctx)
	if err != nil {
		return nil, err
	}
	plans := make([]dialog.HealthPlan, 0, len(rows))
	for _, r := range rows {
		plans = append(plans, dialog.HealthPlan{
			Name:                 r.Name,
			PlanType:             r.PlanType,
			MonthlyCostEmployee:  r.MonthlyCostEmployee,
			MonthlyCostFamily:    r.MonthlyCostFamily,
			DeductibleIndividual: r.DeductibleIndividual,
		})
	}
	return plans, nil
}
