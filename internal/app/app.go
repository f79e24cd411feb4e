package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"egxcli/internal/config"
	apierrors "egxcli/internal/errors"
	"egxcli/internal/infrastructure"
	customMiddleware "egxcli/internal/middleware"
	"egxcli/internal/services"
	handlers "egxcli/internal/transport/http"
)

var (
	// Version is overridden at build time with -ldflags "-X egxcli/internal/app.Version=...".
	Version = config.AppVersion
	// BuildTime is set at compile time
	BuildTime = ""
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Cache   services.SnapshotCache
	Signals *services.SignalService
	Health  *services.HealthService
}

// NewApplication loads the configuration at configPath (searched for when
// empty), initializes the logger and builds the application.
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(cfg, logger)
}

// New wires an application from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", Version))

	paths, err := cfg.Paths.Resolve()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(otelConfig(cfg.Monitoring), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, isDevelopment()),
	}
	if otelProviders.Meter != nil {
		a.Metrics, err = infrastructure.CreatePipelineMetrics(otelProviders.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
		}
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	a.setupRouter()
	a.createServer()
	return a, nil
}

func otelConfig(m config.MonitoringConfig) *infrastructure.OTelConfig {
	cfg := infrastructure.DefaultOTelConfig()
	if m.ServiceName != "" {
		cfg.ServiceName = m.ServiceName
	}
	cfg.ServiceVersion = Version
	cfg.EnableMetrics = m.MetricsEnabled
	if m.TraceStdout {
		cfg.EnableTracing = true
		cfg.TraceExporter = "stdout"
	}
	return cfg
}

func isDevelopment() bool {
	env := os.Getenv("ENVIRONMENT")
	return env == "" || env == "development"
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	cache, err := services.NewSnapshotCache(a.Config.Cache, a.Logger)
	if err != nil {
		return err
	}

	a.Services = &ServiceContainer{
		Cache:   cache,
		Signals: services.NewDefaultSignalService(a.Config, a.Paths, cache, a.Metrics, a.Logger),
		Health:  services.NewHealthService(Version, BuildTime, a.Paths, cache, a.Logger),
	}
	return nil
}

// setupRouter builds the middleware chain and mounts the handlers.
// Order: RequestID, RealIP, OTel, Logger, Recoverer, Timeout, then the
// response shaping middleware.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}
	r.Use(customMiddleware.Compress(5))

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	r.Mount(config.HealthEndpoint, healthHandler.Routes())
	r.Handle(config.MetricsEndpoint, handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}

		r.Get("/version", healthHandler.Version)
		r.Mount("/signals", handlers.NewSignalsHandler(a.Services.Signals, a.Logger, a.ErrorHandler).Routes())
	})

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Start begins serving on ln in the background. Serve errors other than a
// clean shutdown cancel the application context through cancel.
func (a *Application) Start(ctx context.Context, ln net.Listener, cancel context.CancelFunc) {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("address", ln.Addr().String()),
		slog.String("version", Version),
		slog.String("cache", a.Services.Cache.Name()),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if status := a.Services.Health.ReadinessCheck(ctx); status.Status != services.StatusReady {
		a.Logger.WarnContext(ctx, "Startup readiness check failed; serving anyway",
			slog.Any("services", status.Services))
	}
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if err := a.Services.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cache close error: %w", err))
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown error: %w", err))
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("log file close error: %w", err))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	a.Start(ctx, ln, stop)
	<-ctx.Done()
	a.Logger.InfoContext(ctx, "Received shutdown signal")
	return a.Stop(ctx)
}
