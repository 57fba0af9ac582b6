package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/bjaus/mvc"
	"github.com/bjaus/mvc/internal/config"
	"github.com/bjaus/mvc/internal/controllers"
	"github.com/bjaus/mvc/internal/database"
	"github.com/bjaus/mvc/internal/errorpage"
	"github.com/bjaus/mvc/internal/models"
	"github.com/bjaus/mvc/internal/server"
	"github.com/bjaus/mvc/internal/telemetry"
	"github.com/bjaus/mvc/internal/views"
)

type app struct {
	cfg      config.Config
	db       *sql.DB
	logger   *slog.Logger
	registry *prometheus.Registry
	errors   *errorpage.Handler
	router   *mvc.Router
}

func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	logger := telemetry.NewLogger(cfg.Log, logOut)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx, db, cfg.Database.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		db:       db,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, cfg.Database.Driver),
	)

	renderer := newRenderer(cfg.Routing)
	a.errors = &errorpage.Handler{
		ShowErrors: cfg.Errors.Show,
		LogDir:     cfg.Errors.LogDir,
		Renderer:   renderer,
		Logger:     logger,
	}

	opts := []mvc.Option{mvc.WithErrorHandler(a.errors.Handle)}
	opts = append(opts, telemetry.Logging(logger)...)
	opts = append(opts, telemetry.NewMetrics(a.registry).Options()...)
	opts = append(opts, telemetry.Tracing(otel.GetTracerProvider())...)
	a.router = newRouter(cfg.Routing, renderer, opts...)

	controllers.Register(a.router, controllers.Deps{
		Departments: models.NewDepartments(db),
		Roles:       models.NewRoles(db),
		Users:       models.NewUsers(db),
	})

	return a, nil
}

func newRenderer(cfg config.RoutingConfig) *views.Views {
	if cfg.Source == "query" {
		return views.New(views.WithQueryLinks())
	}
	return views.New()
}

func newRouter(cfg config.RoutingConfig, renderer mvc.Renderer, opts ...mvc.Option) *mvc.Router {
	opts = append([]mvc.Option{mvc.WithRenderer(renderer)}, opts...)
	if cfg.Source == "query" {
		opts = append(opts, mvc.WithQueryRouting())
	}
	return mvc.New(opts...)
}

func (a *app) handler() http.Handler {
	return server.Handler(server.Options{
		App:      a.router,
		Recover:  a.errors.Recover,
		Gatherer: a.registry,
		Ping:     a.db.PingContext,
		Metrics:  a.cfg.Metrics,
		Static:   a.cfg.Static,
	})
}

func (a *app) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
