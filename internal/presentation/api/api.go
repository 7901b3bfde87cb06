package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/doctrack/internal/infrastructure/configs"
	"github.com/hilthontt/doctrack/internal/infrastructure/logging"
	"github.com/hilthontt/doctrack/internal/infrastructure/metrics"
	"github.com/hilthontt/doctrack/internal/infrastructure/ratelimiter"
	accountsHandler "github.com/hilthontt/doctrack/internal/presentation/handler/accounts"
	documentsHandler "github.com/hilthontt/doctrack/internal/presentation/handler/documents"
	feedHandler "github.com/hilthontt/doctrack/internal/presentation/handler/feed"
	healthHandler "github.com/hilthontt/doctrack/internal/presentation/handler/health"
	"github.com/hilthontt/doctrack/internal/presentation/views"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const requestTimeout = 60 * time.Second

type Application struct {
	config           configs.Config
	documentsHandler *documentsHandler.Handler
	accountsHandler  *accountsHandler.Handler
	feedHandler      *feedHandler.Handler
	healthHandler    *healthHandler.Handler
	metrics          *metrics.Metrics
	logger           logging.Logger
	// ratelimiter is nil when rate limiting is disabled.
	ratelimiter ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	documentsHandler *documentsHandler.Handler,
	accountsHandler *accountsHandler.Handler,
	feedHandler *feedHandler.Handler,
	healthHandler *healthHandler.Handler,
	metrics *metrics.Metrics,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:           config,
		documentsHandler: documentsHandler,
		accountsHandler:  accountsHandler,
		feedHandler:      feedHandler,
		healthHandler:    healthHandler,
		metrics:          metrics,
		logger:           logger,
		ratelimiter:      ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(app.metricsMiddleware)

	r.Get("/health", app.healthHandler.GetHealth)
	r.Get("/healthz", app.healthHandler.GetHealth)
	r.Get("/live", app.healthHandler.GetHealth)
	r.Get("/ready", app.healthHandler.GetReady)
	r.Handle("/metrics", app.metrics.Handler())

	// long-lived; kept outside the request timeout
	r.Get("/ws/documents/{id}", app.feedHandler.SubscribeHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		if app.ratelimiter != nil {
			r.Use(app.rateLimiterMiddleware)
		}

		r.Get("/", app.documentsHandler.IndexHandler)
		r.Get("/NewDocument.html", app.documentsHandler.NewDocumentFormHandler)
		r.Post("/submit", app.documentsHandler.SubmitHandler)

		r.Get("/signup", app.accountsHandler.SignupFormHandler)
		r.Post("/signup", app.accountsHandler.SignupHandler)
		r.Get("/login", app.accountsHandler.LoginFormHandler)
		r.Post("/login", app.accountsHandler.LoginHandler)

		r.Get("/department/{department}", app.documentsHandler.DepartmentHandler)

		r.Get("/EditDetail/{id}", app.documentsHandler.EditDetailFormHandler)
		r.Post("/EditDetail/{id}", app.documentsHandler.EditDetailHandler)
		r.Get("/view-qr/{id}", app.documentsHandler.ViewQRHandler)
		r.Get("/getLog/{id}", app.documentsHandler.GetLogHandler)

		r.Handle("/qrcodes/*", http.StripPrefix("/qrcodes/", noDirListing(http.FileServer(http.Dir(app.config.Storage.QRCodesDir)))))
		r.Handle("/static/*", http.StripPrefix("/static/", noDirListing(views.Static())))
	})

	return otelhttp.NewHandler(r, "doctrack.http")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"Signal": s.String(),
		})

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		logging.HostIp: srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		logging.HostIp: srv.Addr,
	})

	return nil
}
