// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bissquit/statuspage/internal/catalog"
	catalogpostgres "github.com/bissquit/statuspage/internal/catalog/postgres"
	"github.com/bissquit/statuspage/internal/config"
	"github.com/bissquit/statuspage/internal/domain"
	"github.com/bissquit/statuspage/internal/identity"
	"github.com/bissquit/statuspage/internal/identity/jwt"
	identitypostgres "github.com/bissquit/statuspage/internal/identity/postgres"
	"github.com/bissquit/statuspage/internal/incidents"
	incidentspostgres "github.com/bissquit/statuspage/internal/incidents/postgres"
	"github.com/bissquit/statuspage/internal/pkg/ctxlog"
	"github.com/bissquit/statuspage/internal/pkg/httputil"
	"github.com/bissquit/statuspage/internal/pkg/metrics"
	"github.com/bissquit/statuspage/internal/pkg/postgres"
	"github.com/bissquit/statuspage/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	db            *pgxpool.Pool
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
}

// New creates a new application instance: it connects to the database,
// applies migrations when enabled, creates the bootstrap admin and builds
// both HTTP servers.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)
	slog.SetDefault(logger)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer connectCancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		metricsCancel: metricsCancel,
	}

	go metrics.CollectDBPoolMetrics(metricsCtx, db, 15*time.Second)

	router, err := app.setupRouter(connectCtx)
	if err != nil {
		db.Close()
		metricsCancel()
		return nil, fmt.Errorf("setup router: %w", err)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers and blocks until the main server stops.
func (a *App) Run() error {
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
		"version", version.Version,
	)

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	for name, srv := range map[string]*http.Server{"server": a.server, "metrics server": a.metricsServer} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Shutdown(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("shutdown %s: %w", name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	a.db.Close()

	return errors.Join(errs...)
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

func (a *App) setupRouter(ctx context.Context) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		http.ServeFile(w, r, "api/openapi/openapi.yaml")
	})

	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerPage))
	})

	catalogRepo := catalogpostgres.NewRepository(a.db)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	incidentsRepo := incidentspostgres.NewRepository(a.db)
	incidentsService := incidents.NewService(incidentsRepo, catalogService)
	incidentsHandler := incidents.NewHandler(incidentsService)

	identityRepo := identitypostgres.NewRepository(a.db)
	jwtAuth := jwt.NewAuthenticator(jwt.Config{
		SecretKey:           a.config.JWT.SecretKey,
		AccessTokenDuration: a.config.JWT.AccessTokenDuration,
	})
	identityService := identity.NewService(identityRepo, jwtAuth)
	identityHandler := identity.NewHandler(identityService, identity.CookieSettings{
		Secure: a.config.Cookie.Secure,
		Domain: a.config.Cookie.Domain,
	})

	if a.config.Admin.Email != "" {
		if err := identityService.EnsureAdmin(ctxlog.WithLogger(ctx, a.logger), a.config.Admin.Email, a.config.Admin.Password); err != nil {
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	loginLimiter := rate.NewLimiter(rate.Limit(a.config.RateLimit.LoginRPS), a.config.RateLimit.LoginBurst)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httputil.Authenticate(identityService))

		identityHandler.RegisterRoutes(r, httputil.RateLimit(loginLimiter))
		identityHandler.RegisterProtectedRoutes(r)

		catalogHandler.RegisterPublicRoutes(r)
		incidentsHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(httputil.RequireRole(domain.RoleAdmin))
			catalogHandler.RegisterAdminRoutes(r)
			incidentsHandler.RegisterAdminRoutes(r)
		})
	})

	return r, nil
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

const swaggerPage = `<!DOCTYPE html>
<html>
<head>
    <title>StatusPage API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        SwaggerUIBundle({
            url: "/api/openapi.yaml",
            dom_id: '#swagger-ui',
            presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
            layout: "BaseLayout"
        });
    </script>
</body>
</html>`
