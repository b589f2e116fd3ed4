package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/restkit/pkg/cookie"
	"github.com/dmitrymomot/restkit/pkg/health"
	"github.com/dmitrymomot/restkit/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App orchestrates the application lifecycle.
// It manages HTTP routing, middleware, and graceful shutdown.
// App is immutable after creation, all configuration is done via New().
type App struct {
	router                  chi.Router
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	logger                  *slog.Logger
	cookieManager           *cookie.Manager
	sessionManager          *SessionManager
	middlewares             []Middleware
	handlers                []Handler
	staticRoutes            []staticRoute
	debug                   bool
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := restkit.New(
//	    restkit.WithMiddleware(middlewares.Logging(log)),
//	    restkit.WithHandlers(
//	        resource.NewCollection(todoStore),
//	        handlers.NewAuth(users),
//	    ),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:        chi.NewRouter(),
		logger:        logger.NewNope(),
		cookieManager: cookie.New(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.sessionManager != nil {
		a.sessionManager.SetLogger(a.logger)
	}

	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router for the App.
func (a *App) Router() chi.Router {
	return a.router
}

// Run starts the HTTP server and blocks until shutdown.
//
// Example:
//
//	app := restkit.New(
//	    restkit.WithHandlers(handlers.NewTodos(store)),
//	)
//	err := app.Run(":8080", restkit.Logger(slog))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// setupRoutes configures the router with middleware and handlers.
func (a *App) setupRoutes() {
	if a.notFoundHandler == nil {
		a.notFoundHandler = func(c Context) (any, error) {
			return nil, ErrNotFound("resource not found")
		}
	}
	if a.methodNotAllowedHandler == nil {
		a.methodNotAllowedHandler = func(c Context) (any, error) {
			return nil, ErrMethodNotAllowed("method not allowed")
		}
	}
	a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the
// app's dispatch logic.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.dispatch(newContext(w, r, a), h)
	}
}

// dispatch runs a handler and renders its outcome: errors go through
// the error handler, a plain non-nil result is encoded as JSON 200, and
// an already-written response is left alone.
func (a *App) dispatch(c Context, h HandlerFunc) {
	result, err := h(c)
	if err != nil {
		a.handleError(c, err)
		return
	}
	if result == nil || c.Written() {
		return
	}
	if err := c.JSON(http.StatusOK, result); err != nil {
		c.LogError("failed to encode response", "error", err)
	}
}

// handleError renders errors from handlers using the configured error
// handler, falling back to structured JSON bodies.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		return
	}
	if a.errorHandler != nil {
		_ = a.errorHandler(c, err)
		return
	}

	if httpErr := AsHTTPError(err); httpErr != nil {
		if httpErr.Err != nil {
			c.LogError("request failed",
				"status", httpErr.Code,
				"error", httpErr.Err,
			)
		}
		_ = c.JSON(httpErr.Code, httpErr.Body())
		return
	}

	// Unexpected errors never leak their message unless debug is on.
	c.LogError("unhandled error", "error", err)
	body := map[string]any{"error": "internal server error"}
	if a.debug {
		body["detail"] = err.Error()
	}
	_ = c.JSON(http.StatusInternalServerError, body)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	restkit.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
