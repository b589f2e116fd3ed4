package middlewares

import (
	"time"

	"github.com/dmitrymomot/restkit/internal"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// SkipPaths lists exact request paths that are not logged,
	// e.g. health check endpoints.
	SkipPaths []string
}

// LoggingOption configures LoggingConfig.
type LoggingOption func(*LoggingConfig)

// WithLoggingSkipPaths sets paths excluded from request logging.
func WithLoggingSkipPaths(paths ...string) LoggingOption {
	return func(cfg *LoggingConfig) {
		cfg.SkipPaths = paths
	}
}

// Logging returns middleware that logs every request with method, path,
// status, and duration through the app logger. Responses with status
// 500 and above are logged at error level, the rest at info.
func Logging(opts ...LoggingOption) internal.Middleware {
	cfg := &LoggingConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (any, error) {
			path := c.Request().URL.Path
			if _, ok := skip[path]; ok {
				return next(c)
			}

			start := time.Now()
			result, err := next(c)
			duration := time.Since(start)

			// Plain results are encoded by dispatch after middleware
			// returns, so the writer still reports its default 200 on
			// success; errors carry the status themselves.
			status := c.ResponseWriter().Status()
			if err != nil {
				if httpErr := internal.AsHTTPError(err); httpErr != nil {
					status = httpErr.Code
				} else {
					status = 500
				}
			}

			attrs := []any{
				"method", c.Request().Method,
				"path", path,
				"status", status,
				"duration", duration.String(),
			}
			if reqID := GetRequestID(c); reqID != "" {
				attrs = append(attrs, "request_id", reqID)
			}

			if status >= 500 {
				c.LogError("request", attrs...)
			} else {
				c.LogInfo("request", attrs...)
			}

			return result, err
		}
	}
}
