// Package logger provides structured logging built on log/slog with
// per-call context attribute extraction and optional Sentry forwarding.
//
// Context extractors pull request-scoped values (request IDs, user IDs)
// out of the context on every log call:
//
//	log := logger.New(func(ctx context.Context) (slog.Attr, bool) {
//		if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
//			return slog.String("request_id", id), true
//		}
//		return slog.Attr{}, false
//	})
//
// NewWithSentry adds a second destination: errors become Sentry issues,
// warnings and errors are stored as Sentry logs. An empty DSN degrades
// to stdout-only logging.
package logger
