// Package middlewares provides HTTP middleware for restkit applications.
//
// Available middleware:
//
//   - RequestID: assigns a unique ID to each request for tracing
//   - Recover: converts panics into errors handled by the app error handler
//   - Timeout: enforces a per-request deadline
//   - CORS: handles cross-origin resource sharing and preflight requests
//   - Authenticate: runs an auth strategy and attaches the request identity
//   - RequireAuth: rejects requests without an active identity
//
// Middleware can be applied globally via restkit.WithMiddleware or
// per-route:
//
//	app := restkit.New(
//	    restkit.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	        middlewares.Authenticate(auth.Basic(verifier, "api")),
//	    ),
//	)
//
//	r.GET("/me", profileHandler, middlewares.RequireAuth())
//
// Order matters: RequestID and Recover should come first so later
// middleware and handlers run with an ID attached and panic protection.
package middlewares
