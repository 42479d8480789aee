// Package middleware provides HTTP middleware for the Globetrotter API.
//
// The middleware package contains reusable middleware components for
// request processing, rate limiting, and cross-cutting concerns.
//
// # Available Middleware
//
// Core middleware components:
//
//   - RequestID: Unique request identifier generation and propagation
//   - Logger: Structured request logging via slog
//   - Recovery: Panic recovery with a 500 Problem Details response
//   - CORS: Cross-origin request handling with an origin allowlist
//   - RateLimit: Token bucket rate limiting per client address
//   - Compress: gzip response compression
//
// # Composition
//
// Middleware is composed with Chain, applied outermost-first:
//
//	wrapped := middleware.Chain(
//	    mux,
//	    middleware.RequestID,
//	    middleware.Logger,
//	    middleware.Recovery,
//	    middleware.CORS(cfg.Server.AllowedOrigins),
//	    middleware.RateLimit(rateLimiter),
//	    middleware.Compress,
//	)
//
// # Context Values
//
// Middleware sets context values accessible via helper functions:
//
//   - GetRequestID(ctx): Returns the unique request identifier
package middleware
