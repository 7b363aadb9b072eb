// Package httpserver wraps net/http with graceful shutdown, env-driven
// timeouts and health probes for the gating API.
//
// Run blocks until the context is cancelled, an interrupt or TERM signal
// arrives, or the listener fails, then drains in-flight requests within the
// configured shutdown deadline. Listen failures are wrapped with ErrStart and
// shutdown failures with ErrShutdown for errors.Is inspection.
//
// Usage:
//
//	srv := httpserver.New(
//		httpserver.WithAddr(":8080"),
//		httpserver.WithLogger(log),
//	)
//	if err := srv.Run(ctx, gating.Router(svc)); err != nil {
//		log.Error("server stopped", slog.String("error", err.Error()))
//	}
package httpserver
