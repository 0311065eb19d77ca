// Package httpserver wraps net/http with graceful shutdown, env-driven
// timeouts and health probes.
//
// Run starts the listener and blocks until the context is cancelled, an
// interrupt or TERM signal arrives, or the listener fails. Shutdown drains
// in-flight requests within the configured deadline. Listen failures are
// wrapped with ErrStart, shutdown failures with ErrShutdown.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
package httpserver
