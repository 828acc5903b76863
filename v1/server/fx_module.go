package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/colbert-search/v1/logger"
)

// FXModule provides *Server and runs its listener for the lifetime of the
// app. It must be listed after pipeline.FXModule.
//
// Dependencies required by this module:
// - A server.Config instance
// - The pipeline components, an embedding.Embedder, metrics and a logger
var FXModule = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(RegisterServerLifecycle),
)

// RegisterServerLifecycle binds the listener on start, so a port conflict
// fails startup, and drains in-flight requests on stop.
func RegisterServerLifecycle(lc fx.Lifecycle, s *Server, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", s.HTTP.Addr)
			if err != nil {
				return err
			}
			if s.cfg.InsecureAPIKey() {
				log.Warn("API_KEY is the insecure default; set API_KEY before exposing the service", nil, nil)
			}
			log.Info("Starting HTTP server", nil, map[string]interface{}{"address": ln.Addr().String()})

			go func() {
				if err := s.HTTP.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped unexpectedly", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down HTTP server", nil, nil)
			if s.cfg.ShutdownTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
				defer cancel()
			}
			return s.HTTP.Shutdown(ctx)
		},
	})
}
