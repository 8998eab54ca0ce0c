package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/osvaldoandrade/wikisync/internal/bootstrap"
	"github.com/osvaldoandrade/wikisync/internal/httpapi"
	"github.com/osvaldoandrade/wikisync/internal/infra/schema"
)

const shutdownGrace = 30 * time.Second

func newServeCmd(opts *RootOptions) *cobra.Command {
	var listen string
	var strict bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sync HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.Config
			if strings.TrimSpace(listen) != "" {
				cfg.Listen = listen
			}
			ctx := commandContext(cmd)
			sys, err := bootstrap.Build(ctx, cfg, bootstrap.Options{Strict: strict})
			if err != nil {
				return err
			}
			defer sys.Close()

			validator, err := schema.NewValidator()
			if err != nil {
				return err
			}
			handler := httpapi.NewServer(sys.Engine, validator, httpapi.ServerConfig{
				RequestTimeout: cfg.RequestTimeout,
			})

			listener, err := net.Listen("tcp", cfg.Listen)
			if err != nil {
				return err
			}
			return serve(ctx, listener, handler)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&strict, "strict", envBoolDefault("WIKISYNC_STRICT", false), "Refuse to start when a volume is unavailable")
	return cmd
}

// serve runs the HTTP server until ctx ends, then drains in-flight requests.
func serve(ctx context.Context, listener net.Listener, handler http.Handler) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", listener.Addr().String())
		errs <- server.Serve(listener)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
