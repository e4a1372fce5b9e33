package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mederror/internal/config"
	"mederror/internal/handler"
	"mederror/internal/router"
	"mederror/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse, evaluate and run history API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(func(c *config.Config) {
				if port != "" {
					c.Server.Port = port
				}
			})
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			parse, err := a.parseService()
			if err != nil {
				return err
			}
			if cfg.Server.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}

			engine := router.Setup(router.Handlers{
				Health:   handler.NewHealthHandler(a.db),
				Parse:    handler.NewParseHandler(parse, cfg.Output.BOM, a.log),
				Evaluate: handler.NewEvaluateHandler(a.evaluationService(), cfg.Eval.CaseSensitive, a.log),
				Runs:     handler.NewRunHandler(service.NewRunService(a.runs), a.log),
			}, cfg.CORS.AllowedOrigins, a.log)

			srv := &http.Server{
				Addr:         cfg.Server.Port,
				Handler:      engine,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}
			return serve(cmd.Context(), srv, a.log)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen address, e.g. :8080")
	return cmd
}

// serve runs srv until it fails or ctx is cancelled, then shuts it down.
func serve(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
