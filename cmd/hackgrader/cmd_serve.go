package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/YashRaythatha/hackathon-code-validation/internal/app"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := g.loadConfig()
			if port != "" {
				copied := *cfg
				copied.Server.Port = port
				cfg = &copied
			}
			application, err := app.New(cfg)
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: application.Router()}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				klog.Infof("hackgrader listening on :%s", cfg.Server.Port)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				application.Close(context.Background())
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				klog.Errorf("服务关闭失败: %v", err)
			}
			application.Close(shutdownCtx)
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT and config)")
	return cmd
}
