package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kilianp07/socketsched/api/allocate"
	"github.com/kilianp07/socketsched/api/runs"
	"github.com/kilianp07/socketsched/app"
	"github.com/kilianp07/socketsched/config"
	"github.com/kilianp07/socketsched/infra/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the allocation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(serve)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newMux(cfg *config.Config, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/allocate", allocate.NewHandler(svc))
	if store := svc.Store(); store != nil {
		mux.Handle("/api/runs", runs.NewHandler(store, cfg.API.Token))
	}
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func serve(ctx context.Context, cfg *config.Config, svc *app.Service) error {
	log := logger.New("api")
	srv := &http.Server{Addr: cfg.API.Addr, Handler: newMux(cfg, svc), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("api shutdown: %v", err)
		}
	}()
	log.Infof("serving on %s", cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
