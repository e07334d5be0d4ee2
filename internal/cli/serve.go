package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xela07ax/emergency-console/internal/console/handler"
	"github.com/xela07ax/emergency-console/internal/console/server"
	"github.com/xela07ax/emergency-console/internal/console/service"
	"github.com/xela07ax/emergency-console/internal/engine"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the stats poller and the operator HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(flags)
			if err != nil {
				return err
			}
			defer d.logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, d)
		},
	}
}

func runServe(ctx context.Context, d *deps) error {
	d.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 1. Контроллер опроса
	poller := engine.NewPoller(d.client, d.cfg.Poller.Interval, d.cfg.Backend.RequestTimeout, d.metrics, d.logger)
	if err := poller.Start(ctx); err != nil {
		return err
	}
	defer poller.Stop()

	// 2. Сервис и HTTP слой
	dashService := service.NewDashboardService(poller, d.client, d.logger)
	consoleSrv := server.NewConsoleServer(d.cfg, d.logger, d.registry, handler.NewDashboardHandler(dashService))

	srv := &http.Server{
		Addr:         d.cfg.Server.Addr(),
		Handler:      consoleSrv,
		ReadTimeout:  d.cfg.Server.ReadTimeout,
		WriteTimeout: d.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		d.logger.Info("console API started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 3. Graceful Shutdown
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	d.logger.Info("console stopping...")

	poller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	d.logger.Info("console exited properly")
	return nil
}
