package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/primerdw/bartender-api/internal/config"
	httpSrv "github.com/primerdw/bartender-api/internal/http"
	"github.com/primerdw/bartender-api/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		log, err := logger.Init(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		a, err := openApp(cmd.Context(), cfg, log)
		if err != nil {
			return fmt.Errorf("startup: %w", err)
		}
		defer func() {
			if err := a.Close(); err != nil {
				log.Warn("close resources", zap.Error(err))
			}
		}()

		server := httpSrv.NewServer(httpSrv.Options{
			Prefix:       cfg.HTTP.Prefix,
			ExposeErrors: cfg.HTTP.ExposeErrors,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		}, httpSrv.Deps{
			Log:       log,
			Keys:      a.keys,
			Lookups:   a.lookups,
			Resources: a.resources,
			Audit:     a.audit,
			Ready:     a.ready,
		})

		errCh := make(chan error, 1)
		go func() {
			log.Info("starting http", zap.String("addr", cfg.HTTP.Addr), zap.String("prefix", cfg.HTTP.Prefix))
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh, stopSignals := notifyShutdown()
		defer stopSignals()

		select {
		case sig := <-sigCh:
			log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil {
				log.Error("http server exited", zap.Error(err))
				return err
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	},
}

// notifyShutdown relays SIGINT and SIGTERM until the returned stop func runs.
func notifyShutdown() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return ch, func() { signal.Stop(ch) }
}
