package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warrantylens/warrantylens/internal/core/store"
	"github.com/warrantylens/warrantylens/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a read-only HTTP view of the result store",
	Long: `Expose the stored query results over HTTP for downstream tooling:
GET /health, GET /version, GET /api/results, GET /api/results/{serial}.
The server never mutates the store.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() // nolint:errcheck // stderr sync is best-effort

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return err
	}
	logger.Info("store loaded", zap.String("path", st.Path()), zap.Int("results", st.Len()))

	srv := server.New(cfg.Server, st, logger, versionInfo.Version)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
