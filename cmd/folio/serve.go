package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/eringen/folio"
)

//nolint:gochecknoglobals // Cobra boilerplate
var addr string

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the portfolio HTTP server until interrupted.

Example:
  folio serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $ADDR or :3000)")
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	cfg := loadConfig()
	if addr != "" {
		cfg.Addr = addr
	}

	app := folio.New(cfg)
	defer app.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-errCh:
		return errors.Wrap(err, "serve")
	case sig := <-quit:
		app.Log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = app.Shutdown(ctx)
	return errors.Wrap(err, "shutdown")
}
