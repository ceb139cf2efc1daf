package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phishguard/phishguard/pkg/api"
	"github.com/phishguard/phishguard/pkg/pipeline"
)

var (
	serveConfig string
	serveAddr   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the PhishGuard analysis API server",
	Long: `Start the HTTP API server exposing URL analysis, domain reputation,
health, and Prometheus metrics endpoints. Shuts down gracefully on
SIGINT/SIGTERM, draining in-flight requests.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "Configuration file path")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfig)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger := newLogger(cfg.Logging)
	analyzer := pipeline.Build(cfg, logger)
	server := api.NewServer(analyzer, cfg.Server, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("shutdown failed: %v", err)
		}
	}

	return nil
}
