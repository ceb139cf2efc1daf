package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/phishguard/phishguard/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "phishguard",
	Short: "PhishGuard - Real-time phishing URL detection",
	Long: `PhishGuard scores URLs for phishing risk by fusing heuristic rules,
lookalike-domain detection, external threat intelligence, and an ML
classifier into a single explained verdict.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("PhishGuard - Phishing URL Detection")
		fmt.Println("Use 'phishguard --help' for usage information")
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reputationCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(feedCmd)
}

// loadConfig resolves the config file; an empty path yields the defaults
// with environment overrides applied.
func loadConfig(path string) (*config.Config, error) {
	return config.LoadConfig(path)
}

// newLogger builds the process logger from the logging section
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
