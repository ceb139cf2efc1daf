package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phishguard/phishguard/pkg/pipeline"
)

var (
	reputationConfig string
	reputationJSON   bool
)

var reputationCmd = &cobra.Command{
	Use:   "reputation [domain]",
	Short: "Check a domain against the threat intelligence sources",
	Args:  cobra.ExactArgs(1),
	RunE:  runReputation,
}

func init() {
	reputationCmd.Flags().StringVarP(&reputationConfig, "config", "c", "", "Configuration file path")
	reputationCmd.Flags().BoolVar(&reputationJSON, "json", false, "Print the raw JSON result")
}

func runReputation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(reputationConfig)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging)
	analyzer := pipeline.Build(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rep := analyzer.DomainReputation(ctx, args[0])

	if reputationJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	marker := "✅"
	if rep.IsMalicious {
		marker = "🚨"
	}
	fmt.Printf("%s %s\n", marker, rep.Domain)
	fmt.Printf("   Threat score: %d/100\n", rep.ThreatScore)
	fmt.Printf("   Malicious:    %v\n", rep.IsMalicious)
	if rep.Sources != nil {
		for _, reason := range rep.Sources.Reasons {
			fmt.Printf("   - %s\n", reason)
		}
	}
	return nil
}
