package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phishguard/phishguard/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Generate and validate PhishGuard configuration files`,
}

var configGenCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Generate default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := "phishguard.yaml"
		if len(args) > 0 {
			configPath = args[0]
		}

		if _, err := os.Stat(configPath); err == nil {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
			}
		}

		if err := config.DefaultConfig().SaveConfig(configPath); err != nil {
			return fmt.Errorf("failed to save config: %v", err)
		}

		fmt.Printf("✅ Configuration file generated: %s\n", configPath)
		fmt.Printf("📝 Set PHISHGUARD_VIRUSTOTAL_API_KEY and PHISHGUARD_ABUSEIPDB_API_KEY to enable those sources\n")
		fmt.Printf("🚀 Use 'phishguard serve --config %s' to start the API\n", configPath)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(args[0])
		if err != nil {
			return fmt.Errorf("❌ Configuration validation failed: %v", err)
		}

		fmt.Printf("✅ Configuration is valid: %s\n", args[0])
		fmt.Printf("\n📊 Configuration Summary:\n")
		fmt.Printf("  Listen address:   %s\n", cfg.Server.Addr)
		fmt.Printf("  Fusion weights:   ml=%.2f heuristic=%.2f threat_intel=%.2f lookalike=%.2f\n",
			cfg.Scoring.Weights.ML, cfg.Scoring.Weights.Heuristic,
			cfg.Scoring.Weights.ThreatIntel, cfg.Scoring.Weights.Lookalike)
		fmt.Printf("  Risk thresholds:  safe<=%d suspicious<=%d dangerous<=%d\n",
			cfg.Scoring.Thresholds.Safe, cfg.Scoring.Thresholds.Suspicious, cfg.Scoring.Thresholds.Dangerous)
		fmt.Printf("  Cache backend:    redis %s:%d (memory fallback, %d entries)\n",
			cfg.Cache.RedisHost, cfg.Cache.RedisPort, cfg.Cache.MemoryMaxEntries)
		fmt.Printf("  VirusTotal:       %s\n", keyState(cfg.ThreatIntel.VirusTotalAPIKey))
		fmt.Printf("  AbuseIPDB:        %s\n", keyState(cfg.ThreatIntel.AbuseIPDBAPIKey))
		fmt.Printf("  Feed URL:         %s\n", cfg.ThreatIntel.OpenPhishFeedURL)
		return nil
	},
}

func keyState(key string) string {
	if key == "" {
		return "disabled (no API key)"
	}
	return "enabled"
}

func init() {
	configGenCmd.Flags().Bool("force", false, "Overwrite existing config file")
	configCmd.AddCommand(configGenCmd)
	configCmd.AddCommand(configValidateCmd)
}
