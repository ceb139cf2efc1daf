package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phishguard/phishguard/pkg/pipeline"
	"github.com/phishguard/phishguard/pkg/scoring"
)

var (
	analyzeConfig string
	analyzeJSON   bool
	analyzeProbes bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "Analyze a single URL for phishing risk",
	Long: `Run the full analysis pipeline against one URL and print the verdict:
threat score, risk level, recommendation, and ranked reasons.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig, "config", "c", "", "Configuration file path")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the raw JSON verdict")
	analyzeCmd.Flags().BoolVar(&analyzeProbes, "probes", true, "Run SSL/WHOIS network probes")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(analyzeConfig)
	if err != nil {
		return err
	}
	cfg.Probes.Enabled = analyzeProbes

	logger := newLogger(cfg.Logging)
	analyzer := pipeline.Build(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := analyzer.AnalyzeURL(ctx, pipeline.Request{URL: args[0]})
	if err != nil {
		return fmt.Errorf("analysis failed: %v", err)
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printVerdict(args[0], result)
	return nil
}

func printVerdict(url string, result *scoring.Result) {
	fmt.Printf("%s %s\n", verdictEmoji(result.RiskLevel), url)
	fmt.Printf("   Threat score:   %d/100 (%s)\n", result.ThreatScore, result.RiskLevel)
	fmt.Printf("   Phishing:       %v (confidence %.2f)\n", result.IsPhishing, result.Confidence)
	fmt.Printf("   Recommendation: %s\n", result.Recommendation)

	if len(result.Analysis.Reasons) > 0 {
		fmt.Println("   Reasons:")
		for _, reason := range result.Analysis.Reasons {
			fmt.Printf("   - [%s] %s\n", reason.Severity, reason.Factor)
		}
	}

	fmt.Printf("   Breakdown: ml=%.1f heuristic=%.1f threat_intel=%.1f lookalike=%.1f (model: %s)\n",
		result.Analysis.MLContribution,
		result.Analysis.HeuristicContribution,
		result.Analysis.ThreatIntelContribution,
		result.Analysis.LookalikeContribution,
		result.Analysis.ModelUsed)
}

func verdictEmoji(riskLevel string) string {
	switch riskLevel {
	case "safe":
		return "✅"
	case "suspicious":
		return "⚠️"
	case "dangerous":
		return "🚨"
	case "critical":
		return "☠️"
	default:
		return "❓"
	}
}
