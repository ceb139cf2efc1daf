package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/phishguard/phishguard/pkg/threatintel"
)

var feedConfig string

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Phishing feed operations",
}

var feedStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch the phishing feed and report its size",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(feedConfig)
		if err != nil {
			return err
		}
		logger := newLogger(cfg.Logging)

		feed := threatintel.NewFeed(cfg.ThreatIntel.OpenPhishFeedURL,
			cfg.ThreatIntel.FeedRefresh(), cfg.ThreatIntel.FeedTimeout(), logger)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ThreatIntel.FeedTimeout())
		defer cancel()

		start := time.Now()
		if err := feed.Refresh(ctx); err != nil {
			return fmt.Errorf("❌ feed fetch failed: %v", err)
		}

		fmt.Printf("✅ Feed fetched in %v\n", time.Since(start).Round(time.Millisecond))
		fmt.Printf("   URL:     %s\n", cfg.ThreatIntel.OpenPhishFeedURL)
		fmt.Printf("   Entries: %d\n", feed.Size())
		return nil
	},
}

var feedCheckCmd = &cobra.Command{
	Use:   "check [url]",
	Short: "Check whether a URL is listed in the phishing feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(feedConfig)
		if err != nil {
			return err
		}
		logger := newLogger(cfg.Logging)

		feed := threatintel.NewFeed(cfg.ThreatIntel.OpenPhishFeedURL,
			cfg.ThreatIntel.FeedRefresh(), cfg.ThreatIntel.FeedTimeout(), logger)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ThreatIntel.FeedTimeout())
		defer cancel()

		result := feed.Check(ctx, args[0])
		if !result.Success {
			return fmt.Errorf("❌ feed check failed: %s", result.Error)
		}
		if result.IsPhishing {
			fmt.Printf("🚨 LISTED: %s (feed size %d)\n", args[0], result.FeedSize)
		} else {
			fmt.Printf("✅ not listed: %s (feed size %d)\n", args[0], result.FeedSize)
		}
		return nil
	},
}

func init() {
	feedStatusCmd.Flags().StringVarP(&feedConfig, "config", "c", "", "Configuration file path")
	feedCheckCmd.Flags().StringVarP(&feedConfig, "config", "c", "", "Configuration file path")
	feedCmd.AddCommand(feedStatusCmd)
	feedCmd.AddCommand(feedCheckCmd)
}
