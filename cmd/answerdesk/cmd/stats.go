package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newStatsCmd(params *rootParams) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge base statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			desk, _, _, err := buildDesk(cmd, params)
			if err != nil {
				return err
			}

			stats, err := desk.Stats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println("Total questions:", stats.TotalQuestions)
			fmt.Println("Categories:     ", stats.Categories)
			if stats.LastLoaded != nil {
				fmt.Println("Last loaded:    ", stats.LastLoaded.Format("2006-01-02 15:04:05"))
			}

			categories := make([]string, 0, len(stats.ByCategory))
			for category := range stats.ByCategory {
				categories = append(categories, category)
			}
			sort.Strings(categories)
			for _, category := range categories {
				fmt.Printf("  %s: %d\n", category, stats.ByCategory[category])
			}
			return nil
		},
	}
}

func newRefreshCmd(params *rootParams) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Discard the knowledge base cache and reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			desk, _, _, err := buildDesk(cmd, params)
			if err != nil {
				return err
			}

			if err := desk.Refresh(cmd.Context()); err != nil {
				return err
			}

			stats, err := desk.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println("Knowledge base refreshed:", stats.TotalQuestions, "questions")
			return nil
		},
	}
}
