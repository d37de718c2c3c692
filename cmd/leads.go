package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadops-cli/internal/enrich"
	"github.com/sells-group/leadops-cli/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Rank and manage the current lead set",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		ranked, err := env.Pipeline.Leads(ctx)
		if err != nil {
			return err
		}

		formatRankedLeads(os.Stdout, ranked)
		return nil
	},
}

var leadsAddCmd = &cobra.Command{
	Use:   "add <business-name>...",
	Short: "Promote listed businesses to leads",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Promotion only touches local files; no generative client needed.
		p := &enrich.Pipeline{Data: store.NewCSV(csvPaths())}
		added, err := p.PromoteLeads(ctx, args)
		if err != nil {
			return err
		}
		fmt.Printf("Added %d lead(s).\n", added)
		return nil
	},
}

func init() {
	leadsCmd.AddCommand(leadsAddCmd)
	rootCmd.AddCommand(leadsCmd)
}
