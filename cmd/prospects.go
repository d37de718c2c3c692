package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadops-cli/internal/model"
)

var prospectsCmd = &cobra.Command{
	Use:   "prospects",
	Short: "Rank listed businesses not yet leads or customers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		ranked, err := env.Pipeline.Prospects(ctx)
		if err != nil {
			return err
		}
		if len(ranked) == 0 {
			fmt.Fprintln(os.Stderr, "No new prospects found.")
			return nil
		}

		formatRankedLeads(os.Stdout, ranked)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prospectsCmd)
}

// formatRankedLeads writes a tabular ranked-lead list to w. Businesses with
// no generated metrics show blanks in the metric columns.
func formatRankedLeads(out io.Writer, ranked []model.RankedLead) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RANK\tNAME\tADDRESS\tREVENUE\tSHARE\tCREDIT\tLOCATION")
	_, _ = fmt.Fprintln(w, "----\t----\t-------\t-------\t-----\t------\t--------")

	for _, r := range ranked {
		revenue, share, credit, location := "", "", "", ""
		if m := r.Metrics; m != nil {
			revenue = fmt.Sprintf("%.0f", m.EstimatedRevenue)
			share = fmt.Sprintf("%.1f%%", m.MarketShare)
			credit = fmt.Sprintf("%d", m.CreditScore)
			location = fmt.Sprintf("%.1f", m.LocationRating)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Rank, r.Business.Name, r.Business.Address, revenue, share, credit, location)
	}
	_ = w.Flush()
}
