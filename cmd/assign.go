package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadops-cli/internal/enrich"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Match every lead to a salesperson",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Pipeline.Assign(ctx)
		if err != nil {
			return err
		}

		formatAssignReport(os.Stdout, report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(assignCmd)
}

// formatAssignReport writes assigned and unassigned leads to w.
func formatAssignReport(out io.Writer, report *enrich.AssignReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if len(report.Assigned) > 0 {
		_, _ = fmt.Fprintln(w, "BUSINESS\tSALESPERSON\tID\tCITY\tEXPERTISE")
		_, _ = fmt.Fprintln(w, "--------\t-----------\t--\t----\t---------")
		for _, a := range report.Assigned {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				a.BusinessName, a.SalespersonName, a.SalespersonID, a.Location, a.Expertise)
		}
	}
	_ = w.Flush()

	if len(report.Unassigned) > 0 {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, "Unassigned:")
		for _, u := range report.Unassigned {
			_, _ = fmt.Fprintf(out, "  %s: %s\n", u.BusinessName, u.Reason)
		}
	}
}
