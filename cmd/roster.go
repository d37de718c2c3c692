package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadops-cli/internal/roster"
	"github.com/sells-group/leadops-cli/internal/store"
)

var (
	rosterCount int
	rosterSeed  int64
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the salesperson roster",
}

var rosterGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic salesperson roster",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		people := roster.New(rosterSeed).Generate(rosterCount)
		if err := store.NewCSV(csvPaths()).WriteRoster(ctx, people); err != nil {
			return err
		}
		fmt.Printf("Wrote %d salespeople.\n", len(people))
		return nil
	},
}

func init() {
	rosterGenerateCmd.Flags().IntVarP(&rosterCount, "count", "n", 100, "number of salespeople to generate")
	rosterGenerateCmd.Flags().Int64Var(&rosterSeed, "seed", 0, "random seed (0 = from clock)")
	rosterCmd.AddCommand(rosterGenerateCmd)
	rootCmd.AddCommand(rosterCmd)
}
