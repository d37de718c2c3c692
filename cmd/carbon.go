package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadops-cli/pkg/carbon"
)

var carbonCmd = &cobra.Command{
	Use:   "carbon <zone>",
	Short: "Look up grid carbon intensity for a zone",
	Long:  `Fetches the latest carbon intensity (gCO2eq/kWh) for a grid zone such as IT or IT-NO, useful context when positioning off-grid energy.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("carbon"); err != nil {
			return err
		}

		client := carbon.NewClient(cfg.Carbon.Key, carbon.WithBaseURL(cfg.Carbon.BaseURL))
		in, err := client.Latest(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: %.0f gCO2eq/kWh (as of %s)\n", in.Zone, in.Value, in.UpdatedAt.Format("2006-01-02 15:04 MST"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(carbonCmd)
}
