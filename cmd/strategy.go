package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var strategyCmd = &cobra.Command{
	Use:   "strategy <business-name>",
	Short: "Generate a marketing-strategy document for a lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		text, err := env.Pipeline.Strategy(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(strategyCmd)
}
