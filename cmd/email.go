package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var emailCmd = &cobra.Command{
	Use:   "email <business-name>",
	Short: "Draft a personalized outreach email for a lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Email(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("From: %s (%s, %s)\n", result.Salesperson.Name, result.Salesperson.ID, result.Salesperson.Location)
		fmt.Printf("To:   %s\n\n", result.BusinessName)
		fmt.Println(result.Body)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)
}
