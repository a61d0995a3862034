package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "ticket-api",
	Short:        "Support ticket API: create, list, fetch, patch, delete tickets",
	SilenceUsage: true,
	RunE:         runAPI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(migrateCmd)
}
