package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"authn-simple/internal/service"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s%s\n", "API:", service.APIVersion)
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s%s\n", "Version:", appVersion)
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s%s\n", "Commit:", appCommit)
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s%s\n", "Date:", appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
