package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"authn-simple/internal/passwd"
)

var (
	hashCost   int
	hashScheme string
)

var hashCmd = &cobra.Command{
	Use:   "hash <password>",
	Short: "Print a password hash for user.<name>.password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := passwd.HashScheme(hashScheme, args[0], hashCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	hashCmd.Flags().StringVar(&hashScheme, "scheme", passwd.SchemeBcrypt, "hash scheme: bcrypt or pbkdf2-sha256")
	hashCmd.Flags().IntVar(&hashCost, "cost", 0, "bcrypt cost or pbkdf2 iterations (0 uses the default)")
	rootCmd.AddCommand(hashCmd)
}
