package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"authn-simple/internal/config"
	"authn-simple/internal/domain"
	"authn-simple/internal/passwd"
	"authn-simple/internal/repository/sqlite"
)

var (
	userAddScheme string
	userAddCost   int
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Provision users in the sqlite user store",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username> <password>",
	Short: "Add a user to the sqlite user store",
	Args:  cobra.ExactArgs(2),
	RunE:  runUserAdd,
}

func init() {
	userAddCmd.Flags().StringVar(&userAddScheme, "scheme", passwd.SchemeBcrypt, "hash scheme: bcrypt or pbkdf2-sha256")
	userAddCmd.Flags().IntVar(&userAddCost, "cost", 0, "bcrypt cost or pbkdf2 iterations (0 uses the default)")
	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	username, password := args[0], args[1]
	if username == "" {
		return fmt.Errorf("username is required")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	hash, err := passwd.HashScheme(userAddScheme, password, userAddCost)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	users := sqlite.NewUserRepository(db)
	if err := users.Init(cmd.Context()); err != nil {
		return fmt.Errorf("init user repository: %w", err)
	}
	if err := users.Create(cmd.Context(), &domain.UserRecord{Username: username, PasswordHash: hash}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "added user %s to %s\n", username, cfg.Database.Path)
	return nil
}
