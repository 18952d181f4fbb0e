package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/auth"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var (
	adminEmail string
	adminName  string
)

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin, or promote and reset an existing user",
	Long:  "Creates an admin account. The password is read from ADMIN_PASSWORD.",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			return errors.New("ADMIN_PASSWORD is required")
		}
		svc := auth.NewService(e.db, auth.NewTokens(e.cfg.JWTSecret, e.cfg.TokenTTL), nil, e.cfg.SessionTTL, e.log)
		u, created, err := svc.EnsureAdmin(cmd.Context(), adminEmail, password, adminName)
		if err != nil {
			return err
		}
		verb := "updated"
		if created {
			verb = "created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s: %s (%s)\n", verb, u.Email, u.ID)
		return nil
	}),
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	adminCreateCmd.Flags().StringVar(&adminName, "name", "Admin", "display name")
	_ = adminCreateCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
}
