package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/auth"
	"github.com/eringen/folio/docstore"
)

//nolint:gochecknoglobals // Cobra boilerplate
var userEmail string

//nolint:gochecknoglobals // Cobra boilerplate
var userPassword string

//nolint:gochecknoglobals // Cobra boilerplate
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Create an admin account or reset its password",
	Long: `Create an admin account or reset the password of an existing one.

Example:
  folio user --email me@example.com --password 's3cret'`,
	Args: cobra.NoArgs,
	RunE: runUser,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.Flags().StringVar(&userEmail, "email", "", "Account email")
	userCmd.Flags().StringVar(&userPassword, "password", "", "New password")
	_ = userCmd.MarkFlagRequired("email")
	_ = userCmd.MarkFlagRequired("password")
}

func runUser(cmd *cobra.Command, args []string) (err error) {
	cfg := loadConfig()
	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	log := folio.NewLogger(cfg.LogLevel, cfg.LogFormat)

	docs, err := docstore.Open(cfg.DatabasePath, docstore.WithLogger(log))
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer docs.Close()

	provider, err := auth.NewProvider(docs.DB(), []byte(cfg.SessionSecret), cfg.SessionTTL)
	if err != nil {
		return err
	}
	u, err := provider.SetPassword(context.Background(), userEmail, userPassword)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved admin %s\n", u.Email)
	return nil
}
