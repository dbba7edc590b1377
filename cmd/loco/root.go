// ABOUTME: Cobra command tree for the loco CLI
// ABOUTME: Credentials come from flags or LOCO_EMAIL / LOCO_PASSWORD

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "loco",
		Short:         "Command-line client for the Loco competitive-programming platform",
		Long:          "loco submits solutions, watches judging verdicts, and streams achievement notifications from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var a *app
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		a, err = newApp()
		return err
	}

	getApp := func() *app { return a }

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(getApp),
		newLogoutCmd(getApp),
		newMeCmd(getApp),
		newProblemsCmd(getApp),
		newSubmitCmd(getApp),
		newWatchCmd(getApp),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "loco", version)
		},
	}
}

// credentials resolves email/password from flags, falling back to the
// LOCO_EMAIL and LOCO_PASSWORD environment variables.
func credentials(email, password string) (string, string, error) {
	if email == "" {
		email = os.Getenv("LOCO_EMAIL")
	}
	if password == "" {
		password = os.Getenv("LOCO_PASSWORD")
	}
	if email == "" || password == "" {
		return "", "", fmt.Errorf("credentials required: pass --email/--password or set LOCO_EMAIL/LOCO_PASSWORD")
	}
	return email, password, nil
}

// ensureAuthenticated logs in with the given credentials. The CLI holds its
// session cookies in memory only, so every invocation authenticates fresh.
func (a *app) ensureAuthenticated(ctx context.Context, email, password string) error {
	if a.store.Read().Authenticated {
		return nil
	}
	email, password, err := credentials(email, password)
	if err != nil {
		return err
	}
	_, err = a.client.Login(ctx, email, password)
	return err
}
