// ABOUTME: login, logout, and me commands
// ABOUTME: me also reports access-token expiry read from the cookie jar

package main

import (
	"fmt"
	"net/url"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/loco-dev/loco-client/internal/session"
)

func newLoginCmd(getApp func() *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the platform",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			email, password, err := credentials(email, password)
			if err != nil {
				return err
			}

			user, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(), "logged in as %s\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (or LOCO_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "account password (or LOCO_PASSWORD)")
	return cmd
}

func newLogoutCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the server-side session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newMeCmd(getApp func() *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			if err := a.ensureAuthenticated(cmd.Context(), email, password); err != nil {
				return err
			}

			user, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.Bold).Fprintf(out, "%s", user.Username)
			if user.EmailVerified {
				color.New(color.FgGreen).Fprintf(out, " (verified)")
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  level %d, %d XP\n", user.Level, user.XP)
			fmt.Fprintf(out, "  %d solved, %d day streak\n", user.SolvedCount, user.CurrentStreak)

			if exp, ok := a.sessionExpiry(); ok {
				fmt.Fprintf(out, "  session expires in %s\n", time.Until(exp).Round(time.Second))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (or LOCO_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "account password (or LOCO_PASSWORD)")
	return cmd
}

// sessionExpiry reads the access-token cookie from the jar and extracts its
// expiry claim. Purely informational.
func (a *app) sessionExpiry() (time.Time, bool) {
	base, err := url.Parse(a.client.BaseURL())
	if err != nil {
		return time.Time{}, false
	}
	for _, cookie := range a.client.HTTPClient().Jar.Cookies(base) {
		if cookie.Name != "access_token" {
			continue
		}
		exp, err := session.TokenExpiry(cookie.Value)
		if err != nil {
			return time.Time{}, false
		}
		return exp, true
	}
	return time.Time{}, false
}
