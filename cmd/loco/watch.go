// ABOUTME: watch command: stream achievement notifications to the terminal
// ABOUTME: Runs until interrupted; the channel follows the session lifecycle

package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/loco-dev/loco-client/internal/api"
)

func newWatchCmd(getApp func() *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream achievement notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if err := a.ensureAuthenticated(ctx, email, password); err != nil {
				return err
			}

			a.channel.Subscribe(api.EventAchievementUnlocked, func(e api.NotificationEvent) {
				var achievement api.AchievementUnlocked
				if err := json.Unmarshal(e.Data, &achievement); err != nil {
					a.logger.Warn("unreadable achievement payload", "error", err)
					return
				}
				color.New(color.FgMagenta, color.Bold).Fprintf(out, "achievement unlocked: %s", achievement.Name)
				color.New(color.FgYellow).Fprintf(out, "  +%d XP\n", achievement.XPReward)
				if achievement.Description != "" {
					fmt.Fprintf(out, "  %s\n", achievement.Description)
				}
			})

			a.channel.Connect()
			defer a.channel.Close()

			fmt.Fprintln(out, "watching for notifications, ctrl-c to stop")
			<-ctx.Done()

			if err := a.channel.LastError(); err != nil {
				return fmt.Errorf("stream ended: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (or LOCO_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "account password (or LOCO_PASSWORD)")
	return cmd
}
