// ABOUTME: submit command: send a solution and watch the verdict arrive
// ABOUTME: problems command: browse the catalogue

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/loco-dev/loco-client/internal/api"
	"github.com/loco-dev/loco-client/internal/poller"
)

func newProblemsCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "problems",
		Short: "List available problems",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			problems, err := a.client.ListProblems(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintf(out, "%-40s %-8s %d XP\n", p.Slug, p.Difficulty, p.XPReward)
			}
			return nil
		},
	}
}

func newSubmitCmd(getApp func() *app) *cobra.Command {
	var (
		slug       string
		languageID int
		file       string
		email      string
		password   string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a solution and wait for the verdict",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if err := a.ensureAuthenticated(ctx, email, password); err != nil {
				return err
			}

			code, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading solution file: %w", err)
			}

			problem, err := a.client.GetProblem(ctx, slug)
			if err != nil {
				return err
			}

			sub, err := a.client.SubmitSolution(ctx, problem.ID, languageID, string(code))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "submission %d accepted, judging...\n", sub.ID)

			verdicts := make(chan *api.Submission, 1)
			timedOut := make(chan struct{}, 1)

			p := a.polls.Start(ctx, sub.ID, poller.Options{
				OnUpdate: func(s *api.Submission) {
					if s.Status.Terminal() {
						verdicts <- s
						return
					}
					fmt.Fprintf(out, "  %s...\n", s.Status)
				},
				OnTimeout: func() { timedOut <- struct{}{} },
			})
			defer p.Cancel()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timedOut:
				// Distinct from a failing verdict: the judge never answered
				color.New(color.FgYellow, color.Bold).Fprintln(out, "submission timed out")
				return fmt.Errorf("no verdict after %d attempts", a.cfg.Polling.MaxAttempts)
			case verdict := <-verdicts:
				printVerdict(out, verdict)
				if verdict.Status != api.StatusAccepted {
					return fmt.Errorf("verdict: %s", verdict.Status)
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&slug, "problem", "", "problem slug")
	cmd.Flags().IntVar(&languageID, "language", 0, "language id")
	cmd.Flags().StringVar(&file, "file", "", "path to the solution source file")
	cmd.Flags().StringVar(&email, "email", "", "account email (or LOCO_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "account password (or LOCO_PASSWORD)")
	cmd.MarkFlagRequired("problem")
	cmd.MarkFlagRequired("language")
	cmd.MarkFlagRequired("file")
	return cmd
}

func printVerdict(w io.Writer, verdict *api.Submission) {
	c := color.New(color.FgRed, color.Bold)
	if verdict.Status == api.StatusAccepted {
		c = color.New(color.FgGreen, color.Bold)
	}
	c.Fprintf(w, "%s", verdict.Status)

	if verdict.RuntimeMS != nil && verdict.MemoryKB != nil {
		fmt.Fprintf(w, "  (%d ms, %d KB)", *verdict.RuntimeMS, *verdict.MemoryKB)
	}
	fmt.Fprintln(w)

	if verdict.TotalTestCases > 0 {
		fmt.Fprintf(w, "  %d/%d test cases passed\n", verdict.PassedTestCases, verdict.TotalTestCases)
	}
	if verdict.ErrorMessage != "" {
		fmt.Fprintf(w, "  %s\n", verdict.ErrorMessage)
	}
}
