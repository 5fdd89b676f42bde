package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/platform"
)

func newSubmissionsCmd(appOf func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "Review your submission history",
	}
	cmd.AddCommand(
		newSubmissionsHistoryCmd(appOf),
		newSubmissionsOverviewCmd(appOf),
		newSubmissionsQueueCmd(appOf),
		newRewardsCmd(appOf),
	)
	return cmd
}

func printSubmissions(subs []core.Submission, withUser bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if withUser {
		fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tCAMPAIGN\tUSER\tLINK")
	} else {
		fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tCAMPAIGN\tLINK")
	}
	for _, s := range subs {
		if withUser {
			user := ""
			if s.User != nil {
				user = s.User.EthAddress
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Status, s.ProofType, s.Campaign, user, s.Link)
		} else {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Status, s.ProofType, s.Campaign, s.Link)
		}
	}
	w.Flush()
}

func newSubmissionsHistoryCmd(appOf func() *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List your past submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := appOf().plat.Submissions.History(cmd.Context(), page)
			if err != nil {
				return err
			}
			printSubmissions(result.Results, false)
			fmt.Printf("%d total\n", result.Count)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func newSubmissionsOverviewCmd(appOf func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show your submission counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := appOf().plat.Submissions.Overview(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("pending: %d\napproved: %d\nrejected: %d\n",
				o.PendingSubmissions, o.ApprovedSubmissions, o.RejectedSubmissions)
			return nil
		},
	}
}

func newSubmissionsQueueCmd(appOf func() *app) *cobra.Command {
	var page int
	var status, proofType string

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List the moderation queue (moderators only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := appOf().plat.Submissions.ModerationQueue(cmd.Context(), platform.ModerationParams{
				Page:      page,
				Status:    core.SubmissionStatus(status),
				ProofType: core.ProofType(proofType),
			})
			if err != nil {
				return err
			}
			printSubmissions(result.Results, true)
			fmt.Printf("pending %d / approved %d / rejected %d\n",
				result.PendingCount, result.ApprovedCount, result.RejectedCount)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&proofType, "proof-type", "", "filter by proof type")
	return cmd
}

func newGradeCmd(appOf func() *app) *cobra.Command {
	var (
		id               int64
		status, feedback string
	)

	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade a submission (moderators only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			graded, err := appOf().plat.Submissions.Grade(cmd.Context(), id, core.Grade{
				Status:   core.SubmissionStatus(status),
				Feedback: feedback,
			})
			if err != nil {
				return err
			}
			fmt.Printf("submission %d is now %s\n", graded.ID, graded.Status)
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "submission id")
	cmd.Flags().StringVar(&status, "status", "", "Approved or Rejected")
	cmd.Flags().StringVar(&feedback, "feedback", "", "feedback for the shiller")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("status")
	return cmd
}

func newRewardsCmd(appOf func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rewards",
		Short: "List your reward payouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			rewards, err := appOf().plat.Users.MyRewards(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "AMOUNT\tCAMPAIGN\tTASK\tDATE")
			for _, r := range rewards {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Amount, r.Campaign, r.Task, r.CreatedAt)
			}
			w.Flush()
			return nil
		},
	}
}
