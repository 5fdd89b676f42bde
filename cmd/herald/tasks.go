package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
)

func newTasksCmd(appOf func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Browse tasks and submit proof",
	}
	cmd.AddCommand(
		newTasksListCmd(appOf),
		newTasksSubmitCmd(appOf),
	)
	return cmd
}

func printTasks(tasks []core.Task) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tCAMPAIGN\tREWARD\tQUOTA\tSUBMITTED\tDEADLINE")
	for _, t := range tasks {
		deadline := time.Unix(t.Deadline, 0).Format("2006-01-02")
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			t.ID, t.Type, t.Campaign, t.Reward, t.Quantity, t.SubmissionsCount, deadline)
	}
	w.Flush()
}

func newTasksListCmd(appOf func() *app) *cobra.Command {
	var page int
	var campaignID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appOf()
			if campaignID != 0 {
				tasks, err := a.plat.Tasks.ByCampaign(cmd.Context(), campaignID)
				if err != nil {
					return err
				}
				printTasks(tasks)
				return nil
			}

			result, err := a.plat.Tasks.List(cmd.Context(), page)
			if err != nil {
				return err
			}
			printTasks(result.Results)
			fmt.Printf("%d total, %d open, %s SHILL on the table\n",
				result.Count, result.OpenTasks, result.TotalRewards)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().Int64Var(&campaignID, "campaign", 0, "restrict to one campaign")
	return cmd
}

func newTasksSubmitCmd(appOf func() *app) *cobra.Command {
	var (
		taskID                      int64
		link, proofType, text, file string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit proof of completed work",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appOf()

			var part *apiclient.FilePart
			if file != "" {
				content, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read proof file: %w", err)
				}
				field := "proof_image"
				if core.ProofType(proofType) == core.ProofVideo {
					field = "proof_video"
				}
				part = &apiclient.FilePart{
					Field:    field,
					Filename: filepath.Base(file),
					Content:  content,
				}
			}

			sub, err := a.plat.Tasks.Submit(cmd.Context(), core.SubmissionDraft{
				TaskID:    taskID,
				Link:      link,
				ProofType: core.ProofType(proofType),
				ProofText: text,
			}, part)
			if err != nil {
				return err
			}
			fmt.Printf("submitted #%d, status %s\n", sub.ID, sub.Status)
			return nil
		},
	}
	cmd.Flags().Int64Var(&taskID, "task", 0, "task id")
	cmd.Flags().StringVar(&link, "link", "", "link to the published work")
	cmd.Flags().StringVar(&proofType, "proof-type", string(core.ProofText), "Text, Image or Video")
	cmd.Flags().StringVar(&text, "text", "", "text proof")
	cmd.Flags().StringVar(&file, "file", "", "path to an image or video proof")
	cmd.MarkFlagRequired("task")
	cmd.MarkFlagRequired("link")
	return cmd
}
