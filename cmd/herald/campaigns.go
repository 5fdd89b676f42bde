package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/platform"
)

func newCampaignsCmd(appOf func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "Browse and manage campaigns",
	}
	cmd.AddCommand(
		newCampaignsListCmd(appOf),
		newCampaignsMineCmd(appOf),
		newCampaignsCreateCmd(appOf),
		newCampaignsOverviewCmd(appOf),
	)
	return cmd
}

func printCampaigns(campaigns []core.Campaign) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDAO\tSTATUS\tBUDGET\tTASKS\tPROGRESS")
	for _, c := range campaigns {
		daoName := ""
		if c.Dao != nil {
			daoName = c.Dao.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%.0f%%\n",
			c.ID, c.Name, daoName, c.Status, c.Budget, c.TotalTasks, c.Progress*100)
	}
	w.Flush()
}

func newCampaignsListCmd(appOf func() *app) *cobra.Command {
	var page int
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appOf()
			result, err := a.plat.Campaigns.List(cmd.Context(), platform.CampaignListParams{
				Page:   page,
				Status: core.CampaignStatus(status),
			})
			if err != nil {
				return err
			}
			printCampaigns(result.Results)
			fmt.Printf("%d total", result.Count)
			if result.HasNext() {
				fmt.Printf(", more on --page %d", page+1)
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (Active, Planning, Completed, On Hold)")
	return cmd
}

func newCampaignsMineCmd(appOf func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List campaigns run by your DAOs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appOf()
			campaigns, err := a.plat.Campaigns.Mine(cmd.Context())
			if err != nil {
				return err
			}
			printCampaigns(campaigns)
			return nil
		},
	}
}

func newCampaignsCreateCmd(appOf func() *app) *cobra.Command {
	var (
		name, description, status, budget string
		daoID                             int64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an unfunded campaign",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appOf()
			amount, err := decimal.NewFromString(budget)
			if err != nil {
				return fmt.Errorf("invalid budget %q: %w", budget, err)
			}
			created, err := a.plat.Campaigns.Create(cmd.Context(), core.CampaignDraft{
				Name:        name,
				Description: description,
				Budget:      amount,
				Status:      core.CampaignStatus(status),
				DaoID:       daoID,
			})
			if err != nil {
				return err
			}
			fmt.Printf("created campaign %d: %s\n", created.ID, created.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "campaign name")
	cmd.Flags().StringVar(&description, "description", "", "campaign description")
	cmd.Flags().StringVar(&budget, "budget", "0", "budget in SHILL")
	cmd.Flags().StringVar(&status, "status", string(core.CampaignPlanning), "initial status")
	cmd.Flags().Int64Var(&daoID, "dao", 0, "owning DAO id")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("dao")
	return cmd
}

func newCampaignsOverviewCmd(appOf func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show aggregate campaign counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appOf()
			o, err := a.plat.Campaigns.Overview(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("active: %d\ncompleted: %d\ntotal budget: %s SHILL\ntotal tasks: %d\n",
				o.ActiveCampaigns, o.CompletedCampaigns, o.TotalBudget, o.TotalTasks)
			return nil
		},
	}
}
