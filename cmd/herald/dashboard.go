package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd(appOf func() *app) *cobra.Command {
	var extended bool

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top shillers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appOf()

			shillers, err := a.plat.Dashboard.TopShillers(cmd.Context())
			if extended {
				shillers, err = a.plat.Dashboard.TopShillersExtended(cmd.Context())
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tUSERNAME\tTIER\tAPPROVED\tRATE\tREWARDS")
			for i, s := range shillers {
				name := s.Username
				if name == "" {
					name = s.EthAddress
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.0f%%\t%s\n",
					i+1, name, s.Tier, s.ApprovedSubmissionsCount, s.ApprovalRate*100, s.TotalRewards)
			}
			w.Flush()
			return nil
		},
	}
	cmd.Flags().BoolVar(&extended, "extended", false, "include per-shiller detail")
	return cmd
}
