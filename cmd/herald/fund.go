package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/shilldao/herald/adapters/chain"
	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/service"
)

func newFundCampaignCmd(appOf func() *app) *cobra.Command {
	var (
		name, description, budget, rpcURL, keystore string
		daoID                                       int64
	)

	cmd := &cobra.Command{
		Use:   "fund-campaign",
		Short: "Create a campaign funded by an on-chain SHILL transfer",
		Long: "Transfers the budget to the DAO treasury, waits for the transfer to\n" +
			"confirm, then creates the campaign with the transaction hash attached.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appOf()
			ctx := cmd.Context()

			// Failing fast here keeps an unauthenticated run from sending
			// tokens it can never record as a campaign.
			if err := requireSession(a.tokens); err != nil {
				return err
			}

			amount, err := decimal.NewFromString(budget)
			if err != nil {
				return fmt.Errorf("invalid budget %q: %w", budget, err)
			}

			w, err := a.openWallet(keystore)
			if err != nil {
				return err
			}
			backend, err := chain.Dial(ctx, rpcURL, w, chain.WithLogger(a.log))
			if err != nil {
				return err
			}

			funder := service.NewCampaignFunder(backend, w, a.plat.Campaigns,
				service.WithFunderLogger(a.log))

			fmt.Printf("funding %s SHILL, waiting for confirmations...\n", amount)
			created, err := funder.FundCampaign(ctx, core.CampaignDraft{
				Name:        name,
				Description: description,
				Budget:      amount,
				Status:      core.CampaignActive,
				DaoID:       daoID,
			})
			if err != nil {
				return err
			}

			fmt.Printf("confirmed %s\ncreated campaign %d: %s\n",
				funder.Pending().Hash, created.ID, created.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "campaign name")
	cmd.Flags().StringVar(&description, "description", "", "campaign description")
	cmd.Flags().StringVar(&budget, "budget", "", "budget in SHILL")
	cmd.Flags().Int64Var(&daoID, "dao", 0, "owning DAO id")
	cmd.Flags().StringVar(&rpcURL, "rpc", "https://rpc.sepolia.org", "Ethereum JSON-RPC endpoint")
	cmd.Flags().StringVar(&keystore, "keystore", "", "path to the wallet key file")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("budget")
	cmd.MarkFlagRequired("dao")
	return cmd
}
