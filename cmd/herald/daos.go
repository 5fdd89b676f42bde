package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
)

func newDaosCmd(appOf func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daos",
		Short: "Browse and manage DAOs",
	}
	cmd.AddCommand(
		newDaosListCmd(appOf),
		newDaosMineCmd(appOf),
		newDaosFavoritesCmd(appOf),
		newDaosRegisterCmd(appOf),
		newDaosFavoriteCmd(appOf),
	)
	return cmd
}

func printDaos(daos []core.Dao) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBALANCE\tWEBSITE\tFAV")
	for _, d := range daos {
		fav := ""
		if d.IsFavorited {
			fav = "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Balance, d.Website, fav)
	}
	w.Flush()
}

func newDaosListCmd(appOf func() *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered DAOs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appOf()
			result, err := a.plat.Daos.List(cmd.Context(), page)
			if err != nil {
				return err
			}
			printDaos(result.Results)
			fmt.Printf("%d total\n", result.Count)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func newDaosMineCmd(appOf func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List DAOs you created",
		RunE: func(cmd *cobra.Command, args []string) error {
			daos, err := appOf().plat.Daos.Mine(cmd.Context())
			if err != nil {
				return err
			}
			printDaos(daos)
			return nil
		},
	}
}

func newDaosFavoritesCmd(appOf func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "favorites",
		Short: "List your starred DAOs",
		RunE: func(cmd *cobra.Command, args []string) error {
			daos, err := appOf().plat.Daos.Favorites(cmd.Context())
			if err != nil {
				return err
			}
			printDaos(daos)
			return nil
		},
	}
}

func newDaosRegisterCmd(appOf func() *app) *cobra.Command {
	var (
		name, description, website, image string
		network                           int64
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a DAO",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appOf()

			var logo *apiclient.FilePart
			if image != "" {
				content, err := os.ReadFile(image)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				logo = &apiclient.FilePart{
					Field:    "image",
					Filename: filepath.Base(image),
					Content:  content,
				}
			}

			dao, err := a.plat.Daos.Register(cmd.Context(), core.DaoRegistration{
				Name:        name,
				Description: description,
				Website:     website,
				Network:     network,
			}, logo)
			if err != nil {
				return err
			}
			fmt.Printf("registered DAO %d: %s\n", dao.ID, dao.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "DAO name")
	cmd.Flags().StringVar(&description, "description", "", "DAO description")
	cmd.Flags().StringVar(&website, "website", "", "DAO website")
	cmd.Flags().StringVar(&image, "image", "", "path to a logo image")
	cmd.Flags().Int64Var(&network, "network", 1, "chain id the DAO lives on")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newDaosFavoriteCmd(appOf func() *app) *cobra.Command {
	var daoID int64
	cmd := &cobra.Command{
		Use:   "favorite",
		Short: "Star or unstar a DAO",
		RunE: func(cmd *cobra.Command, args []string) error {
			favorited, err := appOf().plat.Users.ToggleFavoriteDao(cmd.Context(), daoID)
			if err != nil {
				return err
			}
			if favorited {
				fmt.Println("starred")
			} else {
				fmt.Println("unstarred")
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&daoID, "dao", 0, "DAO id")
	cmd.MarkFlagRequired("dao")
	return cmd
}
