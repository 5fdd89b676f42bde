package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
)

func newLoginCmd(appOf func() *app) *cobra.Command {
	var keystore string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a wallet keystore",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appOf()
			w, err := a.openWallet(keystore)
			if err != nil {
				return err
			}

			session := a.coordinator(w)

			// A persisted refresh credential skips the wallet handshake
			// entirely. A stale one tears itself down; clear the logout
			// guard so the handshake below can run.
			switch err := session.Restore(cmd.Context()); {
			case err == nil:
				s := session.Session()
				fmt.Printf("session restored for %s (%s)\n", s.Address, s.Role)
				return nil
			case errors.Is(err, core.ErrNoRefreshToken):
			default:
				a.log.Warn("stored session unusable, starting a fresh handshake", "error", err)
				session.ConfirmWalletDisconnected()
				w.Reconnect()
			}

			if _, err := session.HandleLoginAttempt(cmd.Context()); err != nil {
				return err
			}
			if !session.Authenticated() {
				return fmt.Errorf("login did not complete; is a session already active?")
			}

			if keystore != "" && keystore != a.cfg.KeystorePath {
				a.cfg.KeystorePath = keystore
				if err := a.cfg.save(); err != nil {
					return err
				}
			}

			s := session.Session()
			fmt.Printf("logged in as %s (%s)\n", s.Address, s.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&keystore, "keystore", "k", "", "path to the wallet key file")
	return cmd
}

func newLogoutCmd(appOf func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appOf()

			// Best effort: revoke the refresh token server-side before
			// clearing it locally.
			if cred, ok := a.tokens.Refresh(); ok && !cred.Expired() {
				_, err := a.api.Request(cmd.Context(), http.MethodPost, "auth/logout",
					&apiclient.RequestOptions{Body: map[string]string{"refresh": cred.Value}})
				if err != nil {
					a.log.Warn("server-side logout", "error", err)
				}
			}

			a.tokens.ClearAccess()
			if err := a.tokens.ClearRefresh(); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func newWhoamiCmd(appOf func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appOf()
			if err := requireSession(a.tokens); err != nil {
				return err
			}
			me, err := a.plat.Users.Me(cmd.Context())
			if err != nil {
				return err
			}
			name := me.Username
			if name == "" {
				name = "(no username)"
			}
			fmt.Printf("%s  %s  tier=%s  role=%s\n", me.EthAddress, name, me.Tier, me.Role)
			return nil
		},
	}
}
