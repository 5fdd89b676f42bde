package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shilldao/herald/adapters/events"
	"github.com/shilldao/herald/adapters/store"
	"github.com/shilldao/herald/adapters/wallet"
	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/platform"
	"github.com/shilldao/herald/ports"
	"github.com/shilldao/herald/service"
)

// app carries the wiring every command shares. The access token is volatile,
// so a fresh process starts with only the persisted refresh credential; the
// request pipeline's 401 path turns it back into an access token on first
// use.
type app struct {
	cfg     *config
	log     *slog.Logger
	tokens  *store.FileTokenStore
	api     *apiclient.Client
	plat    *platform.Platform
	session *events.SessionBus
}

func newApp(verbose bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	tokenPath, err := tokenFilePath()
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	tokens := store.NewFileTokenStore(tokenPath)
	api := apiclient.New(cfg.ServerURL, tokens, apiclient.WithLogger(log))
	return &app{
		cfg:     cfg,
		log:     log,
		tokens:  tokens,
		api:     api,
		plat:    platform.New(api),
		session: events.NewSessionBus(log),
	}, nil
}

// openWallet loads the signer from the keystore flag or the configured path.
func (a *app) openWallet(keystore string) (*wallet.LocalWallet, error) {
	path := keystore
	if path == "" {
		path = a.cfg.KeystorePath
	}
	if path == "" {
		return nil, fmt.Errorf("no keystore configured; pass --keystore or run herald login once with it")
	}
	w, err := wallet.NewFromKeyFile(path)
	if err != nil {
		return nil, fmt.Errorf("open keystore %s: %w", path, err)
	}
	return w, nil
}

func (a *app) coordinator(w ports.Wallet) *service.SessionCoordinator {
	return service.NewSessionCoordinator(w, a.plat, a.api, a.tokens,
		service.WithSessionLogger(a.log),
		service.WithSessionEvents(a.session))
}

// watchSession mirrors session transitions into the debug log. Subscribers
// outlive individual commands; the goroutine ends when the bus closes.
func (a *app) watchSession() {
	stream, err := a.session.Subscribe(context.Background())
	if err != nil {
		a.log.Warn("session event subscription", "error", err)
		return
	}
	go func() {
		for ev := range stream {
			a.log.Debug("session transition", "kind", ev.Kind, "address", ev.Address)
		}
	}()
}

// requireSession fails fast when neither an access token nor a usable
// refresh credential is stored, before any network or chain round trip.
func requireSession(tokens ports.TokenStore) error {
	if access, _ := tokens.Access(); access != "" {
		return nil
	}
	if cred, ok := tokens.Refresh(); ok && !cred.Expired() {
		return nil
	}
	return core.ErrNotAuthenticated
}

func newRootCmd() *cobra.Command {
	var verbose bool
	var a *app

	root := &cobra.Command{
		Use:           "herald",
		Short:         "Command-line client for the ShillDAO rewards platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(verbose)
			if err != nil {
				return err
			}
			a.watchSession()
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	appOf := func() *app { return a }
	root.AddCommand(
		newLoginCmd(appOf),
		newLogoutCmd(appOf),
		newWhoamiCmd(appOf),
		newCampaignsCmd(appOf),
		newDaosCmd(appOf),
		newTasksCmd(appOf),
		newSubmissionsCmd(appOf),
		newGradeCmd(appOf),
		newLeaderboardCmd(appOf),
		newFundCampaignCmd(appOf),
	)
	return root
}
