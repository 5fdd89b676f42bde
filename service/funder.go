package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/platform"
	"github.com/shilldao/herald/ports"
)

// shillDecimals converts human-readable SHILL amounts to base units.
const shillDecimals = 18

// defaultConfirmations is the depth a funding transfer must reach before the
// campaign is created against it.
const defaultConfirmations = 2

// CampaignFunder drives the funded-campaign flow: balance check, on-chain
// token transfer, confirmation wait, then campaign creation with the
// confirmed transaction hash. The confirmation watcher may re-deliver the
// success event (transaction replacement); the backend is called exactly once
// regardless.
type CampaignFunder struct {
	chain         ports.ChainBackend
	wallet        ports.Wallet
	campaigns     *platform.CampaignService
	log           *slog.Logger
	confirmations uint64

	mu       sync.Mutex
	pending  core.PendingTransaction
	notified bool
}

// FunderOption configures a CampaignFunder.
type FunderOption func(*CampaignFunder)

func WithFunderLogger(log *slog.Logger) FunderOption {
	return func(f *CampaignFunder) { f.log = log }
}

// WithConfirmations overrides the confirmation depth.
func WithConfirmations(n uint64) FunderOption {
	return func(f *CampaignFunder) { f.confirmations = n }
}

func NewCampaignFunder(chain ports.ChainBackend, wallet ports.Wallet, campaigns *platform.CampaignService, opts ...FunderOption) *CampaignFunder {
	f := &CampaignFunder{
		chain:         chain,
		wallet:        wallet,
		campaigns:     campaigns,
		log:           slog.Default(),
		confirmations: defaultConfirmations,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current transfer state.
func (f *CampaignFunder) State() core.TxState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending.State
}

// Pending returns a snapshot of the transfer in flight, if any.
func (f *CampaignFunder) Pending() core.PendingTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

func (f *CampaignFunder) IsSending() bool    { return f.State() == core.TxSending }
func (f *CampaignFunder) IsConfirming() bool { return f.State() == core.TxAwaitingConfirmation }
func (f *CampaignFunder) IsConfirmed() bool  { return f.State() == core.TxConfirmed }

func (f *CampaignFunder) setState(state core.TxState) {
	f.mu.Lock()
	f.pending.State = state
	f.mu.Unlock()
}

// FundCampaign transfers the draft's budget to the treasury, waits for the
// transfer to reach the confirmation depth, then creates the campaign with
// the transaction hash attached. When the wallet's token balance cannot cover
// the budget, nothing is broadcast and core.ErrInsufficientBalance is
// returned.
func (f *CampaignFunder) FundCampaign(ctx context.Context, draft core.CampaignDraft) (core.Campaign, error) {
	// Scale the human-readable budget to token base units, truncating
	// anything below one base unit.
	amount := draft.Budget.Shift(shillDecimals).BigInt()

	balance, err := f.chain.TokenBalance(ctx, f.wallet.Address())
	if err != nil {
		return core.Campaign{}, fmt.Errorf("read token balance: %w", err)
	}
	if balance.Cmp(amount) < 0 {
		return core.Campaign{}, core.ErrInsufficientBalance
	}

	f.mu.Lock()
	f.pending = core.PendingTransaction{Draft: draft, State: core.TxSending}
	f.notified = false
	f.mu.Unlock()

	hash, err := f.chain.SendTokenTransfer(ctx, amount)
	if err != nil {
		f.setState(core.TxFailed)
		return core.Campaign{}, classifySendError(err)
	}

	f.mu.Lock()
	f.pending.Hash = hash
	f.pending.State = core.TxAwaitingConfirmation
	f.mu.Unlock()
	f.log.Info("transfer broadcast", "hash", hash, "budget", draft.Budget)

	events, err := f.chain.WaitForTransfer(ctx, hash, f.confirmations)
	if err != nil {
		f.setState(core.TxFailed)
		return core.Campaign{}, fmt.Errorf("watch transfer: %w", err)
	}

	var (
		created     core.Campaign
		createErr   error
		sawConfirm  bool
		watchFailed error
	)
	for ev := range events {
		if ev.Err != nil {
			// A failure after a confirmed notification is a stale
			// duplicate from a replacement; the created campaign
			// stands.
			if !sawConfirm {
				watchFailed = ev.Err
			}
			continue
		}
		if ev.Replaced {
			f.log.Info("transfer replaced", "hash", ev.Hash)
			f.mu.Lock()
			f.pending.Hash = ev.Hash
			f.mu.Unlock()
			hash = ev.Hash
		}

		f.mu.Lock()
		already := f.notified
		f.notified = true
		f.mu.Unlock()
		sawConfirm = true
		if already {
			continue
		}
		created, createErr = f.campaigns.CreateVerified(ctx, draft, hash)
	}

	switch {
	case watchFailed != nil && !sawConfirm:
		f.setState(core.TxFailed)
		return core.Campaign{}, classifyWatchError(watchFailed)
	case !sawConfirm:
		// Watcher gave up without a verdict; the context deadline is
		// the only way that happens.
		f.setState(core.TxFailed)
		return core.Campaign{}, core.ErrConfirmationTimeout
	case createErr != nil:
		f.setState(core.TxFailed)
		return core.Campaign{}, fmt.Errorf("create verified campaign: %w", createErr)
	}

	f.setState(core.TxConfirmed)
	f.log.Info("campaign funded", "hash", hash, "campaign", created.ID)
	return created, nil
}

// classifySendError maps raw wallet and node errors onto the sentinel
// categories callers branch on. Matching is by message, the only signal most
// providers give.
func classifySendError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "user denied"), strings.Contains(msg, "user rejected"),
		errors.Is(err, core.ErrUserRejected):
		return fmt.Errorf("%w: %v", core.ErrUserRejected, err)
	case strings.Contains(msg, "insufficient funds"), errors.Is(err, core.ErrInsufficientGas):
		return fmt.Errorf("%w: %v", core.ErrInsufficientGas, err)
	default:
		return fmt.Errorf("send transfer: %w", err)
	}
}

func classifyWatchError(err error) error {
	switch {
	case errors.Is(err, core.ErrTxReverted):
		return err
	case errors.Is(err, core.ErrConfirmationTimeout), errors.Is(err, context.DeadlineExceeded):
		return core.ErrConfirmationTimeout
	default:
		return fmt.Errorf("confirm transfer: %w", err)
	}
}
