package ports

import (
	"context"
	"math/big"
)

// TransferEvent is one observation of a pending transfer's fate. The watcher
// may deliver more than one event for the same hash (for example after a
// transaction replacement), so consumers must tolerate duplicates.
type TransferEvent struct {
	Hash     string
	Err      error
	Replaced bool
}

// ChainBackend abstracts the blockchain access the campaign funder needs:
// an ERC-20 balance read, a signed transfer broadcast, and a confirmation
// watcher with a fixed depth.
type ChainBackend interface {
	// TokenBalance returns the SHILL balance of owner in base units.
	TokenBalance(ctx context.Context, owner string) (*big.Int, error)

	// SendTokenTransfer signs and broadcasts a token transfer to the DAO
	// treasury and returns the transaction hash. Broadcasting may block on
	// wallet approval.
	SendTokenTransfer(ctx context.Context, amount *big.Int) (string, error)

	// WaitForTransfer watches hash until it has the requested confirmation
	// depth, delivering events on the returned channel. The channel is
	// closed when the watcher gives up or the context is done.
	WaitForTransfer(ctx context.Context, hash string, confirmations uint64) (<-chan TransferEvent, error)
}
