// Package wallet provides a local key-backed implementation of the Wallet
// port. It stands in for the browser-extension signer of the hosted platform:
// same EIP-191 personal_sign output, same connect/disconnect lifecycle.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/ports"
)

// LocalWallet signs with an in-process secp256k1 key.
type LocalWallet struct {
	mu        sync.RWMutex
	key       *ecdsa.PrivateKey
	address   string
	connected bool
}

// NewFromHexKey builds a connected wallet from a hex-encoded private key.
func NewFromHexKey(hexkey string) (*LocalWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexkey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &LocalWallet{
		key:       key,
		address:   core.NormalizeAddress(crypto.PubkeyToAddress(key.PublicKey).Hex()),
		connected: true,
	}, nil
}

// NewFromKeyFile loads a hex-encoded private key from a file.
func NewFromKeyFile(path string) (*LocalWallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return NewFromHexKey(string(data))
}

// Generate creates a wallet with a fresh random key, for tests and demos.
func Generate() (*LocalWallet, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &LocalWallet{
		key:       key,
		address:   core.NormalizeAddress(crypto.PubkeyToAddress(key.PublicKey).Hex()),
		connected: true,
	}, nil
}

func (w *LocalWallet) Connected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

func (w *LocalWallet) Address() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.connected {
		return ""
	}
	return w.address
}

// SignMessage produces an EIP-191 personal_sign signature over message.
func (w *LocalWallet) SignMessage(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.connected {
		return "", core.ErrWalletNotConnected
	}

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), w.key)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	// Recovery id to the 27/28 convention wallets emit.
	sig[64] += 27
	return hexutil.Encode(sig), nil
}

// SignTx signs a transaction for broadcast on chainID.
func (w *LocalWallet) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.connected {
		return nil, core.ErrWalletNotConnected
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), w.key)
}

// Disconnect drops the signer. Reconnect restores it.
func (w *LocalWallet) Disconnect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = false
	return nil
}

// Reconnect makes the signer available again.
func (w *LocalWallet) Reconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = true
}

var _ ports.Wallet = (*LocalWallet)(nil)
