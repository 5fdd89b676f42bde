// Package chain implements the ChainBackend port against a JSON-RPC node via
// go-ethereum's ethclient.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/ports"
)

// Contract addresses on Sepolia; they must match the backend's verification.
const (
	ShillTokenAddress = "0x652159c7f62e9c1613476ca600f3b591dbfc920e"
	TreasuryAddress   = "0xE5FE82ec6482d0291f22B5269eDBC4a046eEA763"
	defaultPollEvery  = 4 * time.Second
	transferGasLimit  = 100_000
)

const erc20ABIJSON = `[
	{"name":"transfer","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// TxSigner signs raw transactions for broadcast.
type TxSigner interface {
	Address() string
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Backend talks to an Ethereum node for balance reads, transfer broadcast and
// confirmation watching.
type Backend struct {
	client    *ethclient.Client
	signer    TxSigner
	parsedABI abi.ABI
	token     common.Address
	treasury  common.Address
	chainID   *big.Int
	pollEvery time.Duration
	log       *slog.Logger
}

// Option customizes a Backend.
type Option func(*Backend)

// WithPollInterval overrides the receipt polling cadence.
func WithPollInterval(d time.Duration) Option {
	return func(b *Backend) { b.pollEvery = d }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(b *Backend) { b.log = log }
}

// WithAddresses overrides the token and treasury contract addresses.
func WithAddresses(token, treasury string) Option {
	return func(b *Backend) {
		b.token = common.HexToAddress(token)
		b.treasury = common.HexToAddress(treasury)
	}
}

// Dial connects to the node at rpcURL and resolves its chain id.
func Dial(ctx context.Context, rpcURL string, signer TxSigner, opts ...Option) (*Backend, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve chain id: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}

	b := &Backend{
		client:    client,
		signer:    signer,
		parsedABI: parsed,
		token:     common.HexToAddress(ShillTokenAddress),
		treasury:  common.HexToAddress(TreasuryAddress),
		chainID:   chainID,
		pollEvery: defaultPollEvery,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// TokenBalance reads the SHILL balance of owner via eth_call.
func (b *Backend) TokenBalance(ctx context.Context, owner string) (*big.Int, error) {
	data, err := b.parsedABI.Pack("balanceOf", common.HexToAddress(owner))
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf: %w", err)
	}
	raw, err := b.client.CallContract(ctx, ethereum.CallMsg{To: &b.token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("balanceOf call: %w", err)
	}
	out, err := b.parsedABI.Unpack("balanceOf", raw)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", out[0])
	}
	return balance, nil
}

// SendTokenTransfer signs and broadcasts a SHILL transfer to the treasury.
func (b *Backend) SendTokenTransfer(ctx context.Context, amount *big.Int) (string, error) {
	if b.signer == nil {
		return "", core.ErrWalletNotConnected
	}

	from := common.HexToAddress(b.signer.Address())
	nonce, err := b.client.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("pending nonce: %w", err)
	}
	gasPrice, err := b.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w", err)
	}

	data, err := b.parsedABI.Pack("transfer", b.treasury, amount)
	if err != nil {
		return "", fmt.Errorf("pack transfer: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &b.token,
		Gas:      transferGasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := b.signer.SignTx(tx, b.chainID)
	if err != nil {
		return "", err
	}
	if err := b.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("broadcast transfer: %w", err)
	}

	hash := signed.Hash().Hex()
	b.log.Info("transfer broadcast", "hash", hash, "amount", amount.String())
	return hash, nil
}

// WaitForTransfer polls for the transaction receipt until it is buried under
// the requested number of confirmations. Events are delivered on the returned
// channel; the channel is closed once the watcher settles or the context ends.
func (b *Backend) WaitForTransfer(ctx context.Context, hash string, confirmations uint64) (<-chan ports.TransferEvent, error) {
	events := make(chan ports.TransferEvent, 1)
	txHash := common.HexToHash(hash)

	go func() {
		defer close(events)
		ticker := time.NewTicker(b.pollEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				err := ctx.Err()
				if err == context.DeadlineExceeded {
					err = core.ErrConfirmationTimeout
				}
				events <- ports.TransferEvent{Hash: hash, Err: err}
				return
			case <-ticker.C:
			}

			receipt, err := b.client.TransactionReceipt(ctx, txHash)
			if err != nil {
				// Not mined yet; keep polling.
				continue
			}
			if receipt.Status == types.ReceiptStatusFailed {
				events <- ports.TransferEvent{Hash: hash, Err: core.ErrTxReverted}
				return
			}

			head, err := b.client.BlockNumber(ctx)
			if err != nil {
				continue
			}
			mined := receipt.BlockNumber.Uint64()
			if head >= mined && head-mined+1 >= confirmations {
				events <- ports.TransferEvent{Hash: hash}
				return
			}
		}
	}()

	return events, nil
}

var _ ports.ChainBackend = (*Backend)(nil)
