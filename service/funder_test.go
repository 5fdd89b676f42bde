package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shilldao/herald/adapters/store"
	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/platform"
	"github.com/shilldao/herald/ports"
)

const testTxHash = "0xabcd00000000000000000000000000000000000000000000000000000000efab"

type fakeChain struct {
	balance   *big.Int
	sendErr   error
	sends     atomic.Int64
	events    []ports.TransferEvent
	watchCtx  bool // deliver nothing and wait for ctx instead
	lastWatch uint64
}

func (f *fakeChain) TokenBalance(ctx context.Context, owner string) (*big.Int, error) {
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeChain) SendTokenTransfer(ctx context.Context, amount *big.Int) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sends.Add(1)
	return testTxHash, nil
}

func (f *fakeChain) WaitForTransfer(ctx context.Context, hash string, confirmations uint64) (<-chan ports.TransferEvent, error) {
	f.lastWatch = confirmations
	ch := make(chan ports.TransferEvent, len(f.events)+1)
	if f.watchCtx {
		go func() {
			<-ctx.Done()
			close(ch)
		}()
		return ch, nil
	}
	for _, ev := range f.events {
		if ev.Hash == "" {
			ev.Hash = hash
		}
		ch <- ev
	}
	close(ch)
	return ch, nil
}

// campaignBackend counts create-verified calls.
func campaignBackend(t *testing.T, created *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/campaigns/create-verified", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name            string `json:"name"`
			TransactionHash string `json:"transaction_hash"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, testTxHash, req.TransactionHash)
		created.Add(1)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 99, "name": req.Name, "status": "Active"})
	})
	return httptest.NewServer(mux)
}

func newFunder(srv *httptest.Server, chainFake *fakeChain) *CampaignFunder {
	tokens := store.NewMemoryTokenStore()
	tokens.SetAccess("tok1", core.RoleUser)
	api := apiclient.New(srv.URL, tokens)
	return NewCampaignFunder(chainFake, newFakeWallet(), platform.NewCampaignService(api))
}

func draft(budget int64) core.CampaignDraft {
	return core.CampaignDraft{
		Name:   "Funded Drive",
		Budget: decimal.NewFromInt(budget),
		Status: core.CampaignActive,
		DaoID:  1,
	}
}

func shill(n int64) *big.Int {
	wei := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return new(big.Int).Mul(big.NewInt(n), wei)
}

func TestFundCampaignHappyPath(t *testing.T) {
	var created atomic.Int64
	srv := campaignBackend(t, &created)
	defer srv.Close()

	chainFake := &fakeChain{
		balance: shill(100),
		events:  []ports.TransferEvent{{}},
	}
	funder := newFunder(srv, chainFake)

	campaign, err := funder.FundCampaign(context.Background(), draft(50))
	require.NoError(t, err)
	assert.Equal(t, int64(99), campaign.ID)
	assert.Equal(t, int64(1), created.Load())
	assert.Equal(t, uint64(2), chainFake.lastWatch)
	assert.True(t, funder.IsConfirmed())
	assert.Equal(t, testTxHash, funder.Pending().Hash)
}

// A replacement re-fire delivers the confirmation twice; the backend must be
// called exactly once.
func TestDuplicateConfirmationsNotifyOnce(t *testing.T) {
	var created atomic.Int64
	srv := campaignBackend(t, &created)
	defer srv.Close()

	chainFake := &fakeChain{
		balance: shill(100),
		events: []ports.TransferEvent{
			{Replaced: true, Hash: testTxHash},
			{},
			{},
		},
	}
	funder := newFunder(srv, chainFake)

	_, err := funder.FundCampaign(context.Background(), draft(50))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Load())
	assert.True(t, funder.IsConfirmed())
}

// An insufficient balance must short-circuit before anything is broadcast.
func TestInsufficientBalanceNeverSends(t *testing.T) {
	var created atomic.Int64
	srv := campaignBackend(t, &created)
	defer srv.Close()

	chainFake := &fakeChain{balance: shill(10)}
	funder := newFunder(srv, chainFake)

	_, err := funder.FundCampaign(context.Background(), draft(50))
	assert.ErrorIs(t, err, core.ErrInsufficientBalance)
	assert.Equal(t, int64(0), chainFake.sends.Load())
	assert.Equal(t, int64(0), created.Load())
	assert.Equal(t, core.TxIdle, funder.State())
}

func TestRevertedTransferFails(t *testing.T) {
	var created atomic.Int64
	srv := campaignBackend(t, &created)
	defer srv.Close()

	chainFake := &fakeChain{
		balance: shill(100),
		events:  []ports.TransferEvent{{Err: core.ErrTxReverted}},
	}
	funder := newFunder(srv, chainFake)

	_, err := funder.FundCampaign(context.Background(), draft(50))
	assert.ErrorIs(t, err, core.ErrTxReverted)
	assert.Equal(t, int64(0), created.Load())
	assert.Equal(t, core.TxFailed, funder.State())
}

func TestConfirmationTimeout(t *testing.T) {
	var created atomic.Int64
	srv := campaignBackend(t, &created)
	defer srv.Close()

	chainFake := &fakeChain{balance: shill(100), watchCtx: true}
	funder := newFunder(srv, chainFake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := funder.FundCampaign(ctx, draft(50))
	assert.ErrorIs(t, err, core.ErrConfirmationTimeout)
	assert.Equal(t, int64(0), created.Load())
}

func TestSendErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		raw  error
		want error
	}{
		{"user rejection", errors.New("user rejected the request"), core.ErrUserRejected},
		{"denied in wallet", errors.New("MetaMask Tx Signature: User denied transaction signature"), core.ErrUserRejected},
		{"gas", errors.New("insufficient funds for gas * price + value"), core.ErrInsufficientGas},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var created atomic.Int64
			srv := campaignBackend(t, &created)
			defer srv.Close()

			chainFake := &fakeChain{balance: shill(100), sendErr: tc.raw}
			funder := newFunder(srv, chainFake)

			_, err := funder.FundCampaign(context.Background(), draft(50))
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, core.TxFailed, funder.State())
		})
	}
}
