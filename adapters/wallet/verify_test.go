package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shilldao/herald/core"
)

func challengeFor(t *testing.T) core.Challenge {
	t.Helper()
	w, err := Generate()
	require.NoError(t, err)
	return core.Challenge{
		Address:   w.Address(),
		Nonce:     "5f2b9c",
		Timestamp: time.Now().Unix(),
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)

	challenge := core.Challenge{Address: w.Address(), Nonce: "5f2b9c", Timestamp: 1700000000}
	message := challenge.SigningMessage()

	sig, err := w.SignMessage(context.Background(), message)
	require.NoError(t, err)

	err = PersonalVerifier{}.VerifySignature(challenge, message, sig, w.Address())
	assert.NoError(t, err)
}

func TestVerifyRejectsWrongAddress(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)
	other, err := Generate()
	require.NoError(t, err)

	challenge := core.Challenge{Address: w.Address(), Nonce: "5f2b9c", Timestamp: 1700000000}
	message := challenge.SigningMessage()
	sig, err := w.SignMessage(context.Background(), message)
	require.NoError(t, err)

	err = PersonalVerifier{}.VerifySignature(challenge, message, sig, other.Address())
	assert.ErrorIs(t, err, core.ErrInvalidSignature)
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)

	challenge := core.Challenge{Address: w.Address(), Nonce: "5f2b9c", Timestamp: 1700000000}
	sig, err := w.SignMessage(context.Background(), challenge.SigningMessage())
	require.NoError(t, err)

	err = PersonalVerifier{}.VerifySignature(challenge, challenge.SigningMessage()+" extra", sig, w.Address())
	assert.ErrorIs(t, err, core.ErrInvalidChallenge)
}

func TestVerifyRejectsGarbageSignature(t *testing.T) {
	challenge := challengeFor(t)
	message := challenge.SigningMessage()

	for _, sig := range []string{"", "0x", "0xdead", "not-hex"} {
		err := PersonalVerifier{}.VerifySignature(challenge, message, sig, challenge.Address)
		assert.ErrorIs(t, err, core.ErrInvalidSignature, "signature %q", sig)
	}
}

// Signatures with a 0/1 recovery id (some signers skip the 27 offset) must
// still verify.
func TestVerifyAcceptsLegacyRecoveryID(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)

	challenge := core.Challenge{Address: w.Address(), Nonce: "5f2b9c", Timestamp: 1700000000}
	message := challenge.SigningMessage()
	sig, err := w.SignMessage(context.Background(), message)
	require.NoError(t, err)

	// Undo the 27 offset: "...1b" -> "...00", "...1c" -> "...01".
	switch sig[len(sig)-2:] {
	case "1b":
		sig = sig[:len(sig)-2] + "00"
	case "1c":
		sig = sig[:len(sig)-2] + "01"
	default:
		t.Fatalf("unexpected recovery id in %s", sig)
	}

	err = PersonalVerifier{}.VerifySignature(challenge, message, sig, w.Address())
	assert.NoError(t, err)
}

func TestDisconnectedWalletRefusesToSign(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)
	require.NoError(t, w.Disconnect(context.Background()))

	assert.False(t, w.Connected())
	assert.Empty(t, w.Address())

	_, err = w.SignMessage(context.Background(), "hello")
	assert.ErrorIs(t, err, core.ErrWalletNotConnected)

	w.Reconnect()
	assert.True(t, w.Connected())
	_, err = w.SignMessage(context.Background(), "hello")
	assert.NoError(t, err)
}

func TestHexKeyRoundTrip(t *testing.T) {
	w, err := NewFromHexKey("0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)
	assert.Equal(t, "0x2c7536e3605d9c16a7a3d7b1898e529396a65c23", w.Address())
}
