package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSigningMessageFormat(t *testing.T) {
	c := Challenge{Address: "0xabc", Nonce: "deadbeef", Timestamp: 1700000000}
	msg := c.SigningMessage()

	assert.Equal(t, `Welcome to ShillDAO!

Please sign this message to verify your wallet ownership. This signature will not trigger any blockchain transaction or cost any gas fees.

Verification Details:
- Nonce: deadbeef
- Time: 1700000000

This is a one-time security step to protect your account.`, msg)
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "0xabcdef", NormalizeAddress("  0xABCdef "))
	assert.Equal(t, "", NormalizeAddress("   "))
}

func TestSessionAuthenticated(t *testing.T) {
	assert.False(t, Session{}.Authenticated())
	assert.False(t, Session{AccessToken: "tok"}.Authenticated())
	assert.False(t, Session{Address: "0xabc"}.Authenticated())
	assert.True(t, Session{AccessToken: "tok", Address: "0xabc"}.Authenticated())
}

func TestCredentialExpired(t *testing.T) {
	assert.False(t, Credential{Value: "ref"}.Expired()) // no deadline set
	assert.False(t, Credential{Value: "ref", ExpiresAt: time.Now().Add(time.Hour)}.Expired())
	assert.True(t, Credential{Value: "ref", ExpiresAt: time.Now().Add(-time.Second)}.Expired())
}
