package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/ports"
)

func newTokenizer(t *testing.T) ports.Tokenizer {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return NewJWTTokenizer(key)
}

func testGrant() *ports.Grant {
	now := time.Now().Truncate(time.Second)
	return &ports.Grant{
		Address:   "0x1111111111111111111111111111111111111111",
		Role:      core.RoleModerator,
		RefreshID: "refresh-123",
		IssuedAt:  now,
		ExpiresAt: now.Add(30 * time.Minute),
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tk := newTokenizer(t)
	grant := testGrant()

	token, err := tk.IssueAccessToken(grant)
	require.NoError(t, err)

	parsed, err := tk.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, grant.Address, parsed.Address)
	assert.Equal(t, core.RoleModerator, parsed.Role)
	assert.Equal(t, grant.RefreshID, parsed.RefreshID)
	assert.WithinDuration(t, grant.ExpiresAt, parsed.ExpiresAt, time.Second)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tk := newTokenizer(t)
	grant := testGrant()

	token, err := tk.IssueRefreshToken(grant)
	require.NoError(t, err)

	parsed, err := tk.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, grant.Address, parsed.Address)
	// The refresh token's JTI is the grant's RefreshID.
	assert.Equal(t, grant.RefreshID, parsed.RefreshID)
}

// A refresh token must never pass as an access token, and vice versa.
func TestAudienceDiscrimination(t *testing.T) {
	tk := newTokenizer(t)
	grant := testGrant()

	access, err := tk.IssueAccessToken(grant)
	require.NoError(t, err)
	refresh, err := tk.IssueRefreshToken(grant)
	require.NoError(t, err)

	_, err = tk.ParseAccessToken(refresh)
	assert.Error(t, err)
	_, err = tk.ParseRefreshToken(access)
	assert.Error(t, err)
}

func TestForeignKeyRejected(t *testing.T) {
	grant := testGrant()
	token, err := newTokenizer(t).IssueAccessToken(grant)
	require.NoError(t, err)

	_, err = newTokenizer(t).ParseAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	tk := newTokenizer(t)
	grant := testGrant()
	grant.IssuedAt = time.Now().Add(-2 * time.Hour)
	grant.ExpiresAt = time.Now().Add(-time.Hour)

	token, err := tk.IssueAccessToken(grant)
	require.NoError(t, err)

	_, err = tk.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	tk := newTokenizer(t)
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := tk.ParseAccessToken(raw)
		assert.Error(t, err, "token %q", raw)
	}
}
