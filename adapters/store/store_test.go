package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shilldao/herald/core"
)

func TestNonceTakeIsSingleUse(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	challenge := core.Challenge{Address: "0xABC", Nonce: "n1", Timestamp: 1700000000}

	require.NoError(t, s.Put(ctx, "0xABC", challenge, time.Minute))

	got, ok, err := s.Take(ctx, "0xabc") // case-insensitive lookup
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "n1", got.Nonce)

	_, ok, err = s.Take(ctx, "0xABC")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNonceExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "0xABC", core.Challenge{Nonce: "n1"}, -time.Second))
	_, ok, err := s.Take(ctx, "0xABC")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoncePutReplaces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "0xABC", core.Challenge{Nonce: "old"}, time.Minute))
	require.NoError(t, s.Put(ctx, "0xABC", core.Challenge{Nonce: "new"}, time.Minute))

	got, ok, err := s.Get(ctx, "0xABC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", got.Nonce)
}

func TestTokenInvalidation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	revoked, err := s.IsTokenInvalidated(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.InvalidateToken(ctx, "jti-1", time.Hour))
	revoked, err = s.IsTokenInvalidated(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// A lapsed revocation entry no longer counts.
	require.NoError(t, s.InvalidateToken(ctx, "jti-2", -time.Second))
	revoked, err = s.IsTokenInvalidated(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestFileTokenStorePersistsRefreshOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	s := NewFileTokenStore(path)

	s.SetAccess("tok1", core.RoleUser)
	cred := core.Credential{Value: "ref1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.SetRefresh(cred))

	// A new store over the same file sees the refresh credential but not
	// the access token.
	reloaded := NewFileTokenStore(path)
	access, _ := reloaded.Access()
	assert.Empty(t, access)
	got, ok := reloaded.Refresh()
	require.True(t, ok)
	assert.Equal(t, "ref1", got.Value)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileTokenStoreExpiredReadsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s := NewFileTokenStore(path)

	require.NoError(t, s.SetRefresh(core.Credential{Value: "ref1", ExpiresAt: time.Now().Add(-time.Hour)}))
	_, ok := s.Refresh()
	assert.False(t, ok)
}

func TestFileTokenStoreClearRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s := NewFileTokenStore(path)

	require.NoError(t, s.SetRefresh(core.Credential{Value: "ref1", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, s.ClearRefresh())
	_, ok := s.Refresh()
	assert.False(t, ok)

	// Clearing an absent file is not an error.
	require.NoError(t, s.ClearRefresh())
}

func TestFileTokenStoreCorruptFileReadsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, ok := NewFileTokenStore(path).Refresh()
	assert.False(t, ok)
}

func TestMemoryTokenStoreClear(t *testing.T) {
	s := NewMemoryTokenStore()
	s.SetAccess("tok1", core.RoleModerator)
	require.NoError(t, s.SetRefresh(core.Credential{Value: "ref1", ExpiresAt: time.Now().Add(time.Hour)}))

	access, role := s.Access()
	assert.Equal(t, "tok1", access)
	assert.Equal(t, core.RoleModerator, role)

	s.ClearAccess()
	require.NoError(t, s.ClearRefresh())

	access, _ = s.Access()
	assert.Empty(t, access)
	_, ok := s.Refresh()
	assert.False(t, ok)
}
