package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shilldao/herald/adapters/store"
	"github.com/shilldao/herald/core"
)

func TestRequireSession(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		tokens := store.NewMemoryTokenStore()
		assert.ErrorIs(t, requireSession(tokens), core.ErrNotAuthenticated)
	})

	t.Run("access token present", func(t *testing.T) {
		tokens := store.NewMemoryTokenStore()
		tokens.SetAccess("tok1", core.RoleUser)
		assert.NoError(t, requireSession(tokens))
	})

	t.Run("refresh credential present", func(t *testing.T) {
		tokens := store.NewMemoryTokenStore()
		require.NoError(t, tokens.SetRefresh(core.Credential{
			Value:     "ref1",
			ExpiresAt: time.Now().Add(time.Hour),
		}))
		assert.NoError(t, requireSession(tokens))
	})

	t.Run("expired refresh credential", func(t *testing.T) {
		tokens := store.NewMemoryTokenStore()
		require.NoError(t, tokens.SetRefresh(core.Credential{
			Value:     "ref1",
			ExpiresAt: time.Now().Add(-time.Second),
		}))
		assert.ErrorIs(t, requireSession(tokens), core.ErrNotAuthenticated)
	})
}
