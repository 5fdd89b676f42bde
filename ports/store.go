package ports

import (
	"context"
	"time"

	"github.com/shilldao/herald/core"
)

// Store interface for refresh token invalidation on the server side
type Store interface {
	InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error
	IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error)
}

// NonceStore keeps issued login nonces keyed by wallet address. A nonce is
// single-use: Take returns it and removes it atomically.
type NonceStore interface {
	Put(ctx context.Context, address string, challenge core.Challenge, ttl time.Duration) error
	Get(ctx context.Context, address string) (core.Challenge, bool, error)
	Take(ctx context.Context, address string) (core.Challenge, bool, error)
}

// TokenStore holds the client's credentials. The access token and role are
// volatile (lost on process exit); the refresh credential is persisted with
// an absolute expiry, the way a browser keeps it in a cookie.
type TokenStore interface {
	Access() (token string, role core.Role)
	SetAccess(token string, role core.Role)
	ClearAccess()

	Refresh() (core.Credential, bool)
	SetRefresh(cred core.Credential) error
	ClearRefresh() error
}
