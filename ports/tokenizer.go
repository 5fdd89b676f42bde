package ports

import (
	"time"

	"github.com/shilldao/herald/core"
)

// Grant is the identity a parsed server token resolves to.
type Grant struct {
	Address   string
	Role      core.Role
	RefreshID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Tokenizer converts between identity grants and signed tokens
type Tokenizer interface {
	IssueAccessToken(grant *Grant) (string, error)
	ParseAccessToken(token string) (*Grant, error)

	IssueRefreshToken(grant *Grant) (string, error)
	ParseRefreshToken(token string) (*Grant, error)
}

// SignatureVerifier checks that a wallet signature over a challenge message
// recovers to the claimed address.
type SignatureVerifier interface {
	VerifySignature(challenge core.Challenge, message, signature, address string) error
}
