package core

import (
	"fmt"
	"strings"
	"time"
)

// Role is the platform role carried by a verified session.
type Role string

const (
	RoleUser      Role = "User"
	RoleModerator Role = "Moderator"
)

// Challenge represents a server-issued nonce challenge
type Challenge struct {
	Address   string // Wallet address the nonce was issued for, lowercase hex
	Nonce     string // Single-use random value
	Timestamp int64  // Unix time of issuance
}

// SigningMessage renders the human-readable message the wallet signs.
// The server reconstructs the exact same text during verification, so the
// format is part of the wire contract and must not drift.
func (c Challenge) SigningMessage() string {
	return fmt.Sprintf(`Welcome to ShillDAO!

Please sign this message to verify your wallet ownership. This signature will not trigger any blockchain transaction or cost any gas fees.

Verification Details:
- Nonce: %s
- Time: %d

This is a one-time security step to protect your account.`, c.Nonce, c.Timestamp)
}

// Session represents an authenticated identity bound to a connected wallet
type Session struct {
	AccessToken string // Short-lived bearer credential
	Address     string // Wallet address the token is bound to, lowercase hex
	Role        Role   // Role granted by the verify call
}

// Authenticated reports whether the session carries a usable credential.
// A token without a bound wallet address is never considered valid.
func (s Session) Authenticated() bool {
	return s.AccessToken != "" && s.Address != ""
}

// NormalizeAddress lowercases a hex wallet address for identity comparisons.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Credential is a persisted refresh credential with an absolute expiry,
// the client-side analogue of a cookie with a max age.
type Credential struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the credential is past its deadline.
func (c Credential) Expired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}
