package core

import "errors"

var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenInvalidated = errors.New("token has been invalidated")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidChallenge = errors.New("invalid challenge")
	ErrInvalidNonce     = errors.New("invalid or expired nonce")
	ErrInvalidAddress   = errors.New("invalid ethereum address")

	// Session coordinator.
	ErrWalletNotConnected = errors.New("wallet is not connected")
	ErrNoRefreshToken     = errors.New("no refresh token available")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Transaction confirmation. These are the user-facing categories a raw
	// wallet or node error is classified into; none are retried automatically.
	ErrUserRejected        = errors.New("transaction rejected in wallet")
	ErrInsufficientGas     = errors.New("insufficient funds for gas")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrTxReverted          = errors.New("transaction reverted")
	ErrConfirmationTimeout = errors.New("transaction confirmation timed out")
)
