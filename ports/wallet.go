package ports

import "context"

// Wallet abstracts the external signer holding the user's key. Signing may
// block on user interaction for as long as the context allows.
type Wallet interface {
	// Connected reports whether a signer is currently available.
	Connected() bool

	// Address returns the wallet address, lowercase hex, or "" when
	// disconnected.
	Address() string

	// SignMessage signs a human-readable message (EIP-191 personal_sign)
	// and returns the hex-encoded signature.
	SignMessage(ctx context.Context, message string) (string, error)

	// Disconnect requests wallet disconnection. Completion may be observed
	// asynchronously by the caller.
	Disconnect(ctx context.Context) error
}
