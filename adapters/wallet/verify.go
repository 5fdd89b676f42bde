package wallet

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/ports"
)

// PersonalVerifier checks EIP-191 personal_sign signatures by recovering the
// signing address, the server-side counterpart of LocalWallet.SignMessage.
type PersonalVerifier struct{}

// VerifySignature checks that message matches the challenge's canonical text
// and that signature recovers to address.
func (PersonalVerifier) VerifySignature(challenge core.Challenge, message, signature, address string) error {
	// The signed text must be byte-for-byte the message the nonce was issued
	// for, modulo surrounding whitespace.
	if strings.TrimSpace(message) != strings.TrimSpace(challenge.SigningMessage()) {
		return core.ErrInvalidChallenge
	}

	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return core.ErrInvalidSignature
	}
	// Wallets emit the recovery id as 27/28; go-ethereum wants 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return core.ErrInvalidSignature
	}
	recovered := core.NormalizeAddress(crypto.PubkeyToAddress(*pub).Hex())
	if recovered != core.NormalizeAddress(address) {
		return core.ErrInvalidSignature
	}
	return nil
}

var _ ports.SignatureVerifier = PersonalVerifier{}
