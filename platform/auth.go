package platform

import (
	"context"
	"net/http"

	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
)

// AuthService talks to the platform's wallet-auth endpoints. Nonce and verify
// are unauthenticated; they never trip the 401 refresh path because the
// backend answers them with 4xx other than 401 on bad input.
type AuthService struct {
	api *apiclient.Client
}

func NewAuthService(api *apiclient.Client) *AuthService {
	return &AuthService{api: api}
}

type nonceResponse struct {
	Nonce     string `json:"nonce"`
	Timestamp int64  `json:"timestamp"`
}

// VerifyResult is the token pair minted after a signature check.
type VerifyResult struct {
	Access  string    `json:"access"`
	Refresh string    `json:"refresh"`
	Role    core.Role `json:"role"`
}

// Nonce requests a signing challenge for the given wallet address.
func (s *AuthService) Nonce(ctx context.Context, address string) (core.Challenge, error) {
	resp, err := apiclient.Do[nonceResponse](ctx, s.api, http.MethodPost, "auth/nonce", &apiclient.RequestOptions{
		Body: map[string]string{"eth_address": address},
	})
	if err != nil {
		return core.Challenge{}, err
	}
	return core.Challenge{
		Address:   core.NormalizeAddress(address),
		Nonce:     resp.Nonce,
		Timestamp: resp.Timestamp,
	}, nil
}

// Verify exchanges a signed challenge message for a token pair. The message
// must be the exact text the wallet signed.
func (s *AuthService) Verify(ctx context.Context, address, signature, message string) (VerifyResult, error) {
	return apiclient.Do[VerifyResult](ctx, s.api, http.MethodPost, "auth/verify", &apiclient.RequestOptions{
		Body: map[string]string{
			"eth_address": address,
			"signature":   signature,
			"message":     message,
		},
	})
}
