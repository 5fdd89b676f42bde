// Package tokenizer issues and validates the devserver's JWT pair. Token
// types are discriminated by audience so an access token can never be
// presented where a refresh token is expected.
package tokenizer

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/ports"
)

const AudienceAccess = "session:access"
const AudienceRefresh = "session:refresh"

// JWTTokenizer implements the Tokenizer interface using ES256-signed JWTs
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(signKey *ecdsa.PrivateKey) ports.Tokenizer {
	return &JWTTokenizer{signKey: signKey}
}

// IssueAccessToken converts a grant to a signed access token
func (j *JWTTokenizer) IssueAccessToken(grant *ports.Grant) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   grant.Address,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(grant.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(grant.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceAccess},
		},
		Role:      grant.Role,
		RefreshID: grant.RefreshID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signed, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken converts a grant to a signed refresh token. The grant's
// RefreshID becomes the token's JTI so rotation can revoke it.
func (j *JWTTokenizer) IssueRefreshToken(grant *ports.Grant) (string, error) {
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   grant.Address,
			ID:        grant.RefreshID,
			ExpiresAt: jwt.NewNumericDate(grant.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(grant.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceRefresh},
		},
		Role: grant.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signed, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates an access token and returns the grant it encodes
func (j *JWTTokenizer) ParseAccessToken(tokenStr string) (*ports.Grant, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, j.keyFunc, jwt.WithAudience(AudienceAccess))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims type")
	}
	return grantFromClaims(claims.RegisteredClaims, claims.Role, claims.RefreshID), nil
}

// ParseRefreshToken validates a refresh token and returns the grant it encodes
func (j *JWTTokenizer) ParseRefreshToken(tokenStr string) (*ports.Grant, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &RefreshClaims{}, j.keyFunc, jwt.WithAudience(AudienceRefresh))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims type")
	}
	return grantFromClaims(claims.RegisteredClaims, claims.Role, claims.ID), nil
}

func (j *JWTTokenizer) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return &j.signKey.PublicKey, nil
}

func grantFromClaims(reg jwt.RegisteredClaims, role core.Role, refreshID string) *ports.Grant {
	grant := &ports.Grant{
		Address:   reg.Subject,
		Role:      role,
		RefreshID: refreshID,
	}
	if reg.IssuedAt != nil {
		grant.IssuedAt = reg.IssuedAt.Time
	}
	if reg.ExpiresAt != nil {
		grant.ExpiresAt = reg.ExpiresAt.Time
	} else {
		grant.ExpiresAt = time.Time{}
	}
	return grant
}
