package tokenizer

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/shilldao/herald/core"
)

// AccessClaims combines standard claims with access-specific ones
type AccessClaims struct {
	jwt.RegisteredClaims
	Role      core.Role `json:"role"`
	RefreshID string    `json:"rid"` // ID of the refresh token pair
}

// RefreshClaims combines standard claims with the granted role
type RefreshClaims struct {
	jwt.RegisteredClaims
	Role core.Role `json:"role"`
}
