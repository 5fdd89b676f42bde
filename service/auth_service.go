package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/ports"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// AuthService is the development server's authentication engine: it issues
// signing challenges, verifies wallet signatures, and mints and validates the
// JWT pair the client pipeline consumes.
type AuthService struct {
	tokenizer ports.Tokenizer
	verifier  ports.SignatureVerifier
	nonces    ports.NonceStore
	store     ports.Store
	eventPub  ports.EventPublisher
	log       *slog.Logger

	moderators map[string]bool

	nonceTTL   time.Duration
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithModerators marks the given wallet addresses as moderators at verify
// time.
func WithModerators(addresses ...string) AuthOption {
	return func(s *AuthService) {
		for _, addr := range addresses {
			s.moderators[core.NormalizeAddress(addr)] = true
		}
	}
}

func WithAuthLogger(log *slog.Logger) AuthOption {
	return func(s *AuthService) { s.log = log }
}

// NewAuthService creates the auth engine: one-hour nonces, thirty-minute
// access tokens, seven-day refresh tokens.
func NewAuthService(
	tokenizer ports.Tokenizer,
	verifier ports.SignatureVerifier,
	nonces ports.NonceStore,
	store ports.Store,
	eventPub ports.EventPublisher,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		tokenizer:  tokenizer,
		verifier:   verifier,
		nonces:     nonces,
		store:      store,
		eventPub:   eventPub,
		log:        slog.Default(),
		moderators: make(map[string]bool),
		nonceTTL:   time.Hour,
		accessTTL:  30 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateChallenge issues a fresh single-use nonce challenge for the address.
// Requesting a new challenge replaces any unexpired one.
func (s *AuthService) CreateChallenge(ctx context.Context, address string) (core.Challenge, error) {
	if !addressPattern.MatchString(address) {
		return core.Challenge{}, core.ErrInvalidAddress
	}

	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return core.Challenge{}, fmt.Errorf("generate nonce: %w", err)
	}

	challenge := core.Challenge{
		Address:   core.NormalizeAddress(address),
		Nonce:     hex.EncodeToString(nonceBytes),
		Timestamp: time.Now().Unix(),
	}
	if err := s.nonces.Put(ctx, challenge.Address, challenge, s.nonceTTL); err != nil {
		return core.Challenge{}, fmt.Errorf("store nonce: %w", err)
	}
	return challenge, nil
}

// VerifyLogin checks a signed challenge message and mints a token pair. The
// nonce is consumed whether or not verification succeeds, so a signature can
// only ever be tried once per challenge.
func (s *AuthService) VerifyLogin(ctx context.Context, address, signature, message string) (access, refresh string, role core.Role, err error) {
	if !addressPattern.MatchString(address) {
		return "", "", "", core.ErrInvalidAddress
	}
	addr := core.NormalizeAddress(address)

	challenge, ok, err := s.nonces.Take(ctx, addr)
	if err != nil {
		return "", "", "", fmt.Errorf("load nonce: %w", err)
	}
	if !ok {
		return "", "", "", core.ErrInvalidNonce
	}

	if err := s.verifier.VerifySignature(challenge, message, signature, addr); err != nil {
		return "", "", "", fmt.Errorf("signature verification failed: %w", err)
	}

	role = core.RoleUser
	if s.moderators[addr] {
		role = core.RoleModerator
	}

	now := time.Now()
	grant := &ports.Grant{
		Address:   addr,
		Role:      role,
		RefreshID: uuid.New().String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	refresh, err = s.tokenizer.IssueRefreshToken(grant)
	if err != nil {
		return "", "", "", fmt.Errorf("issue refresh token: %w", err)
	}

	accessGrant := *grant
	accessGrant.ExpiresAt = now.Add(s.accessTTL)
	access, err = s.tokenizer.IssueAccessToken(&accessGrant)
	if err != nil {
		return "", "", "", fmt.Errorf("issue access token: %w", err)
	}

	s.log.Info("wallet verified", "address", addr, "role", role)
	return access, refresh, role, nil
}

// Refresh validates a refresh token against the revocation store and issues
// a new access token. The refresh token itself is not rotated; the wire
// contract returns only the access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	grant, err := s.tokenizer.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", fmt.Errorf("invalid refresh token: %w", err)
	}
	if time.Now().After(grant.ExpiresAt) {
		return "", core.ErrTokenExpired
	}

	invalidated, err := s.store.IsTokenInvalidated(ctx, grant.RefreshID)
	if err != nil {
		return "", fmt.Errorf("check token invalidation: %w", err)
	}
	if invalidated {
		return "", core.ErrTokenInvalidated
	}

	accessGrant := *grant
	accessGrant.IssuedAt = time.Now()
	accessGrant.ExpiresAt = accessGrant.IssuedAt.Add(s.accessTTL)
	access, err := s.tokenizer.IssueAccessToken(&accessGrant)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return access, nil
}

// Logout revokes a refresh token. Expired tokens are still recorded for an
// hour so they cannot slip through skewed clocks.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	grant, err := s.tokenizer.ParseRefreshToken(refreshToken)
	if err != nil {
		return fmt.Errorf("invalid refresh token: %w", err)
	}

	remaining := time.Until(grant.ExpiresAt)
	if remaining <= 0 {
		remaining = time.Hour
	}
	if err := s.store.InvalidateToken(ctx, grant.RefreshID, remaining); err != nil {
		return fmt.Errorf("invalidate token: %w", err)
	}

	if err := s.eventPub.PublishLogout(ctx, grant.Address, grant.RefreshID); err != nil {
		// The token is already revoked, which is the part that matters.
		s.log.Warn("publish logout event", "error", err)
	}
	return nil
}

// ValidateAccessToken parses an access token and checks that its session has
// not been revoked.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*ports.Grant, error) {
	grant, err := s.tokenizer.ParseAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	if time.Now().After(grant.ExpiresAt) {
		return nil, core.ErrTokenExpired
	}

	if grant.RefreshID != "" {
		invalidated, err := s.store.IsTokenInvalidated(ctx, grant.RefreshID)
		if err != nil {
			return nil, fmt.Errorf("check token invalidation: %w", err)
		}
		if invalidated {
			return nil, core.ErrTokenInvalidated
		}
	}
	return grant, nil
}
