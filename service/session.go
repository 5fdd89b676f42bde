package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/platform"
	"github.com/shilldao/herald/ports"
)

const (
	// DefaultRedirectPath is where a successful login lands when no path
	// was stored before the handshake.
	DefaultRedirectPath = "/dashboard"

	defaultRefreshTTL = 7 * 24 * time.Hour
)

// SessionCoordinator owns the client session lifecycle: wallet handshake,
// token persistence, refresh, and logout. All state transitions happen under
// one mutex, so guard checks and the transitions they protect are atomic.
//
// Every failure path converges on Logout: the coordinator never leaves a
// token behind without a connected wallet to back it.
type SessionCoordinator struct {
	wallet ports.Wallet
	auth   *platform.AuthService
	users  *platform.UserService
	api    *apiclient.Client
	tokens ports.TokenStore
	events ports.SessionEvents
	log    *slog.Logger

	refreshTTL time.Duration

	mu            sync.Mutex
	session       core.Session
	loggingIn     bool
	justLoggedOut bool
	redirectPath  string
}

// SessionOption configures a SessionCoordinator.
type SessionOption func(*SessionCoordinator)

// WithSessionEvents publishes login/logout transitions on the given bus.
func WithSessionEvents(events ports.SessionEvents) SessionOption {
	return func(s *SessionCoordinator) { s.events = events }
}

func WithSessionLogger(log *slog.Logger) SessionOption {
	return func(s *SessionCoordinator) { s.log = log }
}

// WithRefreshTTL overrides how long a persisted refresh credential is kept.
func WithRefreshTTL(ttl time.Duration) SessionOption {
	return func(s *SessionCoordinator) { s.refreshTTL = ttl }
}

// NewSessionCoordinator wires the coordinator into the request pipeline: a
// failed token refresh anywhere in the pipeline forces a logout here.
func NewSessionCoordinator(
	wallet ports.Wallet,
	plat *platform.Platform,
	api *apiclient.Client,
	tokens ports.TokenStore,
	opts ...SessionOption,
) *SessionCoordinator {
	s := &SessionCoordinator{
		wallet:     wallet,
		auth:       plat.Auth,
		users:      plat.Users,
		api:        api,
		tokens:     tokens,
		log:        slog.Default(),
		refreshTTL: defaultRefreshTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	api.SetAuthFailureHandler(func() {
		if err := s.Logout(context.Background()); err != nil {
			s.log.Error("logout after refresh failure", "error", err)
		}
	})
	return s
}

// Session returns a snapshot of the current session.
func (s *SessionCoordinator) Session() core.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Authenticated reports whether a usable session is present.
func (s *SessionCoordinator) Authenticated() bool {
	return s.Session().Authenticated()
}

// SetRedirectPath stores where a successful login should land. The stored
// path is consumed exactly once.
func (s *SessionCoordinator) SetRedirectPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirectPath = path
}

func (s *SessionCoordinator) consumeRedirectLocked() string {
	path := s.redirectPath
	s.redirectPath = ""
	if path == "" {
		path = DefaultRedirectPath
	}
	return path
}

// HandleLoginAttempt runs the wallet handshake end to end: nonce, signing
// prompt, verification, persistence. It is safe to call on every state change
// the caller observes; when the session is not in a state where logging in
// makes sense the call is a no-op returning ("", nil).
//
// No-op conditions, checked atomically: a logout is still settling, no wallet
// is connected, the wallet has no address, a session already exists, or
// another login is in flight.
func (s *SessionCoordinator) HandleLoginAttempt(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.justLoggedOut || !s.wallet.Connected() || s.wallet.Address() == "" ||
		s.session.Authenticated() || s.loggingIn {
		s.mu.Unlock()
		return "", nil
	}
	s.loggingIn = true
	address := core.NormalizeAddress(s.wallet.Address())
	s.mu.Unlock()
	defer s.clearLoggingIn()

	challenge, err := s.auth.Nonce(ctx, address)
	if err != nil {
		s.logoutAfterFailure(ctx, "nonce request failed", err)
		return "", fmt.Errorf("request nonce: %w", err)
	}

	message := challenge.SigningMessage()
	signature, err := s.wallet.SignMessage(ctx, message)
	if err != nil {
		s.logoutAfterFailure(ctx, "wallet signing failed", err)
		return "", fmt.Errorf("sign challenge: %w", err)
	}

	return s.finishLogin(ctx, address, signature, message)
}

// Login completes the handshake with an already-signed message. When another
// login is in flight the call is a no-op returning ("", nil); at most one
// login ever runs at a time.
func (s *SessionCoordinator) Login(ctx context.Context, address, signature, message string) (string, error) {
	s.mu.Lock()
	if s.loggingIn {
		s.mu.Unlock()
		return "", nil
	}
	s.loggingIn = true
	s.mu.Unlock()
	defer s.clearLoggingIn()

	return s.finishLogin(ctx, core.NormalizeAddress(address), signature, message)
}

// finishLogin exchanges the signature for tokens and installs the session.
// Callers must hold the loggingIn flag.
func (s *SessionCoordinator) finishLogin(ctx context.Context, address, signature, message string) (string, error) {
	result, err := s.auth.Verify(ctx, address, signature, message)
	if err != nil {
		s.logoutAfterFailure(ctx, "signature verification failed", err)
		return "", fmt.Errorf("verify signature: %w", err)
	}

	cred := core.Credential{
		Value:     result.Refresh,
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	if err := s.tokens.SetRefresh(cred); err != nil {
		s.logoutAfterFailure(ctx, "persisting refresh credential failed", err)
		return "", fmt.Errorf("persist refresh credential: %w", err)
	}
	s.tokens.SetAccess(result.Access, result.Role)

	s.mu.Lock()
	s.session = core.Session{
		AccessToken: result.Access,
		Address:     address,
		Role:        result.Role,
	}
	redirect := s.consumeRedirectLocked()
	s.mu.Unlock()

	s.log.Info("logged in", "address", address, "role", result.Role)
	if s.events != nil {
		if err := s.events.PublishLogin(ctx, address, result.Role); err != nil {
			s.log.Warn("publish login event", "error", err)
		}
	}
	return redirect, nil
}

// Restore rebuilds a session from the persisted refresh credential without a
// wallet handshake. It fails with core.ErrNoRefreshToken when no usable
// credential is stored.
func (s *SessionCoordinator) Restore(ctx context.Context) error {
	cred, ok := s.tokens.Refresh()
	if !ok || cred.Expired() {
		return core.ErrNoRefreshToken
	}

	access, err := s.api.RefreshNow(ctx)
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	me, err := s.users.Me(ctx)
	if err != nil {
		s.logoutAfterFailure(ctx, "profile fetch after restore failed", err)
		return fmt.Errorf("fetch profile: %w", err)
	}

	address := core.NormalizeAddress(me.EthAddress)
	role := me.Role
	if role == "" {
		role = core.RoleUser
	}
	s.tokens.SetAccess(access, role)

	s.mu.Lock()
	s.session = core.Session{AccessToken: access, Address: address, Role: role}
	s.mu.Unlock()

	s.log.Info("session restored", "address", address)
	if s.events != nil {
		if err := s.events.PublishLogin(ctx, address, role); err != nil {
			s.log.Warn("publish login event", "error", err)
		}
	}
	return nil
}

// Refresh exchanges the persisted credential for a fresh access token. A
// failed refresh is always terminal: the session is torn down.
func (s *SessionCoordinator) Refresh(ctx context.Context) error {
	access, err := s.api.RefreshNow(ctx)
	if err != nil {
		// The pipeline's auth-failure handler has already forced a
		// logout; reporting the error is all that is left.
		return fmt.Errorf("refresh token: %w", err)
	}
	s.mu.Lock()
	s.session.AccessToken = access
	s.mu.Unlock()
	return nil
}

// Logout tears the session down: the settling guard is raised before any
// state is cleared, so a login attempt racing with the teardown observes the
// guard and backs off. The guard stays up until ConfirmWalletDisconnected.
func (s *SessionCoordinator) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.justLoggedOut = true
	address := s.session.Address
	s.session = core.Session{}
	s.redirectPath = ""
	s.mu.Unlock()

	var firstErr error
	s.tokens.ClearAccess()
	if err := s.tokens.ClearRefresh(); err != nil {
		firstErr = fmt.Errorf("clear refresh credential: %w", err)
	}
	if err := s.wallet.Disconnect(ctx); err != nil {
		s.log.Warn("wallet disconnect", "error", err)
		if firstErr == nil {
			firstErr = fmt.Errorf("disconnect wallet: %w", err)
		}
	}

	if address != "" {
		s.log.Info("logged out", "address", address)
		if s.events != nil {
			if err := s.events.PublishLogout(ctx, address); err != nil {
				s.log.Warn("publish logout event", "error", err)
			}
		}
	}
	return firstErr
}

// ConfirmWalletDisconnected acknowledges that the wallet finished
// disconnecting after a logout, lowering the guard that suppresses automatic
// re-login.
func (s *SessionCoordinator) ConfirmWalletDisconnected() {
	s.mu.Lock()
	s.justLoggedOut = false
	s.mu.Unlock()
}

func (s *SessionCoordinator) clearLoggingIn() {
	s.mu.Lock()
	s.loggingIn = false
	s.mu.Unlock()
}

func (s *SessionCoordinator) logoutAfterFailure(ctx context.Context, msg string, err error) {
	s.log.Warn(msg, "error", err)
	if lerr := s.Logout(ctx); lerr != nil {
		s.log.Error("logout after failed login", "error", lerr)
	}
}
