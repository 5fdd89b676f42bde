package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shilldao/herald/adapters/events"
	"github.com/shilldao/herald/adapters/store"
	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/platform"
)

const testAddress = "0x1111111111111111111111111111111111111111"

type fakeWallet struct {
	mu          sync.Mutex
	connected   bool
	address     string
	signDelay   time.Duration
	signErr     error
	disconnects int
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{connected: true, address: testAddress}
}

func (w *fakeWallet) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *fakeWallet) Address() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected {
		return ""
	}
	return w.address
}

func (w *fakeWallet) SignMessage(ctx context.Context, message string) (string, error) {
	w.mu.Lock()
	delay, err := w.signDelay, w.signErr
	w.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return "sig:" + message, nil
}

func (w *fakeWallet) Disconnect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = false
	w.disconnects++
	return nil
}

// authServer fakes the backend handshake: one fixed challenge, signature
// checked against the fake wallet's deterministic scheme.
type authServer struct {
	challenge core.Challenge
	verifies  atomic.Int64
	nonces    atomic.Int64
	failAuth  bool
}

func newAuthServer() *authServer {
	return &authServer{
		challenge: core.Challenge{
			Address:   testAddress,
			Nonce:     "n1",
			Timestamp: 1700000000,
		},
	}
}

func (s *authServer) handler() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/nonce", func(w http.ResponseWriter, r *http.Request) {
		s.nonces.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"nonce":     s.challenge.Nonce,
			"timestamp": s.challenge.Timestamp,
		})
	})
	mux.HandleFunc("/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		s.verifies.Add(1)
		var req struct {
			EthAddress string `json:"eth_address"`
			Signature  string `json:"signature"`
			Message    string `json:"message"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		expected := s.challenge.SigningMessage()
		if s.failAuth || req.Message != expected || req.Signature != "sig:"+expected {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid signature"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access":  "tok1",
			"refresh": "ref1",
			"role":    string(core.RoleUser),
		})
	})
	return mux
}

func newCoordinator(t *testing.T, srv *httptest.Server, w *fakeWallet) (*SessionCoordinator, *store.MemoryTokenStore) {
	t.Helper()
	tokens := store.NewMemoryTokenStore()
	api := apiclient.New(srv.URL, tokens)
	return NewSessionCoordinator(w, platform.New(api), api, tokens), tokens
}

func TestHandleLoginAttemptEndToEnd(t *testing.T) {
	backend := newAuthServer()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	w := newFakeWallet()
	session, tokens := newCoordinator(t, srv, w)

	redirect, err := session.HandleLoginAttempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultRedirectPath, redirect)

	s := session.Session()
	assert.True(t, s.Authenticated())
	assert.Equal(t, testAddress, s.Address)
	assert.Equal(t, core.RoleUser, s.Role)
	assert.Equal(t, "tok1", s.AccessToken)

	access, role := tokens.Access()
	assert.Equal(t, "tok1", access)
	assert.Equal(t, core.RoleUser, role)
	cred, ok := tokens.Refresh()
	require.True(t, ok)
	assert.Equal(t, "ref1", cred.Value)
	assert.False(t, cred.Expired())
}

func TestRedirectPathConsumedOnce(t *testing.T) {
	backend := newAuthServer()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	w := newFakeWallet()
	session, _ := newCoordinator(t, srv, w)
	session.SetRedirectPath("/moderation")

	redirect, err := session.HandleLoginAttempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/moderation", redirect)

	// A second login starts clean.
	require.NoError(t, session.Logout(context.Background()))
	session.ConfirmWalletDisconnected()
	w.mu.Lock()
	w.connected = true
	w.mu.Unlock()

	redirect, err = session.HandleLoginAttempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultRedirectPath, redirect)
}

// Two simultaneous attempts must produce exactly one handshake.
func TestNoConcurrentLogins(t *testing.T) {
	backend := newAuthServer()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	w := newFakeWallet()
	w.signDelay = 50 * time.Millisecond
	session, _ := newCoordinator(t, srv, w)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := session.HandleLoginAttempt(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), backend.nonces.Load())
	assert.Equal(t, int64(1), backend.verifies.Load())
	assert.True(t, session.Authenticated())
}

func TestAttemptIsNoopWhenAuthenticated(t *testing.T) {
	backend := newAuthServer()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	w := newFakeWallet()
	session, _ := newCoordinator(t, srv, w)

	_, err := session.HandleLoginAttempt(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), backend.verifies.Load())

	redirect, err := session.HandleLoginAttempt(context.Background())
	require.NoError(t, err)
	assert.Empty(t, redirect)
	assert.Equal(t, int64(1), backend.verifies.Load())
}

func TestAttemptIsNoopWithoutWallet(t *testing.T) {
	backend := newAuthServer()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	w := newFakeWallet()
	w.connected = false
	session, _ := newCoordinator(t, srv, w)

	redirect, err := session.HandleLoginAttempt(context.Background())
	require.NoError(t, err)
	assert.Empty(t, redirect)
	assert.Equal(t, int64(0), backend.nonces.Load())
}

func TestLogoutClearsEverythingAtomically(t *testing.T) {
	backend := newAuthServer()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	w := newFakeWallet()
	session, tokens := newCoordinator(t, srv, w)
	_, err := session.HandleLoginAttempt(context.Background())
	require.NoError(t, err)

	require.NoError(t, session.Logout(context.Background()))

	assert.False(t, session.Authenticated())
	access, _ := tokens.Access()
	assert.Empty(t, access)
	_, ok := tokens.Refresh()
	assert.False(t, ok)
	assert.Equal(t, 1, w.disconnects)

	// Until the wallet disconnect is acknowledged, attempts are suppressed
	// even with a reconnected wallet.
	w.mu.Lock()
	w.connected = true
	w.mu.Unlock()
	redirect, err := session.HandleLoginAttempt(context.Background())
	require.NoError(t, err)
	assert.Empty(t, redirect)
	assert.Equal(t, int64(1), backend.verifies.Load())

	session.ConfirmWalletDisconnected()
	_, err = session.HandleLoginAttempt(context.Background())
	require.NoError(t, err)
	assert.True(t, session.Authenticated())
	assert.Equal(t, int64(2), backend.verifies.Load())
}

func TestFailedVerificationConvergesOnLogout(t *testing.T) {
	backend := newAuthServer()
	backend.failAuth = true
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	w := newFakeWallet()
	session, tokens := newCoordinator(t, srv, w)

	_, err := session.HandleLoginAttempt(context.Background())
	require.Error(t, err)

	assert.False(t, session.Authenticated())
	access, _ := tokens.Access()
	assert.Empty(t, access)
	assert.False(t, w.Connected())
}

func TestRejectedSigningConvergesOnLogout(t *testing.T) {
	backend := newAuthServer()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	w := newFakeWallet()
	w.signErr = fmt.Errorf("user rejected the request")
	session, _ := newCoordinator(t, srv, w)

	_, err := session.HandleLoginAttempt(context.Background())
	require.Error(t, err)
	assert.False(t, session.Authenticated())
	assert.False(t, w.Connected())
	assert.Equal(t, int64(0), backend.verifies.Load())
}

func TestRestoreRebuildsSession(t *testing.T) {
	var refreshes atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"access": "tok2"})
	})
	mux.HandleFunc("/user/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"eth_address": testAddress,
			"role":        string(core.RoleModerator),
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	w := newFakeWallet()
	session, tokens := newCoordinator(t, srv, w)
	require.NoError(t, tokens.SetRefresh(core.Credential{
		Value:     "ref1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, session.Restore(context.Background()))

	s := session.Session()
	assert.True(t, s.Authenticated())
	assert.Equal(t, testAddress, s.Address)
	assert.Equal(t, core.RoleModerator, s.Role)
	assert.Equal(t, "tok2", s.AccessToken)

	access, role := tokens.Access()
	assert.Equal(t, "tok2", access)
	assert.Equal(t, core.RoleModerator, role)
	assert.Equal(t, int64(1), refreshes.Load())
}

// Restore never falls back to a wallet handshake on its own; with nothing
// stored it reports ErrNoRefreshToken without touching the network.
func TestRestoreWithoutCredential(t *testing.T) {
	backend := newAuthServer()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	w := newFakeWallet()
	session, _ := newCoordinator(t, srv, w)

	err := session.Restore(context.Background())
	assert.ErrorIs(t, err, core.ErrNoRefreshToken)
	assert.False(t, session.Authenticated())
	assert.Equal(t, int64(0), backend.nonces.Load())
}

func TestSessionEventsPublishedOnLoginAndLogout(t *testing.T) {
	backend := newAuthServer()
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	bus := events.NewSessionBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	w := newFakeWallet()
	tokens := store.NewMemoryTokenStore()
	api := apiclient.New(srv.URL, tokens)
	session := NewSessionCoordinator(w, platform.New(api), api, tokens,
		WithSessionEvents(bus))

	next := func() events.SessionEvent {
		t.Helper()
		select {
		case ev, ok := <-stream:
			require.True(t, ok)
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("no session event arrived")
			return events.SessionEvent{}
		}
	}

	_, err = session.HandleLoginAttempt(context.Background())
	require.NoError(t, err)
	ev := next()
	assert.Equal(t, "login", ev.Kind)
	assert.Equal(t, testAddress, ev.Address)
	assert.Equal(t, core.RoleUser, ev.Role)

	require.NoError(t, session.Logout(context.Background()))
	ev = next()
	assert.Equal(t, "logout", ev.Kind)
	assert.Equal(t, testAddress, ev.Address)
}

// A terminal refresh failure anywhere in the pipeline tears the session down
// through the auth-failure hook.
func TestPipelineRefreshFailureForcesLogout(t *testing.T) {
	backend := newAuthServer()
	mux := http.NewServeMux()
	mux.Handle("/auth/", backend.handler())
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/user/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	w := newFakeWallet()
	tokens := store.NewMemoryTokenStore()
	api := apiclient.New(srv.URL, tokens)
	plat := platform.New(api)
	session := NewSessionCoordinator(w, plat, api, tokens)

	_, err := session.HandleLoginAttempt(context.Background())
	require.NoError(t, err)
	require.True(t, session.Authenticated())

	// The stale access token forces a 401, the refresh fails, and the
	// coordinator logs out.
	_, err = plat.Users.Me(context.Background())
	require.Error(t, err)
	assert.False(t, session.Authenticated())
	assert.False(t, w.Connected())
}
