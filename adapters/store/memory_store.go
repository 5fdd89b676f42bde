package store

import (
	"context"
	"sync"
	"time"

	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/ports"
)

// MemoryStore is an in-memory implementation of the server-side Store and
// NonceStore interfaces, used by the devserver when no Redis is configured
// and by tests.
type MemoryStore struct {
	invalidatedTokens map[string]time.Time
	nonces            map[string]nonceEntry
	mu                sync.RWMutex
}

type nonceEntry struct {
	challenge core.Challenge
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		invalidatedTokens: make(map[string]time.Time),
		nonces:            make(map[string]nonceEntry),
	}
}

// InvalidateToken marks a token as invalidated
func (s *MemoryStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidatedTokens[tokenID] = time.Now().Add(expiry)
	return nil
}

// IsTokenInvalidated checks if a token is invalidated
func (s *MemoryStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiryTime, exists := s.invalidatedTokens[tokenID]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiryTime) {
		return false, nil
	}
	return true, nil
}

// Put stores a login nonce for an address, replacing any previous one.
func (s *MemoryStore) Put(ctx context.Context, address string, challenge core.Challenge, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[core.NormalizeAddress(address)] = nonceEntry{
		challenge: challenge,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get returns the stored nonce for an address without consuming it.
func (s *MemoryStore) Get(ctx context.Context, address string) (core.Challenge, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.nonces[core.NormalizeAddress(address)]
	if !ok || time.Now().After(entry.expiresAt) {
		return core.Challenge{}, false, nil
	}
	return entry.challenge, true, nil
}

// Take returns the stored nonce and removes it, enforcing single use.
func (s *MemoryStore) Take(ctx context.Context, address string) (core.Challenge, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := core.NormalizeAddress(address)
	entry, ok := s.nonces[key]
	if !ok {
		return core.Challenge{}, false, nil
	}
	delete(s.nonces, key)
	if time.Now().After(entry.expiresAt) {
		return core.Challenge{}, false, nil
	}
	return entry.challenge, true, nil
}

var (
	_ ports.Store      = (*MemoryStore)(nil)
	_ ports.NonceStore = (*MemoryStore)(nil)
)
