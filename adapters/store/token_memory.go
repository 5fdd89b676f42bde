package store

import (
	"sync"

	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/ports"
)

// MemoryTokenStore holds all client credentials in memory. Used by tests and
// by callers that never want the refresh credential written to disk.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	access  string
	role    core.Role
	refresh core.Credential
	hasRef  bool
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Access() (string, core.Role) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, s.role
}

func (s *MemoryTokenStore) SetAccess(token string, role core.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = token
	s.role = role
}

func (s *MemoryTokenStore) ClearAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.role = ""
}

func (s *MemoryTokenStore) Refresh() (core.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasRef || s.refresh.Expired() {
		return core.Credential{}, false
	}
	return s.refresh, true
}

func (s *MemoryTokenStore) SetRefresh(cred core.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = cred
	s.hasRef = true
	return nil
}

func (s *MemoryTokenStore) ClearRefresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = core.Credential{}
	s.hasRef = false
	return nil
}

var _ ports.TokenStore = (*MemoryTokenStore)(nil)
