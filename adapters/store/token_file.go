package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/ports"
)

// FileTokenStore keeps the access token in memory only (it is re-derived via
// refresh or a fresh login on the next run) and persists the refresh
// credential to a JSON file, the CLI analogue of a cookie with an expiry.
type FileTokenStore struct {
	path string

	mu     sync.RWMutex
	access string
	role   core.Role
}

type refreshFile struct {
	Refresh core.Credential `json:"refresh"`
}

// NewFileTokenStore creates a store persisting the refresh credential at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Access() (string, core.Role) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, s.role
}

func (s *FileTokenStore) SetAccess(token string, role core.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = token
	s.role = role
}

func (s *FileTokenStore) ClearAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.role = ""
}

// Refresh reads the persisted credential. An expired or unreadable entry is
// reported as absent.
func (s *FileTokenStore) Refresh() (core.Credential, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return core.Credential{}, false
	}
	var f refreshFile
	if err := json.Unmarshal(data, &f); err != nil {
		return core.Credential{}, false
	}
	if f.Refresh.Value == "" || f.Refresh.Expired() {
		return core.Credential{}, false
	}
	return f.Refresh, true
}

func (s *FileTokenStore) SetRefresh(cred core.Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(refreshFile{Refresh: cred}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileTokenStore) ClearRefresh() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

var _ ports.TokenStore = (*FileTokenStore)(nil)
