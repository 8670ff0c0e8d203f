package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kengakuru/kibanda/pkg/domain"
)

// TokenStore persists the session between runs.
type TokenStore interface {
	// Load returns the stored session, or nil if there is none.
	Load() (*domain.AuthSession, error)
	Save(s *domain.AuthSession) error
	Clear() error
}

// FileTokenStore keeps the session as JSON in a single file readable only by
// the current user.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore returns a store backed by the file at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Path returns the backing file path.
func (s *FileTokenStore) Path() string {
	return s.path
}

func (s *FileTokenStore) Load() (*domain.AuthSession, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess domain.AuthSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		return nil, nil
	}
	return &sess, nil
}

func (s *FileTokenStore) Save(sess *domain.AuthSession) error {
	if sess == nil {
		return s.Clear()
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	// Write-then-rename so a crash never leaves a truncated session file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// MemoryTokenStore keeps the session in memory only.
type MemoryTokenStore struct {
	mu   sync.Mutex
	sess *domain.AuthSession
}

// NewMemoryTokenStore returns an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load() (*domain.AuthSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil, nil
	}
	cp := *s.sess
	return &cp, nil
}

func (s *MemoryTokenStore) Save(sess *domain.AuthSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess == nil {
		s.sess = nil
		return nil
	}
	cp := *sess
	s.sess = &cp
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	return s.Save(nil)
}
