package session

import (
	"errors"
	"sync"
)

// TokenKey is the fixed storage key the Credential lives under.
const TokenKey = "token"

// ErrStorageUnavailable indicates that no storage backend could be opened for the Credential.
var ErrStorageUnavailable = errors.New("session: storage unavailable")

// Store is the persistence boundary for the single bearer-token Credential.
// A Store is shared by every outstanding request, so implementations are safe for concurrent use.
type Store interface {
	// IsAuthenticated reports whether a Credential is currently stored.
	IsAuthenticated() bool
	// Token returns the stored Credential, or an empty string when none is stored.
	Token() string
	// SetToken persists the Credential, overwriting any prior value.
	SetToken(token string) error
	// ClearToken removes the Credential. Clearing an absent Credential is not an error.
	ClearToken() error
	// Close releases the backing storage.
	Close() error
}

// MemoryStore keeps the Credential in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// IsAuthenticated reports whether a Credential is stored.
func (s *MemoryStore) IsAuthenticated() bool {
	return s.Token() != ""
}

// Token returns the stored Credential.
func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken stores the Credential.
func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// ClearToken drops the Credential.
func (s *MemoryStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// UnavailableStore stands in when no storage backend exists. It never holds a Credential.
type UnavailableStore struct{}

// IsAuthenticated always reports false.
func (UnavailableStore) IsAuthenticated() bool { return false }

// Token always returns an empty string.
func (UnavailableStore) Token() string { return "" }

// SetToken fails with ErrStorageUnavailable.
func (UnavailableStore) SetToken(string) error { return ErrStorageUnavailable }

// ClearToken succeeds; there is nothing to clear.
func (UnavailableStore) ClearToken() error { return nil }

// Close is a no-op.
func (UnavailableStore) Close() error { return nil }
