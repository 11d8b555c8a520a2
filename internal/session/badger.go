package session

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// BadgerStore persists the Credential in a Badger key-value directory.
type BadgerStore struct {
	kv     *badger.DB
	logger *zap.Logger
}

// OpenBadgerStore opens (or creates) the Badger directory at dir.
func OpenBadgerStore(dir string, logger *zap.Logger) (*BadgerStore, error) {
	if dir == "" {
		return nil, errors.New("session: badger directory required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("session: create badger directory: %w", err)
	}
	kv, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("session: open badger: %w", err)
	}
	return &BadgerStore{kv: kv, logger: logger}, nil
}

// IsAuthenticated reports whether a Credential is stored.
func (s *BadgerStore) IsAuthenticated() bool {
	return s.Token() != ""
}

// Token returns the stored Credential. Read failures are logged and reported as no Credential.
func (s *BadgerStore) Token() string {
	var token []byte
	err := s.kv.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(TokenKey))
		if err != nil {
			return err
		}
		token, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ""
	}
	if err != nil {
		s.logger.Warn("session token read failed", zap.Error(err))
		return ""
	}
	return string(token)
}

// SetToken writes the Credential under TokenKey.
func (s *BadgerStore) SetToken(token string) error {
	err := s.kv.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(TokenKey), []byte(token))
	})
	if err != nil {
		return fmt.Errorf("session: store token: %w", err)
	}
	return nil
}

// ClearToken deletes TokenKey; deleting a missing key succeeds.
func (s *BadgerStore) ClearToken() error {
	err := s.kv.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(TokenKey))
	})
	if err != nil {
		return fmt.Errorf("session: clear token: %w", err)
	}
	return nil
}

// Close flushes and closes the Badger directory.
func (s *BadgerStore) Close() error {
	return s.kv.Close()
}
