package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
)

// Store persists all keys as a single JSON document on disk. When a
// passphrase is configured the document is sealed with cryptox before it is
// written, so tokens are never stored in clear text.
type Store struct {
	path       string
	passphrase []byte

	mu sync.Mutex
}

// NewStore opens (without reading) the document at path. An empty passphrase
// stores plain JSON.
func NewStore(path, passphrase string) (*Store, error) {
	if path == "" {
		return nil, errors.New("file store: empty path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("file store: create directory: %w", err)
	}

	s := &Store{path: path}
	if passphrase != "" {
		s.passphrase = []byte(passphrase)
	}
	return s, nil
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}

	v, ok := values[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}

	values[key] = value
	return s.write(values)
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}

	changed := false
	for _, k := range keys {
		if _, ok := values[k]; ok {
			delete(values, k)
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return s.write(values)
}

func (s *Store) Close() error { return nil }

// Ping checks the document can be read (and unsealed).
func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.read()
	return err
}

func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read: %w", err)
	}

	if s.passphrase != nil {
		data, err = cryptox.Open(s.passphrase, data)
		if err != nil {
			return nil, fmt.Errorf("file store: unseal: %w", err)
		}
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("file store: decode: %w", err)
	}
	return values, nil
}

// write replaces the document atomically via a temp file and rename.
func (s *Store) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("file store: encode: %w", err)
	}

	if s.passphrase != nil {
		data, err = cryptox.Seal(s.passphrase, data)
		if err != nil {
			return fmt.Errorf("file store: seal: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return fmt.Errorf("file store: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // no-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file store: chmod: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store: close: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("file store: rename: %w", err)
	}
	return nil
}
