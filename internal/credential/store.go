// ABOUTME: Credential store holding the single bearer token for the session
// ABOUTME: Persists through a pluggable backend and serves reads from memory

package credential

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

// Key is the name the token is persisted under.
const Key = "jwt"

// ErrEmptyToken is returned when Set is called with an empty token.
var ErrEmptyToken = errors.New("credential: token must not be empty")

// Backend is durable key/value storage for the credential.
type Backend interface {
	Load(key string) (value string, ok bool, err error)
	Save(key, value string) error
	Delete(key string) error
	Close() error
}

// Store holds at most one opaque bearer token.
// Reads never touch the backend; writes persist before the in-memory swap.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	token   string
}

// Open loads any persisted token from backend.
func Open(backend Backend) (*Store, error) {
	token, ok, err := backend.Load(Key)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if !ok {
		token = ""
	}
	return &Store{backend: backend, token: token}, nil
}

// Get returns the current token and whether one is held.
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Token implements client.TokenSource.
func (s *Store) Token() string {
	token, _ := s.Get()
	return token
}

// Active reports whether a token is held.
func (s *Store) Active() bool {
	_, ok := s.Get()
	return ok
}

// Set replaces the token. On a persistence failure the previous token stays.
func (s *Store) Set(token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Save(Key, token); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	s.token = token
	return nil
}

// Clear removes the token from memory and the backend.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(Key); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	s.token = ""
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// NewBackend builds the backend named by kind ("file", "sqlite", "memory")
// rooted at dir.
func NewBackend(kind, dir string) (Backend, error) {
	switch kind {
	case "", "file":
		return NewFileBackend(filepath.Join(dir, FileName)), nil
	case "sqlite":
		return NewSQLiteBackend(filepath.Join(dir, SQLiteFileName))
	case "memory":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown credential store %q", kind)
	}
}
