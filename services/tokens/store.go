// Package tokens persists the bearer token issued by the backend. It is
// the only local state shared between the auth flows (which write it) and
// the gateway (which reads it at call time, so a refreshed token takes
// effect on the very next request).
package tokens

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
)

var ErrStorageDirRequired = errors.New("storage directory not provided")

const tokenFileName = "token"

// Store is a file-backed holder for the current bearer token.
type Store struct {
	mu   sync.RWMutex
	fs   afero.Fs
	path string
}

// NewStore creates a token store inside the provided directory. Pass
// afero.NewMemMapFs() in tests to avoid touching the real filesystem.
func NewStore(fs afero.Fs, storageDir string) (*Store, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := fs.MkdirAll(storageDir, 0o700); err != nil {
		return nil, fmt.Errorf("create token dir: %w", err)
	}
	return &Store{
		fs:   fs,
		path: filepath.Join(storageDir, tokenFileName),
	}, nil
}

// Save persists the token, replacing any previous one.
func (s *Store) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := afero.WriteFile(s.fs, s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Token returns the stored token, or "" when none is present.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Clear removes the stored token. Missing files are not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// HasUsableToken reports whether a token is present and, when it parses as
// a JWT, not yet expired. Opaque tokens are assumed usable; the backend is
// the authority either way, this only avoids a doomed session-restore call.
func (s *Store) HasUsableToken() bool {
	token := s.Token()
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(time.Now())
}
