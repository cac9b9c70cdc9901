// Package filestore persists credentials in a single JSON file. It suits
// single-host deployments and tests; anything multi-node wants a real
// database behind the core.CredentialStore interface instead.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/jdelaire/totpkit/core"
)

// record is the persisted per-user schema.
type record struct {
	SecretKey      string `json:"secret_key"`
	ValidationCode int    `json:"validation_code"`
	ScratchCodes   []int  `json:"scratch_codes"`
}

// state is the top-level file structure.
type state struct {
	Users map[string]record `json:"users"`
}

// Store implements core.CredentialStore on a JSON file. Writes go through a
// uniquely named temp file and a rename, so a crash never leaves a torn
// file behind.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a file-backed store at path. The file and its directory are
// created on first save.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// SecretKey returns the encoded secret of a user.
func (s *Store) SecretKey(_ context.Context, userName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return "", err
	}
	rec, ok := st.Users[userName]
	if !ok {
		return "", core.ErrUserNotFound
	}
	return rec.SecretKey, nil
}

// Save stores a credential under userName, replacing any previous entry.
func (s *Store) Save(_ context.Context, userName, secretKey string, validationCode int, scratchCodes []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	st.Users[userName] = record{
		SecretKey:      secretKey,
		ValidationCode: validationCode,
		ScratchCodes:   scratchCodes,
	}
	return s.save(st)
}

func (s *Store) load() (state, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state{Users: map[string]record{}}, nil
		}
		return state{}, fmt.Errorf("read credentials file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return state{Users: map[string]record{}}, nil
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return state{}, fmt.Errorf("parse credentials file: %w", err)
	}
	if st.Users == nil {
		st.Users = map[string]record{}
	}
	return st, nil
}

func (s *Store) save(st state) (retErr error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	tmp := s.path + ".tmp-" + uuid.New().String()[:8]
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmp)
		}
	}()

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open temp credentials file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		f.Close()
		return fmt.Errorf("write temp credentials file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp credentials file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp credentials file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace credentials file: %w", err)
	}
	return nil
}
