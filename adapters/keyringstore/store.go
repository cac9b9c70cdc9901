// Package keyringstore persists credentials in the operating system
// keychain (macOS Keychain, Windows Credential Manager, Secret Service).
package keyringstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/jdelaire/totpkit/core"
)

const defaultService = "totpkit"

// record is the JSON value stored per user.
type record struct {
	SecretKey      string `json:"secret_key"`
	ValidationCode int    `json:"validation_code"`
	ScratchCodes   []int  `json:"scratch_codes"`
}

// Store implements core.CredentialStore on top of the system keychain.
type Store struct {
	service string
}

// New creates a keychain-backed store. The service name namespaces entries;
// an empty name uses "totpkit".
func New(service string) *Store {
	if service == "" {
		service = defaultService
	}
	return &Store{service: service}
}

// SecretKey returns the encoded secret of a user.
func (s *Store) SecretKey(_ context.Context, userName string) (string, error) {
	raw, err := keyring.Get(s.service, userName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", core.ErrUserNotFound
		}
		return "", fmt.Errorf("keychain get: %w", err)
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return "", fmt.Errorf("parse keychain entry for %q: %w", userName, err)
	}
	return rec.SecretKey, nil
}

// Save stores a credential under userName, replacing any previous entry.
func (s *Store) Save(_ context.Context, userName, secretKey string, validationCode int, scratchCodes []int) error {
	raw, err := json.Marshal(record{
		SecretKey:      secretKey,
		ValidationCode: validationCode,
		ScratchCodes:   scratchCodes,
	})
	if err != nil {
		return fmt.Errorf("encode keychain entry: %w", err)
	}
	if err := keyring.Set(s.service, userName, string(raw)); err != nil {
		return fmt.Errorf("keychain set: %w", err)
	}
	return nil
}
