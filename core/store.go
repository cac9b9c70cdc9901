package core

import (
	"context"
	"sync"
)

// CredentialStore is the capability an embedding application provides to
// persist user credentials. Implementations must be safe for concurrent use.
//
// SecretKey returns the encoded secret of a user, or ErrUserNotFound.
// Save persists a freshly minted credential. Both take a context so that
// stores backed by remote systems can honour cancellation; the synchronous
// facade methods pass context.Background().
type CredentialStore interface {
	SecretKey(ctx context.Context, userName string) (string, error)
	Save(ctx context.Context, userName string, secretKey string, validationCode int, scratchCodes []int) error
}

var (
	storeMu         sync.RWMutex
	registeredStore CredentialStore
)

// RegisterStore publishes a process-wide credential store. Authenticators
// built without an explicit store discover it on first use. Registering a
// second store replaces the first, but authenticators that already resolved
// a store keep the one they found.
func RegisterStore(s CredentialStore) {
	storeMu.Lock()
	defer storeMu.Unlock()
	registeredStore = s
}

// UnregisterStore removes the process-wide store. Intended for tests.
func UnregisterStore() {
	RegisterStore(nil)
}

func lookupStore() CredentialStore {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return registeredStore
}
