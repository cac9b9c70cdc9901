package core

import (
	"errors"

	"github.com/jdelaire/totpkit/core/otp"
)

// Error kinds surfaced by the library. Callers match them with errors.Is;
// wrapped causes stay reachable through the chain.
var (
	// ErrInvalidArgument reports a caller error: an empty account name, a
	// label containing ':', or a window outside the supported range.
	// It is the same sentinel the otp package uses.
	ErrInvalidArgument = otp.ErrInvalidArgument

	// ErrInvalidSecret reports a secret string that cannot be decoded
	// under the configured key representation.
	ErrInvalidSecret = errors.New("secret cannot be decoded")

	// ErrConfiguration reports a host misconfiguration: an unresolvable
	// hash algorithm, key representation, or random source. It is never
	// hidden behind a false verification result.
	ErrConfiguration = errors.New("authenticator misconfigured")

	// ErrStoreNotConfigured reports a user-scoped operation invoked with
	// no credential store set or registered.
	ErrStoreNotConfigured = errors.New("credential store not configured")

	// ErrStore wraps a failure propagated from a credential store.
	ErrStore = errors.New("credential store failure")

	// ErrUserNotFound reports a user the credential store has no secret
	// for. Store implementations return it from SecretKey.
	ErrUserNotFound = errors.New("user not found")
)
