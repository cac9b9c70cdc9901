// Package core implements server-side enrolment and verification of
// time-based one-time passwords (RFC 6238, on the RFC 4226 construction),
// compatible with Google Authenticator and similar apps.
//
// An Authenticator mints credentials (secret, epoch validation code,
// scratch codes), computes passwords for arbitrary times, and verifies
// user-supplied codes inside a clock-skew window. Persistence is delegated
// to a CredentialStore the embedder supplies or registers process-wide.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jdelaire/totpkit/core/otp"
	"github.com/jdelaire/totpkit/core/provisioning"
	"github.com/jdelaire/totpkit/internal/prng"
)

// Authenticator is the library entry point. All methods are safe for
// concurrent use.
type Authenticator struct {
	cfg    *Config
	random io.Reader
	logger *slog.Logger

	explicit  CredentialStore
	storeOnce sync.Once
	store     CredentialStore
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithConfig sets the parameter bundle. Defaults to DefaultConfig.
func WithConfig(cfg *Config) Option {
	return func(a *Authenticator) { a.cfg = cfg }
}

// WithStore sets an explicit credential store, overriding any store
// registered with RegisterStore.
func WithStore(s CredentialStore) Option {
	return func(a *Authenticator) { a.explicit = s }
}

// WithLogger sets the logger. Defaults to slog.Default. The library never
// logs secrets, passwords or scratch codes.
func WithLogger(l *slog.Logger) Option {
	return func(a *Authenticator) { a.logger = l }
}

// WithRandom replaces the random source used for credential generation.
// Intended for tests and for hosts with their own entropy policy.
func WithRandom(r io.Reader) Option {
	return func(a *Authenticator) { a.random = r }
}

// New creates an Authenticator. Without options it uses the Google
// Authenticator compatible defaults and a reseeding ChaCha20 random source
// keyed from the operating system CSPRNG.
func New(opts ...Option) (*Authenticator, error) {
	a := &Authenticator{
		cfg:    DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrConfiguration)
	}
	if a.random == nil {
		r, err := prng.New()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		a.random = r
	}
	return a, nil
}

// Config returns the authenticator's parameter bundle.
func (a *Authenticator) Config() *Config { return a.cfg }

// credentialStore resolves the store once: the explicit store when set,
// otherwise whatever RegisterStore published. The answer is cached for the
// authenticator's lifetime.
func (a *Authenticator) credentialStore() (CredentialStore, error) {
	a.storeOnce.Do(func() {
		if a.explicit != nil {
			a.store = a.explicit
			return
		}
		a.store = lookupStore()
		if a.store != nil {
			a.logger.Debug("resolved registered credential store")
		}
	})
	if a.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return a.store, nil
}

// CreateCredentials mints a new credential. The caller owns persistence.
func (a *Authenticator) CreateCredentials() (*Credential, error) {
	return newCredential(a.cfg, a.random)
}

// CreateCredentialsFor mints a new credential and saves it under userName in
// the credential store.
func (a *Authenticator) CreateCredentialsFor(userName string) (*Credential, error) {
	return a.CreateCredentialsForContext(context.Background(), userName)
}

// CreateCredentialsForContext is CreateCredentialsFor with a caller-supplied
// context passed through to the store.
func (a *Authenticator) CreateCredentialsForContext(ctx context.Context, userName string) (*Credential, error) {
	if userName == "" {
		return nil, fmt.Errorf("%w: empty user name", ErrInvalidArgument)
	}
	store, err := a.credentialStore()
	if err != nil {
		return nil, err
	}
	cred, err := a.CreateCredentials()
	if err != nil {
		return nil, err
	}
	if err := store.Save(ctx, userName, cred.Key, cred.ValidationCode, cred.ScratchCodes); err != nil {
		return nil, fmt.Errorf("%w: save credentials for %q: %w", ErrStore, userName, err)
	}
	a.logger.Info("credentials created", "user", userName)
	return cred, nil
}

// ProvisioningURL builds the otpauth URI advertising a credential minted by
// this authenticator, for transport to the enrolling device.
func (a *Authenticator) ProvisioningURL(issuer, accountName string, cred *Credential) (string, error) {
	return provisioning.TOTPURL(issuer, accountName, provisioning.Key{
		Secret:    cred.Key,
		Algorithm: a.cfg.algorithm,
		Digits:    a.cfg.codeDigits,
		Period:    a.cfg.timeStep,
	})
}

// Password returns the current TOTP code for an encoded secret.
func (a *Authenticator) Password(secret string) (int, error) {
	return a.PasswordAt(secret, time.Now())
}

// PasswordAt returns the TOTP code for an encoded secret at time t.
func (a *Authenticator) PasswordAt(secret string, t time.Time) (int, error) {
	key, err := a.cfg.keyRepresentation.Decode(secret)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	return otp.CodeAt(a.cfg.algorithm, key, t, a.cfg.timeStep, a.cfg.codeDigits)
}

// PasswordOfUser returns the current TOTP code of a stored user.
func (a *Authenticator) PasswordOfUser(userName string) (int, error) {
	return a.PasswordOfUserAt(userName, time.Now())
}

// PasswordOfUserAt returns the TOTP code of a stored user at time t.
func (a *Authenticator) PasswordOfUserAt(userName string, t time.Time) (int, error) {
	secret, err := a.userSecret(context.Background(), userName)
	if err != nil {
		return 0, err
	}
	return a.PasswordAt(secret, t)
}

// PasswordOfUserContext returns the current TOTP code of a stored user,
// passing ctx through to the store.
func (a *Authenticator) PasswordOfUserContext(ctx context.Context, userName string) (int, error) {
	secret, err := a.userSecret(ctx, userName)
	if err != nil {
		return 0, err
	}
	return a.PasswordAt(secret, time.Now())
}

// Authorize reports whether code is valid for the encoded secret at the
// current time, within the configured window.
func (a *Authenticator) Authorize(secret string, code int) (bool, error) {
	return a.AuthorizeAt(secret, code, time.Now())
}

// AuthorizeAt reports whether code is valid for the encoded secret at time t.
// Codes outside (0, 10^digits) are rejected without touching the secret.
func (a *Authenticator) AuthorizeAt(secret string, code int, t time.Time) (bool, error) {
	if code <= 0 || code >= a.cfg.modulus() {
		return false, nil
	}
	key, err := a.cfg.keyRepresentation.Decode(secret)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	return otp.Validate(a.cfg.algorithm, key, code, t, a.cfg.timeStep, a.cfg.codeDigits, a.cfg.windowSize)
}

// AuthorizeUser reports whether code is valid for a stored user at the
// current time.
func (a *Authenticator) AuthorizeUser(userName string, code int) (bool, error) {
	return a.AuthorizeUserAt(userName, code, time.Now())
}

// AuthorizeUserAt reports whether code is valid for a stored user at time t.
func (a *Authenticator) AuthorizeUserAt(userName string, code int, t time.Time) (bool, error) {
	secret, err := a.userSecret(context.Background(), userName)
	if err != nil {
		return false, err
	}
	return a.AuthorizeAt(secret, code, t)
}

// AuthorizeUserContext reports whether code is valid for a stored user at
// the current time, passing ctx through to the store.
func (a *Authenticator) AuthorizeUserContext(ctx context.Context, userName string, code int) (bool, error) {
	secret, err := a.userSecret(ctx, userName)
	if err != nil {
		return false, err
	}
	return a.AuthorizeAt(secret, code, time.Now())
}

func (a *Authenticator) userSecret(ctx context.Context, userName string) (string, error) {
	if userName == "" {
		return "", fmt.Errorf("%w: empty user name", ErrInvalidArgument)
	}
	store, err := a.credentialStore()
	if err != nil {
		return "", err
	}
	secret, err := store.SecretKey(ctx, userName)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", fmt.Errorf("%w: %q", ErrUserNotFound, userName)
		}
		return "", fmt.Errorf("%w: load secret for %q: %w", ErrStore, userName, err)
	}
	return secret, nil
}
