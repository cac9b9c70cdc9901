package core

import (
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/jdelaire/totpkit/core/otp"
)

// Defaults applied by NewConfig when the corresponding option is absent.
const (
	DefaultCodeDigits   = 6
	DefaultTimeStep     = 30 * time.Second
	DefaultWindowSize   = 3
	DefaultKeyLength    = 10 // bytes of raw secret entropy
	DefaultScratchCodes = 5
)

// KeyRepresentation selects the textual encoding of secret keys.
type KeyRepresentation int

const (
	// Base32 is RFC 4648 base32, emitted uppercase without padding, as
	// expected by authenticator apps. Decoding tolerates lowercase,
	// whitespace and missing padding.
	Base32 KeyRepresentation = iota

	// Base64 is standard base64 with padding.
	Base64
)

func (r KeyRepresentation) String() string {
	switch r {
	case Base32:
		return "base32"
	case Base64:
		return "base64"
	default:
		return fmt.Sprintf("KeyRepresentation(%d)", int(r))
	}
}

// ParseKeyRepresentation resolves a representation name from a config file.
func ParseKeyRepresentation(name string) (KeyRepresentation, error) {
	switch strings.ToLower(name) {
	case "base32":
		return Base32, nil
	case "base64":
		return Base64, nil
	default:
		return 0, fmt.Errorf("%w: unknown key representation %q", ErrConfiguration, name)
	}
}

var base32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Encode renders raw secret bytes in this representation.
func (r KeyRepresentation) Encode(raw []byte) string {
	switch r {
	case Base64:
		return base64.StdEncoding.EncodeToString(raw)
	default:
		return base32NoPadding.EncodeToString(raw)
	}
}

// Decode recovers raw secret bytes from an encoded string.
func (r KeyRepresentation) Decode(s string) ([]byte, error) {
	switch r {
	case Base64:
		return base64.StdEncoding.DecodeString(s)
	default:
		clean := strings.TrimRight(strings.ToUpper(strings.Join(strings.Fields(s), "")), "=")
		// Re-pad to valid base32 length.
		if pad := len(clean) % 8; pad != 0 {
			clean += strings.Repeat("=", 8-pad)
		}
		return base32.StdEncoding.DecodeString(clean)
	}
}

// Config is the immutable parameter bundle shared by every operation of an
// Authenticator. Build one with NewConfig; validation happens there, so a
// Config in hand is always usable.
type Config struct {
	codeDigits        int
	timeStep          time.Duration
	windowSize        int
	algorithm         otp.Algorithm
	keyRepresentation KeyRepresentation
	keyLength         int
	scratchCodes      int
}

// ConfigOption overrides one Config parameter.
type ConfigOption func(*Config)

// WithCodeDigits sets the number of password digits (6, 7 or 8).
func WithCodeDigits(n int) ConfigOption {
	return func(c *Config) { c.codeDigits = n }
}

// WithTimeStep sets the TOTP interval.
func WithTimeStep(d time.Duration) ConfigOption {
	return func(c *Config) { c.timeStep = d }
}

// WithWindowSize sets the total number of intervals tested on verification.
func WithWindowSize(n int) ConfigOption {
	return func(c *Config) { c.windowSize = n }
}

// WithAlgorithm sets the HMAC hash function.
func WithAlgorithm(a otp.Algorithm) ConfigOption {
	return func(c *Config) { c.algorithm = a }
}

// WithKeyRepresentation sets the secret encoding.
func WithKeyRepresentation(r KeyRepresentation) ConfigOption {
	return func(c *Config) { c.keyRepresentation = r }
}

// WithKeyLength sets the raw secret length in bytes (at least 10).
func WithKeyLength(n int) ConfigOption {
	return func(c *Config) { c.keyLength = n }
}

// WithScratchCodes sets how many scratch codes each credential carries.
func WithScratchCodes(n int) ConfigOption {
	return func(c *Config) { c.scratchCodes = n }
}

// DefaultConfig returns the Google Authenticator compatible defaults:
// SHA1, 6 digits, 30-second step, window of 3, base32 keys.
func DefaultConfig() *Config {
	cfg, err := NewConfig()
	if err != nil {
		panic(err) // defaults always validate
	}
	return cfg
}

// NewConfig builds a validated Config from the defaults plus opts.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := &Config{
		codeDigits:        DefaultCodeDigits,
		timeStep:          DefaultTimeStep,
		windowSize:        DefaultWindowSize,
		algorithm:         otp.SHA1,
		keyRepresentation: Base32,
		keyLength:         DefaultKeyLength,
		scratchCodes:      DefaultScratchCodes,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.codeDigits < 6 || cfg.codeDigits > 8 {
		return nil, fmt.Errorf("%w: code digits %d not in {6,7,8}", ErrInvalidArgument, cfg.codeDigits)
	}
	if cfg.timeStep <= 0 {
		return nil, fmt.Errorf("%w: time step must be positive, got %v", ErrInvalidArgument, cfg.timeStep)
	}
	if cfg.windowSize < 1 || cfg.windowSize > otp.MaxWindow {
		return nil, fmt.Errorf("%w: window size %d out of range [1,%d]", ErrInvalidArgument, cfg.windowSize, otp.MaxWindow)
	}
	if cfg.keyLength < 10 {
		return nil, fmt.Errorf("%w: key length %d below minimum of 10 bytes", ErrInvalidArgument, cfg.keyLength)
	}
	if cfg.scratchCodes < 0 {
		return nil, fmt.Errorf("%w: scratch code count %d must not be negative", ErrInvalidArgument, cfg.scratchCodes)
	}
	switch cfg.algorithm {
	case otp.SHA1, otp.SHA256, otp.SHA512:
	default:
		return nil, fmt.Errorf("%w: %s", ErrConfiguration, cfg.algorithm)
	}
	switch cfg.keyRepresentation {
	case Base32, Base64:
	default:
		return nil, fmt.Errorf("%w: %s", ErrConfiguration, cfg.keyRepresentation)
	}

	return cfg, nil
}

// CodeDigits returns the number of password digits.
func (c *Config) CodeDigits() int { return c.codeDigits }

// TimeStep returns the TOTP interval.
func (c *Config) TimeStep() time.Duration { return c.timeStep }

// WindowSize returns the number of intervals tested on verification.
func (c *Config) WindowSize() int { return c.windowSize }

// Algorithm returns the HMAC hash function.
func (c *Config) Algorithm() otp.Algorithm { return c.algorithm }

// KeyRepresentation returns the secret encoding.
func (c *Config) KeyRepresentation() KeyRepresentation { return c.keyRepresentation }

// KeyLength returns the raw secret length in bytes.
func (c *Config) KeyLength() int { return c.keyLength }

// ScratchCodes returns how many scratch codes each credential carries.
func (c *Config) ScratchCodes() int { return c.scratchCodes }

func (c *Config) modulus() int { return otp.Modulus(c.codeDigits) }
