package core

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jdelaire/totpkit/core/otp"
)

const (
	scratchCodeBytes = 4
	scratchCodeMin   = 10_000_000  // smallest 8-digit code
	scratchCodeMax   = 100_000_000 // exclusive upper bound
)

// Credential is the result of an enrolment: an encoded secret, the TOTP code
// at the Unix epoch (kept for client-side sanity checks), and a set of
// single-use 8-digit scratch codes. Credentials are created once and never
// mutated; the library holds no copy after returning one.
type Credential struct {
	// Key is the secret, encoded per the Config's key representation.
	Key string

	// ValidationCode is the TOTP code at Unix time zero.
	ValidationCode int

	// ScratchCodes are single-use recovery codes, each exactly 8 decimal
	// digits with no leading zero.
	ScratchCodes []int

	// Config is the parameter bundle the credential was created under.
	Config *Config
}

// newCredential draws one entropy buffer of keyLength + 4*scratchCodes bytes
// and carves it into the secret and the scratch codes. Scratch chunks that
// would render with a leading zero are discarded and replaced by fresh
// 4-byte draws, so every accepted code has exactly 8 digits.
func newCredential(cfg *Config, random io.Reader) (*Credential, error) {
	buf := make([]byte, cfg.keyLength+scratchCodeBytes*cfg.scratchCodes)
	if _, err := io.ReadFull(random, buf); err != nil {
		return nil, fmt.Errorf("draw credential entropy: %w", err)
	}

	rawKey := buf[:cfg.keyLength]

	scratch := make([]int, 0, cfg.scratchCodes)
	for i := 0; i < cfg.scratchCodes; i++ {
		chunk := buf[cfg.keyLength+scratchCodeBytes*i:][:scratchCodeBytes]
		code, ok := scratchCode(chunk)
		for !ok {
			var fresh [scratchCodeBytes]byte
			if _, err := io.ReadFull(random, fresh[:]); err != nil {
				return nil, fmt.Errorf("redraw scratch code: %w", err)
			}
			code, ok = scratchCode(fresh[:])
		}
		scratch = append(scratch, code)
	}

	validation, err := otp.Code(cfg.algorithm, rawKey, 0, cfg.codeDigits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return &Credential{
		Key:            cfg.keyRepresentation.Encode(rawKey),
		ValidationCode: validation,
		ScratchCodes:   scratch,
		Config:         cfg,
	}, nil
}

// scratchCode maps a 4-byte chunk to a candidate code and reports whether it
// has exactly 8 digits.
func scratchCode(chunk []byte) (int, bool) {
	c := int(binary.BigEndian.Uint32(chunk)&0x7fffffff) % scratchCodeMax
	return c, c >= scratchCodeMin
}
