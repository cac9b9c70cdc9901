// Package otp implements the HMAC-based one-time password algorithm of
// RFC 4226 and its time-based specialisation of RFC 6238, operating on raw
// secret key bytes. Secret encoding, credential handling and storage live
// one level up, in the core package.
package otp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"time"
)

// MaxWindow is the largest number of adjacent intervals a verification is
// allowed to test. Larger windows make clock-skew tolerance indistinguishable
// from brute force.
const MaxWindow = 17

var (
	// ErrInvalidArgument reports a caller error: a window or digit count
	// outside the supported range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownAlgorithm reports a hash algorithm this package cannot
	// resolve to an HMAC construction.
	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")
)

// Algorithm identifies the hash function used for the HMAC.
type Algorithm int

const (
	SHA1 Algorithm = iota
	SHA256
	SHA512
)

// String returns the algorithm name as it appears in otpauth URIs.
func (a Algorithm) String() string {
	switch a {
	case SHA1:
		return "SHA1"
	case SHA256:
		return "SHA256"
	case SHA512:
		return "SHA512"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

func (a Algorithm) hash() (func() hash.Hash, error) {
	switch a {
	case SHA1:
		return sha1.New, nil
	case SHA256:
		return sha256.New, nil
	case SHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(a))
	}
}

// ParseAlgorithm resolves an algorithm name as used in otpauth URIs and
// config files. Names are matched case-sensitively.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "SHA1":
		return SHA1, nil
	case "SHA256":
		return SHA256, nil
	case "SHA512":
		return SHA512, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Counter returns the number of whole time steps elapsed at t since the Unix
// epoch.
func Counter(t time.Time, step time.Duration) int64 {
	return t.UnixMilli() / step.Milliseconds()
}

// Modulus returns 10^digits, the exclusive upper bound of codes with the
// given digit count.
func Modulus(digits int) int {
	m := 1
	for i := 0; i < digits; i++ {
		m *= 10
	}
	return m
}

// Code computes the HOTP code for a counter value per RFC 4226 §5.3:
// HMAC over the big-endian 8-byte counter, dynamic truncation to a 31-bit
// integer, reduced modulo 10^digits. The code is returned as an integer;
// render it zero-padded to digits characters when displaying.
func Code(algorithm Algorithm, key []byte, counter int64, digits int) (int, error) {
	if digits < 1 || digits > 8 {
		return 0, fmt.Errorf("%w: code digits %d out of range [1,8]", ErrInvalidArgument, digits)
	}
	newHash, err := algorithm.hash()
	if err != nil {
		return 0, err
	}

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(newHash, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	truncated := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	return int(truncated) % Modulus(digits), nil
}

// CodeAt computes the TOTP code for wall-clock time t.
func CodeAt(algorithm Algorithm, key []byte, t time.Time, step time.Duration, digits int) (int, error) {
	return Code(algorithm, key, Counter(t, step), digits)
}

// Validate reports whether code matches any code in the verification window
// around time t. The window spans the offsets -⌊(window-1)/2⌋ .. ⌊window/2⌋,
// so window intervals are tested in total: window=3 checks {-1, 0, +1},
// window=4 checks {-1, 0, +1, +2}.
//
// Codes outside (0, 10^digits) are rejected without computing any HMAC.
// A window outside [1, MaxWindow] is a caller error.
func Validate(algorithm Algorithm, key []byte, code int, t time.Time, step time.Duration, digits, window int) (bool, error) {
	if code <= 0 || code >= Modulus(digits) {
		return false, nil
	}
	if window < 1 || window > MaxWindow {
		return false, fmt.Errorf("%w: window %d out of range [1,%d]", ErrInvalidArgument, window, MaxWindow)
	}

	counter := Counter(t, step)
	for i := -((window - 1) / 2); i <= window/2; i++ {
		candidate, err := Code(algorithm, key, counter+int64(i), digits)
		if err != nil {
			return false, err
		}
		if candidate == code {
			return true, nil
		}
	}
	return false, nil
}
