// Package prng wraps a cryptographically strong random source behind an
// io.Reader that rebuilds its underlying generator after a fixed number of
// draws.
package prng

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/chacha20"
)

// maxOperations is the number of byte-producing calls after which the
// underlying generator is rebuilt from its source.
const maxOperations = 1_000_000

// Source constructs a fresh random generator. It is invoked once at
// creation and again on every reseed.
type Source func() (io.Reader, error)

// SystemSource returns the operating system CSPRNG.
func SystemSource() (io.Reader, error) {
	return rand.Reader, nil
}

// ChaCha20Source returns a generator producing the keystream of a ChaCha20
// cipher keyed from the operating system CSPRNG. Rebuilding it rotates to a
// fresh key and nonce.
func ChaCha20Source() (io.Reader, error) {
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("seed chacha20 key: %w", err)
	}
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("seed chacha20 nonce: %w", err)
	}
	cipher, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, fmt.Errorf("construct chacha20 cipher: %w", err)
	}
	return &chachaReader{cipher: cipher}, nil
}

// chachaReader serialises access to the cipher; XORKeyStream mutates its
// internal state.
type chachaReader struct {
	mu     sync.Mutex
	cipher *chacha20.Cipher
}

func (c *chachaReader) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range p {
		p[i] = 0
	}
	c.cipher.XORKeyStream(p, p)
	return len(p), nil
}

// Reader is a reseeding random byte source safe for concurrent use.
// Draws proceed concurrently under the read side of the lock; the rare
// rebuild takes the write side and excludes all draws.
type Reader struct {
	source Source

	mu  sync.RWMutex
	gen io.Reader
	ops atomic.Uint64
}

// Option configures a Reader.
type Option func(*Reader)

// WithSource replaces the default generator source.
func WithSource(s Source) Option {
	return func(r *Reader) { r.source = s }
}

// New creates a Reader backed by ChaCha20Source unless overridden.
func New(opts ...Option) (*Reader, error) {
	r := &Reader{source: ChaCha20Source}
	for _, opt := range opts {
		opt(r)
	}
	gen, err := r.source()
	if err != nil {
		return nil, fmt.Errorf("construct random source: %w", err)
	}
	r.gen = gen
	return r, nil
}

// Read fills p with random bytes. Every call counts as one operation
// regardless of length; the generator is rebuilt once maxOperations calls
// have been served.
func (r *Reader) Read(p []byte) (int, error) {
	if r.ops.Add(1) > maxOperations {
		if err := r.reseed(); err != nil {
			return 0, err
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return io.ReadFull(r.gen, p)
}

func (r *Reader) reseed() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have reseeded while we waited for the lock.
	if r.ops.Load() <= maxOperations {
		return nil
	}
	gen, err := r.source()
	if err != nil {
		return fmt.Errorf("rebuild random source: %w", err)
	}
	r.gen = gen
	r.ops.Store(1)
	return nil
}
