package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdelaire/totpkit/core/otp"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.CodeDigits())
	assert.Equal(t, 30*time.Second, cfg.TimeStep())
	assert.Equal(t, 3, cfg.WindowSize())
	assert.Equal(t, otp.SHA1, cfg.Algorithm())
	assert.Equal(t, Base32, cfg.KeyRepresentation())
	assert.Equal(t, 10, cfg.KeyLength())
	assert.Equal(t, 5, cfg.ScratchCodes())
}

func TestNewConfigOptions(t *testing.T) {
	cfg, err := NewConfig(
		WithCodeDigits(8),
		WithTimeStep(time.Minute),
		WithWindowSize(5),
		WithAlgorithm(otp.SHA512),
		WithKeyRepresentation(Base64),
		WithKeyLength(32),
		WithScratchCodes(0),
	)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.CodeDigits())
	assert.Equal(t, time.Minute, cfg.TimeStep())
	assert.Equal(t, 5, cfg.WindowSize())
	assert.Equal(t, otp.SHA512, cfg.Algorithm())
	assert.Equal(t, Base64, cfg.KeyRepresentation())
	assert.Equal(t, 32, cfg.KeyLength())
	assert.Equal(t, 0, cfg.ScratchCodes())
}

func TestNewConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		opt  ConfigOption
	}{
		{"digits too low", WithCodeDigits(5)},
		{"digits too high", WithCodeDigits(9)},
		{"zero step", WithTimeStep(0)},
		{"negative step", WithTimeStep(-time.Second)},
		{"zero window", WithWindowSize(0)},
		{"window too large", WithWindowSize(18)},
		{"key too short", WithKeyLength(9)},
		{"negative scratch codes", WithScratchCodes(-1)},
		{"unknown algorithm", WithAlgorithm(otp.Algorithm(42))},
		{"unknown representation", WithKeyRepresentation(KeyRepresentation(42))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.opt)
			assert.Error(t, err)
		})
	}
}

func TestKeyRepresentationRoundTrip(t *testing.T) {
	raw := []byte("12345678901234567890")

	for _, rep := range []KeyRepresentation{Base32, Base64} {
		encoded := rep.Encode(raw)
		decoded, err := rep.Decode(encoded)
		require.NoError(t, err, rep)
		assert.Equal(t, raw, decoded, rep)
	}
}

func TestBase32EncodeUnpadded(t *testing.T) {
	// 10 raw bytes encode to 16 characters; no '=' filler.
	encoded := Base32.Encode([]byte("1234567890"))
	assert.NotContains(t, encoded, "=")
	assert.Equal(t, "GEZDGNBVGY3TQOJQ", encoded)
}

func TestBase32DecodeTolerant(t *testing.T) {
	// Lowercase, spaces and missing padding all decode.
	for _, in := range []string{"gezdgnbvgy3tqojq", "GEZD GNBV GY3T QOJQ", "GEZDGNBVGY3TQOJQ======"} {
		decoded, err := Base32.Decode(in)
		require.NoError(t, err, in)
		assert.Equal(t, []byte("1234567890"), decoded, in)
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Base32.Decode("!!!not-base32!!!")
	assert.Error(t, err)

	_, err = Base64.Decode("!!!not-base64!!!")
	assert.Error(t, err)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "totp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
code_digits: 8
time_step_ms: 60000
window_size: 5
hmac_hash: SHA256
key_representation: base64
key_length: 20
scratch_codes: 3
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.CodeDigits())
	assert.Equal(t, time.Minute, cfg.TimeStep())
	assert.Equal(t, 5, cfg.WindowSize())
	assert.Equal(t, otp.SHA256, cfg.Algorithm())
	assert.Equal(t, Base64, cfg.KeyRepresentation())
	assert.Equal(t, 20, cfg.KeyLength())
	assert.Equal(t, 3, cfg.ScratchCodes())
}

func TestLoadConfigPartial(t *testing.T) {
	// Absent fields keep their defaults; explicit zero scratch codes stick.
	path := writeConfigFile(t, "code_digits: 7\nscratch_codes: 0\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.CodeDigits())
	assert.Equal(t, 0, cfg.ScratchCodes())
	assert.Equal(t, 30*time.Second, cfg.TimeStep())
	assert.Equal(t, otp.SHA1, cfg.Algorithm())
}

func TestLoadConfigUnknownHash(t *testing.T) {
	path := writeConfigFile(t, "hmac_hash: MD5\n")
	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadConfigUnknownRepresentation(t *testing.T) {
	path := writeConfigFile(t, "key_representation: hex\n")
	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadConfigInvalidValues(t *testing.T) {
	path := writeConfigFile(t, "window_size: 99\n")
	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "code_digits: [\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
