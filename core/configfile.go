package core

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jdelaire/totpkit/core/otp"
)

// fileConfig is the YAML schema of a config file. Absent fields keep their
// defaults; times are in milliseconds to match the wire-level parameter.
type fileConfig struct {
	CodeDigits        int    `yaml:"code_digits"`
	TimeStepMillis    int64  `yaml:"time_step_ms"`
	WindowSize        int    `yaml:"window_size"`
	HMACHash          string `yaml:"hmac_hash"`
	KeyRepresentation string `yaml:"key_representation"`
	KeyLength         int    `yaml:"key_length"`
	ScratchCodes      *int   `yaml:"scratch_codes"`
}

// LoadConfig reads a Config from a YAML file. The file goes through the same
// validation as NewConfig, so a loaded Config is always usable.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	var opts []ConfigOption
	if fc.CodeDigits != 0 {
		opts = append(opts, WithCodeDigits(fc.CodeDigits))
	}
	if fc.TimeStepMillis != 0 {
		opts = append(opts, WithTimeStep(time.Duration(fc.TimeStepMillis)*time.Millisecond))
	}
	if fc.WindowSize != 0 {
		opts = append(opts, WithWindowSize(fc.WindowSize))
	}
	if fc.HMACHash != "" {
		algo, err := otp.ParseAlgorithm(fc.HMACHash)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		opts = append(opts, WithAlgorithm(algo))
	}
	if fc.KeyRepresentation != "" {
		rep, err := ParseKeyRepresentation(fc.KeyRepresentation)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithKeyRepresentation(rep))
	}
	if fc.KeyLength != 0 {
		opts = append(opts, WithKeyLength(fc.KeyLength))
	}
	if fc.ScratchCodes != nil {
		opts = append(opts, WithScratchCodes(*fc.ScratchCodes))
	}

	return NewConfig(opts...)
}
