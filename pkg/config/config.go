// Copyright 2025 MRJCrunch
//
// Package config holds runtime configuration for the anoncreds services:
// issuer key sizing, accumulator capacity, and the optional storage and
// repository backends. Values load from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/MRJCrunch/anoncreds/pkg/logging"
)

// Config holds all configuration for the anoncreds core and its backends.
type Config struct {
	// Issuer configuration
	PrimeBits           int `yaml:"prime_bits"`            // bit length of each safe prime (default 1024)
	AccumulatorCapacity int `yaml:"accumulator_capacity"`  // default max indices per accumulator
	SafePrimeConfidence int `yaml:"safe_prime_confidence"` // Miller-Rabin rounds for (p-1)/2

	// Postgres public repository (optional)
	DatabaseURL string `yaml:"database_url"`

	// Firestore public repository (optional)
	FirestoreProject     string `yaml:"firestore_project"`
	FirestoreCredentials string `yaml:"firestore_credentials"`
	FirestoreCollection  string `yaml:"firestore_collection"`

	// Wallet KV backend directory (optional; empty means in-memory)
	WalletDir string `yaml:"wallet_dir"`

	Logging logging.Config `yaml:"logging"`
}

// DefaultConfig returns the standard protocol configuration.
func DefaultConfig() *Config {
	return &Config{
		PrimeBits:           1024,
		AccumulatorCapacity: 100,
		SafePrimeConfidence: 20,
		FirestoreCollection: "anoncreds_artifacts",
		Logging:             *logging.DefaultConfig(),
	}
}

// Load reads configuration from a YAML file, then applies environment
// overrides. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.PrimeBits < 512 {
		return fmt.Errorf("prime_bits %d is below the minimum of 512", c.PrimeBits)
	}
	if c.AccumulatorCapacity < 1 {
		return fmt.Errorf("accumulator_capacity must be positive, got %d", c.AccumulatorCapacity)
	}
	if c.SafePrimeConfidence < 1 {
		return fmt.Errorf("safe_prime_confidence must be positive, got %d", c.SafePrimeConfidence)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ANONCREDS_PRIME_BITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PrimeBits = n
		}
	}
	if v := os.Getenv("ANONCREDS_ACCUM_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AccumulatorCapacity = n
		}
	}
	if v := os.Getenv("ANONCREDS_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("ANONCREDS_FIRESTORE_PROJECT"); v != "" {
		cfg.FirestoreProject = v
	}
	if v := os.Getenv("ANONCREDS_FIRESTORE_CREDENTIALS"); v != "" {
		cfg.FirestoreCredentials = v
	}
	if v := os.Getenv("ANONCREDS_WALLET_DIR"); v != "" {
		cfg.WalletDir = v
	}
	if v := os.Getenv("ANONCREDS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
