// Package config provides the YAML-loadable configuration for the
// mapping resolution engine and its collaborators.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/EMMC-ASBL/tripper-sub000/errors"
)

// Config is the complete application configuration.
type Config struct {
	Resolver ResolverConfig `yaml:"resolver"`
	NATS     NATSConfig     `yaml:"nats"`
}

// ResolverConfig tunes the resolution engine.
type ResolverConfig struct {
	// MaxDepth bounds the backward-chaining recursion depth.
	MaxDepth int `yaml:"max_depth"`

	// DefaultTransformationCost is applied to descriptors without an
	// explicit cost annotation.
	DefaultTransformationCost float64 `yaml:"default_transformation_cost"`

	// DefaultEquivalenceCost is applied to equivalence assertions
	// without an explicit cost annotation.
	DefaultEquivalenceCost float64 `yaml:"default_equivalence_cost"`
}

// NATSConfig configures the remote triplestore fact source. Ignored
// when facts come from an in-memory store or a knowledge file.
type NATSConfig struct {
	URL            string        `yaml:"url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	SubjectPrefix  string        `yaml:"subject_prefix"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Resolver: ResolverConfig{
			MaxDepth:                  64,
			DefaultTransformationCost: 1.0,
			DefaultEquivalenceCost:    0.0,
		},
		NATS: NATSConfig{
			URL:            "nats://127.0.0.1:4222",
			RequestTimeout: 2 * time.Second,
			SubjectPrefix:  "mapping.facts",
		},
	}
}

// Load reads and validates a configuration file. Fields absent from
// the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WrapFatal(err, "config", "Load", "read file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err),
			"config", "Load", "parse yaml")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c Config) Validate() error {
	if c.Resolver.MaxDepth <= 0 {
		return invalid(fmt.Sprintf("resolver.max_depth must be positive, got %d", c.Resolver.MaxDepth))
	}
	if c.Resolver.DefaultTransformationCost < 0 {
		return invalid(fmt.Sprintf("resolver.default_transformation_cost must be non-negative, got %v", c.Resolver.DefaultTransformationCost))
	}
	if c.Resolver.DefaultEquivalenceCost < 0 {
		return invalid(fmt.Sprintf("resolver.default_equivalence_cost must be non-negative, got %v", c.Resolver.DefaultEquivalenceCost))
	}
	if c.NATS.RequestTimeout <= 0 {
		return invalid(fmt.Sprintf("nats.request_timeout must be positive, got %v", c.NATS.RequestTimeout))
	}
	if c.NATS.SubjectPrefix == "" {
		return invalid("nats.subject_prefix must not be empty")
	}
	return nil
}

func invalid(detail string) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: %s", errors.ErrInvalidConfig, detail),
		"config", "Validate", "check field")
}
