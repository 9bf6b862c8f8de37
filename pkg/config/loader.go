// Package config fills settings structs from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Validator is implemented by settings structs that check themselves after
// parsing.
type Validator interface {
	Validate() error
}

// Option adjusts how Load reads the environment.
type Option func(*env.Options)

// WithPrefix looks every tag up as prefix+name, so `env:"LOG_LEVEL"` with
// prefix "ALTAIR_" reads ALTAIR_LOG_LEVEL.
func WithPrefix(prefix string) Option {
	return func(o *env.Options) { o.Prefix = prefix }
}

// WithEnvironment reads from vars instead of the process environment.
func WithEnvironment(vars map[string]string) Option {
	return func(o *env.Options) { o.Environment = vars }
}

// Load parses the env tags of cfg, a pointer to a struct, and then runs its
// Validate method when it has one.
func Load(cfg any, opts ...Option) error {
	var o env.Options
	for _, opt := range opts {
		opt(&o)
	}
	if err := env.ParseWithOptions(cfg, o); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if v, ok := cfg.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	return nil
}
