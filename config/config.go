package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/opd-ai/socketpdu/limits"
)

// validate is a package-level singleton; building a validator is expensive.
var validate = validator.New()

// ErrInvalidConfig is wrapped by every error returned from Validate.
var ErrInvalidConfig = errors.New("invalid bridge configuration")

// Config holds the construction parameters of a bridge.
type Config struct {
	// Mode selects the socket behaviour.
	Mode Mode `yaml:"mode" validate:"required"`

	// Address is the bind address (server modes) or target host (client
	// modes). Empty or "0.0.0.0" binds all interfaces in server modes.
	Address string `yaml:"address" validate:"omitempty,hostname_rfc1123|ipv4"`

	// Port is a numeric port or, outside the wildcard-bind path, a service name.
	Port string `yaml:"port" validate:"required"`

	// MTU bounds each socket read and each written chunk.
	MTU int `yaml:"mtu"`

	// NoDelay sets TCP_NODELAY on TCP sockets. Ignored for UDP.
	NoDelay bool `yaml:"no_delay"`
}

// Default returns a Config with the default transfer unit and no mode.
func Default() Config {
	return Config{MTU: limits.DefaultTransferUnit}
}

// Validate checks field syntax and ranges. Address resolution is left to the
// transport layer.
func (c Config) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidConfig, int(c.Mode))
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	check := limits.ValidateTransferUnit
	if !c.Mode.IsTCP() {
		check = limits.ValidateDatagramUnit
	}
	if err := check(c.MTU); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// IsWildcard reports whether Address denotes all local interfaces.
func (c Config) IsWildcard() bool {
	return c.Address == "" || c.Address == "0.0.0.0"
}
