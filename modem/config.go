package modem

import (
	"log/slog"
	"time"

	"i4.energy/across/sigfox/at"
)

const (
	// DefaultTimeout bounds control commands.
	DefaultTimeout = 2 * time.Second
	// DefaultExtendedTimeout bounds commands that transmit over the air,
	// including the wait for a downlink.
	DefaultExtendedTimeout = 60 * time.Second
	// DefaultInitTimeout bounds the initial handshake performed by New.
	DefaultInitTimeout = 10 * time.Second
)

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	if c.ExtendedTimeout < c.Timeout {
		return ErrInvalidTimeout
	}
	return nil
}

// Config holds the settings of a Modem. Zero values are replaced by defaults.
type Config struct {
	// Dialer opens the transport. Required.
	Dialer Dialer
	// Profile is the line-ending convention used on the wire.
	Profile at.Profile
	// Timeout bounds every control command.
	Timeout time.Duration
	// ExtendedTimeout replaces Timeout while a bit or frame is transmitted.
	ExtendedTimeout time.Duration
	// InitTimeout bounds the handshake performed by New.
	InitTimeout time.Duration
	// Debug echoes all traffic to Logger at debug level.
	Debug bool
	// Logger receives diagnostic output. Nil discards it.
	Logger *slog.Logger
}

func (c *Config) setDefaults() {
	if c.Profile.CommandTerminator == "" {
		c.Profile = at.ProfileA
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ExtendedTimeout == 0 {
		c.ExtendedTimeout = DefaultExtendedTimeout
	}
	if c.InitTimeout == 0 {
		c.InitTimeout = DefaultInitTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// ConfigBuilder assembles a Config step by step.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder returns a builder with an empty Config.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithProfile(p at.Profile) *ConfigBuilder {
	b.config.Profile = p
	return b
}

func (b *ConfigBuilder) WithTimeout(d time.Duration) *ConfigBuilder {
	b.config.Timeout = d
	return b
}

func (b *ConfigBuilder) WithExtendedTimeout(d time.Duration) *ConfigBuilder {
	b.config.ExtendedTimeout = d
	return b
}

func (b *ConfigBuilder) WithInitTimeout(d time.Duration) *ConfigBuilder {
	b.config.InitTimeout = d
	return b
}

func (b *ConfigBuilder) WithDebug(debug bool) *ConfigBuilder {
	b.config.Debug = debug
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

// Build applies defaults and validates the result.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	c.setDefaults()
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
