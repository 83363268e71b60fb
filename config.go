package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
	"i4.energy/across/sigfox/modem"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string `yaml:"bind_address"`
	// SerialPort is the path to the modem's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string `yaml:"serial_port"`
	// BaudRate is the baud rate for serial communication with the modem (e.g. 9600)
	BaudRate int `yaml:"baud_rate"`
	// Profile selects the wire line-ending convention ("a" or "b")
	Profile string `yaml:"profile"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `yaml:"log_level"`
	// Debug echoes all modem traffic to the debug log
	Debug bool `yaml:"debug"`
	// Timeout bounds control commands
	Timeout time.Duration `yaml:"timeout"`
	// ExtendedTimeout bounds uplinks and downlink waits
	ExtendedTimeout time.Duration `yaml:"extended_timeout"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = modem.DefaultBaudRate
		c.Profile = "a"
		c.LogLevel = "info"
		c.Timeout = modem.DefaultTimeout
		c.ExtendedTimeout = modem.DefaultExtendedTimeout
		return nil
	}
}

// WithFile loads configuration from a YAML file. Keys missing from the file
// keep their current value. An empty path is ignored.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if profile := os.Getenv("WIRE_PROFILE"); profile != "" {
			c.Profile = profile
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if debug := os.Getenv("MODEM_DEBUG"); debug != "" {
			if d, err := strconv.ParseBool(debug); err == nil {
				c.Debug = d
			}
		}

		if timeout := os.Getenv("AT_TIMEOUT"); timeout != "" {
			if d, err := time.ParseDuration(timeout); err == nil {
				c.Timeout = d
			}
		}

		if timeout := os.Getenv("AT_EXTENDED_TIMEOUT"); timeout != "" {
			if d, err := time.ParseDuration(timeout); err == nil {
				c.ExtendedTimeout = d
			}
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "profile":
				c.Profile = f.Value.String()
			case "log-level":
				c.LogLevel = f.Value.String()
			case "debug":
				if d, err := strconv.ParseBool(f.Value.String()); err == nil {
					c.Debug = d
				}
			case "timeout":
				if d, err := time.ParseDuration(f.Value.String()); err == nil {
					c.Timeout = d
				}
			case "extended-timeout":
				if d, err := time.ParseDuration(f.Value.String()); err == nil {
					c.ExtendedTimeout = d
				}
			}

		})
		return nil
	}

}
