package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/zhouzirui/phonebook/internal/logger"
)

// DefaultPort is the port the phonebook listens on unless overridden.
const DefaultPort = 3001

// PortEnv overrides the listen port. A generic PORT injected by a hosting
// platform is ignored so the listener stays on DefaultPort.
const PortEnv = "PHONEBOOK_PORT"

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig   `toml:"server"`
	Log    logger.Options `toml:"log"`
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Host              string   `toml:"host"`
	Port              int      `toml:"port"`
	ReadHeaderTimeout Duration `toml:"read_header_timeout"`
	IdleTimeout       Duration `toml:"idle_timeout"`
	ShutdownTimeout   Duration `toml:"shutdown_timeout"`
}

// Addr is the listen address built from host and port.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Duration is a [time.Duration] read from TOML strings such as "5s".
type Duration struct{ time.Duration }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              DefaultPort,
			ReadHeaderTimeout: Duration{5 * time.Second},
			IdleTimeout:       Duration{120 * time.Second},
			ShutdownTimeout:   Duration{10 * time.Second},
		},
		Log: logger.Options{Level: "info", Format: "text"},
	}
}

// Load starts from the defaults, applies the TOML file at path when path is
// not empty, then applies environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	return nil
}

func (c *Config) applyEnv() error {
	if raw := strings.TrimSpace(os.Getenv(PortEnv)); raw != "" {
		host, port, err := parseAddr(raw)
		if err != nil {
			return err
		}
		if host != "" {
			c.Server.Host = host
		}
		c.Server.Port = port
	}

	shutdown, err := parseOptionalDurationEnv("SHUTDOWN_TIMEOUT")
	if err != nil {
		return err
	}
	if shutdown != nil {
		c.Server.ShutdownTimeout = Duration{*shutdown}
	}

	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault("LOG_FORMAT", c.Log.Format)
	c.Log.File = getEnvOrDefault("LOG_FILE", c.Log.File)
	return nil
}

// parseAddr accepts "3001", ":3001" or "127.0.0.1:3001".
func parseAddr(raw string) (string, int, error) {
	if strings.Contains(raw, " ") {
		return "", 0, fmt.Errorf("invalid %s value: %q", PortEnv, raw)
	}

	host, portStr := "", raw
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		host, portStr = raw[:i], raw[i+1:]
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid %s value %q: %w", PortEnv, raw, err)
	}
	return host, port, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalDurationEnv(key string) (*time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
