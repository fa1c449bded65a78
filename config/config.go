// Package config loads wsserver settings from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	websocket "github.com/wmdanor/wsengine"
)

const defaultPort = 9001

type Config struct {
	Server Server `yaml:"server"`
	Conn   Conn   `yaml:"conn"`
	Log    Log    `yaml:"log"`
}

type Server struct {
	Addr     string `yaml:"addr"`
	MaxConns int    `yaml:"max_conns"`
}

type Conn struct {
	PingInterval        time.Duration `yaml:"ping_interval"`
	ReadTimeout         time.Duration `yaml:"read_timeout"`
	HandshakeTimeout    time.Duration `yaml:"handshake_timeout"`
	WriteTimeout        time.Duration `yaml:"write_timeout"`
	ReadBufferSize      int           `yaml:"read_buffer_size"`
	HandshakeBufferSize int           `yaml:"handshake_buffer_size"`
}

type Log struct {
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
}

func Default() Config {
	return Config{
		Server: Server{
			Addr:     fmt.Sprintf(":%d", defaultPort),
			MaxConns: websocket.DefaultMaxConns,
		},
		Conn: Conn{
			PingInterval:        websocket.DefaultPingInterval,
			ReadTimeout:         websocket.DefaultReadTimeout,
			HandshakeTimeout:    websocket.DefaultHandshakeTimeout,
			WriteTimeout:        websocket.DefaultWriteTimeout,
			ReadBufferSize:      websocket.DefaultReadBufferSize,
			HandshakeBufferSize: websocket.DefaultHandshakeBufferSize,
		},
	}
}

// Load starts from Default, decodes the file at path over it when path is
// not empty, then applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "failed to read config")
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "failed to decode config %q", path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyEnv overrides fields from PORT, WS_ADDR, WS_MAX_CONNS, WS_LOG and
// WS_LOG_FILE. WS_ADDR wins over PORT.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid PORT %q", v)
		}
		c.Server.Addr = fmt.Sprintf(":%d", port)
	}
	if v, ok := lookup("WS_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup("WS_MAX_CONNS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid WS_MAX_CONNS %q", v)
		}
		c.Server.MaxConns = n
	}
	if v, ok := lookup("WS_LOG"); ok {
		c.Log.Development = v == "1"
	}
	if v, ok := lookup("WS_LOG_FILE"); ok {
		c.Log.File = v
	}

	return nil
}

func (c Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return errors.New("server.addr must be set")
	case c.Server.MaxConns <= 0:
		return errors.Errorf("server.max_conns must be positive, got %d", c.Server.MaxConns)
	case c.Conn.PingInterval <= 0:
		return errors.Errorf("conn.ping_interval must be positive, got %s", c.Conn.PingInterval)
	case c.Conn.ReadTimeout <= 0:
		return errors.Errorf("conn.read_timeout must be positive, got %s", c.Conn.ReadTimeout)
	case c.Conn.HandshakeTimeout <= 0:
		return errors.Errorf("conn.handshake_timeout must be positive, got %s", c.Conn.HandshakeTimeout)
	case c.Conn.WriteTimeout <= 0:
		return errors.Errorf("conn.write_timeout must be positive, got %s", c.Conn.WriteTimeout)
	case c.Conn.ReadBufferSize < 2:
		return errors.Errorf("conn.read_buffer_size must be at least 2, got %d", c.Conn.ReadBufferSize)
	case c.Conn.HandshakeBufferSize <= 0:
		return errors.Errorf("conn.handshake_buffer_size must be positive, got %d", c.Conn.HandshakeBufferSize)
	}

	return nil
}

func (c Config) ServerConfig() websocket.ServerConfig {
	return websocket.ServerConfig{
		Addr:     c.Server.Addr,
		MaxConns: c.Server.MaxConns,
		Conn: websocket.Options{
			PingInterval:        c.Conn.PingInterval,
			ReadTimeout:         c.Conn.ReadTimeout,
			HandshakeTimeout:    c.Conn.HandshakeTimeout,
			WriteTimeout:        c.Conn.WriteTimeout,
			ReadBufferSize:      c.Conn.ReadBufferSize,
			HandshakeBufferSize: c.Conn.HandshakeBufferSize,
		},
	}
}
