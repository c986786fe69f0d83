// Package config loads termtree settings.
//
// Settings come from three layers, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, by default $XDG_CONFIG_HOME/termtree/config.toml
//  3. TERMTREE_* environment variables, optionally read from a .env file
//
// A minimal file:
//
//	[layout]
//	max_line_width = 180
//
//	[palette.colors]
//	"part of" = "#1f77b4"
//
//	[cache]
//	backend = "redis"
//	ttl = "12h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
// The merged result is checked with struct validation before use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator"
	"github.com/joho/godotenv"

	"github.com/matzehuels/termtree/pkg/cache"
	"github.com/matzehuels/termtree/pkg/core/palette"
	"github.com/matzehuels/termtree/pkg/core/render/tree/layout"
	"github.com/matzehuels/termtree/pkg/errors"
	"github.com/matzehuels/termtree/pkg/source"
)

// Cache backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Defaults.
const (
	DefaultBackend      = BackendFile
	DefaultServerAddr   = ":8080"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 60 * time.Second
	DefaultMaxBodyBytes = 8 << 20
)

// Config is the merged configuration.
type Config struct {
	Layout  layout.Options `toml:"layout"`
	Palette PaletteConfig  `toml:"palette"`
	Cache   CacheConfig    `toml:"cache"`
	Source  SourceConfig   `toml:"source"`
	Server  ServerConfig   `toml:"server"`
}

// PaletteConfig extends the built-in relation colours.
type PaletteConfig struct {
	Colors   map[string]string `toml:"colors" validate:"omitempty,dive,hexcolor"`
	Fallback string            `toml:"fallback" validate:"omitempty,hexcolor"`
}

// Palette returns the default palette with the configured colours applied.
func (p PaletteConfig) Palette() palette.Palette {
	pal := palette.Default().With(p.Colors)
	if p.Fallback != "" {
		pal = palette.New(colorsOf(pal), p.Fallback)
	}
	return pal
}

func colorsOf(p palette.Palette) map[string]string {
	m := make(map[string]string, len(p.Labels()))
	for _, l := range p.Labels() {
		m[l] = p.Color(l)
	}
	return m
}

type CacheConfig struct {
	Backend string             `toml:"backend" validate:"omitempty,oneof=none memory file redis"`
	Dir     string             `toml:"dir"`
	TTL     time.Duration      `toml:"ttl" validate:"gte=0"`
	Redis   *cache.RedisConfig `toml:"redis"`

	// Namespace prefixes every key, for several ontologies sharing one store.
	Namespace string `toml:"namespace" validate:"max=64"`
}

// SourceConfig selects where dependency and derived terms come from. Every
// configured source is queried; file sources take precedence.
type SourceConfig struct {
	Snapshot     string              `toml:"snapshot"`
	Dependencies string              `toml:"dependencies"`
	Derived      string              `toml:"derived"`
	LookupURL    string              `toml:"lookup_url" validate:"omitempty,url"`
	Mongo        *source.MongoConfig `toml:"mongo"`
}

type ServerConfig struct {
	Addr         string        `toml:"addr" validate:"required"`
	ReadTimeout  time.Duration `toml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `toml:"write_timeout" validate:"gte=0"`
	MaxBodyBytes int64         `toml:"max_body_bytes" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: layout.Options{}.WithDefaults(),
		Cache: CacheConfig{
			Backend: DefaultBackend,
			Dir:     cache.DefaultDir(),
			TTL:     cache.TTLLookup,
		},
		Server: ServerConfig{
			Addr:         DefaultServerAddr,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "termtree", "config.toml")
}

// Load reads the configuration. An empty path means [DefaultPath], which may
// be absent; an explicit path must exist. A .env file in the working
// directory is loaded into the environment first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.decodeFile(path, explicit); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	cfg.Layout = cfg.Layout.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string, explicit bool) error {
	md, err := toml.DecodeFile(path, c)
	if os.IsNotExist(err) && !explicit {
		return nil
	}
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := checkUndecoded(md); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	c.Layout = c.Layout.WithDefaults()
	return nil
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(names, ", "))
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}
	if c.Cache.Backend == BackendRedis && c.Cache.Redis == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs [cache.redis]")
	}
	return nil
}
