package config

import (
	"strconv"
	"time"

	"github.com/matzehuels/termtree/pkg/cache"
	"github.com/matzehuels/termtree/pkg/errors"
	"github.com/matzehuels/termtree/pkg/source"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "TERMTREE_"

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envVar struct {
	key   string
	apply func(c *Config, v string) error
}

var envVars = []envVar{
	{"CACHE_BACKEND", func(c *Config, v string) error { c.Cache.Backend = v; return nil }},
	{"CACHE_DIR", func(c *Config, v string) error { c.Cache.Dir = v; return nil }},
	{"CACHE_NAMESPACE", func(c *Config, v string) error { c.Cache.Namespace = v; return nil }},
	{"CACHE_TTL", durationVar(func(c *Config) *time.Duration { return &c.Cache.TTL })},
	{"REDIS_ADDR", func(c *Config, v string) error { redis(c).Addr = v; return nil }},
	{"REDIS_PASSWORD", func(c *Config, v string) error { redis(c).Password = v; return nil }},
	{"REDIS_DB", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		redis(c).DB = n
		return err
	}},
	{"SNAPSHOT", func(c *Config, v string) error { c.Source.Snapshot = v; return nil }},
	{"DEPS", func(c *Config, v string) error { c.Source.Dependencies = v; return nil }},
	{"DERIVED", func(c *Config, v string) error { c.Source.Derived = v; return nil }},
	{"LOOKUP_URL", func(c *Config, v string) error { c.Source.LookupURL = v; return nil }},
	{"MONGO_URI", func(c *Config, v string) error { mongo(c).URI = v; return nil }},
	{"SERVER_ADDR", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"FONT_SIZE", floatVar(func(c *Config) *float64 { return &c.Layout.FontSize })},
	{"MAX_LINE_WIDTH", floatVar(func(c *Config) *float64 { return &c.Layout.MaxLineWidth })},
}

func redis(c *Config) *cache.RedisConfig {
	if c.Cache.Redis == nil {
		c.Cache.Redis = &cache.RedisConfig{}
	}
	return c.Cache.Redis
}

func mongo(c *Config) *source.MongoConfig {
	if c.Source.Mongo == nil {
		c.Source.Mongo = &source.MongoConfig{}
	}
	return c.Source.Mongo
}

func durationVar(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		*field(c) = d
		return err
	}
}

func floatVar(field func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		*field(c) = f
		return err
	}
}

// ApplyEnv overrides fields from TERMTREE_* variables. Empty values are
// ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, ev := range envVars {
		v, ok := lookup(EnvPrefix + ev.key)
		if !ok || v == "" {
			continue
		}
		if err := ev.apply(c, v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, ev.key)
		}
	}
	return nil
}
