package config

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/termtree/pkg/cache"
	"github.com/matzehuels/termtree/pkg/source"
)

// OpenCache returns the configured cache backend.
func (c CacheConfig) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case "", BackendNone:
		return cache.NewNullCache(), nil
	case BackendMemory:
		return cache.NewMemoryCache(), nil
	case BackendFile:
		return cache.NewFileCache(c.Dir)
	case BackendRedis:
		if c.Redis == nil {
			return nil, fmt.Errorf("cache backend redis: no redis settings")
		}
		return cache.NewRedisCache(ctx, *c.Redis)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}

// Keyer returns the cache key builder, scoped by Namespace when set.
func (c CacheConfig) Keyer() cache.Keyer {
	if c.Namespace == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Namespace+":")
}

// Empty reports whether no term source is configured.
func (s SourceConfig) Empty() bool {
	return s.Snapshot == "" && s.Dependencies == "" && s.Derived == "" &&
		s.LookupURL == "" && s.Mongo == nil
}

// Sources opens every configured term source: files first, then the lookup
// service, then MongoDB. The returned close function releases connections.
func (s SourceConfig) Sources(ctx context.Context, c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) (source.Multi, func(context.Context) error, error) {
	var (
		out     source.Multi
		closers []func(context.Context) error
	)
	closeAll := func(ctx context.Context) error {
		var first error
		for _, fn := range closers {
			if err := fn(ctx); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	if s.Snapshot != "" || s.Dependencies != "" || s.Derived != "" {
		out = append(out, source.FileSource{Snapshot: s.Snapshot, Dependencies: s.Dependencies, Derived: s.Derived})
	}
	if s.LookupURL != "" {
		opts := []source.HTTPOption{source.WithCache(c, ttl)}
		if keyer != nil {
			opts = append(opts, source.WithKeyer(keyer))
		}
		if logger != nil {
			opts = append(opts, source.WithLogger(logger))
		}
		src, err := source.NewHTTPSource(s.LookupURL, opts...)
		if err != nil {
			return nil, closeAll, err
		}
		out = append(out, src)
	}
	if s.Mongo != nil && s.Mongo.URI != "" {
		src, err := source.NewMongoSource(ctx, *s.Mongo)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, src.Close)
		out = append(out, src)
	}
	return out, closeAll, nil
}
