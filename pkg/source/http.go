package source

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/termtree/pkg/cache"
	"github.com/matzehuels/termtree/pkg/errors"
	"github.com/matzehuels/termtree/pkg/observability"
)

const (
	httpTimeout = 10 * time.Second
	// maxResponseBytes bounds a single lookup response.
	maxResponseBytes = 8 << 20
)

// HTTPSource asks a term-lookup service for the dependency and derived terms
// of each label:
//
//	GET {BaseURL}/terms?label=<label>  ->  {"dependencies": [...], "derived": [...]}
//
// A 404 means the service knows nothing about the label and yields an empty
// snapshot. Responses are cached per label, concurrent lookups of the same
// label share one request, and 5xx or transport failures are retried.
type HTTPSource struct {
	baseURL *url.URL
	client  *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	backoff cache.Backoff
	logger  *log.Logger
	group   singleflight.Group
}

// HTTPOption configures an [HTTPSource].
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default client, which has a 10s timeout.
func WithHTTPClient(c *http.Client) HTTPOption { return func(s *HTTPSource) { s.client = c } }

// WithCache memoises lookups in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.cache, s.ttl = c, ttl }
}

// WithKeyer sets the cache key builder.
func WithKeyer(k cache.Keyer) HTTPOption { return func(s *HTTPSource) { s.keyer = k } }

// WithBackoff sets the retry policy.
func WithBackoff(b cache.Backoff) HTTPOption { return func(s *HTTPSource) { s.backoff = b } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) HTTPOption { return func(s *HTTPSource) { s.logger = l } }

// NewHTTPSource returns a source for the service at baseURL.
func NewHTTPSource(baseURL string, opts ...HTTPOption) (*HTTPSource, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "lookup url")
	}
	s := &HTTPSource{
		baseURL: u,
		client:  &http.Client{Timeout: httpTimeout},
		cache:   cache.NewNullCache(),
		keyer:   cache.NewDefaultKeyer(),
		ttl:     cache.TTLLookup,
		backoff: cache.DefaultBackoff,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns "http".
func (s *HTTPSource) Name() string { return "http" }

// Key identifies the service by its base URL.
func (s *HTTPSource) Key() string { return identity("http", s.baseURL.String()) }

// Fetch looks up every distinct label in sorted order and merges the results.
func (s *HTTPSource) Fetch(ctx context.Context, labels []string) (Snapshot, error) {
	labels = slices.Compact(slices.Sorted(slices.Values(labels)))
	var out Snapshot
	for _, label := range labels {
		if label == "" {
			continue
		}
		snap, err := s.Lookup(ctx, label)
		if err != nil {
			return Snapshot{}, err
		}
		out = out.Merge(snap)
	}
	return out, nil
}

// Lookup returns the snapshot for one label.
func (s *HTTPSource) Lookup(ctx context.Context, label string) (Snapshot, error) {
	key := s.keyer.LookupKey(s.baseURL.Host, label)
	hooks := observability.Cache()

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed", "key", key, "err", err)
	} else if ok {
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err == nil {
			hooks.OnCacheHit(ctx, "lookup")
			return snap, nil
		}
		s.logger.Warn("discarding corrupt cache entry", "key", key)
	}
	hooks.OnCacheMiss(ctx, "lookup")

	v, err, shared := s.group.Do(key, func() (any, error) {
		var snap Snapshot
		err := cache.RetryWithBackoff(ctx, s.backoff, func() error {
			var err error
			snap, err = s.get(ctx, label)
			return err
		})
		if err != nil {
			return Snapshot{}, err
		}
		if data, err := json.Marshal(snap); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				s.logger.Warn("cache write failed", "key", key, "err", err)
			} else {
				hooks.OnCacheSet(ctx, "lookup", len(data))
			}
		}
		return snap, nil
	})
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return Snapshot{}, errors.Wrap(errors.ErrCodeTimeout, err, "lookup %q", label)
		}
		return Snapshot{}, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "lookup %q", label)
	}
	s.logger.Debug("looked up term", "label", label, "shared", shared)
	return v.(Snapshot), nil
}

func (s *HTTPSource) get(ctx context.Context, label string) (Snapshot, error) {
	u := s.baseURL.JoinPath("terms")
	u.RawQuery = url.Values{"label": {label}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Snapshot{}, ctx.Err()
		}
		return Snapshot{}, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Snapshot{}, nil
	case resp.StatusCode >= 500:
		return Snapshot{}, cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return Snapshot{}, fmt.Errorf("%w: status %d", cache.ErrNetwork, resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode response: %w", err)
	}
	return snap, nil
}
