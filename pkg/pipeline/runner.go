package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/termtree/pkg/cache"
	"github.com/matzehuels/termtree/pkg/core/build"
	"github.com/matzehuels/termtree/pkg/core/prune"
	"github.com/matzehuels/termtree/pkg/core/rank"
	"github.com/matzehuels/termtree/pkg/core/render/tree/layout"
	"github.com/matzehuels/termtree/pkg/core/render/tree/measure"
	"github.com/matzehuels/termtree/pkg/core/term"
	"github.com/matzehuels/termtree/pkg/errors"
	"github.com/matzehuels/termtree/pkg/observability"
	"github.com/matzehuels/termtree/pkg/source"
)

// Runner executes the pipeline with cached term fetching.
//
// The Runner keeps no per-run state: every call builds its own graph, so one
// Runner can serve concurrent requests.
type Runner struct {
	Source source.TermSource
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	fontOnce sync.Once
	font     layout.Measurer
}

// NewRunner creates a runner. A nil source supplies no terms, a nil cache
// disables caching and a nil keyer uses [cache.DefaultKeyer].
func NewRunner(src source.TermSource, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if src == nil {
		src = source.StaticSource{}
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Source: src, Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs every stage and renders opts.Formats.
func (r *Runner) Execute(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}

	res, err := r.Build(ctx, in, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	l, err := r.Layout(ctx, res.Graph, opts)
	if err != nil {
		return nil, err
	}
	res.Layout = l
	res.Stats.LayoutTime = time.Since(start)
	res.Stats.Trees = len(l.Trees)

	start = time.Now()
	artifacts, err := r.Render(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(start)

	r.Logger.Info("rendered diagram",
		"nodes", res.Stats.NodeCount,
		"trees", res.Stats.Trees,
		"formats", opts.Formats,
		"duration", res.Stats.LayoutTime+res.Stats.RenderTime)
	return res, nil
}

// Build parses the rows, fetches external terms and produces the pruned,
// ranked graph. Data problems end up in Result.Issues, never in the error.
func (r *Runner) Build(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}
	if len(in.Rows) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSheet, "sheet has no rows")
	}
	res := &Result{Stats: Stats{Rows: len(in.Rows)}}

	start := time.Now()
	current, rowIssues := term.ParseRows(in.Rows)
	term.LogIssues(opts.Logger, rowIssues)
	if len(current) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSheet, "sheet has no usable terms")
	}
	snap, hit, err := r.Fetch(ctx, current, opts)
	if err != nil {
		return nil, err
	}
	snap = source.Snapshot{Dependencies: in.Dependencies, Derived: in.Derived}.Merge(snap)
	res.CacheInfo.SnapshotHit = hit
	res.Stats.FetchTime = time.Since(start)
	res.Stats.Terms = len(current) + snap.Len()

	start = time.Now()
	var built *build.Result
	_ = stage(ctx, observability.StageBuild, func() (int, error) {
		built = build.FromSources(current, snap.Dependencies, snap.Derived, build.Options{
			Palette: opts.Palette,
			Logger:  opts.Logger,
		})
		return built.Graph.NodeCount(), nil
	})
	res.Graph = built.Graph
	res.Issues = append(rowIssues, built.Issues...)
	reportIssues(ctx, res.Issues)

	if !opts.NoPrune {
		_ = stage(ctx, observability.StagePrune, func() (int, error) {
			res.Pruned = prune.Prune(res.Graph)
			return res.Pruned.Kept, nil
		})
		opts.Logger.Debug("pruned graph",
			"kept", res.Pruned.Kept,
			"removed_nodes", len(res.Pruned.RemovedNodes),
			"removed_edges", res.Pruned.RemovedEdges)
	}

	_ = stage(ctx, observability.StageRank, func() (int, error) {
		res.Depths = rank.Assign(res.Graph, opts.Logger)
		return len(res.Depths), nil
	})

	res.Stats.BuildTime = time.Since(start)
	res.Stats.NodeCount = res.Graph.NodeCount()
	res.Stats.EdgeCount = res.Graph.EdgeCount()
	r.Logger.Info("built graph",
		"terms", res.Stats.Terms,
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"issues", len(res.Issues),
		"duration", res.Stats.FetchTime+res.Stats.BuildTime)
	return res, nil
}

// Fetch collects dependency and derived terms for the current terms from
// the runner's source. Snapshots are cached by source key and label set
// unless opts.Refresh is set.
func (r *Runner) Fetch(ctx context.Context, current []term.Term, opts Options) (source.Snapshot, bool, error) {
	labels := source.Labels(current)
	key := r.Keyer.SnapshotKey(r.Source.Key(), labels)
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			var snap source.Snapshot
			if err := json.Unmarshal(data, &snap); err == nil {
				hooks.OnCacheHit(ctx, "snapshot")
				return snap, true, nil
			}
		}
		hooks.OnCacheMiss(ctx, "snapshot")
	}

	var snap source.Snapshot
	err := stage(ctx, observability.StageFetch, func() (int, error) {
		var err error
		snap, err = source.Fetch(ctx, r.Source, labels)
		return snap.Len(), err
	})
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeSourceUnavailable, err, "fetch terms from %s", r.Source.Name())
		}
		return source.Snapshot{}, false, err
	}

	if data, err := json.Marshal(snap); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLSnapshot); err != nil {
			opts.Logger.Debug("cache snapshot", "error", err)
		} else {
			hooks.OnCacheSet(ctx, "snapshot", len(data))
		}
	}
	return snap, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) prepare(opts *Options) error {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if opts.Measurer == nil {
		opts.Measurer = r.measurer()
	}
	return opts.ValidateAndSetDefaults()
}

// measurer returns the embedded-font measurer, or the approximation when
// the font cannot be loaded.
func (r *Runner) measurer() layout.Measurer {
	r.fontOnce.Do(func() {
		f, err := measure.NewFont()
		if err != nil {
			r.Logger.Warn("label font unavailable, approximating text width", "error", err)
			r.font = measure.Approx{}
			return
		}
		r.font = f
	})
	return r.font
}

func stage(ctx context.Context, name string, fn func() (int, error)) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name, 0)
	start := time.Now()
	n, err := fn()
	hooks.OnStageComplete(ctx, name, n, time.Since(start), err)
	return err
}

func reportIssues(ctx context.Context, issues []term.Issue) {
	counts := make(map[term.IssueKind]int)
	var kinds []term.IssueKind
	for _, i := range issues {
		if counts[i.Kind] == 0 {
			kinds = append(kinds, i.Kind)
		}
		counts[i.Kind]++
	}
	for _, k := range kinds {
		observability.Pipeline().OnIssues(ctx, string(k), counts[k])
	}
}

